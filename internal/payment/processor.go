package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/logger"
	"github.com/VelocityMotors/VelocityMotors/internal/common/middleware"
	"github.com/VelocityMotors/VelocityMotors/internal/order"
	"github.com/google/uuid"
)

// paymentStore 处理器需要的支付存储能力（由 Repo 实现；测试用假实现）。
type paymentStore interface {
	FindByTransactionID(ctx context.Context, txid string) (*Payment, error)
	FindCompletedByOrderID(ctx context.Context, orderID string) (*Payment, error)
	RecordCompleted(ctx context.Context, p *Payment, o *order.Order, auditDetails map[string]any) error
}

// orderStore 处理器需要的订单存储能力。
type orderStore interface {
	GetByID(ctx context.Context, id string) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
}

// Processor 支付处理器。持有与订单服务共享的锁表，
// 保证同一订单的支付与取消串行执行。
type Processor struct {
	payments paymentStore
	orders   orderStore
	gateway  Gateway
	locks    *order.KeyedLocks
	breaker  *middleware.CircuitBreaker
	gwCfg    config.GatewayConfig
	payCfg   config.PaymentConfig
	log      logger.Logger
}

func NewProcessor(
	payments paymentStore,
	orders orderStore,
	gateway Gateway,
	locks *order.KeyedLocks,
	gwCfg config.GatewayConfig,
	payCfg config.PaymentConfig,
	log logger.Logger,
) *Processor {
	limit := gwCfg.BreakerLimit
	if limit <= 0 {
		limit = 5
	}
	if locks == nil {
		locks = order.NewKeyedLocks()
	}
	return &Processor{
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		locks:    locks,
		breaker:  middleware.NewCircuitBreaker("payment-gateway", limit, 30*time.Second),
		gwCfg:    gwCfg,
		payCfg:   payCfg,
		log:      log,
	}
}

// ProcessInput 支付请求入参。TransactionID 仅作为客户端提供的
// 幂等线索；实际入账交易号以网关返回为准。
type ProcessInput struct {
	OrderID       string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CarName       string
	CarBrand      string
	Method        string
	AmountCents   int64
	TransactionID string
}

func (in ProcessInput) validate() error {
	if strings.TrimSpace(in.OrderID) == "" {
		return fmt.Errorf("order_id is required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Method) == "" {
		return fmt.Errorf("payment_method is required: %w", apperr.ErrValidation)
	}
	if in.AmountCents <= 0 {
		return fmt.Errorf("amount must be positive: %w", apperr.ErrValidation)
	}
	return nil
}

// Process 执行一次支付。对同一订单重复调用是幂等的：
// 已完成的支付原样返回，不会产生第二条流水。
func (p *Processor) Process(ctx context.Context, in ProcessInput) (*Payment, error) {
	if p == nil || p.payments == nil || p.orders == nil || p.gateway == nil {
		return nil, fmt.Errorf("processor not initialized")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := p.locks.Lock(in.OrderID)
	defer unlock()

	o, err := p.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	// 幂等检查先于状态检查：重复投递的请求直接返回已入账流水
	if existing, err := p.payments.FindCompletedByOrderID(ctx, in.OrderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if in.TransactionID != "" {
		if existing, err := p.payments.FindByTransactionID(ctx, in.TransactionID); err == nil {
			if existing.OrderID != in.OrderID {
				return nil, fmt.Errorf("transaction id belongs to another order: %w", apperr.ErrDuplicateTransaction)
			}
			return existing, nil
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	if o.Status != order.StatusPending {
		return nil, fmt.Errorf("order is %s: %w", o.Status, apperr.ErrInvalidState)
	}

	if in.AmountCents != o.TotalAmountCents {
		if p.payCfg.FailOrderOnMismatch {
			if err := order.ApplyTransition(o, order.StatusFailed, time.Now()); err == nil {
				if uerr := p.orders.Update(ctx, o); uerr != nil {
					p.log.Errorf("mark order %s failed: %v", o.ID, uerr)
				}
			}
		}
		return nil, fmt.Errorf("amount %d does not match order total %d: %w",
			in.AmountCents, o.TotalAmountCents, apperr.ErrAmountMismatch)
	}

	result, err := p.charge(ctx, o, in)
	if err != nil {
		// 订单保持 pending，客户端可重试
		return nil, err
	}

	now := time.Now()
	pay := &Payment{
		ID:            uuid.NewString(),
		OrderID:       o.ID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		CarID:         o.CarID,
		CarName:       in.CarName,
		CarBrand:      in.CarBrand,
		AmountCents:   in.AmountCents,
		Currency:      o.Currency,
		Method:        in.Method,
		TransactionID: result.TransactionID,
		Status:        StatusCompleted,
	}
	if err := order.ApplyTransition(o, order.StatusPaid, now); err != nil {
		return nil, err
	}

	err = p.payments.RecordCompleted(ctx, pay, o, map[string]any{
		"order_id":       o.ID,
		"payment_id":     pay.ID,
		"transaction_id": pay.TransactionID,
		"amount_cents":   pay.AmountCents,
		"method":         pay.Method,
	})
	if errors.Is(err, apperr.ErrDuplicateTransaction) {
		// 并发重放在唯一索引上碰线；返回已入账的那条
		existing, ferr := p.payments.FindByTransactionID(ctx, result.TransactionID)
		if ferr != nil {
			return nil, err
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	p.log.Infof("payment %s recorded for order %s (tx %s)", pay.ID, o.ID, pay.TransactionID)
	return pay, nil
}

// charge 带熔断与有界重试地调用网关。只有网关类错误才重试，
// 退避按次数指数增长。
func (p *Processor) charge(ctx context.Context, o *order.Order, in ProcessInput) (*ChargeResult, error) {
	req := ChargeRequest{
		IdempotencyKey: o.ID,
		AmountCents:    in.AmountCents,
		Currency:       o.Currency,
		Method:         in.Method,
		Description:    fmt.Sprintf("order %s: %s %s", o.ID, in.CarBrand, in.CarName),
		CustomerName:   in.CustomerName,
		CustomerEmail:  in.CustomerEmail,
		CustomerPhone:  in.CustomerPhone,
	}

	attempts := p.gwCfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.gwCfg.Backoff()

	var result *ChargeResult
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(backoff << (i - 1)):
			case <-ctx.Done():
				return nil, fmt.Errorf("gateway call: %w: %v", apperr.ErrGateway, ctx.Err())
			}
		}
		lastErr = p.breaker.Call(ctx, func() error {
			res, err := p.gateway.Charge(ctx, req)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
		if lastErr == nil {
			return result, nil
		}
		if !errors.Is(lastErr, apperr.ErrGateway) && !errors.Is(lastErr, middleware.ErrCircuitOpen) {
			return nil, lastErr
		}
		p.log.Warnf("gateway attempt %d/%d for order %s failed: %v", i+1, attempts, o.ID, lastErr)
	}
	if errors.Is(lastErr, middleware.ErrCircuitOpen) {
		return nil, fmt.Errorf("gateway circuit open: %w", apperr.ErrGateway)
	}
	return nil, lastErr
}
