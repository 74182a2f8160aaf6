package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/catalog"
	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/google/uuid"
)

// Store 订单存储接口（由 Repo 实现；测试用假实现）。
type Store interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, status Status, offset, limit int) ([]Order, int64, error)
}

// carGetter 目录读接口：建单时校验车辆存在且在售。
type carGetter interface {
	GetCar(ctx context.Context, id string) (*catalog.Car, error)
}

// Service 订单台账：建单、查询、状态流转、取消。
// 状态流转只允许内部调用方（支付处理器/取消路径）触发。
type Service struct {
	store   Store
	catalog carGetter
	locks   *KeyedLocks
}

func NewService(store Store, catalog carGetter, locks *KeyedLocks) *Service {
	if locks == nil {
		locks = NewKeyedLocks()
	}
	return &Service{store: store, catalog: catalog, locks: locks}
}

// Locks 暴露订单锁表给支付处理器（两条路径必须共用同一张锁表）。
func (s *Service) Locks() *KeyedLocks {
	return s.locks
}

// CreateOrderInput 创建订单的入参。金额单位：分。
type CreateOrderInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CarID         string
	AmountCents   int64
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if s == nil || s.store == nil || s.catalog == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, fmt.Errorf("customer_name required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return nil, fmt.Errorf("customer_email required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.CarID) == "" {
		return nil, fmt.Errorf("car_id required: %w", apperr.ErrValidation)
	}
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("total_amount must be positive: %w", apperr.ErrValidation)
	}

	// 车辆必须存在且在售；订单金额必须等于建单时刻的车价
	car, err := s.catalog.GetCar(ctx, strings.TrimSpace(in.CarID))
	if err != nil {
		return nil, err
	}
	if in.AmountCents != car.PriceCents {
		return nil, fmt.Errorf("total_amount %d does not match car price %d: %w",
			in.AmountCents, car.PriceCents, apperr.ErrValidation)
	}

	o := &Order{
		ID:               uuid.NewString(),
		CarID:            car.ID,
		Status:           StatusPending,
		CustomerName:     strings.TrimSpace(in.CustomerName),
		CustomerEmail:    strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:    strings.TrimSpace(in.CustomerPhone),
		TotalAmountCents: in.AmountCents,
		Currency:         "USD",
	}

	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("order id required: %w", apperr.ErrValidation)
	}
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, status Status, offset, limit int) ([]Order, int64, error) {
	if s == nil || s.store == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.store.List(ctx, status, offset, limit)
}

// Transition 按状态机规则流转订单。调用方必须已持有该订单的锁。
func (s *Service) Transition(ctx context.Context, orderID string, to Status, now time.Time) (*Order, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(o, to, now); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// CancelOrder 显式取消路径。
// 与支付共用订单锁：若网关调用在途，这里会等它结束；
// 等到锁后若订单已离开 pending，取消报冲突而不是插队。
func (s *Service) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("order id required: %w", apperr.ErrValidation)
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// 同态 no-op 只留给内部流转；对外的取消接口在终态一律报冲突
	if o.Terminal() {
		return nil, fmt.Errorf("order is %s: %w", o.Status, apperr.ErrInvalidState)
	}
	if err := ApplyTransition(o, StatusCancelled, time.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
