package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/VelocityMotors/VelocityMotors/internal/common/logger"
	"github.com/VelocityMotors/VelocityMotors/internal/order"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func newFakeOrders(os ...*order.Order) *fakeOrders {
	f := &fakeOrders{orders: map[string]*order.Order{}}
	for _, o := range os {
		cp := *o
		f.orders[o.ID] = &cp
	}
	return f
}

func (f *fakeOrders) GetByID(ctx context.Context, id string) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) Update(ctx context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

// fakePayments 模拟带 transaction_id 唯一索引的支付表，
// RecordCompleted 与订单更新、审计计数一起作为一个原子单元。
type fakePayments struct {
	mu         sync.Mutex
	byTxID     map[string]*Payment
	byOrderID  map[string]*Payment
	orders     *fakeOrders
	auditCount int
}

func newFakePayments(orders *fakeOrders) *fakePayments {
	return &fakePayments{
		byTxID:    map[string]*Payment{},
		byOrderID: map[string]*Payment{},
		orders:    orders,
	}
}

func (f *fakePayments) FindByTransactionID(ctx context.Context, txid string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byTxID[txid]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) FindCompletedByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byOrderID[orderID]
	if !ok || p.Status != StatusCompleted {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) RecordCompleted(ctx context.Context, p *Payment, o *order.Order, details map[string]any) error {
	f.mu.Lock()
	if _, exists := f.byTxID[p.TransactionID]; exists {
		f.mu.Unlock()
		return fmt.Errorf("transaction id already recorded: %w", apperr.ErrDuplicateTransaction)
	}
	cp := *p
	f.byTxID[p.TransactionID] = &cp
	f.byOrderID[p.OrderID] = &cp
	f.auditCount++
	f.mu.Unlock()
	return f.orders.Update(ctx, o)
}

func (f *fakePayments) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byTxID)
}

func pendingOrder() *order.Order {
	return &order.Order{
		ID:               "order-1",
		CarID:            "car-1",
		Status:           order.StatusPending,
		CustomerName:     "Ada Lovelace",
		CustomerEmail:    "ada@example.com",
		TotalAmountCents: 7500000,
		Currency:         "USD",
	}
}

func paymentInput() ProcessInput {
	return ProcessInput{
		OrderID:       "order-1",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CarName:       "Supra",
		CarBrand:      "Toyota",
		Method:        "credit_card",
		AmountCents:   7500000,
	}
}

func newTestProcessor(orders *fakeOrders, payments *fakePayments, gw Gateway, payCfg config.PaymentConfig) *Processor {
	gwCfg := config.GatewayConfig{MaxRetries: 2, BackoffMS: 1, BreakerLimit: 10}
	log, err := logger.NewLogger("error", "text", "stdout", "")
	if err != nil {
		panic(err)
	}
	return NewProcessor(payments, orders, gw, order.NewKeyedLocks(), gwCfg, payCfg, log)
}

func TestProcessSuccess(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{})

	p, err := proc.Process(context.Background(), paymentInput())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if p.Status != StatusCompleted {
		t.Fatalf("expected completed payment, got %s", p.Status)
	}
	if p.TransactionID != "SIM-order-1" {
		t.Fatalf("unexpected transaction id %q", p.TransactionID)
	}

	o, _ := orders.GetByID(context.Background(), "order-1")
	if o.Status != order.StatusPaid || o.PaidAt == nil {
		t.Fatalf("order should be paid with timestamp, got %s", o.Status)
	}
	if payments.count() != 1 || payments.auditCount != 1 {
		t.Fatalf("expected exactly one payment and one audit entry, got %d/%d", payments.count(), payments.auditCount)
	}
}

func TestProcessIdempotentRepeat(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{})

	first, err := proc.Process(context.Background(), paymentInput())
	if err != nil {
		t.Fatalf("first Process: %v", err)
	}
	second, err := proc.Process(context.Background(), paymentInput())
	if err != nil {
		t.Fatalf("repeat Process: %v", err)
	}
	if second.ID != first.ID || second.TransactionID != first.TransactionID {
		t.Fatalf("repeat must return the stored payment, got %s vs %s", second.ID, first.ID)
	}
	if payments.count() != 1 || payments.auditCount != 1 {
		t.Fatalf("repeat created extra rows: %d payments, %d audits", payments.count(), payments.auditCount)
	}
}

func TestProcessConcurrent(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{})

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Payment, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = proc.Process(context.Background(), paymentInput())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("concurrent call %d failed: %v", i, errs[i])
		}
		if results[i].TransactionID != results[0].TransactionID {
			t.Fatalf("concurrent calls returned different payments")
		}
	}
	if payments.count() != 1 || payments.auditCount != 1 {
		t.Fatalf("expected exactly one payment and one audit entry, got %d/%d", payments.count(), payments.auditCount)
	}
}

func TestProcessAmountMismatch(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{})

	in := paymentInput()
	in.AmountCents = 100
	if _, err := proc.Process(context.Background(), in); !errors.Is(err, apperr.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	if payments.count() != 0 {
		t.Fatal("mismatch must not create a payment row")
	}
	o, _ := orders.GetByID(context.Background(), "order-1")
	if o.Status != order.StatusPending {
		t.Fatalf("order should stay pending, got %s", o.Status)
	}
}

func TestProcessAmountMismatchFailsOrderWhenConfigured(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{FailOrderOnMismatch: true})

	in := paymentInput()
	in.AmountCents = 100
	if _, err := proc.Process(context.Background(), in); !errors.Is(err, apperr.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	o, _ := orders.GetByID(context.Background(), "order-1")
	if o.Status != order.StatusFailed || o.FailedAt == nil {
		t.Fatalf("order should be failed with timestamp, got %s", o.Status)
	}
}

func TestProcessOrderNotFound(t *testing.T) {
	orders := newFakeOrders()
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{})

	if _, err := proc.Process(context.Background(), paymentInput()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessTerminalOrderConflicts(t *testing.T) {
	o := pendingOrder()
	o.Status = order.StatusCancelled
	orders := newFakeOrders(o)
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{})

	if _, err := proc.Process(context.Background(), paymentInput()); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestProcessRetriesTransientGatewayError(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)

	failures := 2
	gw := &SimGateway{FailNext: func() error {
		if failures > 0 {
			failures--
			return fmt.Errorf("connection reset: %w", apperr.ErrGateway)
		}
		return nil
	}}
	proc := newTestProcessor(orders, payments, gw, config.PaymentConfig{})

	p, err := proc.Process(context.Background(), paymentInput())
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if p.Status != StatusCompleted {
		t.Fatalf("expected completed payment, got %s", p.Status)
	}
}

func TestProcessGatewayExhaustedKeepsOrderPending(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)

	gw := &SimGateway{FailNext: func() error {
		return fmt.Errorf("connection reset: %w", apperr.ErrGateway)
	}}
	proc := newTestProcessor(orders, payments, gw, config.PaymentConfig{})

	if _, err := proc.Process(context.Background(), paymentInput()); !errors.Is(err, apperr.ErrGateway) {
		t.Fatalf("expected ErrGateway after exhausted retries, got %v", err)
	}
	o, _ := orders.GetByID(context.Background(), "order-1")
	if o.Status != order.StatusPending {
		t.Fatalf("order must stay pending for retry, got %s", o.Status)
	}
	if payments.count() != 0 {
		t.Fatal("failed charge must not create a payment row")
	}
}

func TestProcessClientTransactionIDHint(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	payments := newFakePayments(orders)
	proc := newTestProcessor(orders, payments, &SimGateway{}, config.PaymentConfig{})

	first, err := proc.Process(context.Background(), paymentInput())
	if err != nil {
		t.Fatalf("first Process: %v", err)
	}

	// 客户端回放已知交易号：直接命中已入账流水
	in := paymentInput()
	in.TransactionID = first.TransactionID
	second, err := proc.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("replay Process: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay must return the stored payment")
	}
}
