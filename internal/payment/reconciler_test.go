package payment

import (
	"context"
	"testing"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/logger"
	"github.com/VelocityMotors/VelocityMotors/internal/order"
)

type staticOrphans struct {
	payments []Payment
}

func (s *staticOrphans) ListOrphans(ctx context.Context) ([]Payment, error) {
	return s.payments, nil
}

type countingAudit struct {
	actions []string
}

func (c *countingAudit) Append(ctx context.Context, action string, details map[string]any) error {
	c.actions = append(c.actions, action)
	return nil
}

func TestReconcilerRepairsOrphan(t *testing.T) {
	orders := newFakeOrders(pendingOrder())
	orphans := &staticOrphans{payments: []Payment{{
		ID:            "pay-1",
		OrderID:       "order-1",
		TransactionID: "SIM-order-1",
		Status:        StatusCompleted,
	}}}
	audit := &countingAudit{}
	log, err := logger.NewLogger("error", "text", "stdout", "")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	rec := NewReconciler(orphans, orders, audit, order.NewKeyedLocks(), time.Second, log)
	n, err := rec.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 repaired order, got %d", n)
	}

	o, _ := orders.GetByID(context.Background(), "order-1")
	if o.Status != order.StatusPaid || o.PaidAt == nil {
		t.Fatalf("order should be repaired to paid, got %s", o.Status)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "payment_reconciled" {
		t.Fatalf("expected one payment_reconciled audit entry, got %v", audit.actions)
	}
}

func TestReconcilerSkipsAlreadyPaid(t *testing.T) {
	o := pendingOrder()
	now := time.Now()
	o.Status = order.StatusPaid
	o.PaidAt = &now

	orders := newFakeOrders(o)
	orphans := &staticOrphans{payments: []Payment{{
		ID:            "pay-1",
		OrderID:       "order-1",
		TransactionID: "SIM-order-1",
		Status:        StatusCompleted,
	}}}
	audit := &countingAudit{}
	log, err := logger.NewLogger("error", "text", "stdout", "")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	rec := NewReconciler(orphans, orders, audit, order.NewKeyedLocks(), time.Second, log)
	if _, err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(audit.actions) != 0 {
		t.Fatalf("already-paid order must not be re-audited, got %v", audit.actions)
	}
}
