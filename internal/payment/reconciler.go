package payment

import (
	"context"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/auditlog"
	"github.com/VelocityMotors/VelocityMotors/internal/common/logger"
	"github.com/VelocityMotors/VelocityMotors/internal/order"
)

// orphanLister 对账器需要的支付存储能力。
type orphanLister interface {
	ListOrphans(ctx context.Context) ([]Payment, error)
}

// auditSink 对账修复的审计落点。
type auditSink interface {
	Append(ctx context.Context, action string, details map[string]any) error
}

// Reconciler 对账器：周期性找出已入账但订单仍为 pending 的支付
// （例如进程在事务提交与响应之间崩溃后的残留），将订单补到 paid。
type Reconciler struct {
	payments orphanLister
	orders   orderStore
	audit    auditSink
	locks    *order.KeyedLocks
	interval time.Duration
	log      logger.Logger
}

func NewReconciler(payments orphanLister, orders orderStore, audit auditSink, locks *order.KeyedLocks, interval time.Duration, log logger.Logger) *Reconciler {
	if locks == nil {
		locks = order.NewKeyedLocks()
	}
	return &Reconciler{
		payments: payments,
		orders:   orders,
		audit:    audit,
		locks:    locks,
		interval: interval,
		log:      log,
	}
}

// Run 周期性执行对账直到 ctx 取消。interval<=0 时不启动。
func (r *Reconciler) Run(ctx context.Context) {
	if r == nil || r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := r.Sweep(ctx); err != nil {
				r.log.Errorf("reconcile sweep: %v", err)
			} else if n > 0 {
				r.log.Infof("reconciled %d orphan payment(s)", n)
			}
		}
	}
}

// Sweep 执行一轮对账，返回修复的订单数。
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	orphans, err := r.payments.ListOrphans(ctx)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for i := range orphans {
		if err := r.repair(ctx, &orphans[i]); err != nil {
			r.log.Errorf("reconcile order %s: %v", orphans[i].OrderID, err)
			continue
		}
		repaired++
	}
	return repaired, nil
}

func (r *Reconciler) repair(ctx context.Context, p *Payment) error {
	unlock := r.locks.Lock(p.OrderID)
	defer unlock()

	o, err := r.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if o.Status == order.StatusPaid {
		// 锁竞争窗口里已被正常路径补上
		return nil
	}
	if err := order.ApplyTransition(o, order.StatusPaid, time.Now()); err != nil {
		return err
	}
	if err := r.orders.Update(ctx, o); err != nil {
		return err
	}
	if r.audit != nil {
		if err := r.audit.Append(ctx, auditlog.ActionPaymentReconciled, map[string]any{
			"order_id":       o.ID,
			"payment_id":     p.ID,
			"transaction_id": p.TransactionID,
		}); err != nil {
			r.log.Warnf("audit reconcile for order %s: %v", o.ID, err)
		}
	}
	return nil
}
