package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/VelocityMotors/VelocityMotors/internal/auditlog"
	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/order"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByTransactionID(ctx context.Context, txid string) (*Payment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", txid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by transaction id: %w: %v", apperr.ErrStorage, err)
	}
	return &p, nil
}

func (r *Repo) FindCompletedByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, StatusCompleted).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by order id: %w: %v", apperr.ErrStorage, err)
	}
	return &p, nil
}

// RecordCompleted 在单个数据库事务内落账：
// 插入支付流水、订单转 paid、追加审计日志。三者同提交同回滚。
// transaction_id 撞唯一索引时返回 ErrDuplicateTransaction。
func (r *Repo) RecordCompleted(ctx context.Context, p *Payment, o *order.Order, auditDetails map[string]any) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("transaction id already recorded: %w", apperr.ErrDuplicateTransaction)
			}
			return fmt.Errorf("insert payment: %w: %v", apperr.ErrStorage, err)
		}
		if err := tx.Save(o).Error; err != nil {
			return fmt.Errorf("update order: %w: %v", apperr.ErrStorage, err)
		}
		return auditlog.AppendTx(tx, auditlog.ActionPaymentProcessed, auditDetails)
	})
	return err
}

// ListOrphans 找出订单仍处 pending 的 completed 支付，供对账器修复。
func (r *Repo) ListOrphans(ctx context.Context) ([]Payment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.status = ? AND orders.status = ?", StatusCompleted, order.StatusPending).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list orphan payments: %w: %v", apperr.ErrStorage, err)
	}
	return out, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]Payment, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	q := r.db.WithContext(ctx).Model(&Payment{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w: %v", apperr.ErrStorage, err)
	}
	var out []Payment
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w: %v", apperr.ErrStorage, err)
	}
	return out, total, nil
}
