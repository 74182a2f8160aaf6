package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, c *Car) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

func (r *Repo) Update(ctx context.Context, c *Car) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(c).Error
}

// FindByID 只返回在售车辆（下架车辆对外视作不存在）。
func (r *Repo) FindByID(ctx context.Context, id string) (*Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	if err := db.Where("id = ? AND available = ?", id, true).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAnyByID 不区分在售状态（订单历史、后台用）。
func (r *Repo) FindAnyByID(ctx context.Context, id string) (*Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAvailable 支持按 category / featured 过滤 + 分页。
func (r *Repo) ListAvailable(ctx context.Context, category string, featuredOnly bool, offset, limit int) ([]Car, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&Car{}).Where("available = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if featuredOnly {
		q = q.Where("is_featured = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cars []Car
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&cars).Error; err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// MarkUnavailable 软下架。
func (r *Repo) MarkUnavailable(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Model(&Car{}).Where("id = ?", id).Update("available", false).Error
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	if err := db.Model(&Car{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
