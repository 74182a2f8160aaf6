package intake

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

func (r *Repo) CreateContact(ctx context.Context, c *Contact) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

func (r *Repo) ListContacts(ctx context.Context, offset, limit int) ([]Contact, int64, error) {
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

	var total int64
	if err := db.Model(&Contact{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var contacts []Contact
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *Repo) CreateInquiry(ctx context.Context, q *Inquiry) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(q).Error
}

// ListInquiries 支持按 kind 过滤 + 分页。
func (r *Repo) ListInquiries(ctx context.Context, kind InquiryKind, offset, limit int) ([]Inquiry, int64, error) {
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

	q := db.Model(&Inquiry{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var inquiries []Inquiry
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&inquiries).Error; err != nil {
		return nil, 0, err
	}
	return inquiries, total, nil
}
