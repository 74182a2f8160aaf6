package admin

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

func (r *Repo) Create(ctx context.Context, a *Account) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) TouchLogin(ctx context.Context, a *Account) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Model(a).Update("last_login_at", a.LastLoginAt).Error
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&Account{}).Count(&total).Error
	return total, err
}
