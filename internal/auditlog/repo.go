package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"gorm.io/gorm"
)

// Repo 审计日志存储。追加写，不支持更新和删除。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Append 追加一条审计日志。details 会序列化为 JSON 文本。
func (r *Repo) Append(ctx context.Context, action string, details map[string]any) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo not initialized")
	}
	return AppendTx(r.db.WithContext(ctx), action, details)
}

// AppendTx 在调用方事务内追加审计日志，与业务写入同提交同回滚。
func AppendTx(tx *gorm.DB, action string, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	entry := &Entry{
		Action:   action,
		Details:  string(raw),
		UserType: "system",
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("append audit log: %w: %v", apperr.ErrStorage, err)
	}
	return nil
}

// List 倒序返回最新的审计日志，最多 limit 条。
func (r *Repo) List(ctx context.Context, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var entries []Entry
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w: %v", apperr.ErrStorage, err)
	}
	return entries, nil
}
