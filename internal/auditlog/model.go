package auditlog

import "time"

// Entry 后台审计日志条目。Details 为 JSON 文本。
type Entry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"size:64;not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	UserType  string    `gorm:"size:32;not null;default:system" json:"user_type"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Entry) TableName() string {
	return "admin_logs"
}

// 审计动作常量。
const (
	ActionPaymentProcessed  = "payment_processed"
	ActionPaymentReconciled = "payment_reconciled"
)
