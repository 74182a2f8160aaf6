package payment

import "time"

// Status 支付记录状态。
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Payment 支付流水。车辆字段为下单时的快照，便于后台直接展示。
type Payment struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID       string    `gorm:"size:36;not null;index" json:"order_id"`
	CustomerName  string    `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail string    `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone string    `gorm:"size:32" json:"customer_phone"`
	CarID         string    `gorm:"size:36;not null" json:"car_id"`
	CarName       string    `gorm:"size:255" json:"car_name"`
	CarBrand      string    `gorm:"size:255" json:"car_brand"`
	AmountCents   int64     `gorm:"not null" json:"-"`
	Currency      string    `gorm:"size:8;not null;default:USD" json:"currency"`
	Method        string    `gorm:"size:32;not null" json:"payment_method"`
	TransactionID string    `gorm:"uniqueIndex;size:128;not null" json:"transaction_id"`
	Status        Status    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
