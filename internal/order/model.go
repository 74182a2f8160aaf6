package order

import "time"

// Status 订单状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending   Status = "pending"   // 已创建，待支付
	StatusPaid      Status = "paid"      // 支付成功（终态）
	StatusFailed    Status = "failed"    // 支付失败（终态）
	StatusCancelled Status = "cancelled" // 主动取消（终态，仅限支付前）
)

// Order 订单 GORM 模型。
// 订单独占自身生命周期状态；Payment 隶属于唯一一笔订单。
type Order struct {
	ID string `gorm:"primaryKey;size:36"`

	// 业务关联
	CarID  string `gorm:"index;size:36;not null"`          // 购买车辆
	Status Status `gorm:"type:varchar(16);index;not null"` // 当前状态

	// 客户信息
	CustomerName  string `gorm:"size:255;not null"`
	CustomerEmail string `gorm:"size:255;not null"`
	CustomerPhone string `gorm:"size:50"`

	// 金额信息（单位：分）
	TotalAmountCents int64  `gorm:"not null"`
	Currency         string `gorm:"size:8;not null;default:'USD'"`

	// 时间信息
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	PaidAt      *time.Time // 支付成功时间
	FailedAt    *time.Time // 支付失败时间
	CancelledAt *time.Time // 取消时间
}

func (Order) TableName() string { return "orders" }

// Terminal 订单是否已进入终态。
func (o *Order) Terminal() bool {
	switch o.Status {
	case StatusPaid, StatusFailed, StatusCancelled:
		return true
	}
	return false
}
