package intake

import "time"

// Contact 是 contacts 表的 GORM 模型。纯追加，不回写。
type Contact struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Contact) TableName() string { return "contacts" }

// InquiryKind 咨询类型。
type InquiryKind string

const (
	KindGeneral   InquiryKind = "general"    // 普通咨询
	KindTestDrive InquiryKind = "test_drive" // 试驾预约
)

// Inquiry 是 inquiries 表的 GORM 模型。
// 试驾预约走同一张表（kind=test_drive + preferred_at），服务端是唯一事实源。
type Inquiry struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	CarID       string      `gorm:"index;size:36;not null" json:"car_id"`
	Kind        InquiryKind `gorm:"type:varchar(16);index;not null;default:'general'" json:"kind"`
	Name        string      `gorm:"size:255" json:"name"`
	Email       string      `gorm:"size:255" json:"email"`
	Phone       string      `gorm:"size:50" json:"phone"`
	Message     string      `gorm:"type:text" json:"message"`
	PreferredAt *time.Time  `json:"preferred_at,omitempty"` // 试驾期望时间
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (Inquiry) TableName() string { return "inquiries" }
