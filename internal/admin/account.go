package admin

import "time"

// Account 后台管理员账号。密码以加盐哈希存储。
type Account struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	PasswordSalt string     `gorm:"size:64;not null" json:"-"`
	DisplayName  string     `gorm:"size:64" json:"display_name"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (Account) TableName() string {
	return "admin_accounts"
}
