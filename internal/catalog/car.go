package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList JSON 数组文本列（features / images）。
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

// StringMap JSON 对象文本列（specifications）。
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *StringMap) Scan(src any) error {
	return scanJSON(src, m)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

// Car 是 cars 表的 GORM 模型。
// 车辆不做物理删除：有订单引用的车辆通过 available=false 下架。
type Car struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Brand          string     `gorm:"size:255;not null;index" json:"brand"`
	PriceCents     int64      `gorm:"not null" json:"-"`
	Image          string     `gorm:"type:text" json:"image"`
	Images         StringList `gorm:"type:text" json:"images"`
	Category       string     `gorm:"size:100;index" json:"category"`
	Year           int        `json:"year"`
	Mileage        int        `gorm:"not null;default:0" json:"mileage"`
	FuelType       string     `gorm:"size:50" json:"fuelType"`
	Transmission   string     `gorm:"size:50" json:"transmission"`
	Description    string     `gorm:"type:text" json:"description"`
	Features       StringList `gorm:"type:text" json:"features"`
	Specifications StringMap  `gorm:"type:text" json:"specifications"`
	IsFeatured     bool       `gorm:"not null;default:false;index" json:"isFeatured"`
	Available      bool       `gorm:"not null;default:true;index" json:"available"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Car) TableName() string { return "cars" }
