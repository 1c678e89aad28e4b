// internal/models/coupon.go
package models

import (
	"time"
)

type Coupon struct {
	BaseModel
	Code           string     `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Type           CouponType `json:"type" gorm:"type:varchar(20);not null"`
	Value          float64    `json:"value" gorm:"type:decimal(10,2);not null"`
	MinOrderAmount float64    `json:"min_order_amount" gorm:"type:decimal(10,2);default:0"`
	MaxUses        int        `json:"max_uses" gorm:"default:0"` // 0 means unlimited
	UsedCount      int        `json:"used_count" gorm:"default:0"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	ExpiresAt      *time.Time `json:"expires_at"`
}
