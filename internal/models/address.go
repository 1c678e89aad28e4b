// internal/models/address.go
package models

import (
	"github.com/google/uuid"
)

type Address struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	FullName   string    `json:"full_name" gorm:"size:100;not null"`
	Phone      string    `json:"phone" gorm:"size:20;not null"`
	Line1      string    `json:"line1" gorm:"size:255;not null"`
	Line2      string    `json:"line2" gorm:"size:255"`
	City       string    `json:"city" gorm:"size:100;not null"`
	State      string    `json:"state" gorm:"size:100;not null"`
	PostalCode string    `json:"postal_code" gorm:"size:10;not null"`
	Country    string    `json:"country" gorm:"size:100;default:'India'"`
	IsDefault  bool      `json:"is_default" gorm:"default:false"`
}
