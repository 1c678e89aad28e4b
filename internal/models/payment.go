// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentTransaction tracks a single payment attempt's lifecycle against the
// gateway. One per order.
type PaymentTransaction struct {
	BaseModel
	OrderID          uuid.UUID     `json:"order_id" gorm:"type:uuid;not null;uniqueIndex"`
	GatewayOrderID   string        `json:"gateway_order_id" gorm:"size:64;index"`
	GatewayPaymentID string        `json:"gateway_payment_id" gorm:"size:64"`
	GatewaySignature string        `json:"-" gorm:"size:128"`
	Amount           float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency         string        `json:"currency" gorm:"size:3;default:'INR'"`
	Status           PaymentStatus `json:"status" gorm:"type:varchar(20);default:'created';index"`
	FailureReason    string        `json:"failure_reason,omitempty" gorm:"size:255"`
	CapturedAt       *time.Time    `json:"captured_at"`

	// Relationships
	Order Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
