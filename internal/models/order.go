// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	OrderNumber    string      `json:"order_number" gorm:"uniqueIndex;size:40;not null"`
	UserID         *uuid.UUID  `json:"user_id" gorm:"type:uuid;index"` // nullable for guest checkout
	Status         OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Subtotal       float64     `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DiscountAmount float64     `json:"discount_amount" gorm:"type:decimal(10,2);default:0"`
	ShippingCost   float64     `json:"shipping_cost" gorm:"type:decimal(10,2);default:0"`
	Total          float64     `json:"total" gorm:"type:decimal(10,2);not null"`
	CouponCode     string      `json:"coupon_code,omitempty" gorm:"size:50"`
	PaidAt         *time.Time  `json:"paid_at"`

	// Shipping address snapshot, captured at order time and decoupled from the
	// live Address row.
	ShipFullName   string `json:"ship_full_name" gorm:"size:100;not null"`
	ShipPhone      string `json:"ship_phone" gorm:"size:20;not null"`
	ShipLine1      string `json:"ship_line1" gorm:"size:255;not null"`
	ShipLine2      string `json:"ship_line2" gorm:"size:255"`
	ShipCity       string `json:"ship_city" gorm:"size:100;not null"`
	ShipState      string `json:"ship_state" gorm:"size:100;not null"`
	ShipPostalCode string `json:"ship_postal_code" gorm:"size:10;not null"`
	ShipCountry    string `json:"ship_country" gorm:"size:100;default:'India'"`

	// Relationships
	User        *User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items       []OrderItem         `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Transaction *PaymentTransaction `json:"transaction,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is a snapshot of a product at time of purchase so later product
// edits or deletions do not alter historical orders.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID    *uuid.UUID `json:"product_id" gorm:"type:uuid;index"`
	ProductName  string     `json:"product_name" gorm:"size:255;not null"`
	ProductImage string     `json:"product_image" gorm:"size:500"`
	UnitPrice    float64    `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Quantity     int        `json:"quantity" gorm:"not null"`
	LineTotal    float64    `json:"line_total" gorm:"type:decimal(10,2);not null"`
}
