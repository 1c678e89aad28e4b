// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name      string     `json:"name" gorm:"size:100;not null"`
	NameHi    string     `json:"name_hi" gorm:"size:100"`
	Slug      string     `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	SortOrder int        `json:"sort_order" gorm:"default:0"`
	IsActive  bool       `json:"is_active" gorm:"default:true"`

	// Relationships
	Parent   *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Products []Product  `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	Name              string         `json:"name" gorm:"size:255;not null"`
	NameHi            string         `json:"name_hi" gorm:"size:255"`
	Slug              string         `json:"slug" gorm:"uniqueIndex;size:280;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Price             float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	DiscountPrice     *float64       `json:"discount_price" gorm:"type:decimal(10,2)"`
	Stock             int            `json:"stock" gorm:"default:0"`
	IsActive          bool           `json:"is_active" gorm:"default:true;index"`
	IsFeatured        bool           `json:"is_featured" gorm:"default:false;index"`
	ForSale           bool           `json:"for_sale" gorm:"default:true"`
	ForRent           bool           `json:"for_rent" gorm:"default:false"`
	RentalPricePerDay *float64       `json:"rental_price_per_day" gorm:"type:decimal(10,2)"`
	Images            pq.StringArray `json:"images" gorm:"type:text[]"`
	Tags              pq.StringArray `json:"tags" gorm:"type:text[]"`
	CategoryID        uuid.UUID      `json:"category_id" gorm:"type:uuid;not null;index"`

	// Relationships
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// UnitPrice returns the effective selling price, preferring the discount
// price when one is set below the list price.
func (p *Product) UnitPrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

// PrimaryImage returns the first image URL, if any.
func (p *Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}
