// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

const maxQuantityPerItem = 10

type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=10"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=10"`
}

// MergeCartRequest carries a guest device's local cart, sent once after
// sign-in.
type MergeCartRequest struct {
	Items []AddCartItemRequest `json:"items" validate:"required,dive"`
}

// CartSummary is the cart with line and subtotal amounts computed from the
// current effective prices.
type CartSummary struct {
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

type CartLine struct {
	Item      models.CartItem `json:"item"`
	UnitPrice float64         `json:"unit_price"`
	LineTotal float64         `json:"line_total"`
	InStock   bool            `json:"in_stock"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func (s *CartService) GetCart(userID uuid.UUID) (*CartSummary, error) {
	var items []models.CartItem
	if err := s.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	summary := &CartSummary{Items: make([]CartLine, 0, len(items))}
	for _, item := range items {
		unit := item.Product.UnitPrice()
		line := CartLine{
			Item:      item,
			UnitPrice: unit,
			LineTotal: unit * float64(item.Quantity),
			InStock:   item.Product.Stock >= item.Quantity && item.Product.IsActive,
		}
		summary.Items = append(summary.Items, line)
		summary.Subtotal += line.LineTotal
	}

	return summary, nil
}

func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.sellableProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if product.Stock < req.Quantity {
			return nil, fmt.Errorf("insufficient stock: only %d left", product.Stock)
		}
		item = models.CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	} else {
		// Adding an existing product bumps the quantity, capped per item.
		newQty := item.Quantity + req.Quantity
		if newQty > maxQuantityPerItem {
			newQty = maxQuantityPerItem
		}
		if product.Stock < newQty {
			return nil, fmt.Errorf("insufficient stock: only %d left", product.Stock)
		}
		item.Quantity = newQty
		if err := s.db.Save(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	s.db.Preload("Product").First(&item, item.ID)
	return &item, nil
}

func (s *CartService) UpdateItem(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var item models.CartItem
	if err := s.db.Where("id = ? AND user_id = ?", itemID, userID).
		Preload("Product").
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("cart item not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if item.Product.Stock < req.Quantity {
		return nil, fmt.Errorf("insufficient stock: only %d left", item.Product.Stock)
	}

	item.Quantity = req.Quantity
	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return &item, nil
}

func (s *CartService) RemoveItem(userID, itemID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("cart item not found")
	}
	return nil
}

func (s *CartService) ClearCart(userID uuid.UUID) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// MergeCart folds a guest cart into the signed-in user's cart. Quantities
// for the same product are summed and capped; unknown or inactive products
// are skipped rather than failing the whole merge.
func (s *CartService) MergeCart(userID uuid.UUID, req *MergeCartRequest) (*CartSummary, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	for _, guest := range req.Items {
		product, err := s.sellableProduct(guest.ProductID)
		if err != nil {
			continue
		}

		var item models.CartItem
		err = s.db.Where("user_id = ? AND product_id = ?", userID, guest.ProductID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			qty := guest.Quantity
			if qty > maxQuantityPerItem {
				qty = maxQuantityPerItem
			}
			if qty > product.Stock {
				qty = product.Stock
			}
			if qty < 1 {
				continue
			}
			if err := s.db.Create(&models.CartItem{
				UserID:    userID,
				ProductID: guest.ProductID,
				Quantity:  qty,
			}).Error; err != nil {
				return nil, fmt.Errorf("failed to merge cart item: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		} else {
			qty := item.Quantity + guest.Quantity
			if qty > maxQuantityPerItem {
				qty = maxQuantityPerItem
			}
			if qty > product.Stock {
				qty = product.Stock
			}
			if qty > item.Quantity {
				item.Quantity = qty
				if err := s.db.Save(&item).Error; err != nil {
					return nil, fmt.Errorf("failed to merge cart item: %w", err)
				}
			}
		}
	}

	return s.GetCart(userID)
}

func (s *CartService) sellableProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !product.IsActive || !product.ForSale {
		return nil, errors.New("product is not available for sale")
	}
	return &product, nil
}

// Wishlist

func (s *CartService) GetWishlist(userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := s.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist: %w", err)
	}
	return items, nil
}

func (s *CartService) AddToWishlist(userID, productID uuid.UUID) (*models.WishlistItem, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var item models.WishlistItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err == nil {
		return &item, nil // already wishlisted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	item = models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	s.db.Preload("Product").First(&item, item.ID)
	return &item, nil
}

func (s *CartService) RemoveFromWishlist(userID, productID uuid.UUID) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("wishlist item not found")
	}
	return nil
}

// MoveToCart removes the product from the wishlist and adds one unit to the
// cart.
func (s *CartService) MoveToCart(userID, productID uuid.UUID) (*models.CartItem, error) {
	if err := s.RemoveFromWishlist(userID, productID); err != nil {
		return nil, err
	}
	return s.AddItem(userID, &AddCartItemRequest{ProductID: productID, Quantity: 1})
}
