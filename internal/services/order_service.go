// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/config"
	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrBadTransition = errors.New("invalid order status transition")
	ErrOutOfStock    = errors.New("insufficient stock")
)

type OrderService struct {
	db            *gorm.DB
	gateway       PaymentGateway
	couponService *CouponService
	shipping      config.ShippingConfig
	razorpayKeyID string
}

type ShippingAddressRequest struct {
	FullName   string `json:"full_name" validate:"required,min=2,max=100"`
	Phone      string `json:"phone" validate:"required,min=10,max=15"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,pincode"`
}

type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=10"`
}

type CreateOrderRequest struct {
	// Signed-in users may reference a saved address instead of sending one
	// inline.
	AddressID *uuid.UUID              `json:"address_id,omitempty"`
	Address   *ShippingAddressRequest `json:"address,omitempty"`

	// Items is only honoured for guest checkout; signed-in users order their
	// server-side cart.
	Items []CheckoutItemRequest `json:"items,omitempty" validate:"omitempty,dive"`

	CouponCode string `json:"coupon_code,omitempty" validate:"omitempty,coupon_code"`
	GuestEmail string `json:"guest_email,omitempty" validate:"omitempty,email"`
}

// CheckoutResponse carries everything the client needs to open the Razorpay
// checkout widget.
type CheckoutResponse struct {
	Order          *models.Order `json:"order"`
	GatewayOrderID string        `json:"gateway_order_id"`
	GatewayKeyID   string        `json:"gateway_key_id"`
	AmountPaise    int64         `json:"amount_paise"`
	Currency       string        `json:"currency"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	Status *models.OrderStatus `json:"status,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func NewOrderService(db *gorm.DB, gateway PaymentGateway, couponService *CouponService, cfg *config.Config) *OrderService {
	return &OrderService{
		db:            db,
		gateway:       gateway,
		couponService: couponService,
		shipping:      cfg.Shipping,
		razorpayKeyID: cfg.Razorpay.KeyID,
	}
}

// ShippingCost applies the flat fee below the free-shipping threshold. The
// threshold is met by the merchandise subtotal; applying a coupon never
// forfeits free shipping.
func (s *OrderService) ShippingCost(subtotal float64) float64 {
	if subtotal >= s.shipping.FreeThreshold {
		return 0
	}
	return s.shipping.FlatFee
}

type checkoutLine struct {
	product  models.Product
	quantity int
}

// CreateOrder prices the cart, validates the coupon, snapshots the shipping
// address and product details, and registers the order with the payment
// gateway. Everything runs in one transaction; a gateway failure leaves no
// pending order behind.
func (s *OrderService) CreateOrder(userID *uuid.UUID, req *CreateOrderRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if s.gateway == nil {
		return nil, errors.New("payment gateway is not configured")
	}

	address, err := s.resolveAddress(userID, req)
	if err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(userID, req)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.product.UnitPrice() * float64(line.quantity)
	}

	var applied *AppliedCoupon
	if req.CouponCode != "" {
		applied, err = s.couponService.Validate(req.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	var discount float64
	if applied != nil {
		discount = applied.Discount
	}
	shippingCost := s.ShippingCost(subtotal)
	total := subtotal - discount + shippingCost

	orderNumber, err := utils.GenerateOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &models.Order{
		OrderNumber:    orderNumber,
		UserID:         userID,
		Status:         models.OrderStatusPending,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingCost:   shippingCost,
		Total:          total,
		ShipFullName:   address.FullName,
		ShipPhone:      address.Phone,
		ShipLine1:      address.Line1,
		ShipLine2:      address.Line2,
		ShipCity:       address.City,
		ShipState:      address.State,
		ShipPostalCode: address.PostalCode,
		ShipCountry:    "India",
	}
	if applied != nil {
		order.CouponCode = applied.Coupon.Code
	}

	amountPaise := int64(math.Round(total * 100))
	var gatewayOrderID string

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-check stock inside the transaction; the hard reservation happens
		// at payment capture.
		for _, line := range lines {
			var current models.Product
			if err := tx.First(&current, line.product.ID).Error; err != nil {
				return fmt.Errorf("product no longer available: %w", err)
			}
			if !current.IsActive || current.Stock < line.quantity {
				return fmt.Errorf("%w: %s", ErrOutOfStock, current.Name)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range lines {
			productID := line.product.ID
			item := models.OrderItem{
				OrderID:      order.ID,
				ProductID:    &productID,
				ProductName:  line.product.Name,
				ProductImage: line.product.PrimaryImage(),
				UnitPrice:    line.product.UnitPrice(),
				Quantity:     line.quantity,
				LineTotal:    line.product.UnitPrice() * float64(line.quantity),
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			order.Items = append(order.Items, item)
		}

		if applied != nil {
			if err := s.couponService.ConsumeUse(tx, applied.Coupon.ID); err != nil {
				return err
			}
		}

		gatewayOrderID, err = s.gateway.CreateOrder(amountPaise, orderNumber, map[string]interface{}{
			"order_number": orderNumber,
		})
		if err != nil {
			return err
		}

		transaction := &models.PaymentTransaction{
			OrderID:        order.ID,
			GatewayOrderID: gatewayOrderID,
			Amount:         total,
			Currency:       "INR",
			Status:         models.PaymentStatusCreated,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("failed to create payment transaction: %w", err)
		}
		order.Transaction = transaction

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_number":     orderNumber,
		"gateway_order_id": gatewayOrderID,
		"total":            total,
	}).Info("Order created")

	return &CheckoutResponse{
		Order:          order,
		GatewayOrderID: gatewayOrderID,
		GatewayKeyID:   s.razorpayKeyID,
		AmountPaise:    amountPaise,
		Currency:       "INR",
	}, nil
}

func (s *OrderService) resolveAddress(userID *uuid.UUID, req *CreateOrderRequest) (*ShippingAddressRequest, error) {
	if req.AddressID != nil {
		if userID == nil {
			return nil, errors.New("saved addresses require sign-in")
		}
		var saved models.Address
		if err := s.db.Where("id = ? AND user_id = ?", *req.AddressID, *userID).First(&saved).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("address not found")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return &ShippingAddressRequest{
			FullName:   saved.FullName,
			Phone:      saved.Phone,
			Line1:      saved.Line1,
			Line2:      saved.Line2,
			City:       saved.City,
			State:      saved.State,
			PostalCode: saved.PostalCode,
		}, nil
	}

	if req.Address == nil {
		return nil, errors.New("shipping address is required")
	}
	if err := utils.ValidateStruct(req.Address); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return req.Address, nil
}

func (s *OrderService) resolveLines(userID *uuid.UUID, req *CreateOrderRequest) ([]checkoutLine, error) {
	if userID != nil {
		var cartItems []models.CartItem
		if err := s.db.Where("user_id = ?", *userID).Preload("Product").Find(&cartItems).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch cart: %w", err)
		}
		lines := make([]checkoutLine, 0, len(cartItems))
		for _, item := range cartItems {
			lines = append(lines, checkoutLine{product: item.Product, quantity: item.Quantity})
		}
		return lines, nil
	}

	// Guest checkout carries its items inline.
	if req.GuestEmail == "" {
		return nil, errors.New("guest checkout requires an email")
	}
	lines := make([]checkoutLine, 0, len(req.Items))
	for _, item := range req.Items {
		var product models.Product
		if err := s.db.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("product not found")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if !product.IsActive || !product.ForSale {
			return nil, errors.New("product is not available for sale")
		}
		lines = append(lines, checkoutLine{product: product, quantity: item.Quantity})
	}
	return lines, nil
}

func (s *OrderService) ListUserOrders(userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID).Preload("Items")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, params, utils.OrderSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (s *OrderService) GetOrder(orderID uuid.UUID, userID *uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := s.db.Preload("Items").Preload("Transaction")
	if err := query.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Non-admin callers may only see their own orders.
	if userID != nil {
		if order.UserID == nil || *order.UserID != *userID {
			return nil, ErrOrderNotFound
		}
	}

	return &order, nil
}

// Admin

func (s *OrderService) SearchOrders(params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items").Preload("User")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		query = query.Where("order_number LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, utils.OrderSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus moves an order along the fulfilment flow, rejecting
// transitions the status machine does not allow. Cancelling or refunding a
// captured order restores stock.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrBadTransition, order.Status, req.Status)
	}

	wasPaid := order.Status != models.OrderStatusPending
	restock := wasPaid &&
		(req.Status == models.OrderStatusCancelled || req.Status == models.OrderStatusRefunded)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if restock {
			for _, item := range order.Items {
				if item.ProductID == nil {
					continue
				}
				if err := tx.Model(&models.Product{}).
					Where("id = ?", *item.ProductID).
					Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return fmt.Errorf("failed to restock product: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = req.Status

	logrus.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"status":       req.Status,
	}).Info("Order status updated")

	return &order, nil
}
