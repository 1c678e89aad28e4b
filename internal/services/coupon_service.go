// internal/services/coupon_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

// Coupon validation errors, distinguished so handlers can pick the right
// translated message.
var (
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponInactive   = errors.New("coupon is not active")
	ErrCouponExpired    = errors.New("coupon has expired")
	ErrCouponUsageLimit = errors.New("coupon usage limit reached")
	ErrCouponMinOrder   = errors.New("order amount below coupon minimum")
)

type CouponService struct {
	db *gorm.DB
}

type CreateCouponRequest struct {
	Code           string     `json:"code" validate:"required,coupon_code"`
	Type           string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value          float64    `json:"value" validate:"required,gt=0"`
	MinOrderAmount float64    `json:"min_order_amount,omitempty" validate:"gte=0"`
	MaxUses        int        `json:"max_uses,omitempty" validate:"gte=0"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

type UpdateCouponRequest struct {
	Value          *float64   `json:"value,omitempty" validate:"omitempty,gt=0"`
	MinOrderAmount *float64   `json:"min_order_amount,omitempty" validate:"omitempty,gte=0"`
	MaxUses        *int       `json:"max_uses,omitempty" validate:"omitempty,gte=0"`
	IsActive       *bool      `json:"is_active,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// AppliedCoupon is the outcome of validating a coupon against a subtotal.
type AppliedCoupon struct {
	Coupon   *models.Coupon `json:"coupon"`
	Discount float64        `json:"discount"`
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

// Validate checks a coupon against a cart subtotal and returns the discount
// it would grant. It does not consume a use; that happens when the order is
// created.
func (s *CouponService) Validate(code string, subtotal float64) (*AppliedCoupon, error) {
	coupon, err := s.findByCode(code)
	if err != nil {
		return nil, err
	}

	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.ExpiresAt != nil && time.Now().After(*coupon.ExpiresAt) {
		return nil, ErrCouponExpired
	}
	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return nil, ErrCouponUsageLimit
	}
	if subtotal < coupon.MinOrderAmount {
		// The coupon is returned so callers can surface the minimum amount.
		return &AppliedCoupon{Coupon: coupon}, ErrCouponMinOrder
	}

	return &AppliedCoupon{
		Coupon:   coupon,
		Discount: ComputeDiscount(coupon, subtotal),
	}, nil
}

// ComputeDiscount returns the rupee discount a coupon grants on a subtotal.
// Percentage discounts are rounded to the nearest rupee; fixed discounts are
// capped at the subtotal so the total never goes negative.
func ComputeDiscount(coupon *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.Type {
	case models.CouponTypePercentage:
		discount = math.Round(subtotal * coupon.Value / 100)
	case models.CouponTypeFixed:
		discount = coupon.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

// ConsumeUse increments the coupon's usage counter within tx. Guarded by the
// usage limit so two concurrent checkouts cannot both take the last use.
func (s *CouponService) ConsumeUse(tx *gorm.DB, couponID uuid.UUID) error {
	result := tx.Model(&models.Coupon{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", couponID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to consume coupon use: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponUsageLimit
	}
	return nil
}

func (s *CouponService) findByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &coupon, nil
}

// Admin CRUD

func (s *CouponService) ListCoupons(params utils.PaginationParams) ([]models.Coupon, int64, error) {
	query := s.db.Model(&models.Coupon{})

	if params.Search != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	query = utils.ApplySort(query, params, utils.CouponSortFields)
	query = utils.ApplyPagination(query, params)

	var coupons []models.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch coupons: %w", err)
	}

	return coupons, total, nil
}

func (s *CouponService) CreateCoupon(req *CreateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	couponType := models.CouponType(req.Type)
	if couponType == models.CouponTypePercentage && req.Value > 100 {
		return nil, errors.New("percentage discount cannot exceed 100")
	}

	var existing models.Coupon
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, errors.New("coupon code already exists")
	}

	coupon := &models.Coupon{
		Code:           req.Code,
		Type:           couponType,
		Value:          req.Value,
		MinOrderAmount: req.MinOrderAmount,
		MaxUses:        req.MaxUses,
		IsActive:       true,
		ExpiresAt:      req.ExpiresAt,
	}

	if err := s.db.Create(coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return coupon, nil
}

func (s *CouponService) UpdateCoupon(id uuid.UUID, req *UpdateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var coupon models.Coupon
	if err := s.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Value != nil {
		if coupon.Type == models.CouponTypePercentage && *req.Value > 100 {
			return nil, errors.New("percentage discount cannot exceed 100")
		}
		coupon.Value = *req.Value
	}
	if req.MinOrderAmount != nil {
		coupon.MinOrderAmount = *req.MinOrderAmount
	}
	if req.MaxUses != nil {
		coupon.MaxUses = *req.MaxUses
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if req.ExpiresAt != nil {
		coupon.ExpiresAt = req.ExpiresAt
	}

	if err := s.db.Save(&coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	return &coupon, nil
}

func (s *CouponService) DeleteCoupon(id uuid.UUID) error {
	result := s.db.Delete(&models.Coupon{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}
