// internal/services/coupon_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelle/aurelle-backend/internal/models"
)

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name     string
		coupon   models.Coupon
		subtotal float64
		want     float64
	}{
		{
			name:     "percentage rounds to nearest rupee",
			coupon:   models.Coupon{Type: models.CouponTypePercentage, Value: 10},
			subtotal: 1200,
			want:     120,
		},
		{
			name:     "percentage rounds half up",
			coupon:   models.Coupon{Type: models.CouponTypePercentage, Value: 15},
			subtotal: 333,
			want:     50, // 49.95 rounds to 50
		},
		{
			name:     "fixed discount",
			coupon:   models.Coupon{Type: models.CouponTypeFixed, Value: 200},
			subtotal: 1500,
			want:     200,
		},
		{
			name:     "fixed discount capped at subtotal",
			coupon:   models.Coupon{Type: models.CouponTypeFixed, Value: 500},
			subtotal: 300,
			want:     300,
		},
		{
			name:     "full percentage wipes the subtotal",
			coupon:   models.Coupon{Type: models.CouponTypePercentage, Value: 100},
			subtotal: 750,
			want:     750,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiscount(&tt.coupon, tt.subtotal)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCouponValidate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	expired := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	coupons := []models.Coupon{
		{Code: "SAVE10", Type: models.CouponTypePercentage, Value: 10, IsActive: true},
		{Code: "INACTIVE", Type: models.CouponTypeFixed, Value: 50, IsActive: false},
		{Code: "EXPIRED", Type: models.CouponTypeFixed, Value: 50, IsActive: true, ExpiresAt: &expired},
		{Code: "LIMITED", Type: models.CouponTypeFixed, Value: 50, IsActive: true, MaxUses: 2, UsedCount: 2},
		{Code: "BIGSPEND", Type: models.CouponTypeFixed, Value: 100, IsActive: true, MinOrderAmount: 2000, ExpiresAt: &future},
	}
	for i := range coupons {
		require.NoError(t, db.Create(&coupons[i]).Error)
	}

	t.Run("valid coupon", func(t *testing.T) {
		applied, err := svc.Validate("SAVE10", 1200)
		require.NoError(t, err)
		assert.Equal(t, 120.0, applied.Discount)
	})

	t.Run("code lookup is case insensitive", func(t *testing.T) {
		applied, err := svc.Validate("save10", 1000)
		require.NoError(t, err)
		assert.Equal(t, "SAVE10", applied.Coupon.Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Validate("NOPE", 1000)
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	t.Run("inactive coupon", func(t *testing.T) {
		_, err := svc.Validate("INACTIVE", 1000)
		assert.ErrorIs(t, err, ErrCouponInactive)
	})

	t.Run("expired coupon", func(t *testing.T) {
		_, err := svc.Validate("EXPIRED", 1000)
		assert.ErrorIs(t, err, ErrCouponExpired)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		_, err := svc.Validate("LIMITED", 1000)
		assert.ErrorIs(t, err, ErrCouponUsageLimit)
	})

	t.Run("below minimum order", func(t *testing.T) {
		applied, err := svc.Validate("BIGSPEND", 1000)
		assert.ErrorIs(t, err, ErrCouponMinOrder)
		require.NotNil(t, applied)
		assert.Equal(t, 2000.0, applied.Coupon.MinOrderAmount)
	})
}

func TestCouponConsumeUse(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	coupon := models.Coupon{Code: "ONEUSE", Type: models.CouponTypeFixed, Value: 50, IsActive: true, MaxUses: 1}
	require.NoError(t, db.Create(&coupon).Error)

	require.NoError(t, svc.ConsumeUse(db, coupon.ID))

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)

	// Second consume must hit the limit guard.
	err := svc.ConsumeUse(db, coupon.ID)
	assert.ErrorIs(t, err, ErrCouponUsageLimit)
}

func TestCouponCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewCouponService(db)

	_, err := svc.CreateCoupon(&CreateCouponRequest{Code: "OVER", Type: "percentage", Value: 120})
	assert.Error(t, err)

	coupon, err := svc.CreateCoupon(&CreateCouponRequest{Code: "FESTIVE20", Type: "percentage", Value: 20})
	require.NoError(t, err)
	assert.True(t, coupon.IsActive)

	// Duplicate code rejected
	_, err = svc.CreateCoupon(&CreateCouponRequest{Code: "FESTIVE20", Type: "fixed", Value: 100})
	assert.Error(t, err)
}
