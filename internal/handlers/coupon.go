// internal/handlers/coupon.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aurelle/aurelle-backend/internal/i18n"
	"github.com/aurelle/aurelle-backend/internal/services"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

type CouponHandler struct {
	couponService *services.CouponService
}

func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// POST /coupons/validate
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req struct {
		Code     string  `json:"code" validate:"required,coupon_code"`
		Subtotal float64 `json:"subtotal" validate:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	applied, err := h.couponService.Validate(req.Code, req.Subtotal)
	if err != nil {
		utils.BadRequestResponse(c, couponErrorMessage(lang, err, applied), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCouponApplied),
		"coupon":   applied.Coupon,
		"discount": applied.Discount,
	})
}

// couponErrorMessage maps coupon validation failures onto translated
// storefront messages.
func couponErrorMessage(lang string, err error, applied *services.AppliedCoupon) string {
	switch {
	case errors.Is(err, services.ErrCouponNotFound):
		return i18n.T(lang, i18n.KeyCouponNotFound)
	case errors.Is(err, services.ErrCouponInactive):
		return i18n.T(lang, i18n.KeyCouponInactive)
	case errors.Is(err, services.ErrCouponExpired):
		return i18n.T(lang, i18n.KeyCouponExpired)
	case errors.Is(err, services.ErrCouponUsageLimit):
		return i18n.T(lang, i18n.KeyCouponUsageLimit)
	case errors.Is(err, services.ErrCouponMinOrder):
		var minOrder float64
		if applied != nil && applied.Coupon != nil {
			minOrder = applied.Coupon.MinOrderAmount
		}
		return i18n.T(lang, i18n.KeyCouponMinOrder, minOrder)
	default:
		return err.Error()
	}
}

// Admin endpoints

// GET /admin/coupons
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	coupons, total, err := h.couponService.ListCoupons(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(coupons, total, params))
}

// POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	coupon, err := h.couponService.CreateCoupon(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, coupon)
}

// PUT /admin/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "id"), nil)
		return
	}

	var req services.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	coupon, err := h.couponService.UpdateCoupon(id, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, coupon)
}

// DELETE /admin/coupons/:id
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "id"), nil)
		return
	}

	if err := h.couponService.DeleteCoupon(id); err != nil {
		utils.NotFoundResponse(c, "coupon")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeySuccess)})
}
