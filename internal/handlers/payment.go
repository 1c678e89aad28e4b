// internal/handlers/payment.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aurelle/aurelle-backend/internal/i18n"
	"github.com/aurelle/aurelle-backend/internal/services"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService      *services.PaymentService
	notificationService *services.NotificationService
}

func NewPaymentHandler(paymentService *services.PaymentService, notificationService *services.NotificationService) *PaymentHandler {
	return &PaymentHandler{
		paymentService:      paymentService,
		notificationService: notificationService,
	}
}

// POST /payments/verify
// Checkout success callback from the client. The signature is recomputed
// server-side; the client's word alone never marks an order paid.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.paymentService.VerifyClientPayment(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentInvalidSignature), nil)
		case errors.Is(err, services.ErrPaymentNotFound):
			utils.NotFoundResponse(c, "order")
		default:
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentFailed), nil)
		}
		return
	}

	if h.notificationService != nil {
		go h.notificationService.NotifyOrderPaid(context.Background(), order)
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPaymentSuccess),
		"order":   order,
	})
}

// POST /webhooks/razorpay
// Gateway-to-server delivery. Always returns 200 for authenticated payloads
// we processed or deliberately ignored, so the gateway stops retrying.
func (h *PaymentHandler) RazorpayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.paymentService.HandleWebhook(body, signature)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			c.Status(http.StatusUnauthorized)
			return
		}
		// Processing errors get a 5xx so the gateway redelivers; finalize is
		// idempotent, so retries are safe.
		logrus.WithError(err).Error("Webhook processing failed")
		c.Status(http.StatusInternalServerError)
		return
	}

	if order != nil && h.notificationService != nil {
		go h.notificationService.NotifyOrderPaid(context.Background(), order)
	}

	c.Status(http.StatusOK)
}
