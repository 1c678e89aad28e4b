// internal/services/payment_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/config"
	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

var (
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrPaymentNotFound  = errors.New("payment transaction not found")
)

type PaymentService struct {
	db  *gorm.DB
	cfg config.RazorpayConfig
}

// VerifyPaymentRequest is the checkout callback the client posts after the
// Razorpay widget reports success.
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature        string `json:"razorpay_signature" validate:"required"`
}

// webhookEvent is the slice of the Razorpay webhook envelope we care about.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Status           string `json:"status"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func NewPaymentService(db *gorm.DB, cfg config.RazorpayConfig) *PaymentService {
	return &PaymentService{db: db, cfg: cfg}
}

// VerifyClientPayment validates the checkout callback signature and finalizes
// the order. The webhook path finalizes the same way, so whichever arrives
// first wins and the other becomes a no-op.
func (s *PaymentService) VerifyClientPayment(req *VerifyPaymentRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	payload := req.GatewayOrderID + "|" + req.GatewayPaymentID
	if !utils.VerifySignature(s.cfg.KeySecret, payload, req.Signature) {
		logrus.WithField("gateway_order_id", req.GatewayOrderID).Warn("Payment signature mismatch")
		// A forged or corrupted callback fails the transaction; markFailed
		// leaves an already captured one alone.
		if err := s.markFailed(req.GatewayOrderID, req.GatewayPaymentID, "signature mismatch"); err != nil {
			logrus.WithError(err).Warn("Failed to record signature mismatch")
		}
		return nil, ErrInvalidSignature
	}

	return s.finalizePayment(req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
}

// HandleWebhook authenticates and processes a gateway webhook delivery. The
// signature covers the raw request body. On a capture it returns the
// finalized order.
func (s *PaymentService) HandleWebhook(body []byte, signature string) (*models.Order, error) {
	if !utils.VerifySignature(s.cfg.WebhookSecret, string(body), signature) {
		logrus.Warn("Webhook signature mismatch")
		return nil, ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	entity := event.Payload.Payment.Entity

	switch event.Event {
	case "payment.captured":
		return s.finalizePayment(entity.OrderID, entity.ID, signature)
	case "payment.failed":
		return nil, s.markFailed(entity.OrderID, entity.ID, entity.ErrorDescription)
	default:
		// Deliveries we did not subscribe to are acknowledged and dropped.
		logrus.WithField("event", event.Event).Debug("Ignoring webhook event")
		return nil, nil
	}
}

// finalizePayment marks the order paid, captures the transaction, decrements
// stock and clears the buyer's cart. The status flip is a conditional update,
// which makes the whole operation idempotent under the
// client-callback-plus-webhook double delivery.
func (s *PaymentService) finalizePayment(gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error) {
	transaction, err := s.findTransaction(gatewayOrderID)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.db.Preload("Items").First(&order, transaction.OrderID).Error; err != nil {
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":  models.OrderStatusPaid,
				"paid_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to mark order paid: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Already finalized by the other delivery path.
			return nil
		}

		if err := tx.Model(transaction).Updates(map[string]interface{}{
			"status":             models.PaymentStatusCaptured,
			"gateway_payment_id": gatewayPaymentID,
			"gateway_signature":  signature,
			"captured_at":        now,
		}).Error; err != nil {
			return fmt.Errorf("failed to capture transaction: %w", err)
		}

		// Guarded decrement; a concurrent sale of the last unit cannot drive
		// stock negative. Payment is already captured, so a miss is logged
		// for manual follow-up instead of failing the order.
		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", *item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				logrus.WithFields(logrus.Fields{
					"order_number": order.OrderNumber,
					"product_id":   *item.ProductID,
				}).Warn("Paid order exceeds available stock")
			}
		}

		if order.UserID != nil {
			if err := tx.Where("user_id = ?", *order.UserID).Delete(&models.CartItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_number":       order.OrderNumber,
		"gateway_payment_id": gatewayPaymentID,
	}).Info("Payment captured")

	if err := s.db.Preload("Items").Preload("Transaction").First(&order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order after capture: %w", err)
	}
	return &order, nil
}

func (s *PaymentService) markFailed(gatewayOrderID, gatewayPaymentID, reason string) error {
	transaction, err := s.findTransaction(gatewayOrderID)
	if err != nil {
		return err
	}

	// A capture may already have landed via the client callback; never
	// downgrade a captured transaction.
	result := s.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", transaction.ID, models.PaymentStatusCreated).
		Updates(map[string]interface{}{
			"status":             models.PaymentStatusFailed,
			"gateway_payment_id": gatewayPaymentID,
			"failure_reason":     reason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark payment failed: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logrus.WithFields(logrus.Fields{
			"gateway_order_id": gatewayOrderID,
			"reason":           reason,
		}).Info("Payment failed")
	}

	return nil
}

func (s *PaymentService) findTransaction(gatewayOrderID string) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	if err := s.db.Where("gateway_order_id = ?", gatewayOrderID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &transaction, nil
}
