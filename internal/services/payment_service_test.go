// internal/services/payment_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

// checkoutFixture creates a user with a pending order awaiting payment and
// returns the gateway order id the fake gateway issued.
func checkoutFixture(t *testing.T, db *gorm.DB) (*models.User, *models.Product, *models.Order, string) {
	t.Helper()

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 600, 10)
	addToCart(t, db, user.ID, product.ID, 2)

	orderService := NewOrderService(db, &fakeGateway{orderID: "order_" + uuid.New().String()[:8]}, NewCouponService(db), testConfig())
	resp, err := orderService.CreateOrder(&user.ID, &CreateOrderRequest{Address: testAddress()})
	require.NoError(t, err)

	return user, product, resp.Order, resp.GatewayOrderID
}

func TestVerifyClientPayment(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg.Razorpay)

	user, product, order, gatewayOrderID := checkoutFixture(t, db)
	paymentID := "pay_client1"
	signature := utils.SignPayload(cfg.Razorpay.KeySecret, gatewayOrderID+"|"+paymentID)

	t.Run("tampered signature fails the transaction", func(t *testing.T) {
		_, err := svc.VerifyClientPayment(&VerifyPaymentRequest{
			GatewayOrderID:   gatewayOrderID,
			GatewayPaymentID: paymentID,
			Signature:        signature + "00",
		})
		assert.ErrorIs(t, err, ErrInvalidSignature)

		var txn models.PaymentTransaction
		require.NoError(t, db.Where("gateway_order_id = ?", gatewayOrderID).First(&txn).Error)
		assert.Equal(t, models.PaymentStatusFailed, txn.Status)
		assert.Equal(t, "signature mismatch", txn.FailureReason)

		// The order stays pending so the buyer can retry with a real payment.
		var reloaded models.Order
		require.NoError(t, db.First(&reloaded, order.ID).Error)
		assert.Equal(t, models.OrderStatusPending, reloaded.Status)
	})

	t.Run("unknown gateway order", func(t *testing.T) {
		bogus := "order_unknown"
		_, err := svc.VerifyClientPayment(&VerifyPaymentRequest{
			GatewayOrderID:   bogus,
			GatewayPaymentID: paymentID,
			Signature:        utils.SignPayload(cfg.Razorpay.KeySecret, bogus+"|"+paymentID),
		})
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("valid signature finalizes the order", func(t *testing.T) {
		order, err := svc.VerifyClientPayment(&VerifyPaymentRequest{
			GatewayOrderID:   gatewayOrderID,
			GatewayPaymentID: paymentID,
			Signature:        signature,
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, order.Status)
		assert.NotNil(t, order.PaidAt)
		require.NotNil(t, order.Transaction)
		assert.Equal(t, models.PaymentStatusCaptured, order.Transaction.Status)
		assert.Equal(t, paymentID, order.Transaction.GatewayPaymentID)

		// Stock reserved and cart cleared at capture.
		var reloaded models.Product
		require.NoError(t, db.First(&reloaded, product.ID).Error)
		assert.Equal(t, 8, reloaded.Stock)

		var cartCount int64
		db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
		assert.Equal(t, int64(0), cartCount)
	})
}

func webhookBody(event, gatewayOrderID, paymentID, reason string) []byte {
	return []byte(fmt.Sprintf(`{
		"event": %q,
		"payload": {
			"payment": {
				"entity": {
					"id": %q,
					"order_id": %q,
					"status": "captured",
					"error_description": %q
				}
			}
		}
	}`, event, paymentID, gatewayOrderID, reason))
}

func TestHandleWebhookCapture(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg.Razorpay)

	_, product, _, gatewayOrderID := checkoutFixture(t, db)
	body := webhookBody("payment.captured", gatewayOrderID, "pay_hook1", "")

	t.Run("bad signature rejected", func(t *testing.T) {
		_, err := svc.HandleWebhook(body, "deadbeef")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("signed capture finalizes", func(t *testing.T) {
		order, err := svc.HandleWebhook(body, utils.SignPayload(cfg.Razorpay.WebhookSecret, string(body)))
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, models.OrderStatusPaid, order.Status)

		var reloaded models.Product
		require.NoError(t, db.First(&reloaded, product.ID).Error)
		assert.Equal(t, 8, reloaded.Stock)
	})

	t.Run("unsubscribed events are dropped", func(t *testing.T) {
		other := webhookBody("refund.processed", gatewayOrderID, "pay_hook1", "")
		order, err := svc.HandleWebhook(other, utils.SignPayload(cfg.Razorpay.WebhookSecret, string(other)))
		assert.NoError(t, err)
		assert.Nil(t, order)
	})
}

func TestDoubleDeliveryIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg.Razorpay)

	user, product, _, gatewayOrderID := checkoutFixture(t, db)
	paymentID := "pay_both"

	// Client callback lands first.
	_, err := svc.VerifyClientPayment(&VerifyPaymentRequest{
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: paymentID,
		Signature:        utils.SignPayload(cfg.Razorpay.KeySecret, gatewayOrderID+"|"+paymentID),
	})
	require.NoError(t, err)

	// The webhook redelivers the same capture.
	body := webhookBody("payment.captured", gatewayOrderID, paymentID, "")
	order, err := svc.HandleWebhook(body, utils.SignPayload(cfg.Razorpay.WebhookSecret, string(body)))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	// Stock was decremented exactly once.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 8, reloaded.Stock)

	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
	assert.Equal(t, int64(0), cartCount)
}

func TestHandleWebhookPaymentFailed(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg.Razorpay)

	_, _, order, gatewayOrderID := checkoutFixture(t, db)

	body := webhookBody("payment.failed", gatewayOrderID, "pay_fail1", "card declined")
	result, err := svc.HandleWebhook(body, utils.SignPayload(cfg.Razorpay.WebhookSecret, string(body)))
	require.NoError(t, err)
	assert.Nil(t, result)

	var txn models.PaymentTransaction
	require.NoError(t, db.Where("gateway_order_id = ?", gatewayOrderID).First(&txn).Error)
	assert.Equal(t, models.PaymentStatusFailed, txn.Status)
	assert.Equal(t, "card declined", txn.FailureReason)

	// The order stays pending so the buyer can retry.
	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
}

func TestFailureNeverDowngradesCapture(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	svc := NewPaymentService(db, cfg.Razorpay)

	_, _, _, gatewayOrderID := checkoutFixture(t, db)
	paymentID := "pay_race"

	_, err := svc.VerifyClientPayment(&VerifyPaymentRequest{
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: paymentID,
		Signature:        utils.SignPayload(cfg.Razorpay.KeySecret, gatewayOrderID+"|"+paymentID),
	})
	require.NoError(t, err)

	// A stale failure webhook arrives after the capture.
	body := webhookBody("payment.failed", gatewayOrderID, paymentID, "timed out")
	_, err = svc.HandleWebhook(body, utils.SignPayload(cfg.Razorpay.WebhookSecret, string(body)))
	require.NoError(t, err)

	var txn models.PaymentTransaction
	require.NoError(t, db.Where("gateway_order_id = ?", gatewayOrderID).First(&txn).Error)
	assert.Equal(t, models.PaymentStatusCaptured, txn.Status)
}
