// internal/services/gateway.go
package services

import (
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/aurelle/aurelle-backend/internal/config"
)

// PaymentGateway creates gateway-side orders for checkout. Amounts are in
// paise, per the Razorpay Orders API.
type PaymentGateway interface {
	CreateOrder(amountPaise int64, receipt string, notes map[string]interface{}) (string, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(cfg config.RazorpayConfig) PaymentGateway {
	return &razorpayGateway{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
	}
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create failed: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", errors.New("razorpay response missing order id")
	}

	return orderID, nil
}
