// internal/services/testhelpers_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aurelle/aurelle-backend/internal/config"
	"github.com/aurelle/aurelle-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Address{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
		&models.DeviceToken{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Shipping: config.ShippingConfig{
			FreeThreshold: 999,
			FlatFee:       49,
		},
		Razorpay: config.RazorpayConfig{
			KeyID:         "rzp_test_key",
			KeySecret:     "test_key_secret",
			WebhookSecret: "test_webhook_secret",
		},
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Name:   "Priya Sharma",
		Email:  fmt.Sprintf("priya+%s@example.com", uuid.New().String()[:8]),
		Role:   models.UserRoleCustomer,
		Status: models.UserStatusActive,
	}
	if err := user.SetPassword("Secret123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     "Earrings",
		NameHi:   "झुमके",
		Slug:     "earrings-" + uuid.New().String()[:8],
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:       "Kundan Jhumka",
		Slug:       "kundan-jhumka-" + uuid.New().String()[:8],
		Price:      price,
		Stock:      stock,
		IsActive:   true,
		ForSale:    true,
		CategoryID: createTestCategory(t, db).ID,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID uuid.UUID, qty int) {
	t.Helper()

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to add cart item: %v", err)
	}
}

// fakeGateway records CreateOrder calls and can be told to fail.
type fakeGateway struct {
	calls   int
	fail    bool
	orderID string
}

func (g *fakeGateway) CreateOrder(amountPaise int64, receipt string, notes map[string]interface{}) (string, error) {
	g.calls++
	if g.fail {
		return "", errors.New("gateway unreachable")
	}
	if g.orderID != "" {
		return g.orderID, nil
	}
	return fmt.Sprintf("order_fake%d", g.calls), nil
}

// fakePusher records deliveries and reports configurable outcomes.
type fakePusher struct {
	tokenCalls   [][]string
	topicCalls   []string
	failTokens   bool
	unregistered []string
}

func (p *fakePusher) SendToTokens(ctx context.Context, tokens []string, msg PushMessage) (*PushResult, error) {
	p.tokenCalls = append(p.tokenCalls, tokens)
	if p.failTokens {
		return &PushResult{FailureCount: len(tokens)}, errors.New("fcm down")
	}

	result := &PushResult{}
	for _, token := range tokens {
		dead := false
		for _, u := range p.unregistered {
			if u == token {
				dead = true
				break
			}
		}
		if dead {
			result.FailureCount++
			result.Unregistered = append(result.Unregistered, token)
		} else {
			result.SuccessCount++
		}
	}
	return result, nil
}

func (p *fakePusher) SendToTopic(ctx context.Context, topic string, msg PushMessage) error {
	p.topicCalls = append(p.topicCalls, topic)
	return nil
}

// fakeVerifier returns canned Google claims.
type fakeVerifier struct {
	claims *GoogleClaims
	err    error
}

func (v *fakeVerifier) Verify(ctx context.Context, rawIDToken string) (*GoogleClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}
