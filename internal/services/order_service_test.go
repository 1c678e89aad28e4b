// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelle/aurelle-backend/internal/models"
)

func testAddress() *ShippingAddressRequest {
	return &ShippingAddressRequest{
		FullName:   "Priya Sharma",
		Phone:      "+919876543210",
		Line1:      "14 MG Road",
		City:       "Jaipur",
		State:      "Rajasthan",
		PostalCode: "302001",
	}
}

func TestShippingCost(t *testing.T) {
	svc := NewOrderService(newTestDB(t), &fakeGateway{}, nil, testConfig())

	assert.Equal(t, 49.0, svc.ShippingCost(500))
	assert.Equal(t, 49.0, svc.ShippingCost(998))
	assert.Equal(t, 0.0, svc.ShippingCost(999))
	assert.Equal(t, 0.0, svc.ShippingCost(2500))
}

func TestCreateOrderPricing(t *testing.T) {
	db := newTestDB(t)
	gateway := &fakeGateway{}
	couponService := NewCouponService(db)
	svc := NewOrderService(db, gateway, couponService, testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 600, 10)
	addToCart(t, db, user.ID, product.ID, 2)

	require.NoError(t, db.Create(&models.Coupon{
		Code: "SAVE10", Type: models.CouponTypePercentage, Value: 10, IsActive: true,
	}).Error)

	resp, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{
		Address:    testAddress(),
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)

	// 1200 subtotal clears free shipping, 120 off the merchandise.
	assert.Equal(t, 1200.0, resp.Order.Subtotal)
	assert.Equal(t, 120.0, resp.Order.DiscountAmount)
	assert.Equal(t, 0.0, resp.Order.ShippingCost)
	assert.Equal(t, 1080.0, resp.Order.Total)
	assert.Equal(t, int64(108000), resp.AmountPaise)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.GatewayKeyID)
	assert.Equal(t, "order_fake1", resp.GatewayOrderID)
	assert.Equal(t, models.OrderStatusPending, resp.Order.Status)
	assert.Len(t, resp.Order.Items, 1)
	assert.Equal(t, product.Name, resp.Order.Items[0].ProductName)

	// Coupon use was consumed inside the checkout transaction.
	var coupon models.Coupon
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&coupon).Error)
	assert.Equal(t, 1, coupon.UsedCount)

	// Stock is reserved at capture, not at order creation.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)

	// Cart survives until payment capture too.
	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
	assert.Equal(t, int64(1), cartCount)
}

func TestCreateOrderFlatShipping(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 500, 5)
	addToCart(t, db, user.ID, product.ID, 1)

	resp, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{Address: testAddress()})
	require.NoError(t, err)

	assert.Equal(t, 500.0, resp.Order.Subtotal)
	assert.Equal(t, 49.0, resp.Order.ShippingCost)
	assert.Equal(t, 549.0, resp.Order.Total)
	assert.Equal(t, int64(54900), resp.AmountPaise)
}

func TestCouponNeverForfeitsFreeShipping(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 1100, 5)
	addToCart(t, db, user.ID, product.ID, 1)

	require.NoError(t, db.Create(&models.Coupon{
		Code: "FLAT200", Type: models.CouponTypeFixed, Value: 200, IsActive: true,
	}).Error)

	resp, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{
		Address:    testAddress(),
		CouponCode: "FLAT200",
	})
	require.NoError(t, err)

	// The threshold is judged on the 1100 subtotal, not the 900 left after
	// the coupon.
	assert.Equal(t, 1100.0, resp.Order.Subtotal)
	assert.Equal(t, 200.0, resp.Order.DiscountAmount)
	assert.Equal(t, 0.0, resp.Order.ShippingCost)
	assert.Equal(t, 900.0, resp.Order.Total)
}

func TestCreateOrderUsesDiscountPrice(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 800, 5)
	require.NoError(t, db.Model(product).Update("discount_price", 650).Error)
	addToCart(t, db, user.ID, product.ID, 2)

	resp, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{Address: testAddress()})
	require.NoError(t, err)

	assert.Equal(t, 1300.0, resp.Order.Subtotal)
	assert.Equal(t, 650.0, resp.Order.Items[0].UnitPrice)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	user := createTestUser(t, db)

	_, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{Address: testAddress()})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrderOutOfStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 400, 1)
	addToCart(t, db, user.ID, product.ID, 3)

	_, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{Address: testAddress()})
	assert.ErrorIs(t, err, ErrOutOfStock)

	// Nothing was written.
	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)
}

func TestCreateOrderGatewayFailureRollsBack(t *testing.T) {
	db := newTestDB(t)
	couponService := NewCouponService(db)
	svc := NewOrderService(db, &fakeGateway{fail: true}, couponService, testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 700, 5)
	addToCart(t, db, user.ID, product.ID, 1)

	require.NoError(t, db.Create(&models.Coupon{
		Code: "SAVE10", Type: models.CouponTypePercentage, Value: 10, IsActive: true,
	}).Error)

	_, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{
		Address:    testAddress(),
		CouponCode: "SAVE10",
	})
	require.Error(t, err)

	var orderCount, itemCount, txnCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	db.Model(&models.PaymentTransaction{}).Count(&txnCount)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, int64(0), itemCount)
	assert.Equal(t, int64(0), txnCount)

	// The consumed coupon use rolled back with the rest.
	var coupon models.Coupon
	require.NoError(t, db.Where("code = ?", "SAVE10").First(&coupon).Error)
	assert.Equal(t, 0, coupon.UsedCount)
}

func TestCreateOrderGuestCheckout(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	product := createTestProduct(t, db, 1200, 4)

	t.Run("guest without email is rejected", func(t *testing.T) {
		_, err := svc.CreateOrder(nil, &CreateOrderRequest{
			Address: testAddress(),
			Items:   []CheckoutItemRequest{{ProductID: product.ID, Quantity: 1}},
		})
		assert.Error(t, err)
	})

	t.Run("guest order succeeds with inline items", func(t *testing.T) {
		resp, err := svc.CreateOrder(nil, &CreateOrderRequest{
			Address:    testAddress(),
			Items:      []CheckoutItemRequest{{ProductID: product.ID, Quantity: 1}},
			GuestEmail: "guest@example.com",
		})
		require.NoError(t, err)
		assert.Nil(t, resp.Order.UserID)
		assert.Equal(t, 1200.0, resp.Order.Total)
	})

	t.Run("guest cannot use a saved address", func(t *testing.T) {
		addressID := createTestUser(t, db).ID // any uuid works, the guard fires first
		_, err := svc.CreateOrder(nil, &CreateOrderRequest{
			AddressID:  &addressID,
			Items:      []CheckoutItemRequest{{ProductID: product.ID, Quantity: 1}},
			GuestEmail: "guest@example.com",
		})
		assert.Error(t, err)
	})
}

func TestCreateOrderSavedAddress(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 300, 5)
	addToCart(t, db, user.ID, product.ID, 1)

	address := &models.Address{
		UserID:     user.ID,
		FullName:   "Priya Sharma",
		Phone:      "+919876543210",
		Line1:      "7 Residency Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560025",
	}
	require.NoError(t, db.Create(address).Error)

	resp, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{AddressID: &address.ID})
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", resp.Order.ShipCity)
	assert.Equal(t, "560025", resp.Order.ShipPostalCode)
	assert.Equal(t, "India", resp.Order.ShipCountry)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 450, 10)
	addToCart(t, db, user.ID, product.ID, 2)

	resp, err := svc.CreateOrder(&user.ID, &CreateOrderRequest{Address: testAddress()})
	require.NoError(t, err)
	orderID := resp.Order.ID

	t.Run("pending cannot ship", func(t *testing.T) {
		_, err := svc.UpdateStatus(orderID, &UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
		assert.ErrorIs(t, err, ErrBadTransition)
	})

	// Simulate capture: paid with stock decremented.
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("status", models.OrderStatusPaid).Error)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("stock", 8).Error)

	t.Run("paid moves through fulfilment", func(t *testing.T) {
		order, err := svc.UpdateStatus(orderID, &UpdateOrderStatusRequest{Status: models.OrderStatusProcessing})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusProcessing, order.Status)

		order, err = svc.UpdateStatus(orderID, &UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, order.Status)
	})

	t.Run("shipped cannot be cancelled", func(t *testing.T) {
		_, err := svc.UpdateStatus(orderID, &UpdateOrderStatusRequest{Status: models.OrderStatusCancelled})
		assert.ErrorIs(t, err, ErrBadTransition)
	})

	t.Run("refunding a captured order restocks", func(t *testing.T) {
		_, err := svc.UpdateStatus(orderID, &UpdateOrderStatusRequest{Status: models.OrderStatusRefunded})
		require.NoError(t, err)

		var reloaded models.Product
		require.NoError(t, db.First(&reloaded, product.ID).Error)
		assert.Equal(t, 10, reloaded.Stock)
	})

	t.Run("refunded is terminal", func(t *testing.T) {
		_, err := svc.UpdateStatus(orderID, &UpdateOrderStatusRequest{Status: models.OrderStatusPaid})
		assert.ErrorIs(t, err, ErrBadTransition)
	})
}

func TestGetOrderOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewOrderService(db, &fakeGateway{}, NewCouponService(db), testConfig())

	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)
	product := createTestProduct(t, db, 250, 5)
	addToCart(t, db, owner.ID, product.ID, 1)

	resp, err := svc.CreateOrder(&owner.ID, &CreateOrderRequest{Address: testAddress()})
	require.NoError(t, err)

	_, err = svc.GetOrder(resp.Order.ID, &owner.ID)
	assert.NoError(t, err)

	_, err = svc.GetOrder(resp.Order.ID, &stranger.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Admin lookup skips the ownership check.
	_, err = svc.GetOrder(resp.Order.ID, nil)
	assert.NoError(t, err)
}
