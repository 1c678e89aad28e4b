// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelle/aurelle-backend/internal/models"
)

func TestCartAddItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 450, 15)

	t.Run("adds a new line", func(t *testing.T) {
		item, err := svc.AddItem(user.ID, &AddCartItemRequest{ProductID: product.ID, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("re-adding bumps quantity", func(t *testing.T) {
		item, err := svc.AddItem(user.ID, &AddCartItemRequest{ProductID: product.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("quantity caps at the per-item limit", func(t *testing.T) {
		item, err := svc.AddItem(user.ID, &AddCartItemRequest{ProductID: product.ID, Quantity: 9})
		require.NoError(t, err)
		assert.Equal(t, maxQuantityPerItem, item.Quantity)
	})

	t.Run("rejects more than available stock", func(t *testing.T) {
		scarce := createTestProduct(t, db, 450, 1)
		_, err := svc.AddItem(user.ID, &AddCartItemRequest{ProductID: scarce.ID, Quantity: 3})
		assert.Error(t, err)
	})

	t.Run("rejects inactive products", func(t *testing.T) {
		retired := createTestProduct(t, db, 450, 5)
		require.NoError(t, db.Model(retired).Update("is_active", false).Error)
		_, err := svc.AddItem(user.ID, &AddCartItemRequest{ProductID: retired.ID, Quantity: 1})
		assert.Error(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.AddItem(user.ID, &AddCartItemRequest{ProductID: uuid.New(), Quantity: 1})
		assert.Error(t, err)
	})
}

func TestCartSummaryUsesEffectivePrices(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createTestUser(t, db)
	full := createTestProduct(t, db, 500, 10)
	discounted := createTestProduct(t, db, 800, 10)
	require.NoError(t, db.Model(discounted).Update("discount_price", 650).Error)

	addToCart(t, db, user.ID, full.ID, 2)
	addToCart(t, db, user.ID, discounted.ID, 1)

	summary, err := svc.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, 1650.0, summary.Subtotal) // 2x500 + 650
}

func TestCartUpdateAndRemove(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createTestUser(t, db)
	other := createTestUser(t, db)
	product := createTestProduct(t, db, 300, 5)

	item, err := svc.AddItem(user.ID, &AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	t.Run("update quantity", func(t *testing.T) {
		updated, err := svc.UpdateItem(user.ID, item.ID, &UpdateCartItemRequest{Quantity: 4})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Quantity)
	})

	t.Run("update beyond stock fails", func(t *testing.T) {
		_, err := svc.UpdateItem(user.ID, item.ID, &UpdateCartItemRequest{Quantity: 9})
		assert.Error(t, err)
	})

	t.Run("another user cannot touch the item", func(t *testing.T) {
		_, err := svc.UpdateItem(other.ID, item.ID, &UpdateCartItemRequest{Quantity: 1})
		assert.Error(t, err)
		assert.Error(t, svc.RemoveItem(other.ID, item.ID))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, svc.RemoveItem(user.ID, item.ID))
		assert.Error(t, svc.RemoveItem(user.ID, item.ID))
	})
}

func TestMergeCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createTestUser(t, db)
	existing := createTestProduct(t, db, 400, 20)
	fresh := createTestProduct(t, db, 250, 3)
	gone := createTestProduct(t, db, 100, 5)
	require.NoError(t, db.Model(gone).Update("is_active", false).Error)

	addToCart(t, db, user.ID, existing.ID, 7)

	summary, err := svc.MergeCart(user.ID, &MergeCartRequest{Items: []AddCartItemRequest{
		{ProductID: existing.ID, Quantity: 6}, // 7+6 caps at 10
		{ProductID: fresh.ID, Quantity: 8},    // clamps to stock 3
		{ProductID: gone.ID, Quantity: 1},     // skipped, inactive
	}})
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)

	quantities := map[uuid.UUID]int{}
	for _, line := range summary.Items {
		quantities[line.Item.ProductID] = line.Item.Quantity
	}
	assert.Equal(t, 10, quantities[existing.ID])
	assert.Equal(t, 3, quantities[fresh.ID])
}

func TestMergeCartNeverShrinks(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 400, 20)
	addToCart(t, db, user.ID, product.ID, 5)

	summary, err := svc.MergeCart(user.ID, &MergeCartRequest{Items: []AddCartItemRequest{
		{ProductID: product.ID, Quantity: 1},
	}})
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 6, summary.Items[0].Item.Quantity)
}

func TestWishlist(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createTestUser(t, db)
	product := createTestProduct(t, db, 900, 5)

	t.Run("add is idempotent", func(t *testing.T) {
		first, err := svc.AddToWishlist(user.ID, product.ID)
		require.NoError(t, err)
		second, err := svc.AddToWishlist(user.ID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		items, err := svc.GetWishlist(user.ID)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("move to cart", func(t *testing.T) {
		item, err := svc.MoveToCart(user.ID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)

		items, err := svc.GetWishlist(user.ID)
		require.NoError(t, err)
		assert.Empty(t, items)

		var cartCount int64
		db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
		assert.Equal(t, int64(1), cartCount)
	})

	t.Run("remove missing item errors", func(t *testing.T) {
		assert.Error(t, svc.RemoveFromWishlist(user.ID, product.ID))
	})
}
