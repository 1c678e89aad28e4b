// internal/services/catalog_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelle/aurelle-backend/internal/models"
)

func TestCategoryTree(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, &CreateCategoryRequest{
		Name: "Necklaces", NameHi: "हार", Slug: "necklaces", SortOrder: 1,
	})
	require.NoError(t, err)

	child, err := svc.CreateCategory(ctx, &CreateCategoryRequest{
		Name: "Chokers", Slug: "chokers", ParentID: &root.ID, SortOrder: 1,
	})
	require.NoError(t, err)

	hidden, err := svc.CreateCategory(ctx, &CreateCategoryRequest{
		Name: "Archived", Slug: "archived", ParentID: &root.ID,
	})
	require.NoError(t, err)
	inactive := false
	_, err = svc.UpdateCategory(ctx, hidden.ID, &UpdateCategoryRequest{IsActive: &inactive})
	require.NoError(t, err)

	t.Run("listing returns active roots with active children", func(t *testing.T) {
		categories, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, "necklaces", categories[0].Slug)
		require.Len(t, categories[0].Children, 1)
		assert.Equal(t, child.ID, categories[0].Children[0].ID)
	})

	t.Run("slug lookup", func(t *testing.T) {
		found, err := svc.GetCategoryBySlug("necklaces")
		require.NoError(t, err)
		assert.Equal(t, "हार", found.NameHi)

		_, err = svc.GetCategoryBySlug("archived")
		assert.Error(t, err)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, &CreateCategoryRequest{Name: "Dup", Slug: "necklaces"})
		assert.Error(t, err)
	})

	t.Run("category cannot be its own parent", func(t *testing.T) {
		_, err := svc.UpdateCategory(ctx, root.ID, &UpdateCategoryRequest{ParentID: &root.ID})
		assert.Error(t, err)
	})

	t.Run("delete blocked while children exist", func(t *testing.T) {
		assert.Error(t, svc.DeleteCategory(ctx, root.ID))
		require.NoError(t, svc.DeleteCategory(ctx, child.ID))
		require.NoError(t, svc.DeleteCategory(ctx, hidden.ID))
		require.NoError(t, svc.DeleteCategory(ctx, root.ID))
	})
}

func TestProductCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	category := createTestCategory(t, db)

	t.Run("discount must be below list price", func(t *testing.T) {
		bad := 900.0
		_, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name: "Polki Choker", Slug: "polki-choker", Price: 900,
			DiscountPrice: &bad, CategoryID: category.ID,
		})
		assert.Error(t, err)
	})

	t.Run("rentable products need a rental price", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name: "Bridal Set", Slug: "bridal-set", Price: 15000,
			ForRent: true, CategoryID: category.ID,
		})
		assert.Error(t, err)
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, &CreateProductRequest{
			Name: "Orphan", Slug: "orphan", Price: 100, CategoryID: uuid.New(),
		})
		assert.Error(t, err)
	})

	discount := 750.0
	rental := 500.0
	product, err := svc.CreateProduct(ctx, &CreateProductRequest{
		Name: "Polki Choker", NameHi: "पोल्की चोकर", Slug: "polki-choker",
		Price: 900, DiscountPrice: &discount, Stock: 5,
		ForRent: true, RentalPricePerDay: &rental,
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	assert.True(t, product.IsActive)
	assert.True(t, product.ForSale)
	assert.Equal(t, 750.0, product.UnitPrice())

	t.Run("slug lookup only sees active products", func(t *testing.T) {
		found, err := svc.GetProductBySlug(ctx, "polki-choker")
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)

		inactive := false
		_, err = svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{IsActive: &inactive})
		require.NoError(t, err)

		_, err = svc.GetProductBySlug(ctx, "polki-choker")
		assert.Error(t, err)

		active := true
		_, err = svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{IsActive: &active})
		require.NoError(t, err)
	})

	t.Run("zero discount clears the sale price", func(t *testing.T) {
		zero := 0.0
		updated, err := svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{DiscountPrice: &zero})
		require.NoError(t, err)
		assert.Nil(t, updated.DiscountPrice)
		assert.Equal(t, 900.0, updated.UnitPrice())
	})

	t.Run("update cannot push discount above price", func(t *testing.T) {
		lowPrice := 500.0
		tooHigh := 600.0
		_, err := svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{
			Price: &lowPrice, DiscountPrice: &tooHigh,
		})
		assert.Error(t, err)
	})

	t.Run("soft delete hides the product", func(t *testing.T) {
		require.NoError(t, svc.DeleteProduct(ctx, product.ID))

		_, err := svc.GetProduct(product.ID)
		assert.Error(t, err)

		// The row survives for order item history.
		var count int64
		db.Unscoped().Model(&models.Product{}).Where("id = ?", product.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestGetFeaturedProducts(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	category := createTestCategory(t, db)
	for i := 0; i < 3; i++ {
		featured := i < 2
		product := &models.Product{
			Name: "Piece", Slug: "piece-" + uuid.New().String()[:8],
			Price: 100, Stock: 1, IsActive: true, ForSale: true,
			IsFeatured: featured, CategoryID: category.ID,
		}
		require.NoError(t, db.Create(product).Error)
	}

	products, err := svc.GetFeaturedProducts(ctx, 12)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	limited, err := svc.GetFeaturedProducts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
