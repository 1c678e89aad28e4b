// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/cache"
	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

type CatalogService struct {
	db    *gorm.DB
	cache *cache.Catalog
}

type CreateCategoryRequest struct {
	Name      string     `json:"name" validate:"required,min=2,max=100"`
	NameHi    string     `json:"name_hi,omitempty" validate:"omitempty,max=100"`
	Slug      string     `json:"slug" validate:"required,slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder int        `json:"sort_order,omitempty"`
}

type UpdateCategoryRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	NameHi    *string    `json:"name_hi,omitempty" validate:"omitempty,max=100"`
	Slug      *string    `json:"slug,omitempty" validate:"omitempty,slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder *int       `json:"sort_order,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
}

type CreateProductRequest struct {
	Name              string    `json:"name" validate:"required,min=2,max=255"`
	NameHi            string    `json:"name_hi,omitempty" validate:"omitempty,max=255"`
	Slug              string    `json:"slug" validate:"required,slug"`
	Description       string    `json:"description,omitempty"`
	Price             float64   `json:"price" validate:"required,gt=0"`
	DiscountPrice     *float64  `json:"discount_price,omitempty" validate:"omitempty,gt=0"`
	Stock             int       `json:"stock" validate:"gte=0"`
	IsFeatured        bool      `json:"is_featured,omitempty"`
	ForSale           *bool     `json:"for_sale,omitempty"`
	ForRent           bool      `json:"for_rent,omitempty"`
	RentalPricePerDay *float64  `json:"rental_price_per_day,omitempty" validate:"omitempty,gt=0"`
	Images            []string  `json:"images,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	CategoryID        uuid.UUID `json:"category_id" validate:"required"`
}

type UpdateProductRequest struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	NameHi            *string    `json:"name_hi,omitempty" validate:"omitempty,max=255"`
	Slug              *string    `json:"slug,omitempty" validate:"omitempty,slug"`
	Description       *string    `json:"description,omitempty"`
	Price             *float64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	DiscountPrice     *float64   `json:"discount_price,omitempty"`
	Stock             *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool      `json:"is_active,omitempty"`
	IsFeatured        *bool      `json:"is_featured,omitempty"`
	ForSale           *bool      `json:"for_sale,omitempty"`
	ForRent           *bool      `json:"for_rent,omitempty"`
	RentalPricePerDay *float64   `json:"rental_price_per_day,omitempty"`
	Images            []string   `json:"images,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Featured *bool    `json:"featured,omitempty"`
	ForRent  *bool    `json:"for_rent,omitempty"`
	Tag      string   `json:"tag,omitempty"`
	// IncludeInactive is only honoured for admin listings.
	IncludeInactive bool `json:"-"`
}

func NewCatalogService(db *gorm.DB, catalogCache *cache.Catalog) *CatalogService {
	return &CatalogService{
		db:    db,
		cache: catalogCache,
	}
}

// Categories

// ListCategories returns the active category tree, roots sorted by
// sort_order with children preloaded.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category

	if s.cache != nil && s.cache.Get(ctx, "categories", &categories) {
		return categories, nil
	}

	err := s.db.Where("parent_id IS NULL AND is_active = ?", true).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Order("sort_order ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, "categories", categories)
	}

	return categories, nil
}

func (s *CatalogService) GetCategoryBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("slug = ? AND is_active = ?", slug, true).
		Preload("Children", "is_active = ?", true).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.Category
	if err := s.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return nil, errors.New("category slug already in use")
	}

	if req.ParentID != nil {
		var parent models.Category
		if err := s.db.First(&parent, *req.ParentID).Error; err != nil {
			return nil, errors.New("parent category not found")
		}
	}

	category := &models.Category{
		Name:      req.Name,
		NameHi:    req.NameHi,
		Slug:      req.Slug,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidate(ctx)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.NameHi != nil {
		category.NameHi = *req.NameHi
	}
	if req.Slug != nil && *req.Slug != category.Slug {
		var existing models.Category
		if err := s.db.Where("slug = ? AND id != ?", *req.Slug, id).First(&existing).Error; err == nil {
			return nil, errors.New("category slug already in use")
		}
		category.Slug = *req.Slug
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, errors.New("category cannot be its own parent")
		}
		category.ParentID = req.ParentID
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.db.Save(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidate(ctx)
	return &category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("category not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	var productCount int64
	if err := s.db.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to check category products: %w", err)
	}
	if productCount > 0 {
		return errors.New("cannot delete category with products")
	}

	var childCount int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return fmt.Errorf("failed to check child categories: %w", err)
	}
	if childCount > 0 {
		return errors.New("cannot delete category with subcategories")
	}

	if err := s.db.Delete(&category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// Products

func (s *CatalogService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category")

	if !params.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}

	if params.Category != "" {
		query = query.Where("category_id IN (SELECT id FROM categories WHERE slug = ? OR parent_id IN (SELECT id FROM categories WHERE slug = ?))",
			params.Category, params.Category)
	}

	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", term, term)
	}

	if params.MinPrice != nil {
		query = query.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("price <= ?", *params.MaxPrice)
	}
	if params.Featured != nil {
		query = query.Where("is_featured = ?", *params.Featured)
	}
	if params.ForRent != nil {
		query = query.Where("for_rent = ?", *params.ForRent)
	}
	if params.Tag != "" {
		query = query.Where("? = ANY(tags)", params.Tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, utils.ProductSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *CatalogService) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 50 {
		limit = 12
	}

	var products []models.Product
	key := fmt.Sprintf("featured:%d", limit)

	if s.cache != nil && s.cache.Get(ctx, key, &products) {
		return products, nil
	}

	err := s.db.Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch featured products: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, products)
	}

	return products, nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product

	key := "product:" + slug
	if s.cache != nil && s.cache.Get(ctx, key, &product) {
		return &product, nil
	}

	if err := s.db.Where("slug = ? AND is_active = ?", slug, true).
		Preload("Category").
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, product)
	}

	return &product, nil
}

func (s *CatalogService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.Product
	if err := s.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return nil, errors.New("product slug already in use")
	}

	var category models.Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		return nil, errors.New("category not found")
	}

	if req.DiscountPrice != nil && *req.DiscountPrice >= req.Price {
		return nil, errors.New("discount price must be below the list price")
	}

	forSale := true
	if req.ForSale != nil {
		forSale = *req.ForSale
	}
	if req.ForRent && req.RentalPricePerDay == nil {
		return nil, errors.New("rental price is required for rentable products")
	}

	product := &models.Product{
		Name:              req.Name,
		NameHi:            req.NameHi,
		Slug:              req.Slug,
		Description:       req.Description,
		Price:             req.Price,
		DiscountPrice:     req.DiscountPrice,
		Stock:             req.Stock,
		IsActive:          true,
		IsFeatured:        req.IsFeatured,
		ForSale:           forSale,
		ForRent:           req.ForRent,
		RentalPricePerDay: req.RentalPricePerDay,
		Images:            pq.StringArray(req.Images),
		Tags:              pq.StringArray(req.Tags),
		CategoryID:        req.CategoryID,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx)
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.NameHi != nil {
		product.NameHi = *req.NameHi
	}
	if req.Slug != nil && *req.Slug != product.Slug {
		var existing models.Product
		if err := s.db.Where("slug = ? AND id != ?", *req.Slug, id).First(&existing).Error; err == nil {
			return nil, errors.New("product slug already in use")
		}
		product.Slug = *req.Slug
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		if *req.DiscountPrice <= 0 {
			product.DiscountPrice = nil
		} else {
			product.DiscountPrice = req.DiscountPrice
		}
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.ForSale != nil {
		product.ForSale = *req.ForSale
	}
	if req.ForRent != nil {
		product.ForRent = *req.ForRent
	}
	if req.RentalPricePerDay != nil {
		product.RentalPricePerDay = req.RentalPricePerDay
	}
	if req.Images != nil {
		product.Images = pq.StringArray(req.Images)
	}
	if req.Tags != nil {
		product.Tags = pq.StringArray(req.Tags)
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			return nil, errors.New("category not found")
		}
		product.CategoryID = *req.CategoryID
	}

	if product.DiscountPrice != nil && *product.DiscountPrice >= product.Price {
		return nil, errors.New("discount price must be below the list price")
	}

	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidate(ctx)
	return &product, nil
}

// DeleteProduct soft-deletes a product. Historical order items keep their
// snapshot columns, so nothing breaks downstream.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
