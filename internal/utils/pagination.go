// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Listing sizes are tuned for the storefront: product grids render 24 cards
// per page, and offset pagination is capped so a crawler cannot walk the
// whole catalog through ever-deeper pages.
const (
	DefaultPageSize = 24
	MaxPageSize     = 60
	maxPage         = 400
)

// Per-listing sort whitelists, shared between the services and their admin
// counterparts. Anything not whitelisted falls back to created_at.
var (
	ProductSortFields      = []string{"created_at", "price", "name", "stock"}
	OrderSortFields        = []string{"created_at", "total", "status"}
	CouponSortFields       = []string{"created_at", "code", "used_count", "expires_at"}
	UserSortFields         = []string{"created_at", "name", "email", "last_login_at"}
	NotificationSortFields = []string{"created_at", "status"}
	AuditLogSortFields     = []string{"created_at", "action"}
)

// sortAliases maps the short sort names the storefront sends to columns.
var sortAliases = map[string]string{
	"newest":       "created_at",
	"alphabetical": "name",
}

type PaginationParams struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Sort     string `json:"sort"`
	Order    string `json:"order"`
	Search   string `json:"search"`
	Category string `json:"category"`
}

type PaginationResult struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	sort := strings.ToLower(c.DefaultQuery("sort", "created_at"))
	order := strings.ToLower(c.DefaultQuery("order", "desc"))

	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	if column, ok := sortAliases[sort]; ok {
		sort = column
	}

	return PaginationParams{
		Page:     page,
		Limit:    limit,
		Sort:     sort,
		Order:    order,
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	offset := (params.Page - 1) * params.Limit
	return db.Offset(offset).Limit(params.Limit)
}

// ApplySort orders the query by a whitelisted column, falling back to
// created_at. A secondary id sort keeps pages stable when many rows share a
// timestamp, which bulk catalog imports regularly produce.
func ApplySort(db *gorm.DB, params PaginationParams, allowedSortFields []string) *gorm.DB {
	sortField := "created_at"
	for _, field := range allowedSortFields {
		if field == params.Sort {
			sortField = params.Sort
			break
		}
	}

	direction := params.Order
	if direction != "asc" && direction != "desc" {
		direction = "desc"
	}

	return db.Order(sortField + " " + direction).Order("id ASC")
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	return PaginationResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		Data:       data,
	}
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.Header("X-Per-Page", strconv.Itoa(result.Limit))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
}
