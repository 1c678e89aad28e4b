// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func paramsForQuery(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/products?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := paramsForQuery(t, "")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, DefaultPageSize, params.Limit)
	assert.Equal(t, "created_at", params.Sort)
	assert.Equal(t, "desc", params.Order)
}

func TestGetPaginationParamsClamping(t *testing.T) {
	t.Run("page below one", func(t *testing.T) {
		assert.Equal(t, 1, paramsForQuery(t, "page=0").Page)
		assert.Equal(t, 1, paramsForQuery(t, "page=-3").Page)
	})

	t.Run("page beyond the deep-page cap", func(t *testing.T) {
		assert.Equal(t, 400, paramsForQuery(t, "page=9999").Page)
	})

	t.Run("oversized limit", func(t *testing.T) {
		assert.Equal(t, MaxPageSize, paramsForQuery(t, "limit=500").Limit)
	})

	t.Run("non-numeric limit falls back", func(t *testing.T) {
		assert.Equal(t, DefaultPageSize, paramsForQuery(t, "limit=abc").Limit)
	})

	t.Run("unknown order direction", func(t *testing.T) {
		assert.Equal(t, "desc", paramsForQuery(t, "order=sideways").Order)
	})

	t.Run("uppercase order is normalized", func(t *testing.T) {
		assert.Equal(t, "asc", paramsForQuery(t, "order=ASC").Order)
	})
}

func TestGetPaginationParamsSortAliases(t *testing.T) {
	assert.Equal(t, "created_at", paramsForQuery(t, "sort=newest").Sort)
	assert.Equal(t, "name", paramsForQuery(t, "sort=alphabetical").Sort)
	assert.Equal(t, "price", paramsForQuery(t, "sort=PRICE").Sort)
}

type listingRow struct {
	ID        uint
	Name      string
	Price     float64
	CreatedAt time.Time
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestApplySortWhitelist(t *testing.T) {
	db := dryRunDB(t)

	t.Run("whitelisted column is used", func(t *testing.T) {
		params := PaginationParams{Sort: "price", Order: "asc"}
		stmt := ApplySort(db.Model(&listingRow{}), params, ProductSortFields).Find(&[]listingRow{})
		assert.Contains(t, stmt.Statement.SQL.String(), "price asc")
	})

	t.Run("unlisted column falls back to created_at", func(t *testing.T) {
		params := PaginationParams{Sort: "password_hash", Order: "asc"}
		stmt := ApplySort(db.Model(&listingRow{}), params, ProductSortFields).Find(&[]listingRow{})
		sql := stmt.Statement.SQL.String()
		assert.NotContains(t, sql, "password_hash")
		assert.Contains(t, sql, "created_at asc")
	})

	t.Run("empty direction defaults to desc", func(t *testing.T) {
		params := PaginationParams{Sort: "name"}
		stmt := ApplySort(db.Model(&listingRow{}), params, ProductSortFields).Find(&[]listingRow{})
		assert.Contains(t, stmt.Statement.SQL.String(), "name desc")
	})

	t.Run("ties break on id for stable pages", func(t *testing.T) {
		params := PaginationParams{Sort: "created_at", Order: "desc"}
		stmt := ApplySort(db.Model(&listingRow{}), params, ProductSortFields).Find(&[]listingRow{})
		assert.Contains(t, stmt.Statement.SQL.String(), "id ASC")
	})
}

func TestApplyPaginationOffset(t *testing.T) {
	db := dryRunDB(t)
	params := PaginationParams{Page: 3, Limit: 24}

	stmt := ApplyPagination(db.Model(&listingRow{}), params).Find(&[]listingRow{})
	sql := stmt.Statement.SQL.String()
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
	assert.Equal(t, 48, stmt.Statement.Vars[len(stmt.Statement.Vars)-1])
}

func TestCreatePaginationResult(t *testing.T) {
	result := CreatePaginationResult([]string{"a"}, 50, PaginationParams{Page: 2, Limit: 24})
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, int64(50), result.Total)
	assert.Equal(t, 3, result.TotalPages)

	t.Run("zero limit yields zero pages", func(t *testing.T) {
		result := CreatePaginationResult(nil, 50, PaginationParams{})
		assert.Equal(t, 0, result.TotalPages)
	})
}
