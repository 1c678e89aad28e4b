// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalUsers     int64   `json:"total_users"`
	TotalProducts  int64   `json:"total_products"`
	TotalOrders    int64   `json:"total_orders"`
	PendingOrders  int64   `json:"pending_orders"`
	PaidOrders     int64   `json:"paid_orders"`
	ShippedOrders  int64   `json:"shipped_orders"`
	Revenue        float64 `json:"revenue"`
	RevenueLast30d float64 `json:"revenue_last_30d"`
	LowStockCount  int64   `json:"low_stock_count"`
}

type UserSearchParams struct {
	utils.PaginationParams
	Role   *models.UserRole   `json:"role,omitempty"`
	Status *models.UserStatus `json:"status,omitempty"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// GetDashboardStats aggregates the back-office landing page numbers. Revenue
// counts every order that reached payment, including those later fulfilled.
func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	s.db.Model(&models.User{}).Where("role = ?", models.UserRoleCustomer).Count(&stats.TotalUsers)
	s.db.Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.Model(&models.Order{}).Count(&stats.TotalOrders)
	s.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&stats.PendingOrders)
	s.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPaid).Count(&stats.PaidOrders)
	s.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusShipped).Count(&stats.ShippedOrders)
	s.db.Model(&models.Product{}).Where("is_active = ? AND stock < ?", true, 5).Count(&stats.LowStockCount)

	revenueStatuses := []models.OrderStatus{
		models.OrderStatusPaid,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	}

	var revenue struct{ Total float64 }
	if err := s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("status IN ?", revenueStatuses).
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	stats.Revenue = revenue.Total

	var recent struct{ Total float64 }
	if err := s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("status IN ? AND paid_at >= ?", revenueStatuses, time.Now().AddDate(0, 0, -30)).
		Scan(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to compute recent revenue: %w", err)
	}
	stats.RevenueLast30d = recent.Total

	return stats, nil
}

func (s *AdminService) SearchUsers(params UserSearchParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		term := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, utils.UserSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *AdminService) SetUserStatus(userID uuid.UUID, status models.UserStatus) (*models.User, error) {
	if status != models.UserStatusActive && status != models.UserStatusBlocked {
		return nil, errors.New("invalid user status")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Role == models.UserRoleAdmin {
		return nil, errors.New("cannot change status of an admin account")
	}

	if err := s.db.Model(&user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.Status = status

	return &user, nil
}

func (s *AdminService) ListAuditLogs(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if params.Search != "" {
		query = query.Where("action LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = utils.ApplySort(query, params, utils.AuditLogSortFields)
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}
