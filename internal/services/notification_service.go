// internal/services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

type NotificationService struct {
	db     *gorm.DB
	pusher Pusher
}

type RegisterTokenRequest struct {
	Token    string `json:"token" validate:"required,max=512"`
	Platform string `json:"platform" validate:"required,oneof=android ios web"`
}

type SendNotificationRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Body     string `json:"body" validate:"required"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	// Audience is "all", "user:<uuid>" or "topic:<name>".
	Audience string            `json:"audience" validate:"required"`
	Data     map[string]string `json:"data,omitempty"`
}

func NewNotificationService(db *gorm.DB, pusher Pusher) *NotificationService {
	return &NotificationService{db: db, pusher: pusher}
}

// RegisterToken upserts a device token for the user. A token that moves to a
// different account (shared device, re-login) is reassigned.
func (s *NotificationService) RegisterToken(userID uuid.UUID, req *RegisterTokenRequest) (*models.DeviceToken, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()

	var token models.DeviceToken
	err := s.db.Where("token = ?", req.Token).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		token = models.DeviceToken{
			UserID:     userID,
			Token:      req.Token,
			Platform:   req.Platform,
			IsActive:   true,
			LastSeenAt: &now,
		}
		if err := s.db.Create(&token).Error; err != nil {
			return nil, fmt.Errorf("failed to register device token: %w", err)
		}
		return &token, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	token.UserID = userID
	token.Platform = req.Platform
	token.IsActive = true
	token.LastSeenAt = &now
	if err := s.db.Save(&token).Error; err != nil {
		return nil, fmt.Errorf("failed to update device token: %w", err)
	}

	return &token, nil
}

func (s *NotificationService) UnregisterToken(userID uuid.UUID, token string) error {
	result := s.db.Model(&models.DeviceToken{}).
		Where("token = ? AND user_id = ?", token, userID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to unregister device token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("device token not found")
	}
	return nil
}

// Send delivers a notification to the requested audience and records the
// outcome. Tokens FCM reports as unregistered are deactivated.
func (s *NotificationService) Send(ctx context.Context, sentBy uuid.UUID, req *SendNotificationRequest) (*models.Notification, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if s.pusher == nil {
		return nil, errors.New("push messaging is not configured")
	}

	notification := &models.Notification{
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		Audience: req.Audience,
		Status:   models.NotificationStatusSending,
		SentBy:   sentBy,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to record notification: %w", err)
	}

	msg := PushMessage{
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		Data:     req.Data,
	}

	var sendErr error
	switch {
	case req.Audience == "all":
		sendErr = s.sendToTokens(ctx, notification, s.db.Model(&models.DeviceToken{}).Where("is_active = ?", true), msg)

	case strings.HasPrefix(req.Audience, "user:"):
		userID, err := uuid.Parse(strings.TrimPrefix(req.Audience, "user:"))
		if err != nil {
			s.complete(notification, models.NotificationStatusFailed)
			return nil, errors.New("invalid audience user id")
		}
		sendErr = s.sendToTokens(ctx, notification,
			s.db.Model(&models.DeviceToken{}).Where("is_active = ? AND user_id = ?", true, userID), msg)

	case strings.HasPrefix(req.Audience, "topic:"):
		topic := strings.TrimPrefix(req.Audience, "topic:")
		if topic == "" {
			s.complete(notification, models.NotificationStatusFailed)
			return nil, errors.New("invalid audience topic")
		}
		if sendErr = s.pusher.SendToTopic(ctx, topic, msg); sendErr == nil {
			notification.SentCount = 1
		}

	default:
		s.complete(notification, models.NotificationStatusFailed)
		return nil, errors.New("invalid audience")
	}

	status := models.NotificationStatusSent
	if sendErr != nil {
		status = models.NotificationStatusFailed
		logrus.WithError(sendErr).Error("Notification delivery failed")
	}
	s.complete(notification, status)

	if sendErr != nil {
		return notification, sendErr
	}
	return notification, nil
}

func (s *NotificationService) sendToTokens(ctx context.Context, notification *models.Notification, query *gorm.DB, msg PushMessage) error {
	var tokens []string
	if err := query.Pluck("token", &tokens).Error; err != nil {
		return fmt.Errorf("failed to fetch device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	result, err := s.pusher.SendToTokens(ctx, tokens, msg)
	if result != nil {
		notification.SentCount = result.SuccessCount
		notification.FailedCount = result.FailureCount

		if len(result.Unregistered) > 0 {
			if dbErr := s.db.Model(&models.DeviceToken{}).
				Where("token IN ?", result.Unregistered).
				Update("is_active", false).Error; dbErr != nil {
				logrus.WithError(dbErr).Warn("Failed to deactivate stale device tokens")
			}
		}
	}
	return err
}

func (s *NotificationService) complete(notification *models.Notification, status models.NotificationStatus) {
	now := time.Now()
	notification.Status = status
	notification.CompletedAt = &now
	if err := s.db.Model(notification).Updates(map[string]interface{}{
		"status":       status,
		"sent_count":   notification.SentCount,
		"failed_count": notification.FailedCount,
		"completed_at": now,
	}).Error; err != nil {
		logrus.WithError(err).Error("Failed to update notification record")
	}
}

func (s *NotificationService) ListNotifications(params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = utils.ApplySort(query, params, utils.NotificationSortFields)
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

// NotifyOrderPaid pushes an order confirmation to the buyer's devices. Fire
// and forget; called from the payment webhook path.
func (s *NotificationService) NotifyOrderPaid(ctx context.Context, order *models.Order) {
	if s.pusher == nil || order.UserID == nil {
		return
	}

	var tokens []string
	if err := s.db.Model(&models.DeviceToken{}).
		Where("is_active = ? AND user_id = ?", true, *order.UserID).
		Pluck("token", &tokens).Error; err != nil || len(tokens) == 0 {
		return
	}

	_, err := s.pusher.SendToTokens(ctx, tokens, PushMessage{
		Title: "Order confirmed",
		Body:  fmt.Sprintf("Your order %s is confirmed. We will notify you when it ships.", order.OrderNumber),
		Data:  map[string]string{"order_id": order.ID.String()},
	})
	if err != nil {
		logrus.WithError(err).Warn("Order confirmation push failed")
	}
}
