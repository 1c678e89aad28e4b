// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken is a push-messaging registration for one installed app instance.
type DeviceToken struct {
	BaseModel
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Token      string     `json:"token" gorm:"uniqueIndex;size:512;not null"`
	Platform   string     `json:"platform" gorm:"size:20"` // android, ios, web
	IsActive   bool       `json:"is_active" gorm:"default:true;index"`
	LastSeenAt *time.Time `json:"last_seen_at"`
}

// Notification is the audit row for one broadcast attempt.
type Notification struct {
	BaseModel
	Title       string             `json:"title" gorm:"size:255;not null"`
	Body        string             `json:"body" gorm:"type:text;not null"`
	ImageURL    string             `json:"image_url,omitempty" gorm:"size:500"`
	Audience    string             `json:"audience" gorm:"size:100;not null"` // "all", "user:<id>", "topic:<name>"
	Status      NotificationStatus `json:"status" gorm:"type:varchar(20);default:'sending';index"`
	SentCount   int                `json:"sent_count" gorm:"default:0"`
	FailedCount int                `json:"failed_count" gorm:"default:0"`
	SentBy      uuid.UUID          `json:"sent_by" gorm:"type:uuid;not null"`
	CompletedAt *time.Time         `json:"completed_at"`
}
