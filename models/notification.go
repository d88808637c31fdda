package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationTypeAppointment = "appointment"
	NotificationTypeCase        = "case"
	NotificationTypeSystem      = "system"
	NotificationTypeAlert       = "alert"
)

type Notification struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	NotificationType string `gorm:"size:20;not null" json:"notification_type"`
	Title            string `gorm:"not null;size:200" json:"title"`
	Message          string `gorm:"type:text" json:"message"`
	IsRead           bool   `gorm:"index" json:"is_read"`

	// Loose pointer to the record the notification is about
	RelatedObjectID    *string `gorm:"type:uuid" json:"related_object_id,omitempty"`
	RelatedContentType string  `gorm:"size:50" json:"related_content_type,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

func IsValidNotificationType(t string) bool {
	return oneOf(t, NotificationTypeAppointment, NotificationTypeCase, NotificationTypeSystem, NotificationTypeAlert)
}
