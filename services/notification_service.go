package services

import (
	"fmt"

	"probation_app_go/models"

	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(userID string, page Page) ([]models.Notification, int64, error) {
	query := s.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var notifications []models.Notification
	err := query.Order("created_at DESC").Scopes(page.Scope()).Find(&notifications).Error
	return notifications, total, err
}

// Get loads one of the user's notifications; others' are not found
func (s *NotificationService) Get(id, userID string) (*models.Notification, error) {
	var n models.Notification
	if err := s.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, notFound(err, "notification")
	}
	return &n, nil
}

func (s *NotificationService) GetUnreadNotifications(userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) MarkAsRead(notificationID, userID string) error {
	result := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification: %w", ErrNotFound)
	}
	return nil
}

// MarkAllAsRead clears the user's unread notifications and reports how many changed
func (s *NotificationService) MarkAllAsRead(userID string) (int64, error) {
	result := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (s *NotificationService) GetNotificationCount(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) CreateNotification(notification *models.Notification) error {
	if !models.IsValidNotificationType(notification.NotificationType) {
		return fmt.Errorf("invalid notification type %q", notification.NotificationType)
	}
	return s.DB.Create(notification).Error
}

// Notify creates a notification pointing at a related record
func (s *NotificationService) Notify(userID, kind, title, message, contentType, objectID string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:             userID,
		NotificationType:   kind,
		Title:              title,
		Message:            message,
		RelatedContentType: contentType,
		RelatedObjectID:    ptrIfNotEmpty(objectID),
	}
	if err := s.CreateNotification(n); err != nil {
		return nil, err
	}
	return n, nil
}
