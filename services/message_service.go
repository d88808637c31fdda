package services

import (
	"fmt"
	"strings"
	"time"

	"probation_app_go/config"
	"probation_app_go/models"

	"gorm.io/gorm"
)

// MessageInput is a message to send. The sender is always the requester.
type MessageInput struct {
	RecipientID string `json:"recipient"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	IsUrgent    bool   `json:"is_urgent"`
}

func mailbox(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.Message{}).Where("(sender_id = ? OR recipient_id = ?)", userID, userID)
}

// ListMessages returns messages sent or received by userID, newest first
func ListMessages(db *gorm.DB, userID string, page Page) ([]models.Message, int64, error) {
	var total int64
	if err := mailbox(db, userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	var messages []models.Message
	err := mailbox(db, userID).
		Preload("Sender").Preload("Recipient").
		Order("sent_at DESC").
		Scopes(page.Scope()).
		Find(&messages).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, total, nil
}

// SendMessage stores a message from senderID. Urgent messages also email the
// recipient when cfg is provided.
func SendMessage(db *gorm.DB, cfg *config.Config, senderID string, in MessageInput, now time.Time) (*models.Message, error) {
	verr := &ValidationError{}
	recipientID := requireString(verr, "recipient", &in.RecipientID)
	subject := requireString(verr, "subject", &in.Subject)
	if len(subject) > 200 {
		verr.Add("subject", "Ensure this field has no more than 200 characters.")
	}
	body := SanitizeRich(in.Body)
	if strings.TrimSpace(body) == "" {
		verr.Add("body", "This field is required.")
	}

	var recipient *models.User
	if recipientID != "" {
		u, err := GetUser(db, recipientID)
		if err != nil && !IsNotFound(err) {
			return nil, err
		}
		if u == nil || !u.IsActive {
			verr.Add("recipient", "Select a valid recipient.")
		}
		recipient = u
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     SanitizePlain(subject),
		Body:        body,
		SentAt:      now,
		IsUrgent:    in.IsUrgent,
	}
	if err := db.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	if msg.IsUrgent && cfg != nil && recipient.Email != "" {
		senderName := senderID
		if sender, err := GetUser(db, senderID); err == nil {
			senderName = sender.FullName()
		}
		SendEmailAsync(cfg, BuildUrgentMessageEmail(recipient.Email, UrgentMessageEmailData{
			RecipientName: recipient.FullName(),
			SenderName:    senderName,
			Subject:       msg.Subject,
			Link:          strings.TrimRight(cfg.AppURL, "/") + "/api/messages/" + msg.ID,
		}))
	}
	return msg, nil
}

// GetMessage loads a message in userID's mailbox. Opening a received message marks it read.
func GetMessage(db *gorm.DB, userID, id string, now time.Time) (*models.Message, error) {
	var msg models.Message
	err := mailbox(db, userID).
		Preload("Sender").Preload("Recipient").
		Where("id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, notFound(err, "message")
	}
	if msg.RecipientID == userID && msg.ReadAt == nil {
		if err := db.Model(&models.Message{}).Where("id = ?", msg.ID).Update("read_at", now.UTC()).Error; err != nil {
			return nil, fmt.Errorf("failed to mark message read: %w", err)
		}
		msg.ReadAt = &now
	}
	return &msg, nil
}

// DeleteMessage removes a message from userID's mailbox
func DeleteMessage(db *gorm.DB, userID, id string) error {
	result := db.Where("id = ? AND (sender_id = ? OR recipient_id = ?)", id, userID, userID).Delete(&models.Message{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("message: %w", ErrNotFound)
	}
	return nil
}

// UnreadMessageCount counts received messages not yet opened
func UnreadMessageCount(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
