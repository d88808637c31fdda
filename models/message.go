package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a direct message between two users
type Message struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SenderID    string `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender      *User  `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	RecipientID string `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Recipient   *User  `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"recipient,omitempty"`

	Subject  string     `gorm:"not null;size:200" json:"subject"`
	Body     string     `gorm:"type:text;not null" json:"body"`
	SentAt   time.Time  `gorm:"not null;index" json:"sent_at"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
	IsUrgent bool       `json:"is_urgent"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *Message) BeforeSave(tx *gorm.DB) error {
	utc(&m.SentAt, m.ReadAt)
	return nil
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}
