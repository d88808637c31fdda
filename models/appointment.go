package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment types
const (
	AppointmentTypeCheckin    = "checkin"
	AppointmentTypeCounseling = "counseling"
	AppointmentTypeCourt      = "court"
	AppointmentTypeDrugTest   = "drug_test"
	AppointmentTypeHomeVisit  = "home_visit"
	AppointmentTypeOther      = "other"
)

// Appointment statuses. Any status may be set at any time.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusNoShow    = "no_show"
)

// DefaultAppointmentDuration in minutes
const DefaultAppointmentDuration = 30

type Appointment struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID string  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`

	OfficerID string `gorm:"type:uuid;not null;index" json:"officer_id"`
	Officer   *User  `gorm:"foreignKey:OfficerID;constraint:OnDelete:RESTRICT" json:"officer,omitempty"`

	AppointmentType string    `gorm:"size:20;not null" json:"appointment_type"`
	Status          string    `gorm:"size:20;not null;index" json:"status"`
	ScheduledAt     time.Time `gorm:"not null;index" json:"scheduled_date"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Location        string    `gorm:"size:200" json:"location"`
	Notes           string    `gorm:"type:text" json:"notes"`

	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	utc(&a.ScheduledAt, a.ReminderSentAt)
	return nil
}

func (Appointment) TableName() string {
	return "appointments"
}

// EndsAt is the scheduled end of the appointment
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

func IsValidAppointmentType(t string) bool {
	return oneOf(t, AppointmentTypeCheckin, AppointmentTypeCounseling, AppointmentTypeCourt,
		AppointmentTypeDrugTest, AppointmentTypeHomeVisit, AppointmentTypeOther)
}

func IsValidAppointmentStatus(status string) bool {
	return oneOf(status, AppointmentStatusScheduled, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow)
}
