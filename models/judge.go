package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Judge is the court profile of a user with the judge role
type Judge struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	JudgeCode string  `gorm:"uniqueIndex;not null;size:20" json:"judge_id"`
	CourtID   *string `gorm:"type:uuid;index" json:"court_id,omitempty"`
	Court     *Court  `gorm:"foreignKey:CourtID;constraint:OnDelete:SET NULL" json:"court,omitempty"`

	Specialization  string     `gorm:"size:100" json:"specialization"`
	AppointmentDate *time.Time `json:"appointment_date,omitempty"`
	Phone           string     `gorm:"size:20" json:"phone"`
	OfficeLocation  string     `gorm:"size:200" json:"office_location"`
	Bio             string     `gorm:"type:text" json:"bio"`
	Notes           string     `gorm:"type:text" json:"notes"`
	IsActive        bool       `gorm:"index" json:"is_active"`
}

func (j *Judge) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

func (j *Judge) BeforeSave(tx *gorm.DB) error {
	utc(j.AppointmentDate)
	return nil
}

func (Judge) TableName() string {
	return "judges"
}

// ExperienceYears counts whole years on the bench, 0 when unknown
func (j *Judge) ExperienceYears(now time.Time) int {
	if j.AppointmentDate == nil || now.Before(*j.AppointmentDate) {
		return 0
	}
	years := now.Year() - j.AppointmentDate.Year()
	if now.YearDay() < j.AppointmentDate.YearDay() {
		years--
	}
	return years
}
