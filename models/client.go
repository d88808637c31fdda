package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client supervision status
const (
	ClientStatusActive      = "active"
	ClientStatusCompleted   = "completed"
	ClientStatusViolated    = "violated"
	ClientStatusTransferred = "transferred"
)

// Risk levels
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// Gender codes
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Address types
const (
	AddressTypeHome = "home"
	AddressTypeWork = "work"
)

// Client is a person under supervision
type Client struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseNumber  string    `gorm:"uniqueIndex;not null;size:50" json:"case_number"`
	FirstName   string    `gorm:"not null;size:100" json:"first_name"`
	LastName    string    `gorm:"not null;size:100;index" json:"last_name"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`
	Gender      string    `gorm:"size:1;not null" json:"gender"`

	AssignedOfficerID string `gorm:"type:uuid;not null;index" json:"assigned_officer_id"`
	AssignedOfficer   *User  `gorm:"foreignKey:AssignedOfficerID;constraint:OnDelete:RESTRICT" json:"assigned_officer,omitempty"`

	Status    string     `gorm:"size:20;not null;index" json:"status"`
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	RiskLevel string     `gorm:"size:10;not null;index" json:"risk_level"`
	Notes     string     `gorm:"type:text" json:"notes"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`

	Addresses []Address `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Offenses  []Offense `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"offenses,omitempty"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (c *Client) BeforeSave(tx *gorm.DB) error {
	utc(&c.DateOfBirth, &c.StartDate, c.EndDate)
	return nil
}

func (Client) TableName() string {
	return "clients"
}

// FullName returns "First Last"
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Address of a client
type Address struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ClientID    string `gorm:"type:uuid;not null;index" json:"client_id"`
	AddressType string `gorm:"size:10;not null" json:"address_type"`
	Street      string `gorm:"not null" json:"street"`
	City        string `gorm:"not null;size:100" json:"city"`
	State       string `gorm:"size:50" json:"state"`
	ZipCode     string `gorm:"size:10" json:"zip_code"`
	IsPrimary   bool   `json:"is_primary"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (Address) TableName() string {
	return "addresses"
}

// Offense recorded against a client
type Offense struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ClientID      string    `gorm:"type:uuid;not null;index" json:"client_id"`
	OffenseType   string    `gorm:"not null;size:100" json:"offense_type"`
	Description   string    `gorm:"type:text" json:"description"`
	DateCommitted time.Time `json:"date_committed"`
	Sentence      string    `gorm:"type:text" json:"sentence"`
	Court         string    `gorm:"size:200" json:"court"`
}

func (o *Offense) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (o *Offense) BeforeSave(tx *gorm.DB) error {
	utc(&o.DateCommitted)
	return nil
}

func (Offense) TableName() string {
	return "offenses"
}

func IsValidClientStatus(status string) bool {
	return oneOf(status, ClientStatusActive, ClientStatusCompleted, ClientStatusViolated, ClientStatusTransferred)
}

func IsValidRiskLevel(level string) bool {
	return oneOf(level, RiskLevelLow, RiskLevelMedium, RiskLevelHigh)
}

func IsValidGender(g string) bool {
	return oneOf(g, GenderMale, GenderFemale, GenderOther)
}

func IsValidAddressType(t string) bool {
	return oneOf(t, AddressTypeHome, AddressTypeWork)
}

func oneOf(value string, options ...string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
