package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the single authorization attribute of a user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
	RoleStaff   Role = "staff"
	RoleJudge   Role = "judge"
)

// Roles lists every recognized role
var Roles = []Role{RoleAdmin, RoleOfficer, RoleStaff, RoleJudge}

// Valid reports whether r is one of the recognized roles
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Label is the display name of the role
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleOfficer:
		return "Probation Officer"
	case RoleStaff:
		return "Support Staff"
	case RoleJudge:
		return "Judge"
	}
	return string(r)
}

type User struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username  string `gorm:"uniqueIndex;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"type:varchar(16);not null;index" json:"user_type"`

	Phone             string `json:"phone,omitempty"`
	Department        string `json:"department,omitempty"`
	BadgeNumber       string `json:"badge_number,omitempty"`
	IsActiveOfficer   bool   `gorm:"not null" json:"is_active_officer"`
	CourtJurisdiction string `json:"court_jurisdiction,omitempty"`

	IsActive    bool       `gorm:"not null" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	utc(u.LastLoginAt)
	return nil
}

func (User) TableName() string {
	return "users"
}

// FullName returns "First Last", falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsOfficer() bool { return u.Role == RoleOfficer }
func (u *User) IsStaff() bool   { return u.Role == RoleStaff }
func (u *User) IsJudge() bool   { return u.Role == RoleJudge }

// IsProbationOfficer reports an officer who can currently take assignments
func (u *User) IsProbationOfficer() bool {
	return u.Role == RoleOfficer && u.IsActiveOfficer
}
