package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"probation_app_go/models"

	"gorm.io/gorm"
)

// MinPasswordLength for new accounts
const MinPasswordLength = 8

// NewUserInput describes an account to create
type NewUserInput struct {
	Username          string
	Email             string
	Password          string
	FirstName         string
	LastName          string
	Role              models.Role
	Phone             string
	Department        string
	BadgeNumber       string
	CourtJurisdiction string
}

// CreateUser validates and stores a new active account. Officers start
// eligible for assignment.
func CreateUser(db *gorm.DB, in NewUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	verr := &ValidationError{}
	if in.Username == "" {
		verr.Add("username", "This field is required.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		verr.Add("email", "Enter a valid email address.")
	}
	if len(in.Password) < MinPasswordLength {
		verr.Add("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	} else if in.Role == models.RoleAdmin {
		if err := ValidateAdminPassword(in.Password); err != nil {
			verr.Add("password", err.Error())
		}
	}
	if !in.Role.Valid() {
		verr.Add("user_type", fmt.Sprintf("%q is not a valid choice.", in.Role))
	}

	if in.Username != "" {
		var count int64
		if err := db.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", in.Username).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if in.Email != "" {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			verr.Add("email", "A user with that email already exists.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:          in.Username,
		Email:             in.Email,
		Password:          hash,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Role:              in.Role,
		Phone:             in.Phone,
		Department:        in.Department,
		BadgeNumber:       in.BadgeNumber,
		CourtJurisdiction: in.CourtJurisdiction,
		IsActive:          true,
		IsActiveOfficer:   in.Role == models.RoleOfficer,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser loads a user by ID
func GetUser(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// GetUserByUsername loads a user by username
func GetUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// UserFilter narrows ListUsers
type UserFilter struct {
	Role   string
	Active *bool
	Query  string
}

// ListUsers returns accounts ordered by username
func ListUsers(db *gorm.DB, f UserFilter, page Page) ([]models.User, int64, error) {
	query := db.Model(&models.User{})
	if f.Role != "" {
		query = query.Where("role = ?", strings.ToLower(f.Role))
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)", like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	var users []models.User
	if err := query.Order("username").Scopes(page.Scope()).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ListActiveOfficers returns officers eligible for assignment, ordered by name
func ListActiveOfficers(db *gorm.DB) ([]models.User, error) {
	var officers []models.User
	err := db.Where("role = ? AND is_active_officer = ? AND is_active = ?", models.RoleOfficer, true, true).
		Order("first_name, last_name").
		Find(&officers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list officers: %w", err)
	}
	return officers, nil
}

// requireActiveOfficer checks an assignment target
func requireActiveOfficer(db *gorm.DB, id string) (*models.User, error) {
	user, err := GetUser(db, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsProbationOfficer() || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// DeactivateOfficer removes an officer from the assignment pool
func DeactivateOfficer(db *gorm.DB, id string) error {
	result := db.Model(&models.User{}).Where("id = ? AND role = ?", id, models.RoleOfficer).Update("is_active_officer", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate officer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("officer: %w", ErrNotFound)
	}
	return nil
}

// DeleteUser removes an account. Officers who still own clients, cases or
// appointments are protected and must be reassigned first.
func DeleteUser(db *gorm.DB, id string) error {
	user, err := GetUser(db, id)
	if err != nil {
		return err
	}

	if user.Role == models.RoleOfficer {
		var owned int64
		for _, q := range []struct {
			model interface{}
			col   string
		}{
			{&models.Client{}, "assigned_officer_id"},
			{&models.Case{}, "officer_id"},
			{&models.Appointment{}, "officer_id"},
		} {
			var n int64
			if err := db.Model(q.model).Where(q.col+" = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check officer assignments: %w", err)
			}
			owned += n
		}
		if owned > 0 {
			verr := &ValidationError{}
			verr.Add("officer", fmt.Sprintf("Officer still has %d assigned records; reassign them first.", owned))
			return verr
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Case{}).Where("presiding_judge_id = ?", id).Update("presiding_judge_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", id, id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		var profile models.Judge
		if err := tx.Where("user_id = ?", id).Limit(1).Find(&profile).Error; err != nil {
			return err
		}
		if profile.ID != "" {
			for _, m := range []interface{}{&models.CourtCase{}, &models.Hearing{}, &models.CourtOrder{}} {
				if err := tx.Model(m).Where("judge_id = ?", profile.ID).Update("judge_id", nil).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&profile).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}
