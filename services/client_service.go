package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"gorm.io/gorm"
)

// ClientFilter narrows ListClients
type ClientFilter struct {
	Query     string
	Status    string
	RiskLevel string
	OfficerID string
}

// ClientInput is the writable part of a client. Nil fields are left unchanged on update.
type ClientInput struct {
	CaseNumber        *string `json:"case_number"`
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	DateOfBirth       *string `json:"date_of_birth"`
	Gender            *string `json:"gender"`
	AssignedOfficerID *string `json:"assigned_officer_id"`
	Status            *string `json:"status"`
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	RiskLevel         *string `json:"risk_level"`
	Notes             *string `json:"notes"`
}

// ListClients returns the page of clients visible to r, ordered by name
func ListClients(db *gorm.DB, r access.Requester, f ClientFilter, page Page) ([]models.Client, int64, error) {
	query := access.Apply(db.Model(&models.Client{}), access.EntityClient, r)

	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(clients.first_name) LIKE ? OR LOWER(clients.last_name) LIKE ? OR LOWER(clients.case_number) LIKE ?)", like, like, like)
	}
	if f.Status != "" {
		query = query.Where("clients.status = ?", f.Status)
	}
	if f.RiskLevel != "" {
		query = query.Where("clients.risk_level = ?", f.RiskLevel)
	}
	if f.OfficerID != "" {
		query = query.Where("clients.assigned_officer_id = ?", f.OfficerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	var clients []models.Client
	err := query.Preload("AssignedOfficer").
		Order("clients.last_name, clients.first_name").
		Scopes(page.Scope()).
		Find(&clients).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// GetClient loads one visible client with addresses, offenses and officer.
// Clients outside the visible set are reported as not found.
func GetClient(db *gorm.DB, r access.Requester, id string) (*models.Client, error) {
	var client models.Client
	err := access.Apply(db.Model(&models.Client{}), access.EntityClient, r).
		Preload("AssignedOfficer").
		Preload("Addresses", func(tx *gorm.DB) *gorm.DB { return tx.Order("is_primary DESC, created_at") }).
		Preload("Offenses", func(tx *gorm.DB) *gorm.DB { return tx.Order("date_committed DESC") }).
		Where("clients.id = ?", id).
		First(&client).Error
	if err != nil {
		return nil, notFound(err, "client")
	}
	return &client, nil
}

// CreateClient validates and stores a client. Officers default to assigning
// themselves.
func CreateClient(db *gorm.DB, r access.Requester, in ClientInput) (*models.Client, error) {
	if !access.CanCreateClient(r) {
		return nil, ErrForbidden
	}

	if r.Role == models.RoleOfficer && isBlank(in.AssignedOfficerID) {
		in.AssignedOfficerID = &r.UserID
	}
	if isBlank(in.Status) {
		in.Status = ptrTo(models.ClientStatusActive)
	}

	client := &models.Client{CreatedByID: ptrIfNotEmpty(r.UserID)}
	if err := applyClientInput(db, client, in, true); err != nil {
		return nil, err
	}

	if err := db.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// UpdateClient applies the non-nil fields of in
func UpdateClient(db *gorm.DB, r access.Requester, id string, in ClientInput) (*models.Client, error) {
	client, err := GetClient(db, r, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditClient(r, client) {
		return nil, ErrForbidden
	}

	// Officers cannot hand a client to a colleague
	if r.Role == models.RoleOfficer && in.AssignedOfficerID != nil && *in.AssignedOfficerID != client.AssignedOfficerID {
		return nil, ErrForbidden
	}

	if err := applyClientInput(db, client, in, false); err != nil {
		return nil, err
	}

	client.AssignedOfficer = nil
	if err := db.Omit("Addresses", "Offenses", "AssignedOfficer").Save(client).Error; err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return GetClient(db, r, id)
}

// DeleteClient removes a client with its addresses, offenses, appointments and
// cases. Administrators only.
func DeleteClient(db *gorm.DB, r access.Requester, id string) (*models.Client, error) {
	if !access.CanDeleteClient(r) {
		return nil, ErrForbidden
	}
	client, err := GetClient(db, r, id)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var caseIDs []string
		if err := tx.Model(&models.Case{}).Where("client_id = ?", id).Pluck("id", &caseIDs).Error; err != nil {
			return err
		}
		if err := deleteCaseChildren(tx, caseIDs); err != nil {
			return err
		}
		for _, m := range []interface{}{&models.Case{}, &models.Appointment{}, &models.Address{}, &models.Offense{}} {
			if err := tx.Where("client_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Client{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete client: %w", err)
	}
	return client, nil
}

func applyClientInput(db *gorm.DB, c *models.Client, in ClientInput, creating bool) error {
	verr := &ValidationError{}
	loc := time.Local

	if creating || in.CaseNumber != nil {
		c.CaseNumber = requireString(verr, "case_number", in.CaseNumber)
	}
	if creating || in.FirstName != nil {
		c.FirstName = requireString(verr, "first_name", in.FirstName)
	}
	if creating || in.LastName != nil {
		c.LastName = requireString(verr, "last_name", in.LastName)
	}
	if creating || in.DateOfBirth != nil {
		if dob := dateField(verr, "date_of_birth", in.DateOfBirth, loc); dob != nil {
			c.DateOfBirth = *dob
		} else if isBlank(in.DateOfBirth) {
			verr.Add("date_of_birth", "This field is required.")
		}
	}
	if creating || in.Gender != nil {
		g := requireString(verr, "gender", in.Gender)
		if g != "" && !models.IsValidGender(g) {
			verr.Add("gender", fmt.Sprintf("%q is not a valid choice.", g))
		}
		c.Gender = g
	}
	if creating || in.Status != nil {
		s := requireString(verr, "status", in.Status)
		if s != "" && !models.IsValidClientStatus(s) {
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", s))
		}
		c.Status = s
	}
	if creating || in.RiskLevel != nil {
		rl := requireString(verr, "risk_level", in.RiskLevel)
		if rl != "" && !models.IsValidRiskLevel(rl) {
			verr.Add("risk_level", fmt.Sprintf("%q is not a valid choice.", rl))
		}
		c.RiskLevel = rl
	}
	if creating || in.StartDate != nil {
		if sd := dateField(verr, "start_date", in.StartDate, loc); sd != nil {
			c.StartDate = *sd
		} else if isBlank(in.StartDate) {
			verr.Add("start_date", "This field is required.")
		}
	}
	if in.EndDate != nil {
		c.EndDate = dateField(verr, "end_date", in.EndDate, loc)
	}
	if c.EndDate != nil && !c.StartDate.IsZero() && c.EndDate.Before(c.StartDate) {
		verr.Add("end_date", "End date cannot be before the start date.")
	}
	if in.Notes != nil {
		c.Notes = SanitizePlain(*in.Notes)
	}

	if creating || in.AssignedOfficerID != nil {
		officerID := requireString(verr, "assigned_officer_id", in.AssignedOfficerID)
		if officerID != "" {
			officer, err := requireActiveOfficer(db, officerID)
			if err != nil {
				return err
			}
			if officer == nil {
				verr.Add("assigned_officer_id", "Select an active probation officer.")
			}
			c.AssignedOfficerID = officerID
		}
	}

	if c.CaseNumber != "" {
		var count int64
		q := db.Model(&models.Client{}).Where("case_number = ?", c.CaseNumber)
		if c.ID != "" {
			q = q.Where("id <> ?", c.ID)
		}
		if err := q.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check case number: %w", err)
		}
		if count > 0 {
			verr.Add("case_number", "Client with this case number already exists.")
		}
	}

	return verr.OrNil()
}

// AddressInput describes a new address
type AddressInput struct {
	AddressType string `json:"address_type"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	IsPrimary   bool   `json:"is_primary"`
}

// AddAddress attaches an address; a new primary address demotes the others
func AddAddress(db *gorm.DB, r access.Requester, clientID string, in AddressInput) (*models.Address, error) {
	client, err := GetClient(db, r, clientID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditClient(r, client) {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	if !models.IsValidAddressType(in.AddressType) {
		verr.Add("address_type", fmt.Sprintf("%q is not a valid choice.", in.AddressType))
	}
	street := requireString(verr, "street", &in.Street)
	city := requireString(verr, "city", &in.City)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	addr := &models.Address{
		ClientID:    clientID,
		AddressType: in.AddressType,
		Street:      street,
		City:        city,
		State:       strings.TrimSpace(in.State),
		ZipCode:     strings.TrimSpace(in.ZipCode),
		IsPrimary:   in.IsPrimary,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if addr.IsPrimary {
			if err := tx.Model(&models.Address{}).Where("client_id = ?", clientID).Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(addr).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	return addr, nil
}

// RemoveAddress deletes one address of a client
func RemoveAddress(db *gorm.DB, r access.Requester, clientID, addressID string) error {
	client, err := GetClient(db, r, clientID)
	if err != nil {
		return err
	}
	if !access.CanEditClient(r, client) {
		return ErrForbidden
	}
	result := db.Where("id = ? AND client_id = ?", addressID, clientID).Delete(&models.Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("address: %w", ErrNotFound)
	}
	return nil
}

// OffenseInput describes an offense to record
type OffenseInput struct {
	OffenseType   string `json:"offense_type"`
	Description   string `json:"description"`
	DateCommitted string `json:"date_committed"`
	Sentence      string `json:"sentence"`
	Court         string `json:"court"`
}

// AddOffense records an offense. Offenses are historical and never edited.
func AddOffense(db *gorm.DB, r access.Requester, clientID string, in OffenseInput) (*models.Offense, error) {
	client, err := GetClient(db, r, clientID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditClient(r, client) {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	offenseType := requireString(verr, "offense_type", &in.OffenseType)
	committed := dateField(verr, "date_committed", &in.DateCommitted, time.Local)
	if committed == nil && strings.TrimSpace(in.DateCommitted) == "" {
		verr.Add("date_committed", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	offense := &models.Offense{
		ClientID:      clientID,
		OffenseType:   offenseType,
		Description:   SanitizePlain(in.Description),
		DateCommitted: *committed,
		Sentence:      SanitizePlain(in.Sentence),
		Court:         strings.TrimSpace(in.Court),
	}
	if err := db.Create(offense).Error; err != nil {
		return nil, fmt.Errorf("failed to add offense: %w", err)
	}
	return offense, nil
}

// HighRiskClients returns up to limit visible active high-risk clients
func HighRiskClients(db *gorm.DB, r access.Requester, limit int) ([]models.Client, error) {
	var clients []models.Client
	err := access.Apply(db.Model(&models.Client{}), access.EntityClient, r).
		Where("clients.risk_level = ? AND clients.status = ?", models.RiskLevelHigh, models.ClientStatusActive).
		Order("clients.last_name").
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list high risk clients: %w", err)
	}
	return clients, nil
}

// IsNotFound reports ErrNotFound anywhere in the chain
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func ptrTo[T any](v T) *T {
	return &v
}
