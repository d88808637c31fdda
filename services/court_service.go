package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourtInput is the writable part of a court
type CourtInput struct {
	Name      *string `json:"name"`
	CourtType *string `json:"court_type"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	ClerkName *string `json:"clerk_name"`
	IsActive  *bool   `json:"is_active"`
}

// ListCourts returns courts by name; inactive ones only when asked
func ListCourts(db *gorm.DB, includeInactive bool) ([]models.Court, error) {
	query := db.Model(&models.Court{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var courts []models.Court
	if err := query.Order("name").Find(&courts).Error; err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	return courts, nil
}

func GetCourt(db *gorm.DB, id string) (*models.Court, error) {
	var court models.Court
	if err := db.First(&court, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "court")
	}
	return &court, nil
}

// CreateCourt adds an active court
func CreateCourt(db *gorm.DB, r access.Requester, in CourtInput) (*models.Court, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	court := &models.Court{IsActive: true}
	if err := applyCourtInput(court, in, true); err != nil {
		return nil, err
	}
	if err := db.Create(court).Error; err != nil {
		return nil, fmt.Errorf("failed to create court: %w", err)
	}
	return court, nil
}

func UpdateCourt(db *gorm.DB, r access.Requester, id string, in CourtInput) (*models.Court, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	court, err := GetCourt(db, id)
	if err != nil {
		return nil, err
	}
	if err := applyCourtInput(court, in, false); err != nil {
		return nil, err
	}
	if err := db.Save(court).Error; err != nil {
		return nil, fmt.Errorf("failed to update court: %w", err)
	}
	return court, nil
}

// DeactivateCourt is the delete operation; court cases keep pointing at the court
func DeactivateCourt(db *gorm.DB, r access.Requester, id string) error {
	if !access.CanManageCourts(r) {
		return ErrForbidden
	}
	result := db.Model(&models.Court{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate court: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("court: %w", ErrNotFound)
	}
	return nil
}

func applyCourtInput(c *models.Court, in CourtInput, creating bool) error {
	verr := &ValidationError{}
	if creating || in.Name != nil {
		c.Name = requireString(verr, "name", in.Name)
	}
	if creating || in.CourtType != nil {
		kind := strings.ToUpper(requireString(verr, "court_type", in.CourtType))
		if kind != "" && !models.IsValidCourtKind(kind) {
			verr.Add("court_type", fmt.Sprintf("%q is not a valid choice.", kind))
		}
		c.CourtType = kind
	}
	if in.Address != nil {
		c.Address = SanitizePlain(*in.Address)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !strings.Contains(email, "@") {
			verr.Add("email", "Enter a valid email address.")
		}
		c.Email = email
	}
	if in.ClerkName != nil {
		c.ClerkName = strings.TrimSpace(*in.ClerkName)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	return verr.OrNil()
}

// CourtCaseFilter narrows ListCourtCases. JudgeID is a judge profile ID.
type CourtCaseFilter struct {
	Status  string
	CourtID string
	JudgeID string
	Query   string
}

// CourtCaseInput is the writable part of a court case
type CourtCaseInput struct {
	CaseID          *string `json:"case_id"`
	CourtID         *string `json:"court_id"`
	JudgeID         *string `json:"judge_id"`
	CaseNumber      *string `json:"case_number"`
	FilingDate      *string `json:"filing_date"`
	NextHearingDate *string `json:"next_hearing_date"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// ListCourtCases returns visible court cases, latest filing first
func ListCourtCases(db *gorm.DB, r access.Requester, f CourtCaseFilter, page Page) ([]models.CourtCase, int64, error) {
	if !access.CanViewCourtCases(r) {
		return nil, 0, ErrForbidden
	}
	query := access.Apply(db.Model(&models.CourtCase{}), access.EntityCourtCase, r)
	if f.Status != "" {
		query = query.Where("court_cases.status = ?", strings.ToUpper(f.Status))
	}
	if f.CourtID != "" {
		query = query.Where("court_cases.court_id = ?", f.CourtID)
	}
	if f.JudgeID != "" {
		query = query.Where("court_cases.judge_id = ?", f.JudgeID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(court_cases.case_number) LIKE ? OR court_cases.case_id IN (SELECT cases.id FROM cases JOIN clients ON clients.id = cases.client_id WHERE LOWER(clients.first_name) LIKE ? OR LOWER(clients.last_name) LIKE ?))", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count court cases: %w", err)
	}
	var courtCases []models.CourtCase
	err := query.Preload("Case.Client").Preload("Court").Preload("Judge.User").
		Order("court_cases.filing_date DESC").
		Scopes(page.Scope()).
		Find(&courtCases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list court cases: %w", err)
	}
	return courtCases, total, nil
}

// GetCourtCase loads a visible court case with hearings and orders
func GetCourtCase(db *gorm.DB, r access.Requester, id string) (*models.CourtCase, error) {
	var cc models.CourtCase
	err := access.Apply(db.Model(&models.CourtCase{}), access.EntityCourtCase, r).
		Preload("Case.Client").Preload("Court").Preload("Judge.User").
		Preload("Hearings", func(tx *gorm.DB) *gorm.DB { return tx.Order("hearing_date DESC") }).
		Preload("Orders", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_date DESC") }).
		Where("court_cases.id = ?", id).
		First(&cc).Error
	if err != nil {
		return nil, notFound(err, "court case")
	}
	return &cc, nil
}

// CreateCourtCase opens the court record of a supervision case. One per case.
func CreateCourtCase(db *gorm.DB, r access.Requester, in CourtCaseInput) (*models.CourtCase, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	verr := &ValidationError{}

	caseID := requireString(verr, "case_id", in.CaseID)
	if caseID != "" {
		var n int64
		if err := db.Model(&models.Case{}).Where("id = ?", caseID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			verr.Add("case_id", "Select a valid case.")
		}
		if err := db.Model(&models.CourtCase{}).Where("case_id = ?", caseID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			verr.Add("case_id", "This case already has a court case.")
		}
	}

	courtID := requireString(verr, "court_id", in.CourtID)
	if courtID != "" {
		if court, err := GetCourt(db, courtID); err != nil || !court.IsActive {
			if err != nil && !IsNotFound(err) {
				return nil, err
			}
			verr.Add("court_id", "Select an active court.")
		}
	}

	judgeID, err := optionalJudge(db, verr, "judge_id", in.JudgeID)
	if err != nil {
		return nil, err
	}

	number := requireString(verr, "case_number", in.CaseNumber)
	if number != "" {
		var n int64
		if err := db.Model(&models.CourtCase{}).Where("case_number = ?", number).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			verr.Add("case_number", "Court case with this case number already exists.")
		}
	}

	filing := dateField(verr, "filing_date", in.FilingDate, time.Local)
	if filing == nil && isBlank(in.FilingDate) {
		verr.Add("filing_date", "This field is required.")
	}
	next := dateTimeField(verr, "next_hearing_date", in.NextHearingDate, time.Local)

	status := models.CourtCaseStatusPending
	if !isBlank(in.Status) {
		status = strings.ToUpper(strings.TrimSpace(*in.Status))
		if !models.IsValidCourtCaseStatus(status) {
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", status))
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	cc := &models.CourtCase{
		CaseID:          caseID,
		CourtID:         courtID,
		JudgeID:         judgeID,
		CaseNumber:      number,
		FilingDate:      *filing,
		NextHearingDate: next,
		Status:          status,
	}
	if in.Notes != nil {
		cc.Notes = SanitizePlain(*in.Notes)
	}
	if err := db.Create(cc).Error; err != nil {
		return nil, fmt.Errorf("failed to create court case: %w", err)
	}
	return cc, nil
}

// UpdateCourtCase edits a court case. The supervision case it belongs to is
// fixed; a blank judge or next hearing date clears it.
func UpdateCourtCase(db *gorm.DB, r access.Requester, id string, in CourtCaseInput) (*models.CourtCase, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	cc, err := GetCourtCase(db, r, id)
	if err != nil {
		return nil, err
	}
	verr := &ValidationError{}

	if in.CaseID != nil && strings.TrimSpace(*in.CaseID) != cc.CaseID {
		verr.Add("case_id", "The case of a court case cannot be changed.")
	}
	if in.CourtID != nil {
		courtID := requireString(verr, "court_id", in.CourtID)
		if courtID != "" && courtID != cc.CourtID {
			court, err := GetCourt(db, courtID)
			if err != nil && !IsNotFound(err) {
				return nil, err
			}
			if err != nil || !court.IsActive {
				verr.Add("court_id", "Select an active court.")
			} else {
				cc.CourtID = court.ID
				cc.Court = court
			}
		}
	}
	if in.JudgeID != nil {
		judgeID, err := optionalJudge(db, verr, "judge_id", in.JudgeID)
		if err != nil {
			return nil, err
		}
		cc.JudgeID = judgeID
		cc.Judge = nil
	}
	if in.CaseNumber != nil {
		number := requireString(verr, "case_number", in.CaseNumber)
		if number != "" && number != cc.CaseNumber {
			var n int64
			if err := db.Model(&models.CourtCase{}).Where("case_number = ? AND id <> ?", number, cc.ID).Count(&n).Error; err != nil {
				return nil, err
			}
			if n > 0 {
				verr.Add("case_number", "Court case with this case number already exists.")
			}
			cc.CaseNumber = number
		}
	}
	if in.FilingDate != nil {
		if filing := dateField(verr, "filing_date", in.FilingDate, time.Local); filing != nil {
			cc.FilingDate = *filing
		} else if isBlank(in.FilingDate) {
			verr.Add("filing_date", "This field is required.")
		}
	}
	if in.NextHearingDate != nil {
		cc.NextHearingDate = dateTimeField(verr, "next_hearing_date", in.NextHearingDate, time.Local)
	}
	if in.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*in.Status))
		if !models.IsValidCourtCaseStatus(status) {
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", status))
		}
		cc.Status = status
	}
	if in.Notes != nil {
		cc.Notes = SanitizePlain(*in.Notes)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := db.Omit(clause.Associations).Save(cc).Error; err != nil {
		return nil, fmt.Errorf("failed to update court case: %w", err)
	}
	return cc, nil
}

// optionalJudge resolves an optional judge profile reference
func optionalJudge(db *gorm.DB, verr *ValidationError, field string, id *string) (*string, error) {
	if isBlank(id) {
		return nil, nil
	}
	var judge models.Judge
	err := db.Where("id = ?", strings.TrimSpace(*id)).Limit(1).Find(&judge).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load judge: %w", err)
	}
	if judge.ID == "" || !judge.IsActive {
		verr.Add(field, "Select an active judge.")
		return nil, nil
	}
	return &judge.ID, nil
}

// HearingFilter narrows ListHearings. JudgeID is a judge profile ID.
type HearingFilter struct {
	CourtID   string
	JudgeID   string
	Completed *bool
	From      *time.Time
	To        *time.Time
}

// HearingInput schedules a hearing
type HearingInput struct {
	CourtCaseID string `json:"court_case_id"`
	HearingType string `json:"hearing_type"`
	HearingDate string `json:"hearing_date"`
	JudgeID     string `json:"judge_id"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
}

// HearingUpdateInput reschedules a hearing. Nil fields are left alone.
type HearingUpdateInput struct {
	HearingType *string `json:"hearing_type"`
	HearingDate *string `json:"hearing_date"`
	JudgeID     *string `json:"judge_id"`
	Location    *string `json:"location"`
	Notes       *string `json:"notes"`
}

// HearingStatusInput records what happened at a hearing
type HearingStatusInput struct {
	IsCompleted *bool   `json:"is_completed"`
	Outcome     *string `json:"outcome"`
	Notes       *string `json:"notes"`
}

// ListHearings returns visible hearings by date
func ListHearings(db *gorm.DB, r access.Requester, f HearingFilter, page Page) ([]models.Hearing, int64, error) {
	query := access.Apply(db.Model(&models.Hearing{}), access.EntityHearing, r)
	if f.CourtID != "" {
		query = query.Where("hearings.court_case_id IN (SELECT id FROM court_cases WHERE court_id = ?)", f.CourtID)
	}
	if f.JudgeID != "" {
		query = query.Where("hearings.judge_id = ?", f.JudgeID)
	}
	if f.Completed != nil {
		query = query.Where("hearings.is_completed = ?", *f.Completed)
	}
	if f.From != nil {
		query = query.Where("hearings.hearing_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		query = query.Where("hearings.hearing_date < ?", f.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count hearings: %w", err)
	}
	var hearings []models.Hearing
	err := query.Preload("CourtCase.Case.Client").Preload("CourtCase.Court").Preload("Judge.User").
		Order("hearings.hearing_date").
		Scopes(page.Scope()).
		Find(&hearings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list hearings: %w", err)
	}
	return hearings, total, nil
}

// CreateHearing schedules a hearing and pulls the court case's next hearing
// date forward when the new one comes first
func CreateHearing(db *gorm.DB, r access.Requester, in HearingInput, now time.Time) (*models.Hearing, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	verr := &ValidationError{}

	cc, err := GetCourtCase(db, r, in.CourtCaseID)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		verr.Add("court_case_id", "Select a valid court case.")
	}
	hearingType := strings.ToUpper(strings.TrimSpace(in.HearingType))
	if !models.IsValidHearingType(hearingType) {
		verr.Add("hearing_type", fmt.Sprintf("%q is not a valid choice.", in.HearingType))
	}
	when := dateTimeField(verr, "hearing_date", &in.HearingDate, time.Local)
	if when == nil && strings.TrimSpace(in.HearingDate) == "" {
		verr.Add("hearing_date", "This field is required.")
	}
	judgeID, err := optionalJudge(db, verr, "judge_id", &in.JudgeID)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if judgeID == nil {
		judgeID = cc.JudgeID
	}

	h := &models.Hearing{
		CourtCaseID: cc.ID,
		HearingType: hearingType,
		HearingDate: *when,
		JudgeID:     judgeID,
		Location:    strings.TrimSpace(in.Location),
		Notes:       SanitizePlain(in.Notes),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(h).Error; err != nil {
			return err
		}
		if h.HearingDate.After(now) && (cc.NextHearingDate == nil || h.HearingDate.Before(*cc.NextHearingDate) || !cc.NextHearingDate.After(now)) {
			return tx.Model(&models.CourtCase{}).Where("id = ?", cc.ID).Update("next_hearing_date", h.HearingDate.UTC()).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hearing: %w", err)
	}
	return h, nil
}

// UpdateHearing edits or reschedules a hearing. The court case's next hearing
// date then follows the earliest open hearing still ahead of now.
func UpdateHearing(db *gorm.DB, r access.Requester, id string, in HearingUpdateInput, now time.Time) (*models.Hearing, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	var h models.Hearing
	err := access.Apply(db.Model(&models.Hearing{}), access.EntityHearing, r).
		Where("hearings.id = ?", id).
		First(&h).Error
	if err != nil {
		return nil, notFound(err, "hearing")
	}
	verr := &ValidationError{}

	if in.HearingType != nil {
		hearingType := strings.ToUpper(strings.TrimSpace(*in.HearingType))
		if !models.IsValidHearingType(hearingType) {
			verr.Add("hearing_type", fmt.Sprintf("%q is not a valid choice.", *in.HearingType))
		}
		h.HearingType = hearingType
	}
	if in.HearingDate != nil {
		if when := dateTimeField(verr, "hearing_date", in.HearingDate, time.Local); when != nil {
			h.HearingDate = *when
		} else if isBlank(in.HearingDate) {
			verr.Add("hearing_date", "This field is required.")
		}
	}
	if in.JudgeID != nil {
		judgeID, err := optionalJudge(db, verr, "judge_id", in.JudgeID)
		if err != nil {
			return nil, err
		}
		h.JudgeID = judgeID
	}
	if in.Location != nil {
		h.Location = strings.TrimSpace(*in.Location)
	}
	if in.Notes != nil {
		h.Notes = SanitizePlain(*in.Notes)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&h).Error; err != nil {
			return err
		}
		var next models.Hearing
		err := tx.Where("court_case_id = ? AND is_completed = ? AND hearing_date > ?", h.CourtCaseID, false, now.UTC()).
			Order("hearing_date").
			Limit(1).
			Find(&next).Error
		if err != nil || next.ID == "" {
			return err
		}
		return tx.Model(&models.CourtCase{}).Where("id = ?", h.CourtCaseID).Update("next_hearing_date", next.HearingDate.UTC()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update hearing: %w", err)
	}
	return &h, nil
}

// UpdateHearingStatus records completion and outcome. Judges may record
// outcomes on hearings they can see.
func UpdateHearingStatus(db *gorm.DB, r access.Requester, id string, in HearingStatusInput) (*models.Hearing, error) {
	if !access.CanRecordHearingOutcome(r) {
		return nil, ErrForbidden
	}
	var h models.Hearing
	err := access.Apply(db.Model(&models.Hearing{}), access.EntityHearing, r).
		Where("hearings.id = ?", id).
		First(&h).Error
	if err != nil {
		return nil, notFound(err, "hearing")
	}

	updates := map[string]interface{}{}
	if in.IsCompleted != nil {
		updates["is_completed"] = *in.IsCompleted
		h.IsCompleted = *in.IsCompleted
	}
	if in.Outcome != nil {
		h.Outcome = SanitizePlain(*in.Outcome)
		updates["outcome"] = h.Outcome
	}
	if in.Notes != nil {
		h.Notes = SanitizePlain(*in.Notes)
		updates["notes"] = h.Notes
	}
	if len(updates) == 0 {
		verr := &ValidationError{}
		verr.Add("is_completed", "Provide a status, outcome or notes.")
		return nil, verr
	}
	if err := db.Model(&models.Hearing{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update hearing: %w", err)
	}
	return &h, nil
}

// CourtOrderFilter narrows ListCourtOrders. JudgeID is a judge profile ID.
type CourtOrderFilter struct {
	OrderType string
	CourtID   string
	JudgeID   string
	Active    *bool
}

// CourtOrderInput describes an order to file
type CourtOrderInput struct {
	CourtCaseID   string `json:"court_case_id" form:"court_case_id"`
	OrderType     string `json:"order_type" form:"order_type"`
	OrderDate     string `json:"order_date" form:"order_date"`
	EffectiveDate string `json:"effective_date" form:"effective_date"`
	JudgeID       string `json:"judge_id" form:"judge_id"`
	OrderText     string `json:"order_text" form:"order_text"`
}

// ListCourtOrders returns visible orders, latest first
func ListCourtOrders(db *gorm.DB, r access.Requester, f CourtOrderFilter, page Page) ([]models.CourtOrder, int64, error) {
	query := access.Apply(db.Model(&models.CourtOrder{}), access.EntityCourtOrder, r)
	if f.OrderType != "" {
		query = query.Where("court_orders.order_type = ?", strings.ToUpper(f.OrderType))
	}
	if f.CourtID != "" {
		query = query.Where("court_orders.court_case_id IN (SELECT id FROM court_cases WHERE court_id = ?)", f.CourtID)
	}
	if f.JudgeID != "" {
		query = query.Where("court_orders.judge_id = ?", f.JudgeID)
	}
	if f.Active != nil {
		query = query.Where("court_orders.is_active = ?", *f.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count court orders: %w", err)
	}
	var orders []models.CourtOrder
	err := query.Preload("CourtCase").Preload("Judge.User").
		Order("court_orders.order_date DESC").
		Scopes(page.Scope()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list court orders: %w", err)
	}
	return orders, total, nil
}

// CreateCourtOrder files an order, storing the optional document first so a
// failed upload leaves no record behind
func CreateCourtOrder(ctx context.Context, db *gorm.DB, store FileStore, r access.Requester, in CourtOrderInput, file *multipart.FileHeader) (*models.CourtOrder, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	verr := &ValidationError{}

	cc, err := GetCourtCase(db, r, in.CourtCaseID)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		verr.Add("court_case_id", "Select a valid court case.")
	}
	orderType := strings.ToUpper(strings.TrimSpace(in.OrderType))
	if !models.IsValidOrderType(orderType) {
		verr.Add("order_type", fmt.Sprintf("%q is not a valid choice.", in.OrderType))
	}
	orderDate := dateField(verr, "order_date", &in.OrderDate, time.Local)
	if orderDate == nil && strings.TrimSpace(in.OrderDate) == "" {
		verr.Add("order_date", "This field is required.")
	}
	effective := dateField(verr, "effective_date", &in.EffectiveDate, time.Local)
	orderText := requireString(verr, "order_text", &in.OrderText)
	judgeID, err := optionalJudge(db, verr, "judge_id", &in.JudgeID)
	if err != nil {
		return nil, err
	}

	var contentType string
	if file != nil {
		if contentType, err = ValidateOrderUpload(file); err != nil {
			verr.Add("file", err.Error())
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if judgeID == nil {
		judgeID = cc.JudgeID
	}

	order := &models.CourtOrder{
		CourtCaseID:   cc.ID,
		OrderType:     orderType,
		OrderDate:     *orderDate,
		EffectiveDate: effective,
		JudgeID:       judgeID,
		OrderText:     SanitizePlain(orderText),
		IsActive:      true,
	}

	if file != nil {
		if store == nil {
			return nil, fmt.Errorf("file storage is not configured")
		}
		src, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer src.Close()

		stored, err := store.Put(ctx, CourtOrderKey(cc.ID, file.Filename), src, contentType, file.Size)
		if err != nil {
			return nil, err
		}
		order.FileKey = stored.Key
		order.FileName = file.Filename
		order.FileMimeType = stored.MimeType
		order.FileSize = stored.Size
	}

	if err := db.Create(order).Error; err != nil {
		if order.FileKey != "" {
			if derr := store.Delete(ctx, order.FileKey); derr != nil {
				zap.L().Warn("orphaned court order file", zap.String("key", order.FileKey), zap.Error(derr))
			}
		}
		return nil, fmt.Errorf("failed to create court order: %w", err)
	}
	return order, nil
}

// GetCourtOrder loads a visible order
func GetCourtOrder(db *gorm.DB, r access.Requester, id string) (*models.CourtOrder, error) {
	var order models.CourtOrder
	err := access.Apply(db.Model(&models.CourtOrder{}), access.EntityCourtOrder, r).
		Where("court_orders.id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, notFound(err, "court order")
	}
	return &order, nil
}

// CourtOrderUpdateInput edits an order. The document is fixed once filed.
type CourtOrderUpdateInput struct {
	OrderType     *string `json:"order_type"`
	OrderDate     *string `json:"order_date"`
	EffectiveDate *string `json:"effective_date"`
	JudgeID       *string `json:"judge_id"`
	OrderText     *string `json:"order_text"`
	IsActive      *bool   `json:"is_active"`
}

// UpdateCourtOrder edits a visible order. A blank effective date clears it.
func UpdateCourtOrder(db *gorm.DB, r access.Requester, id string, in CourtOrderUpdateInput) (*models.CourtOrder, error) {
	if !access.CanManageCourts(r) {
		return nil, ErrForbidden
	}
	order, err := GetCourtOrder(db, r, id)
	if err != nil {
		return nil, err
	}
	verr := &ValidationError{}

	if in.OrderType != nil {
		orderType := strings.ToUpper(strings.TrimSpace(*in.OrderType))
		if !models.IsValidOrderType(orderType) {
			verr.Add("order_type", fmt.Sprintf("%q is not a valid choice.", *in.OrderType))
		}
		order.OrderType = orderType
	}
	if in.OrderDate != nil {
		if d := dateField(verr, "order_date", in.OrderDate, time.Local); d != nil {
			order.OrderDate = *d
		} else if isBlank(in.OrderDate) {
			verr.Add("order_date", "This field is required.")
		}
	}
	if in.EffectiveDate != nil {
		order.EffectiveDate = dateField(verr, "effective_date", in.EffectiveDate, time.Local)
	}
	if in.JudgeID != nil {
		judgeID, err := optionalJudge(db, verr, "judge_id", in.JudgeID)
		if err != nil {
			return nil, err
		}
		order.JudgeID = judgeID
	}
	if in.OrderText != nil {
		order.OrderText = SanitizePlain(requireString(verr, "order_text", in.OrderText))
	}
	if in.IsActive != nil {
		order.IsActive = *in.IsActive
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := db.Omit(clause.Associations).Save(order).Error; err != nil {
		return nil, fmt.Errorf("failed to update court order: %w", err)
	}
	return order, nil
}

// CourtOrderFileTTL bounds presigned download links
const CourtOrderFileTTL = 15 * time.Minute

// CourtOrderFileURL presigns the document of a visible order. The URL is empty
// when the store only serves files through OpenCourtOrderFile.
func CourtOrderFileURL(ctx context.Context, db *gorm.DB, store FileStore, r access.Requester, id string) (string, *models.CourtOrder, error) {
	order, err := GetCourtOrder(db, r, id)
	if err != nil {
		return "", nil, err
	}
	if !order.HasFile() || store == nil {
		return "", nil, fmt.Errorf("court order file: %w", ErrNotFound)
	}
	url, err := store.SignedURL(ctx, order.FileKey, CourtOrderFileTTL)
	if err != nil {
		return "", nil, err
	}
	return url, order, nil
}

// OpenCourtOrderFile streams the document of a visible order. The caller closes the reader.
func OpenCourtOrderFile(ctx context.Context, db *gorm.DB, store FileStore, r access.Requester, id string) (io.ReadCloser, *models.CourtOrder, error) {
	order, err := GetCourtOrder(db, r, id)
	if err != nil {
		return nil, nil, err
	}
	if !order.HasFile() || store == nil {
		return nil, nil, fmt.Errorf("court order file: %w", ErrNotFound)
	}
	rc, contentType, err := store.Get(ctx, order.FileKey)
	if err != nil {
		return nil, nil, err
	}
	if order.FileMimeType == "" {
		order.FileMimeType = contentType
	}
	return rc, order, nil
}
