package services

import (
	"fmt"
	"strings"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"gorm.io/gorm"
)

// CaseFilter narrows ListCases
type CaseFilter struct {
	Status   string
	ClientID string
	Query    string
}

// CaseInput is the writable part of a case. Nil fields are left unchanged on update.
type CaseInput struct {
	ClientID          *string `json:"client_id"`
	OfficerID         *string `json:"officer_id"`
	PresidingJudgeID  *string `json:"presiding_judge_id"`
	Status            *string `json:"status"`
	CourtType         *string `json:"court_type"`
	CaseNumber        *string `json:"case_number"`
	OpeningDate       *string `json:"opening_date"`
	ClosingDate       *string `json:"closing_date"`
	SentencingDate    *string `json:"sentencing_date"`
	NextCourtDate     *string `json:"next_court_date"`
	Objectives        *string `json:"objectives"`
	SpecialConditions *string `json:"special_conditions"`
	CourtNotes        *string `json:"court_notes"`
	IsHighProfile     *bool   `json:"is_high_profile"`
}

// judgeWritable reports an update limited to the fields a presiding judge owns
func (in CaseInput) judgeWritable() bool {
	return in.ClientID == nil && in.OfficerID == nil && in.PresidingJudgeID == nil &&
		in.Status == nil && in.CourtType == nil && in.CaseNumber == nil &&
		in.OpeningDate == nil && in.ClosingDate == nil &&
		in.Objectives == nil && in.SpecialConditions == nil
}

// ListCases returns the page of visible cases, newest opening date first
func ListCases(db *gorm.DB, r access.Requester, f CaseFilter, page Page) ([]models.Case, int64, error) {
	query := access.Apply(db.Model(&models.Case{}), access.EntityCase, r)
	if f.Status != "" {
		query = query.Where("cases.status = ?", f.Status)
	}
	if f.ClientID != "" {
		query = query.Where("cases.client_id = ?", f.ClientID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(cases.case_number) LIKE ? OR cases.client_id IN (SELECT id FROM clients WHERE LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?))", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	var cases []models.Case
	err := query.Preload("Client").Preload("Officer").Preload("PresidingJudge").
		Order("cases.opening_date DESC, cases.created_at DESC").
		Scopes(page.Scope()).
		Find(&cases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, total, nil
}

// GetCase loads one visible case with its people and plans
func GetCase(db *gorm.DB, r access.Requester, id string) (*models.Case, error) {
	var c models.Case
	err := access.Apply(db.Model(&models.Case{}), access.EntityCase, r).
		Preload("Client").Preload("Officer").Preload("PresidingJudge").
		Preload("Plans", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_date DESC") }).
		Preload("Plans.Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("due_date") }).
		Where("cases.id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "case")
	}
	return &c, nil
}

// CreateCase opens a case for a client the requester can see
func CreateCase(db *gorm.DB, r access.Requester, in CaseInput) (*models.Case, error) {
	if !access.CanCreateClient(r) {
		return nil, ErrForbidden
	}
	if r.Role == models.RoleOfficer {
		if isBlank(in.OfficerID) {
			in.OfficerID = &r.UserID
		} else if *in.OfficerID != r.UserID {
			return nil, ErrForbidden
		}
	}
	if isBlank(in.Status) {
		in.Status = ptrTo(models.CaseStatusOpen)
	}
	if isBlank(in.CourtType) {
		in.CourtType = ptrTo(models.CourtTypeCircuit)
	}
	if isBlank(in.OpeningDate) {
		in.OpeningDate = ptrTo(time.Now().Format("2006-01-02"))
	}

	c := &models.Case{}
	if err := applyCaseInput(db, r, c, in, true); err != nil {
		return nil, err
	}
	if err := db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	return c, nil
}

// UpdateCase applies the non-nil fields of in. A presiding judge may only
// change court notes, the sentencing and next court dates, and the
// high-profile flag.
func UpdateCase(db *gorm.DB, r access.Requester, id string, in CaseInput) (*models.Case, error) {
	c, err := GetCase(db, r, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditCase(r, c) {
		if !(access.CanReviewPlans(r, c) && in.judgeWritable()) {
			return nil, ErrForbidden
		}
	}
	if r.Role == models.RoleOfficer && in.OfficerID != nil && *in.OfficerID != c.OfficerID {
		return nil, ErrForbidden
	}

	if err := applyCaseInput(db, r, c, in, false); err != nil {
		return nil, err
	}

	c.Client, c.Officer, c.PresidingJudge, c.Plans = nil, nil, nil, nil
	if err := db.Omit("Client", "Officer", "PresidingJudge", "Plans").Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}
	return GetCase(db, r, id)
}

// DeleteCase removes a case with its plans and court records. Administrators only.
func DeleteCase(db *gorm.DB, r access.Requester, id string) error {
	if !access.CanDeleteCase(r) {
		return ErrForbidden
	}
	if _, err := GetCase(db, r, id); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := deleteCaseChildren(tx, []string{id}); err != nil {
			return err
		}
		return tx.Delete(&models.Case{}, "id = ?", id).Error
	})
}

func deleteCaseChildren(tx *gorm.DB, caseIDs []string) error {
	if len(caseIDs) == 0 {
		return nil
	}
	var planIDs, courtCaseIDs []string
	if err := tx.Model(&models.RehabilitationPlan{}).Where("case_id IN ?", caseIDs).Pluck("id", &planIDs).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.CourtCase{}).Where("case_id IN ?", caseIDs).Pluck("id", &courtCaseIDs).Error; err != nil {
		return err
	}
	if len(planIDs) > 0 {
		if err := tx.Where("plan_id IN ?", planIDs).Delete(&models.PlanItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", planIDs).Delete(&models.RehabilitationPlan{}).Error; err != nil {
			return err
		}
	}
	if len(courtCaseIDs) > 0 {
		if err := tx.Where("court_case_id IN ?", courtCaseIDs).Delete(&models.Hearing{}).Error; err != nil {
			return err
		}
		if err := tx.Where("court_case_id IN ?", courtCaseIDs).Delete(&models.CourtOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", courtCaseIDs).Delete(&models.CourtCase{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func applyCaseInput(db *gorm.DB, r access.Requester, c *models.Case, in CaseInput, creating bool) error {
	verr := &ValidationError{}
	loc := time.Local

	if creating || in.ClientID != nil {
		clientID := requireString(verr, "client_id", in.ClientID)
		if clientID != "" {
			if _, err := GetClient(db, r, clientID); err != nil {
				if !IsNotFound(err) {
					return err
				}
				verr.Add("client_id", "Select a valid client.")
			}
			c.ClientID = clientID
		}
	}
	if creating || in.OfficerID != nil {
		officerID := requireString(verr, "officer_id", in.OfficerID)
		if officerID != "" {
			officer, err := requireActiveOfficer(db, officerID)
			if err != nil {
				return err
			}
			if officer == nil {
				verr.Add("officer_id", "Select an active probation officer.")
			}
			c.OfficerID = officerID
		}
	}
	if in.PresidingJudgeID != nil {
		if isBlank(in.PresidingJudgeID) {
			c.PresidingJudgeID = nil
		} else {
			judge, err := GetUser(db, strings.TrimSpace(*in.PresidingJudgeID))
			if err != nil && !IsNotFound(err) {
				return err
			}
			if judge == nil || !judge.IsJudge() {
				verr.Add("presiding_judge_id", "Select a judge.")
			} else {
				c.PresidingJudgeID = &judge.ID
			}
		}
	}
	if creating || in.Status != nil {
		s := requireString(verr, "status", in.Status)
		if s != "" && !models.IsValidCaseStatus(s) {
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", s))
		}
		c.Status = s
	}
	if creating || in.CourtType != nil {
		ct := requireString(verr, "court_type", in.CourtType)
		if ct != "" && !models.IsValidCourtType(ct) {
			verr.Add("court_type", fmt.Sprintf("%q is not a valid choice.", ct))
		}
		c.CourtType = ct
	}
	if in.CaseNumber != nil {
		if isBlank(in.CaseNumber) {
			c.CaseNumber = nil
		} else {
			num := strings.TrimSpace(*in.CaseNumber)
			var count int64
			q := db.Model(&models.Case{}).Where("case_number = ?", num)
			if c.ID != "" {
				q = q.Where("id <> ?", c.ID)
			}
			if err := q.Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check case number: %w", err)
			}
			if count > 0 {
				verr.Add("case_number", "Case with this case number already exists.")
			}
			c.CaseNumber = &num
		}
	}
	if creating || in.OpeningDate != nil {
		if d := dateField(verr, "opening_date", in.OpeningDate, loc); d != nil {
			c.OpeningDate = *d
		} else if isBlank(in.OpeningDate) {
			verr.Add("opening_date", "This field is required.")
		}
	}
	if in.ClosingDate != nil {
		c.ClosingDate = dateField(verr, "closing_date", in.ClosingDate, loc)
	}
	if in.SentencingDate != nil {
		c.SentencingDate = dateField(verr, "sentencing_date", in.SentencingDate, loc)
	}
	if in.NextCourtDate != nil {
		c.NextCourtDate = dateField(verr, "next_court_date", in.NextCourtDate, loc)
	}
	if c.ClosingDate != nil && c.ClosingDate.Before(c.OpeningDate) {
		verr.Add("closing_date", "Closing date cannot be before the opening date.")
	}
	if in.Objectives != nil {
		c.Objectives = SanitizePlain(*in.Objectives)
	}
	if in.SpecialConditions != nil {
		c.SpecialConditions = SanitizePlain(*in.SpecialConditions)
	}
	if in.CourtNotes != nil {
		c.CourtNotes = SanitizePlain(*in.CourtNotes)
	}
	if in.IsHighProfile != nil {
		c.IsHighProfile = *in.IsHighProfile
	}

	return verr.OrNil()
}

// ListPlans returns the plans of a visible case with their items
func ListPlans(db *gorm.DB, r access.Requester, caseID string) ([]models.RehabilitationPlan, error) {
	if _, err := GetCase(db, r, caseID); err != nil {
		return nil, err
	}
	var plans []models.RehabilitationPlan
	err := db.Where("case_id = ?", caseID).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("due_date") }).
		Order("start_date DESC, created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// PlanInput describes a new rehabilitation plan
type PlanInput struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	StartDate              string `json:"start_date"`
	EndDate                string `json:"end_date"`
	JudicialReviewRequired bool   `json:"judicial_review_required"`
}

// CreatePlan adds a plan to a case the requester may edit
func CreatePlan(db *gorm.DB, r access.Requester, caseID string, in PlanInput) (*models.RehabilitationPlan, error) {
	c, err := GetCase(db, r, caseID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditCase(r, c) {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	title := requireString(verr, "title", &in.Title)
	start := dateField(verr, "start_date", &in.StartDate, time.Local)
	if start == nil && strings.TrimSpace(in.StartDate) == "" {
		verr.Add("start_date", "This field is required.")
	}
	end := dateField(verr, "end_date", &in.EndDate, time.Local)
	if start != nil && end != nil && end.Before(*start) {
		verr.Add("end_date", "End date cannot be before the start date.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	plan := &models.RehabilitationPlan{
		CaseID:                 caseID,
		Title:                  title,
		Description:            SanitizePlain(in.Description),
		StartDate:              *start,
		EndDate:                end,
		JudicialReviewRequired: in.JudicialReviewRequired,
	}
	if err := db.Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return plan, nil
}

// PlanItemInput describes a new plan item
type PlanItemInput struct {
	Description            string `json:"description"`
	DueDate                string `json:"due_date"`
	Notes                  string `json:"notes"`
	RequiresJudicialReview bool   `json:"requires_judicial_review"`
}

// getPlanWithCase loads a visible plan and its case
func getPlanWithCase(db *gorm.DB, r access.Requester, planID string) (*models.RehabilitationPlan, *models.Case, error) {
	var plan models.RehabilitationPlan
	err := access.Apply(db.Model(&models.RehabilitationPlan{}), access.EntityPlan, r).
		Preload("Items").
		Where("rehabilitation_plans.id = ?", planID).
		First(&plan).Error
	if err != nil {
		return nil, nil, notFound(err, "rehabilitation plan")
	}
	var c models.Case
	if err := db.First(&c, "id = ?", plan.CaseID).Error; err != nil {
		return nil, nil, notFound(err, "case")
	}
	return &plan, &c, nil
}

// AddPlanItem adds a task to a plan
func AddPlanItem(db *gorm.DB, r access.Requester, planID string, in PlanItemInput) (*models.PlanItem, error) {
	_, c, err := getPlanWithCase(db, r, planID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditCase(r, c) {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	desc := requireString(verr, "description", &in.Description)
	due := dateField(verr, "due_date", &in.DueDate, time.Local)
	if due == nil && strings.TrimSpace(in.DueDate) == "" {
		verr.Add("due_date", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	item := &models.PlanItem{
		PlanID:                 planID,
		Description:            SanitizePlain(desc),
		DueDate:                *due,
		Notes:                  SanitizePlain(in.Notes),
		RequiresJudicialReview: in.RequiresJudicialReview,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		// a new open item reopens a completed plan
		return tx.Model(&models.RehabilitationPlan{}).Where("id = ?", planID).Update("is_completed", false).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add plan item: %w", err)
	}
	return item, nil
}

// CompletePlanItem marks an item done and stamps its completion date. Items
// that require judicial review can also be completed by the presiding judge.
// The plan is completed once every item is.
func CompletePlanItem(db *gorm.DB, r access.Requester, itemID string, now time.Time) (*models.PlanItem, error) {
	var item models.PlanItem
	err := access.Apply(db.Model(&models.PlanItem{}), access.EntityPlanItem, r).
		Where("plan_items.id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "plan item")
	}
	_, c, err := getPlanWithCase(db, r, item.PlanID)
	if err != nil {
		return nil, err
	}

	allowed := access.CanEditCase(r, c) || (item.RequiresJudicialReview && access.CanReviewPlans(r, c))
	if !allowed {
		return nil, ErrForbidden
	}

	item.MarkCompleted(now)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		var open int64
		if err := tx.Model(&models.PlanItem{}).Where("plan_id = ? AND is_completed = ?", item.PlanID, false).Count(&open).Error; err != nil {
			return err
		}
		return tx.Model(&models.RehabilitationPlan{}).Where("id = ?", item.PlanID).Update("is_completed", open == 0).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete plan item: %w", err)
	}
	return &item, nil
}

// PendingPlanItems returns visible open items due within the next days, soonest first
func PendingPlanItems(db *gorm.DB, r access.Requester, now time.Time, days int) ([]models.PlanItem, error) {
	_, end := models.UTCDayRange(now.AddDate(0, 0, days))
	var items []models.PlanItem
	err := access.Apply(db.Model(&models.PlanItem{}), access.EntityPlanItem, r).
		Where("plan_items.is_completed = ? AND plan_items.due_date < ?", false, end).
		Order("plan_items.due_date").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending plan items: %w", err)
	}
	return items, nil
}

// JudicialReviewItems returns visible open items flagged for judicial review
func JudicialReviewItems(db *gorm.DB, r access.Requester) ([]models.PlanItem, error) {
	var items []models.PlanItem
	err := access.Apply(db.Model(&models.PlanItem{}), access.EntityPlanItem, r).
		Where("plan_items.is_completed = ? AND plan_items.requires_judicial_review = ?", false, true).
		Order("plan_items.due_date").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list judicial review items: %w", err)
	}
	return items, nil
}
