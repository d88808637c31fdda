package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusOpen      = "open"
	CaseStatusClosed    = "closed"
	CaseStatusPending   = "pending"
	CaseStatusSentenced = "sentenced"
	CaseStatusAppealed  = "appealed"
)

// Court levels a case can be heard at
const (
	CourtTypeSupreme  = "supreme"
	CourtTypeHigh     = "high"
	CourtTypeCircuit  = "circuit"
	CourtTypeDistrict = "district"
	CourtTypeFamily   = "family"
	CourtTypeDrug     = "drug"
	CourtTypeJuvenile = "juvenile"
)

// Case is a supervision case for one client
type Case struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID string  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`

	OfficerID string `gorm:"type:uuid;not null;index" json:"officer_id"`
	Officer   *User  `gorm:"foreignKey:OfficerID;constraint:OnDelete:RESTRICT" json:"officer,omitempty"`

	PresidingJudgeID *string `gorm:"type:uuid;index" json:"presiding_judge_id,omitempty"`
	PresidingJudge   *User   `gorm:"foreignKey:PresidingJudgeID;constraint:OnDelete:SET NULL" json:"presiding_judge,omitempty"`

	Status     string  `gorm:"size:20;not null;index" json:"status"`
	CourtType  string  `gorm:"size:20;not null" json:"court_type"`
	CaseNumber *string `gorm:"uniqueIndex;size:50" json:"case_number,omitempty"`

	OpeningDate    time.Time  `gorm:"not null;index" json:"opening_date"`
	ClosingDate    *time.Time `json:"closing_date,omitempty"`
	SentencingDate *time.Time `json:"sentencing_date,omitempty"`
	NextCourtDate  *time.Time `gorm:"index" json:"next_court_date,omitempty"`

	Objectives        string `gorm:"type:text" json:"objectives"`
	SpecialConditions string `gorm:"type:text" json:"special_conditions"`
	CourtNotes        string `gorm:"type:text" json:"court_notes"`
	IsHighProfile     bool   `json:"is_high_profile"`

	Plans []RehabilitationPlan `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"plans,omitempty"`
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (c *Case) BeforeSave(tx *gorm.DB) error {
	utc(&c.OpeningDate, c.ClosingDate, c.SentencingDate, c.NextCourtDate)
	return nil
}

func (Case) TableName() string {
	return "cases"
}

// DaysUntilCourt returns whole days from now until the next court date,
// or nil when no date is set
func (c *Case) DaysUntilCourt(now time.Time) *int {
	if c.NextCourtDate == nil {
		return nil
	}
	days := int(math.Floor(StartOfDay(*c.NextCourtDate).Sub(StartOfDay(now)).Hours() / 24))
	return &days
}

func IsValidCaseStatus(status string) bool {
	return oneOf(status, CaseStatusOpen, CaseStatusClosed, CaseStatusPending, CaseStatusSentenced, CaseStatusAppealed)
}

func IsValidCourtType(t string) bool {
	return oneOf(t, CourtTypeSupreme, CourtTypeHigh, CourtTypeCircuit, CourtTypeDistrict, CourtTypeFamily, CourtTypeDrug, CourtTypeJuvenile)
}

// RehabilitationPlan groups the plan items of a case
type RehabilitationPlan struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID      string     `gorm:"type:uuid;not null;index" json:"case_id"`
	Title       string     `gorm:"not null;size:200" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsCompleted bool       `json:"is_completed"`

	JudicialReviewRequired bool `json:"judicial_review_required"`

	Items []PlanItem `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (p *RehabilitationPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (p *RehabilitationPlan) BeforeSave(tx *gorm.DB) error {
	utc(&p.StartDate, p.EndDate)
	return nil
}

func (RehabilitationPlan) TableName() string {
	return "rehabilitation_plans"
}

// ProgressPercentage is the share of completed items, 0 for an empty plan.
// Items must be loaded.
func (p *RehabilitationPlan) ProgressPercentage() float64 {
	if len(p.Items) == 0 {
		return 0
	}
	done := 0
	for _, item := range p.Items {
		if item.IsCompleted {
			done++
		}
	}
	return float64(done) / float64(len(p.Items)) * 100
}

// PlanItem is one task of a rehabilitation plan
type PlanItem struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PlanID        string     `gorm:"type:uuid;not null;index" json:"plan_id"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	DueDate       time.Time  `gorm:"index" json:"due_date"`
	IsCompleted   bool       `gorm:"index" json:"is_completed"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes"`

	RequiresJudicialReview bool `json:"requires_judicial_review"`
}

func (i *PlanItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

func (i *PlanItem) BeforeSave(tx *gorm.DB) error {
	utc(&i.DueDate, i.CompletedDate)
	return nil
}

func (PlanItem) TableName() string {
	return "plan_items"
}

// MarkCompleted completes the item and stamps the completion date
func (i *PlanItem) MarkCompleted(now time.Time) {
	i.IsCompleted = true
	if i.CompletedDate == nil {
		d := StartOfDay(now)
		i.CompletedDate = &d
	}
}
