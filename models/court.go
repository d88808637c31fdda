package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Court kinds
const (
	CourtKindSuperior = "SUPERIOR"
	CourtKindDistrict = "DISTRICT"
	CourtKindJuvenile = "JUVENILE"
	CourtKindDrug     = "DRUG"
	CourtKindFederal  = "FEDERAL"
)

// Court case statuses
const (
	CourtCaseStatusPending  = "PENDING"
	CourtCaseStatusActive   = "ACTIVE"
	CourtCaseStatusClosed   = "CLOSED"
	CourtCaseStatusAppealed = "APPEALED"
)

// Hearing types
const (
	HearingTypeArraignment = "ARRAIGNMENT"
	HearingTypePretrial    = "PRETRIAL"
	HearingTypeMotion      = "MOTION"
	HearingTypeTrial       = "TRIAL"
	HearingTypeSentencing  = "SENTENCING"
	HearingTypeReview      = "REVIEW"
	HearingTypeViolation   = "VIOLATION"
)

// Court order types
const (
	OrderTypeSentence     = "SENTENCE"
	OrderTypeProbation    = "PROBATION"
	OrderTypeTermination  = "TERMINATION"
	OrderTypeModification = "MODIFICATION"
	OrderTypeWarrant      = "WARRANT"
	OrderTypeOther        = "OTHER"
)

// Court is deactivated instead of deleted
type Court struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `gorm:"not null;size:200" json:"name"`
	CourtType string `gorm:"size:20;not null" json:"court_type"`
	Address   string `gorm:"type:text" json:"address"`
	Phone     string `gorm:"size:20" json:"phone"`
	Email     string `json:"email"`
	ClerkName string `gorm:"size:100" json:"clerk_name"`
	IsActive  bool   `gorm:"index" json:"is_active"`
}

func (c *Court) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (Court) TableName() string {
	return "courts"
}

// CourtCase is the court-side record of a supervision case
type CourtCase struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"type:uuid;uniqueIndex;not null" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"case,omitempty"`

	CourtID string `gorm:"type:uuid;not null;index" json:"court_id"`
	Court   *Court `gorm:"foreignKey:CourtID" json:"court,omitempty"`

	JudgeID *string `gorm:"type:uuid;index" json:"judge_id,omitempty"`
	Judge   *Judge  `gorm:"foreignKey:JudgeID;constraint:OnDelete:SET NULL" json:"judge,omitempty"`

	CaseNumber      string     `gorm:"uniqueIndex;not null;size:50" json:"case_number"`
	FilingDate      time.Time  `json:"filing_date"`
	NextHearingDate *time.Time `json:"next_hearing_date,omitempty"`
	Status          string     `gorm:"size:20;not null;index" json:"status"`
	Notes           string     `gorm:"type:text" json:"notes"`

	Hearings []Hearing    `gorm:"foreignKey:CourtCaseID;constraint:OnDelete:CASCADE" json:"hearings,omitempty"`
	Orders   []CourtOrder `gorm:"foreignKey:CourtCaseID;constraint:OnDelete:CASCADE" json:"orders,omitempty"`
}

func (c *CourtCase) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (c *CourtCase) BeforeSave(tx *gorm.DB) error {
	utc(&c.FilingDate, c.NextHearingDate)
	return nil
}

func (CourtCase) TableName() string {
	return "court_cases"
}

type Hearing struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CourtCaseID string     `gorm:"type:uuid;not null;index" json:"court_case_id"`
	CourtCase   *CourtCase `gorm:"foreignKey:CourtCaseID" json:"court_case,omitempty"`

	HearingType string    `gorm:"size:20;not null" json:"hearing_type"`
	HearingDate time.Time `gorm:"not null;index" json:"hearing_date"`
	JudgeID     *string   `gorm:"type:uuid;index" json:"judge_id,omitempty"`
	Judge       *Judge    `gorm:"foreignKey:JudgeID;constraint:OnDelete:SET NULL" json:"judge,omitempty"`
	Location    string    `gorm:"size:200" json:"location"`
	Notes       string    `gorm:"type:text" json:"notes"`
	Outcome     string    `gorm:"type:text" json:"outcome"`
	IsCompleted bool      `gorm:"index" json:"is_completed"`
}

func (h *Hearing) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

func (h *Hearing) BeforeSave(tx *gorm.DB) error {
	utc(&h.HearingDate)
	return nil
}

func (Hearing) TableName() string {
	return "hearings"
}

type CourtOrder struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CourtCaseID string     `gorm:"type:uuid;not null;index" json:"court_case_id"`
	CourtCase   *CourtCase `gorm:"foreignKey:CourtCaseID" json:"court_case,omitempty"`

	OrderType     string     `gorm:"size:20;not null" json:"order_type"`
	OrderDate     time.Time  `gorm:"not null;index" json:"order_date"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	JudgeID       *string    `gorm:"type:uuid;index" json:"judge_id,omitempty"`
	Judge         *Judge     `gorm:"foreignKey:JudgeID;constraint:OnDelete:SET NULL" json:"judge,omitempty"`
	OrderText     string     `gorm:"type:text" json:"order_text"`
	IsActive      bool       `gorm:"index" json:"is_active"`

	// Uploaded order document, stored through the storage provider
	FileKey      string `json:"-"`
	FileName     string `json:"file_name,omitempty"`
	FileMimeType string `json:"file_mime_type,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

func (o *CourtOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (o *CourtOrder) BeforeSave(tx *gorm.DB) error {
	utc(&o.OrderDate, o.EffectiveDate)
	return nil
}

func (CourtOrder) TableName() string {
	return "court_orders"
}

// HasFile reports whether a document was uploaded with the order
func (o *CourtOrder) HasFile() bool {
	return o.FileKey != ""
}

func IsValidCourtKind(k string) bool {
	return oneOf(k, CourtKindSuperior, CourtKindDistrict, CourtKindJuvenile, CourtKindDrug, CourtKindFederal)
}

func IsValidCourtCaseStatus(s string) bool {
	return oneOf(s, CourtCaseStatusPending, CourtCaseStatusActive, CourtCaseStatusClosed, CourtCaseStatusAppealed)
}

func IsValidHearingType(t string) bool {
	return oneOf(t, HearingTypeArraignment, HearingTypePretrial, HearingTypeMotion, HearingTypeTrial,
		HearingTypeSentencing, HearingTypeReview, HearingTypeViolation)
}

func IsValidOrderType(t string) bool {
	return oneOf(t, OrderTypeSentence, OrderTypeProbation, OrderTypeTermination, OrderTypeModification,
		OrderTypeWarrant, OrderTypeOther)
}
