package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"gorm.io/gorm"
)

// CalendarDays is the court calendar horizon
const CalendarDays = 30

// JudgeInput creates a judge profile for a user with the judge role
type JudgeInput struct {
	UserID          string `json:"user_id"`
	JudgeCode       string `json:"judge_id"`
	CourtID         string `json:"court_id"`
	Specialization  string `json:"specialization"`
	AppointmentDate string `json:"appointment_date"`
	Phone           string `json:"phone"`
	OfficeLocation  string `json:"office_location"`
	Bio             string `json:"bio"`
}

// ListActiveJudges returns active judge profiles ordered by name
func ListActiveJudges(db *gorm.DB) ([]models.Judge, error) {
	var judges []models.Judge
	err := db.Preload("User").Preload("Court").
		Where("is_active = ?", true).
		Find(&judges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	sort.SliceStable(judges, func(i, j int) bool {
		return sortName(judges[i].User) < sortName(judges[j].User)
	})
	return judges, nil
}

func sortName(u *models.User) string {
	if u == nil {
		return ""
	}
	return strings.ToLower(u.LastName + " " + u.FirstName)
}

// GetJudgeProfile returns the profile of a judge user, or ErrNotFound
func GetJudgeProfile(db *gorm.DB, userID string) (*models.Judge, error) {
	var judge models.Judge
	if err := db.Preload("Court").Preload("User").Where("user_id = ?", userID).First(&judge).Error; err != nil {
		return nil, notFound(err, "judge profile")
	}
	return &judge, nil
}

// CreateJudgeProfile is the explicit factory for judge profiles. Administrators only.
func CreateJudgeProfile(db *gorm.DB, r access.Requester, in JudgeInput) (*models.Judge, error) {
	if !access.CanManageUsers(r) {
		return nil, ErrForbidden
	}
	verr := &ValidationError{}

	userID := requireString(verr, "user_id", &in.UserID)
	if userID != "" {
		u, err := GetUser(db, userID)
		if err != nil && !IsNotFound(err) {
			return nil, err
		}
		if u == nil || !u.IsJudge() {
			verr.Add("user_id", "Select a user with the judge role.")
		} else if _, err := GetJudgeProfile(db, userID); err == nil {
			verr.Add("user_id", "This judge already has a profile.")
		} else if !IsNotFound(err) {
			return nil, err
		}
	}

	code := strings.ToUpper(requireString(verr, "judge_id", &in.JudgeCode))
	if code != "" {
		var n int64
		if err := db.Model(&models.Judge{}).Where("judge_code = ?", code).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			verr.Add("judge_id", "Judge with this judge id already exists.")
		}
	}

	var courtID *string
	if strings.TrimSpace(in.CourtID) != "" {
		court, err := GetCourt(db, strings.TrimSpace(in.CourtID))
		if err != nil && !IsNotFound(err) {
			return nil, err
		}
		if court == nil || !court.IsActive {
			verr.Add("court_id", "Select an active court.")
		} else {
			courtID = &court.ID
		}
	}
	appointed := dateField(verr, "appointment_date", &in.AppointmentDate, time.Local)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	judge := &models.Judge{
		UserID:          userID,
		JudgeCode:       code,
		CourtID:         courtID,
		Specialization:  strings.TrimSpace(in.Specialization),
		AppointmentDate: appointed,
		Phone:           strings.TrimSpace(in.Phone),
		OfficeLocation:  strings.TrimSpace(in.OfficeLocation),
		Bio:             SanitizePlain(in.Bio),
		IsActive:        true,
	}
	if err := db.Create(judge).Error; err != nil {
		return nil, fmt.Errorf("failed to create judge profile: %w", err)
	}
	return judge, nil
}

// JudgeDashboard summarizes a judge's docket
type JudgeDashboard struct {
	Profile            *models.Judge `json:"profile"`
	TotalCases         int64         `json:"total_cases"`
	OpenCases          int64         `json:"open_cases"`
	SentencedCases     int64         `json:"sentenced_cases"`
	UpcomingCourtDates []models.Case `json:"upcoming_court_dates"`
	ReviewCases        []models.Case `json:"cases_needing_review"`
	HighProfileCases   []models.Case `json:"high_profile_cases"`
}

// BuildJudgeDashboard works from presiding cases, so a missing profile only
// leaves Profile nil
func BuildJudgeDashboard(db *gorm.DB, r access.Requester, now time.Time) (*JudgeDashboard, error) {
	if r.Role != models.RoleJudge {
		return nil, ErrForbidden
	}
	d := &JudgeDashboard{
		UpcomingCourtDates: []models.Case{},
		ReviewCases:        []models.Case{},
		HighProfileCases:   []models.Case{},
	}

	profile, err := GetJudgeProfile(db, r.UserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	d.Profile = profile

	cases := func() *gorm.DB {
		return access.Apply(db.Model(&models.Case{}), access.EntityCase, r)
	}
	if err := cases().Count(&d.TotalCases).Error; err != nil {
		return nil, err
	}
	if err := cases().Where("cases.status = ?", models.CaseStatusOpen).Count(&d.OpenCases).Error; err != nil {
		return nil, err
	}
	if err := cases().Where("cases.status = ?", models.CaseStatusSentenced).Count(&d.SentencedCases).Error; err != nil {
		return nil, err
	}

	start := models.StartOfDay(now)
	_, end := models.UTCDayRange(start.AddDate(0, 0, CalendarDays))
	err = cases().Preload("Client").
		Where("cases.next_court_date >= ? AND cases.next_court_date < ?", start.UTC(), end).
		Order("cases.next_court_date").
		Limit(10).
		Find(&d.UpcomingCourtDates).Error
	if err != nil {
		return nil, err
	}

	err = cases().Preload("Client").
		Where("cases.id IN (SELECT rp.case_id FROM rehabilitation_plans rp JOIN plan_items pi ON pi.plan_id = rp.id WHERE pi.requires_judicial_review = ? AND pi.is_completed = ?)", true, false).
		Order("cases.opening_date").
		Find(&d.ReviewCases).Error
	if err != nil {
		return nil, err
	}

	err = cases().Preload("Client").
		Where("cases.is_high_profile = ? AND cases.status = ?", true, models.CaseStatusOpen).
		Order("cases.opening_date DESC").
		Find(&d.HighProfileCases).Error
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CalendarEntry is one dated item on the court calendar
type CalendarEntry struct {
	Kind       string    `json:"kind"` // hearing, court_date
	At         time.Time `json:"at"`
	Title      string    `json:"title"`
	CaseID     string    `json:"case_id,omitempty"`
	HearingID  string    `json:"hearing_id,omitempty"`
	ClientName string    `json:"client_name,omitempty"`
	Location   string    `json:"location,omitempty"`
}

// CalendarDay groups entries by local date
type CalendarDay struct {
	Date    string          `json:"date"`
	Entries []CalendarEntry `json:"entries"`
}

// CourtCalendar lists visible hearings and case court dates for the next
// CalendarDays days, grouped by date
func CourtCalendar(db *gorm.DB, r access.Requester, now time.Time) ([]CalendarDay, error) {
	start := models.StartOfDay(now)
	_, end := models.DayRange(start.AddDate(0, 0, CalendarDays))

	var entries []CalendarEntry

	hearings, _, err := ListHearings(db, r, HearingFilter{From: &start, To: &end}, Page{})
	if err != nil {
		return nil, err
	}
	for _, h := range hearings {
		e := CalendarEntry{
			Kind:      "hearing",
			At:        h.HearingDate,
			Title:     hearingLabel(h.HearingType),
			HearingID: h.ID,
			Location:  h.Location,
		}
		if h.CourtCase != nil {
			e.CaseID = h.CourtCase.CaseID
			if h.CourtCase.Case != nil && h.CourtCase.Case.Client != nil {
				e.ClientName = h.CourtCase.Case.Client.FullName()
			}
		}
		entries = append(entries, e)
	}

	var cases []models.Case
	err = access.Apply(db.Model(&models.Case{}), access.EntityCase, r).
		Preload("Client").
		Where("cases.next_court_date >= ? AND cases.next_court_date < ?", start.UTC(), end.UTC()).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load court dates: %w", err)
	}
	for _, c := range cases {
		e := CalendarEntry{Kind: "court_date", At: *c.NextCourtDate, Title: "Court date", CaseID: c.ID}
		if c.Client != nil {
			e.ClientName = c.Client.FullName()
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].At.Before(entries[j].At) })

	days := []CalendarDay{}
	for _, e := range entries {
		date := e.At.In(time.Local).Format("2006-01-02")
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Entries = append(days[n-1].Entries, e)
			continue
		}
		days = append(days, CalendarDay{Date: date, Entries: []CalendarEntry{e}})
	}
	return days, nil
}

// hearingLabel turns SENTENCING into "Sentencing hearing"
func hearingLabel(kind string) string {
	if kind == "" {
		return "Hearing"
	}
	lower := strings.ToLower(kind)
	return strings.ToUpper(lower[:1]) + lower[1:] + " hearing"
}
