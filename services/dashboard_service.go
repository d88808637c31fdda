package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PendingTaskDays is how far ahead an open plan item counts as pending
const PendingTaskDays = 7

// UserSummary identifies the dashboard owner
type UserSummary struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	UserType models.Role `json:"user_type"`
	FullName string      `json:"full_name"`
}

func SummarizeUser(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, UserType: u.Role, FullName: u.FullName()}
}

// DashboardStats holds the role specific counters keyed by their JSON name
type DashboardStats map[string]int64

// Dashboard is the API payload
type Dashboard struct {
	User  UserSummary    `json:"user"`
	Stats DashboardStats `json:"stats"`
}

// DashboardActivity is the list content of the dashboard page
type DashboardActivity struct {
	UpcomingAppointments []models.Appointment
	UpcomingHearings     []models.Hearing
	PendingPlanItems     []models.PlanItem
	Notifications        []models.Notification
	UnreadNotifications  int64
	HighRiskClients      []models.Client
}

// DashboardService computes dashboard counters, caching them per user
type DashboardService struct {
	DB    *gorm.DB
	Cache *Cache
}

func NewDashboardService(db *gorm.DB, cache *Cache) *DashboardService {
	return &DashboardService{DB: db, Cache: cache}
}

func dashboardKey(userID string) string {
	return "dashboard:" + userID
}

// Build returns the user summary and role scoped stats. The unread
// notification count is read live; notifications never invalidate the cache.
func (s *DashboardService) Build(ctx context.Context, user *models.User, now time.Time) (*Dashboard, error) {
	stats, err := s.Stats(ctx, user, now)
	if err != nil {
		return nil, err
	}
	unread, err := NewNotificationService(s.DB.WithContext(ctx)).GetNotificationCount(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	stats["unread_notifications"] = unread
	return &Dashboard{User: SummarizeUser(user), Stats: stats}, nil
}

// Stats serves from the cache when possible. Cache failures fall through to
// the database.
func (s *DashboardService) Stats(ctx context.Context, user *models.User, now time.Time) (DashboardStats, error) {
	key := dashboardKey(user.ID)

	var cached DashboardStats
	hit, err := s.Cache.Get(ctx, key, &cached)
	if err != nil {
		zap.L().Warn("dashboard cache read failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	stats, err := s.computeStats(ctx, user, now)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, stats); err != nil {
		zap.L().Warn("dashboard cache write failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return stats, nil
}

// Invalidate forgets the cached stats of the given users
func (s *DashboardService) Invalidate(ctx context.Context, userIDs ...string) {
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if err := s.Cache.Delete(ctx, dashboardKey(id)); err != nil {
			zap.L().Warn("dashboard cache delete failed", zap.String("user_id", id), zap.Error(err))
		}
	}
}

// ClientAudience lists the users whose counters include a client: its
// officer, the officers and judges of its cases, appointments and court
// cases, and every admin and staff account. Nothing is looked up when
// caching is off.
func (s *DashboardService) ClientAudience(ctx context.Context, clientID string) []string {
	if !s.Cache.Enabled() || clientID == "" {
		return nil
	}
	db := s.DB.WithContext(ctx)
	sources := []struct {
		query  *gorm.DB
		column string
	}{
		{db.Model(&models.Client{}).Where("id = ?", clientID), "assigned_officer_id"},
		{db.Model(&models.Case{}).Where("client_id = ?", clientID), "officer_id"},
		{db.Model(&models.Case{}).Where("client_id = ? AND presiding_judge_id IS NOT NULL", clientID), "presiding_judge_id"},
		{db.Model(&models.Appointment{}).Where("client_id = ?", clientID), "officer_id"},
		{db.Model(&models.Judge{}).Where("id IN (SELECT judge_id FROM court_cases WHERE case_id IN (SELECT id FROM cases WHERE client_id = ?))", clientID), "user_id"},
		{db.Model(&models.User{}).Where("role IN ?", []models.Role{models.RoleAdmin, models.RoleStaff}), "id"},
	}
	var ids []string
	for _, src := range sources {
		var found []string
		if err := src.query.Distinct().Pluck(src.column, &found).Error; err != nil {
			zap.L().Warn("dashboard audience lookup failed", zap.String("client_id", clientID), zap.Error(err))
			continue
		}
		ids = append(ids, found...)
	}
	return ids
}

// RecordAudience is ClientAudience for the client of a case or appointment
func (s *DashboardService) RecordAudience(ctx context.Context, model interface{}, id string) []string {
	if !s.Cache.Enabled() {
		return nil
	}
	var clientIDs []string
	if err := s.DB.WithContext(ctx).Model(model).Where("id = ?", id).Pluck("client_id", &clientIDs).Error; err != nil {
		zap.L().Warn("dashboard audience lookup failed", zap.String("id", id), zap.Error(err))
		return nil
	}
	var ids []string
	for _, clientID := range clientIDs {
		ids = append(ids, s.ClientAudience(ctx, clientID)...)
	}
	return ids
}

func (s *DashboardService) computeStats(ctx context.Context, user *models.User, now time.Time) (DashboardStats, error) {
	db := s.DB.WithContext(ctx)
	r := access.FromUser(user)
	stats := DashboardStats{}

	var firstErr error
	count := func(key string, q *gorm.DB) {
		if firstErr != nil {
			return
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			firstErr = fmt.Errorf("failed to count %s: %w", key, err)
			return
		}
		stats[key] = n
	}
	visible := func(model interface{}, e access.Entity) *gorm.DB {
		return access.Apply(db.Model(model), e, r)
	}
	openItems := func() *gorm.DB {
		return visible(&models.PlanItem{}, access.EntityPlanItem).Where("plan_items.is_completed = ?", false)
	}
	reviewItems := func() *gorm.DB {
		return openItems().Where("plan_items.requires_judicial_review = ?", true)
	}
	dayStart, dayEnd := models.UTCDayRange(now)
	at := now.UTC()

	count("total_clients", visible(&models.Client{}, access.EntityClient))
	count("active_cases", visible(&models.Case{}, access.EntityCase).Where("cases.status = ?", models.CaseStatusOpen))

	if user.Role == models.RoleJudge {
		for _, k := range []string{"active_court_cases", "upcoming_hearings", "todays_hearings", "pending_orders"} {
			stats[k] = 0
		}
		profile, err := GetJudgeProfile(db, user.ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if profile != nil {
			count("active_court_cases", db.Model(&models.CourtCase{}).
				Where("judge_id = ? AND status = ?", profile.ID, models.CourtCaseStatusActive))
			count("upcoming_hearings", db.Model(&models.Hearing{}).
				Where("judge_id = ? AND hearing_date >= ? AND is_completed = ?", profile.ID, at, false))
			count("todays_hearings", db.Model(&models.Hearing{}).
				Where("judge_id = ? AND hearing_date >= ? AND hearing_date < ?", profile.ID, dayStart, dayEnd))
			count("pending_orders", db.Model(&models.CourtOrder{}).
				Where("judge_id = ? AND is_active = ?", profile.ID, true))
		}
		// every open task a judge sees is a review task
		count("pending_tasks", reviewItems())
		count("judicial_review_tasks", reviewItems())
	} else {
		_, taskEnd := models.UTCDayRange(now.AddDate(0, 0, PendingTaskDays))
		count("todays_appointments", visible(&models.Appointment{}, access.EntityAppointment).
			Where("appointments.scheduled_at >= ? AND appointments.scheduled_at < ?", dayStart, dayEnd))
		count("active_court_cases", visible(&models.CourtCase{}, access.EntityCourtCase).
			Where("court_cases.status = ?", models.CourtCaseStatusActive))
		count("upcoming_hearings", visible(&models.Hearing{}, access.EntityHearing).
			Where("hearings.hearing_date >= ? AND hearings.is_completed = ?", at, false))
		count("pending_tasks", openItems().Where("plan_items.due_date < ?", taskEnd))
		count("judicial_review_tasks", reviewItems())

		if user.Role == models.RoleAdmin || user.Role == models.RoleStaff {
			count("total_courts", db.Model(&models.Court{}).Where("is_active = ?", true))
			count("total_judges", db.Model(&models.Judge{}).Where("is_active = ?", true))
		}
	}

	count("unread_messages", db.Model(&models.Message{}).Where("recipient_id = ? AND read_at IS NULL", user.ID))

	if firstErr != nil {
		return nil, firstErr
	}
	return stats, nil
}

// Activity loads the upcoming items, latest notifications and high risk
// alerts shown next to the counters
func (s *DashboardService) Activity(ctx context.Context, user *models.User, now time.Time) (*DashboardActivity, error) {
	db := s.DB.WithContext(ctx)
	r := access.FromUser(user)
	a := &DashboardActivity{}

	if user.Role != models.RoleJudge {
		err := access.Apply(db.Model(&models.Appointment{}), access.EntityAppointment, r).
			Preload("Client").
			Where("appointments.scheduled_at >= ?", now.UTC()).
			Order("appointments.scheduled_at").
			Limit(5).
			Find(&a.UpcomingAppointments).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load upcoming appointments: %w", err)
		}
	}

	hearings, _, err := ListHearings(db, r, HearingFilter{From: &now}, NewPage(1, 5))
	if err != nil {
		return nil, err
	}
	a.UpcomingHearings = hearings

	if user.Role != models.RoleJudge {
		if a.PendingPlanItems, err = PendingPlanItems(db, r, now, PendingTaskDays); err != nil {
			return nil, err
		}
	} else if a.PendingPlanItems, err = JudicialReviewItems(db, r); err != nil {
		return nil, err
	}

	notifications := NewNotificationService(db)
	if a.Notifications, err = notifications.GetUnreadNotifications(user.ID, 5); err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	if a.UnreadNotifications, err = notifications.GetNotificationCount(user.ID); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	if a.HighRiskClients, err = HighRiskClients(db, r, 3); err != nil {
		return nil, err
	}
	return a, nil
}
