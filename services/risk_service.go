package services

import (
	"context"
	"fmt"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"
	"probation_app_go/services/risk"

	"gorm.io/gorm"
)

// RiskService feeds the risk engine from the database with count queries
type RiskService struct {
	DB *gorm.DB
}

func NewRiskService(db *gorm.DB) *RiskService {
	return &RiskService{DB: db}
}

// Snapshot counts a visible client's appointments, offenses and open cases
func (s *RiskService) Snapshot(ctx context.Context, r access.Requester, clientID string, now time.Time) (*models.Client, risk.Snapshot, error) {
	db := s.DB.WithContext(ctx)
	client, err := GetClient(db, r, clientID)
	if err != nil {
		return nil, risk.Snapshot{}, err
	}

	snap := risk.Snapshot{RiskLevel: client.RiskLevel, OffenseCount: len(client.Offenses)}
	var counts struct {
		Total     int64
		Completed int64
		NoShow    int64
		Recent    int64
	}
	err = db.Model(&models.Appointment{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS no_show,
			COALESCE(SUM(CASE WHEN status = ? AND scheduled_at >= ? THEN 1 ELSE 0 END), 0) AS recent`,
			models.AppointmentStatusCompleted, models.AppointmentStatusNoShow,
			models.AppointmentStatusNoShow, now.Add(-risk.RecentWindow).UTC()).
		Where("client_id = ?", clientID).
		Scan(&counts).Error
	if err != nil {
		return nil, risk.Snapshot{}, fmt.Errorf("failed to count appointments: %w", err)
	}
	snap.TotalAppointments = int(counts.Total)
	snap.CompletedAppointments = int(counts.Completed)
	snap.NoShowAppointments = int(counts.NoShow)
	snap.RecentNoShows = int(counts.Recent)

	var open int64
	if err := db.Model(&models.Case{}).Where("client_id = ? AND status = ?", clientID, models.CaseStatusOpen).Count(&open).Error; err != nil {
		return nil, risk.Snapshot{}, fmt.Errorf("failed to count cases: %w", err)
	}
	snap.OpenCaseCount = int(open)
	return client, snap, nil
}

// AnalyzeClient runs the full engine for a visible client
func (s *RiskService) AnalyzeClient(ctx context.Context, r access.Requester, clientID string, now time.Time) (*models.Client, risk.Analysis, error) {
	client, snap, err := s.Snapshot(ctx, r, clientID, now)
	if err != nil {
		return nil, risk.Analysis{}, err
	}
	return client, risk.Analyze(snap, now), nil
}

// BasicForClient is the lightweight completion-rate summary
func (s *RiskService) BasicForClient(ctx context.Context, r access.Requester, clientID string, now time.Time) (risk.BasicAnalysis, error) {
	_, snap, err := s.Snapshot(ctx, r, clientID, now)
	if err != nil {
		return risk.BasicAnalysis{}, err
	}
	return risk.Basic(snap.TotalAppointments, snap.CompletedAppointments), nil
}
