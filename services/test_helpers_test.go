package services

import (
	"testing"
	"time"

	"probation_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an isolated in-memory database. The shared cache keeps
// one database across the pool's connections.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:svc_"+uuid.New().String()+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{NowFunc: models.NowUTC})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	u := &models.User{
		Username:        username,
		Email:           username + "@probation.gov",
		Password:        hash,
		FirstName:       username,
		LastName:        "Test",
		Role:            role,
		IsActive:        true,
		IsActiveOfficer: role == models.RoleOfficer,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createClient(t *testing.T, db *gorm.DB, caseNumber string, officer *models.User, risk string) *models.Client {
	t.Helper()
	c := &models.Client{
		CaseNumber:        caseNumber,
		FirstName:         "Client",
		LastName:          caseNumber,
		DateOfBirth:       time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:            models.GenderMale,
		AssignedOfficerID: officer.ID,
		Status:            models.ClientStatusActive,
		StartDate:         time.Now().AddDate(0, -6, 0),
		RiskLevel:         risk,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func createCase(t *testing.T, db *gorm.DB, client *models.Client, officer *models.User, judge *models.User, status string) *models.Case {
	t.Helper()
	c := &models.Case{
		ClientID:    client.ID,
		OfficerID:   officer.ID,
		Status:      status,
		CourtType:   models.CourtTypeCircuit,
		OpeningDate: time.Now().AddDate(0, -1, 0),
	}
	if judge != nil {
		c.PresidingJudgeID = &judge.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func createAppointment(t *testing.T, db *gorm.DB, client *models.Client, officer *models.User, at time.Time, status string) *models.Appointment {
	t.Helper()
	a := &models.Appointment{
		ClientID:        client.ID,
		OfficerID:       officer.ID,
		AppointmentType: models.AppointmentTypeCheckin,
		Status:          status,
		ScheduledAt:     at,
		DurationMinutes: models.DefaultAppointmentDuration,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
