package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"probation_app_go/config"
	"probation_app_go/db"
	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while async audit writes still see the tables
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{NowFunc: models.NowUTC})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))

	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())
	Configure(nil, nil)
	return testDB
}

var testConfig = &config.Config{Environment: "test", EmailTestMode: true, SessionTTL: time.Hour}

// setupEcho builds a context for calling a handler directly. body is sent as JSON.
func setupEcho(method, path, body string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyConfig, testConfig)
	return e, c, rec
}

// as makes user the authenticated caller of c
func as(c echo.Context, user *models.User) echo.Context {
	c.Set(middleware.ContextKeyUser, user)
	return c
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func createUser(t *testing.T, database *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := services.HashPassword("password123")
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
	require.NoError(t, database.Create(u).Error)
	return u
}

func createClient(t *testing.T, database *gorm.DB, caseNumber string, officer *models.User) *models.Client {
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
		RiskLevel:         models.RiskLevelMedium,
	}
	require.NoError(t, database.Create(c).Error)
	return c
}

func createCase(t *testing.T, database *gorm.DB, client *models.Client, officer, judge *models.User) *models.Case {
	t.Helper()
	c := &models.Case{
		ClientID:    client.ID,
		OfficerID:   officer.ID,
		Status:      models.CaseStatusOpen,
		CourtType:   models.CourtTypeCircuit,
		OpeningDate: time.Now().AddDate(0, -1, 0),
	}
	if judge != nil {
		c.PresidingJudgeID = &judge.ID
	}
	require.NoError(t, database.Create(c).Error)
	return c
}

func createAppointment(t *testing.T, database *gorm.DB, client *models.Client, officer *models.User, at time.Time, status string) *models.Appointment {
	t.Helper()
	a := &models.Appointment{
		ClientID:        client.ID,
		OfficerID:       officer.ID,
		AppointmentType: models.AppointmentTypeCheckin,
		Status:          status,
		ScheduledAt:     at,
		DurationMinutes: models.DefaultAppointmentDuration,
	}
	require.NoError(t, database.Create(a).Error)
	return a
}
