package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freezeNow pins the handler clock to a local noon
func freezeNow(t *testing.T) time.Time {
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })
	return fixed
}

func TestListAppointmentsHandler(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	other := createUser(t, database, "officer2", models.RoleOfficer)
	client := createClient(t, database, "PR-001", officer)
	otherClient := createClient(t, database, "PR-002", other)

	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	createAppointment(t, database, client, officer, day, models.AppointmentStatusScheduled)
	createAppointment(t, database, client, officer, day.AddDate(0, 0, 1), models.AppointmentStatusScheduled)
	createAppointment(t, database, otherClient, other, day, models.AppointmentStatusScheduled)

	t.Run("DateFilter", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/appointments?date=2026-03-10", "")
		require.NoError(t, ListAppointmentsHandler(as(c, officer)))

		require.Equal(t, http.StatusOK, rec.Code)
		var appts []models.Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
		require.Len(t, appts, 1)
		assert.Equal(t, client.ID, appts[0].ClientID)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/appointments?date=10/03/2026", "")
		require.NoError(t, ListAppointmentsHandler(as(c, officer)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Today", func(t *testing.T) {
		freezeNow(t)
		_, c, rec := setupEcho(http.MethodGet, "/api/appointments/today", "")
		require.NoError(t, TodayAppointmentsHandler(as(c, officer)))

		var appts []models.Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
		assert.Len(t, appts, 1)
	})

	t.Run("Upcoming", func(t *testing.T) {
		freezeNow(t)
		_, c, rec := setupEcho(http.MethodGet, "/api/appointments/upcoming", "")
		require.NoError(t, UpcomingAppointmentsHandler(as(c, officer)))

		var appts []models.Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
		assert.Len(t, appts, 2)
	})
}

func TestCreateAppointmentHandler(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	other := createUser(t, database, "officer2", models.RoleOfficer)
	client := createClient(t, database, "PR-001", officer)

	body := `{"client_id":"` + client.ID + `","appointment_type":"checkin","scheduled_date":"2026-03-12T10:00:00"}`

	t.Run("Owner", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/appointments", body)
		require.NoError(t, CreateAppointmentHandler(as(c, officer)))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var appt models.Appointment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appt))
		assert.Equal(t, models.AppointmentStatusScheduled, appt.Status)
		assert.Equal(t, models.DefaultAppointmentDuration, appt.DurationMinutes)
		assert.Equal(t, officer.ID, appt.OfficerID)
	})

	t.Run("ClientOutsideScope", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/appointments", body)
		require.NoError(t, CreateAppointmentHandler(as(c, other)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "client_id")
	})
}
