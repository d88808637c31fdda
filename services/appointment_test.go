package services

import (
	"testing"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentLists(t *testing.T) {
	db := setupTestDB(t)
	officerA := createUser(t, db, "officerA", models.RoleOfficer)
	officerB := createUser(t, db, "officerB", models.RoleOfficer)
	judge := createUser(t, db, "judge", models.RoleJudge)
	clientA := createClient(t, db, "A-1", officerA, models.RiskLevelLow)
	clientB := createClient(t, db, "B-1", officerB, models.RiskLevelLow)
	createCase(t, db, clientB, officerB, judge, models.CaseStatusOpen)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local)
	createAppointment(t, db, clientA, officerA, now.Add(-2*time.Hour), models.AppointmentStatusCompleted)
	createAppointment(t, db, clientA, officerA, now.AddDate(0, 0, 7).Add(6*time.Hour), models.AppointmentStatusScheduled)
	createAppointment(t, db, clientA, officerA, now.AddDate(0, 0, 8), models.AppointmentStatusScheduled)
	createAppointment(t, db, clientA, officerA, now.AddDate(0, 0, -1), models.AppointmentStatusNoShow)
	createAppointment(t, db, clientB, officerB, now.Add(time.Hour), models.AppointmentStatusScheduled)

	ra := access.FromUser(officerA)

	today, err := TodayAppointments(db, ra, now)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, models.AppointmentStatusCompleted, today[0].Status)

	upcoming, err := UpcomingAppointments(db, ra, now)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2, "today and day+7 are inclusive, day+8 is not")

	list, total, err := ListAppointments(db, ra, AppointmentFilter{Status: models.AppointmentStatusScheduled}, NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, list[0].ScheduledAt.Before(list[1].ScheduledAt))

	list, _, err = ListAppointments(db, ra, AppointmentFilter{Date: "2024-05-09"}, NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.AppointmentStatusNoShow, list[0].Status)

	_, _, err = ListAppointments(db, ra, AppointmentFilter{Date: "05/09/2024"}, NewPage(1, 20))
	_, ok := AsValidation(err)
	assert.True(t, ok)

	// judges see appointments of clients in their cases
	judged, _, err := ListAppointments(db, access.FromUser(judge), AppointmentFilter{}, NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, judged, 1)
	assert.Equal(t, clientB.ID, judged[0].ClientID)

	_, _, err = ListAppointments(db, access.Requester{UserID: "x", Role: "auditor"}, AppointmentFilter{}, NewPage(1, 20))
	require.NoError(t, err)
}

func TestCreateUpdateAppointment(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer", models.RoleOfficer)
	other := createUser(t, db, "other", models.RoleOfficer)
	judge := createUser(t, db, "judge", models.RoleJudge)
	client := createClient(t, db, "A-1", officer, models.RiskLevelLow)
	createCase(t, db, client, officer, judge, models.CaseStatusOpen)
	r := access.FromUser(officer)

	apt, err := CreateAppointment(db, r, AppointmentInput{
		ClientID:      &client.ID,
		ScheduledDate: ptrTo("2024-06-01T09:30"),
		Location:      ptrTo("Office 3"),
	})
	require.NoError(t, err)
	assert.Equal(t, officer.ID, apt.OfficerID)
	assert.Equal(t, models.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, models.AppointmentTypeCheckin, apt.AppointmentType)
	assert.Equal(t, models.DefaultAppointmentDuration, apt.DurationMinutes)
	require.NotNil(t, apt.Client)

	_, err = CreateAppointment(db, r, AppointmentInput{ClientID: &client.ID})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "scheduled_date")

	_, err = CreateAppointment(db, access.FromUser(judge), AppointmentInput{ClientID: &client.ID, ScheduledDate: ptrTo("2024-06-01T09:30")})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, MarkReminded(db, apt.ID, time.Now()))
	updated, err := UpdateAppointment(db, r, apt.ID, AppointmentInput{
		Status:        ptrTo(models.AppointmentStatusNoShow),
		ScheduledDate: ptrTo("2024-06-02T09:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusNoShow, updated.Status)
	assert.Nil(t, updated.ReminderSentAt)

	_, err = UpdateAppointment(db, r, apt.ID, AppointmentInput{DurationMinutes: ptrTo(0)})
	_, ok = AsValidation(err)
	assert.True(t, ok)

	_, err = UpdateAppointment(db, access.FromUser(judge), apt.ID, AppointmentInput{Notes: ptrTo("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.True(t, IsNotFound(DeleteAppointment(db, access.FromUser(other), apt.ID)))
	require.NoError(t, DeleteAppointment(db, r, apt.ID))
}

func TestDueReminders(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer", models.RoleOfficer)
	client := createClient(t, db, "A-1", officer, models.RiskLevelLow)
	now := time.Now()

	soon := createAppointment(t, db, client, officer, now.Add(2*time.Hour), models.AppointmentStatusScheduled)
	createAppointment(t, db, client, officer, now.Add(30*time.Hour), models.AppointmentStatusScheduled)
	createAppointment(t, db, client, officer, now.Add(3*time.Hour), models.AppointmentStatusCancelled)

	due, err := DueReminders(db, now, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)

	require.NoError(t, MarkReminded(db, soon.ID, now))
	due, err = DueReminders(db, now, 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestAppointmentWindowsAcrossOffsets(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer", models.RoleOfficer)
	client := createClient(t, db, "A-1", officer, models.RiskLevelLow)
	east := time.FixedZone("UTC+14", 14*3600)

	// 23:30 UTC is already the next morning at +14; text comparison of mixed
	// offsets would put it before an earlier instant written in UTC
	now := time.Date(2026, 3, 16, 23, 30, 0, 0, time.UTC)
	soon := createAppointment(t, db, client, officer, now.Add(time.Hour).In(east), models.AppointmentStatusScheduled)
	createAppointment(t, db, client, officer, now.Add(-time.Hour), models.AppointmentStatusScheduled)

	due, err := DueReminders(db, now.In(east), 2*time.Hour)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)

	between, err := AppointmentsBetween(db, access.FromUser(officer), now.In(east), now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, soon.ID, between[0].ID)
}
