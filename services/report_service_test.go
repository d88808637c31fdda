package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type capturePDF struct {
	html string
}

func (c *capturePDF) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	c.html = html
	return []byte("%PDF-1.4 fake"), nil
}

func TestClientReport(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer1", models.RoleOfficer)
	other := createUser(t, db, "officer2", models.RoleOfficer)
	admin := createUser(t, db, "admin1", models.RoleAdmin)
	createClient(t, db, "CR-R-1", officer, models.RiskLevelHigh)
	createClient(t, db, "CR-R-2", other, models.RiskLevelLow)
	now := time.Now()

	rep, err := BuildReport(context.Background(), db, access.FromUser(admin), ReportClients, now)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Count)
	assert.Equal(t, int64(2), rep.Summary["active_clients"])
	require.Len(t, rep.Tables[0].Rows, 2)
	assert.Equal(t, []string{"CR-R-1", "Client CR-R-1", "Active", "High", "officer1 Test"}, rep.Tables[0].Rows[0][:5])

	scoped, err := BuildReport(context.Background(), db, access.FromUser(officer), ReportClients, now)
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.Count)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteCSV(&buf))
	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Case Number", "Name", "Status", "Risk Level", "Assigned Officer", "Start Date"}, records[0])
	assert.Equal(t, "CR-R-2", records[2][0])

	data, err := rep.XLSX()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Clients", "Status", "Risk Level"}, f.GetSheetList())
	v, err := f.GetCellValue("Clients", "A2")
	require.NoError(t, err)
	assert.Equal(t, "CR-R-1", v)

	renderer := &capturePDF{}
	pdf, err := rep.PDF(context.Background(), renderer)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
	assert.Contains(t, renderer.html, "Client Report")
	assert.Contains(t, renderer.html, "<td>CR-R-2</td>")
}

func TestAppointmentReport(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer1", models.RoleOfficer)
	client := createClient(t, db, "CR-R-3", officer, models.RiskLevelLow)
	now := time.Now()
	createAppointment(t, db, client, officer, now.AddDate(0, 0, -3), models.AppointmentStatusCompleted)
	createAppointment(t, db, client, officer, now.AddDate(0, 0, -2), models.AppointmentStatusNoShow)
	createAppointment(t, db, client, officer, now.AddDate(0, 0, -1), models.AppointmentStatusCompleted)
	createAppointment(t, db, client, officer, now.AddDate(0, 0, -45), models.AppointmentStatusCompleted)

	rep, err := BuildReport(context.Background(), db, access.FromUser(officer), ReportAppointments, now)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Count)
	assert.Equal(t, int64(2), rep.Summary["completed_count"])
	assert.Equal(t, int64(1), rep.Summary["missed_count"])

	status := rep.Breakdowns["status"]
	require.Len(t, status, 2)
	assert.Equal(t, models.AppointmentStatusCompleted, status[0].Key)
	assert.InDelta(t, 66.67, status[0].Percentage, 0.01)
	assert.Equal(t, "No Show", rep.Tables[0].Rows[1][4])
}

func TestOfficerReport(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer1", models.RoleOfficer)
	staff := createUser(t, db, "staff1", models.RoleStaff)
	client := createClient(t, db, "CR-R-4", officer, models.RiskLevelLow)
	createCase(t, db, client, officer, nil, models.CaseStatusOpen)
	createAppointment(t, db, client, officer, time.Now(), models.AppointmentStatusScheduled)

	rep, err := BuildReport(context.Background(), db, access.FromUser(staff), ReportOfficers, time.Now())
	require.NoError(t, err)
	rows := rep.Data.([]OfficerWorkload)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ClientCount)
	assert.Equal(t, int64(1), rows[0].CaseCount)
	assert.Equal(t, int64(1), rows[0].AppointmentCount)
	assert.Equal(t, int64(1), rep.Summary["active_cases"])

	_, err = BuildReport(context.Background(), db, access.FromUser(officer), ReportOfficers, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInvalidReportType(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, "admin1", models.RoleAdmin)
	_, err := BuildReport(context.Background(), db, access.FromUser(admin), "payroll", time.Now())
	assert.ErrorIs(t, err, ErrInvalidReportType)
	assert.True(t, IsReportFormat(FormatXLSX))
	assert.False(t, IsReportFormat("docx"))
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "No Show", displayLabel("no_show"))
	assert.Equal(t, "Drug Test", displayLabel("drug_test"))
	assert.Equal(t, "", displayLabel(""))
}
