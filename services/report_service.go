package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	ReportClients      = "clients"
	ReportAppointments = "appointments"
	ReportOfficers     = "officers"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ReportPeriodDays is the window of the appointment report
const ReportPeriodDays = 30

var (
	ErrInvalidReportType   = errors.New("invalid report type")
	ErrInvalidReportFormat = errors.New("invalid report format")
)

// IsReportFormat reports a supported output format
func IsReportFormat(f string) bool {
	switch f {
	case FormatJSON, FormatCSV, FormatPDF, FormatXLSX:
		return true
	}
	return false
}

// ReportTable is one grid of a report as rendered to CSV, XLSX and PDF
type ReportTable struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// BreakdownRow is one bucket of a grouped count
type BreakdownRow struct {
	Key        string  `json:"key"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Report is a generated report. Data is the JSON body; Tables drive the
// file formats.
type Report struct {
	Type        string                    `json:"report_type"`
	Title       string                    `json:"title"`
	Period      string                    `json:"period,omitempty"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Count       int                       `json:"count"`
	Summary     map[string]int64          `json:"summary,omitempty"`
	Breakdowns  map[string][]BreakdownRow `json:"breakdowns,omitempty"`
	Data        interface{}               `json:"data"`
	Tables      []ReportTable             `json:"-"`
}

// OfficerWorkload is one row of the officer report
type OfficerWorkload struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	BadgeNumber      string `json:"badge_number"`
	IsActiveOfficer  bool   `json:"is_active_officer"`
	ClientCount      int64  `json:"client_count"`
	CaseCount        int64  `json:"case_count"`
	AppointmentCount int64  `json:"appointment_count"`
}

// BuildReport assembles a report over the requester's visible records. The
// officer workload report is limited to administrators and staff.
func BuildReport(ctx context.Context, db *gorm.DB, r access.Requester, kind string, now time.Time) (*Report, error) {
	db = db.WithContext(ctx)
	switch kind {
	case ReportClients:
		return clientReport(db, r, now)
	case ReportAppointments:
		return appointmentReport(db, r, now)
	case ReportOfficers:
		if !access.CanManageCourts(r) {
			return nil, ErrForbidden
		}
		return officerReport(db, now)
	}
	return nil, ErrInvalidReportType
}

func clientReport(db *gorm.DB, r access.Requester, now time.Time) (*Report, error) {
	var clients []models.Client
	err := access.Apply(db.Model(&models.Client{}), access.EntityClient, r).
		Preload("AssignedOfficer").
		Order("clients.case_number").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	table := ReportTable{
		Title:   "Clients",
		Headers: []string{"Case Number", "Name", "Status", "Risk Level", "Assigned Officer", "Start Date"},
	}
	status := map[string]int64{}
	riskLevels := map[string]int64{}
	for _, c := range clients {
		officer := ""
		if c.AssignedOfficer != nil {
			officer = c.AssignedOfficer.FullName()
		}
		table.Rows = append(table.Rows, []string{
			c.CaseNumber, c.FullName(), displayLabel(c.Status), displayLabel(c.RiskLevel), officer,
			c.StartDate.In(time.Local).Format("2006-01-02"),
		})
		status[c.Status]++
		riskLevels[c.RiskLevel]++
	}

	rep := &Report{
		Type:        ReportClients,
		Title:       "Community Rehabilitation - Client Report",
		GeneratedAt: now,
		Count:       len(clients),
		Summary: map[string]int64{
			"total_clients":     int64(len(clients)),
			"active_clients":    status[models.ClientStatusActive],
			"completed_clients": status[models.ClientStatusCompleted],
			"violated_clients":  status[models.ClientStatusViolated],
		},
		Breakdowns: map[string][]BreakdownRow{
			"status":     breakdown(status),
			"risk_level": breakdown(riskLevels),
		},
		Data:   clients,
		Tables: []ReportTable{table},
	}
	rep.Tables = append(rep.Tables,
		breakdownTable("Status", rep.Breakdowns["status"]),
		breakdownTable("Risk Level", rep.Breakdowns["risk_level"]))
	return rep, nil
}

func appointmentReport(db *gorm.DB, r access.Requester, now time.Time) (*Report, error) {
	since := models.StartOfDay(now).AddDate(0, 0, -ReportPeriodDays)
	var appts []models.Appointment
	err := access.Apply(db.Model(&models.Appointment{}), access.EntityAppointment, r).
		Preload("Client").Preload("Officer").
		Where("appointments.scheduled_at >= ?", since.UTC()).
		Order("appointments.scheduled_at DESC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	table := ReportTable{
		Title:   "Appointments",
		Headers: []string{"Scheduled", "Client", "Officer", "Type", "Status", "Location"},
	}
	types := map[string]int64{}
	status := map[string]int64{}
	for _, a := range appts {
		client, officer := "", ""
		if a.Client != nil {
			client = a.Client.FullName()
		}
		if a.Officer != nil {
			officer = a.Officer.FullName()
		}
		table.Rows = append(table.Rows, []string{
			a.ScheduledAt.In(time.Local).Format("2006-01-02 15:04"), client, officer,
			displayLabel(a.AppointmentType), displayLabel(a.Status), a.Location,
		})
		types[a.AppointmentType]++
		status[a.Status]++
	}

	rep := &Report{
		Type:        ReportAppointments,
		Title:       "Community Rehabilitation - Appointment Report",
		Period:      fmt.Sprintf("Last %d Days", ReportPeriodDays),
		GeneratedAt: now,
		Count:       len(appts),
		Summary: map[string]int64{
			"completed_count": status[models.AppointmentStatusCompleted],
			"scheduled_count": status[models.AppointmentStatusScheduled],
			"missed_count":    status[models.AppointmentStatusNoShow],
		},
		Breakdowns: map[string][]BreakdownRow{
			"appointment_type": breakdown(types),
			"status":           breakdown(status),
		},
		Data:   appts,
		Tables: []ReportTable{table},
	}
	rep.Tables = append(rep.Tables,
		breakdownTable("Appointment Type", rep.Breakdowns["appointment_type"]),
		breakdownTable("Status", rep.Breakdowns["status"]))
	return rep, nil
}

func officerReport(db *gorm.DB, now time.Time) (*Report, error) {
	var officers []models.User
	if err := db.Where("role = ?", models.RoleOfficer).Order("first_name, last_name").Find(&officers).Error; err != nil {
		return nil, fmt.Errorf("failed to load officers: %w", err)
	}

	clients, err := countBy(db, &models.Client{}, "assigned_officer_id")
	if err != nil {
		return nil, err
	}
	cases, err := countBy(db, &models.Case{}, "officer_id")
	if err != nil {
		return nil, err
	}
	appts, err := countBy(db, &models.Appointment{}, "officer_id")
	if err != nil {
		return nil, err
	}

	table := ReportTable{
		Title:   "Officer Workload",
		Headers: []string{"Officer", "Badge", "Active", "Clients", "Cases", "Appointments"},
	}
	rows := make([]OfficerWorkload, 0, len(officers))
	for _, o := range officers {
		w := OfficerWorkload{
			ID:               o.ID,
			Name:             o.FullName(),
			BadgeNumber:      o.BadgeNumber,
			IsActiveOfficer:  o.IsActiveOfficer,
			ClientCount:      clients[o.ID],
			CaseCount:        cases[o.ID],
			AppointmentCount: appts[o.ID],
		}
		rows = append(rows, w)
		table.Rows = append(table.Rows, []string{
			w.Name, w.BadgeNumber, yesNo(w.IsActiveOfficer),
			strconv.FormatInt(w.ClientCount, 10), strconv.FormatInt(w.CaseCount, 10), strconv.FormatInt(w.AppointmentCount, 10),
		})
	}

	summary := map[string]int64{}
	for key, q := range map[string]*gorm.DB{
		"total_clients":      db.Model(&models.Client{}),
		"active_cases":       db.Model(&models.Case{}).Where("status = ?", models.CaseStatusOpen),
		"total_appointments": db.Model(&models.Appointment{}),
	} {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", key, err)
		}
		summary[key] = n
	}

	return &Report{
		Type:        ReportOfficers,
		Title:       "Community Rehabilitation - Officer Report",
		GeneratedAt: now,
		Count:       len(rows),
		Summary:     summary,
		Data:        rows,
		Tables:      []ReportTable{table},
	}, nil
}

func countBy(db *gorm.DB, model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		OwnerID string
		N       int64
	}
	err := db.Model(model).Select(column + " AS owner_id, COUNT(*) AS n").Group(column).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", column, err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.OwnerID] = r.N
	}
	return out, nil
}

// breakdown turns counts into rows ordered by count, then key
func breakdown(counts map[string]int64) []BreakdownRow {
	var total int64
	for _, n := range counts {
		total += n
	}
	rows := make([]BreakdownRow, 0, len(counts))
	for k, n := range counts {
		row := BreakdownRow{Key: k, Count: n}
		if total > 0 {
			row.Percentage = float64(n) / float64(total) * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

func breakdownTable(title string, rows []BreakdownRow) ReportTable {
	t := ReportTable{Title: title, Headers: []string{title, "Count", "Percentage"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{displayLabel(r.Key), strconv.FormatInt(r.Count, 10), fmt.Sprintf("%.1f%%", r.Percentage)})
	}
	return t
}

// displayLabel turns "no_show" into "No Show"
func displayLabel(v string) string {
	words := strings.Fields(strings.ReplaceAll(v, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Filename is the download name for format
func (r *Report) Filename(format string) string {
	return fmt.Sprintf("%s_report_%s.%s", r.Type, r.GeneratedAt.Format("20060102_150405"), format)
}

// WriteCSV writes the primary table, then each further table after a blank line
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for i, t := range r.Tables {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
			if err := cw.Write([]string{t.Title}); err != nil {
				return err
			}
		}
		if err := cw.Write(t.Headers); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX renders one worksheet per table
func (r *Report) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, t := range r.Tables {
		sheet := sheetName(t.Title, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}

		for col, h := range t.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, h)
		}
		if len(t.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
			f.SetCellStyle(sheet, "A1", last, headerStyle)
			lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
			f.SetColWidth(sheet, "A", lastCol, 20)
		}
		for rowIdx, row := range t.Rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				f.SetCellValue(sheet, cell, v)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheet names are capped at 31 characters
func sheetName(title string, i int) string {
	if title == "" {
		return fmt.Sprintf("Sheet%d", i+1)
	}
	if len(title) > 31 {
		return title[:31]
	}
	return title
}

// HTML renders the report as a printable document for the PDF renderer
func (r *Report) HTML() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(r.Title))
	fmt.Fprintf(&b, `<p class="generated">Generated %s`, r.GeneratedAt.In(time.Local).Format("January 2, 2006 15:04"))
	if r.Period != "" {
		fmt.Fprintf(&b, " &middot; %s", html.EscapeString(r.Period))
	}
	b.WriteString("</p>\n")

	for _, t := range r.Tables {
		fmt.Fprintf(&b, "<h2>%s</h2>\n<table>\n<thead><tr>", html.EscapeString(t.Title))
		for _, h := range t.Headers {
			fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
		}
		b.WriteString("</tr></thead>\n<tbody>\n")
		for _, row := range t.Rows {
			b.WriteString("<tr>")
			for _, v := range row {
				fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(v))
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n</table>\n")
	}
	return WrapReportHTML(html.EscapeString(r.Title), b.String())
}

// PDF renders through renderer
func (r *Report) PDF(ctx context.Context, renderer PDFRenderer) ([]byte, error) {
	return renderer.RenderPDF(ctx, r.HTML())
}
