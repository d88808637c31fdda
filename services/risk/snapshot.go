package risk

import (
	"time"

	"probation_app_go/models"
)

// NewSnapshot counts the inputs from loaded records. Nil collections count as
// empty. A no-show is recent when scheduled at or after now - RecentWindow.
func NewSnapshot(client *models.Client, appointments []models.Appointment, cases []models.Case, offenses []models.Offense, now time.Time) Snapshot {
	s := Snapshot{OffenseCount: len(offenses)}
	if client != nil {
		s.RiskLevel = client.RiskLevel
	}

	since := now.Add(-RecentWindow)
	for _, a := range appointments {
		s.TotalAppointments++
		switch a.Status {
		case models.AppointmentStatusCompleted:
			s.CompletedAppointments++
		case models.AppointmentStatusNoShow:
			s.NoShowAppointments++
			if !a.ScheduledAt.Before(since) {
				s.RecentNoShows++
			}
		}
	}

	for _, c := range cases {
		if c.Status == models.CaseStatusOpen {
			s.OpenCaseCount++
		}
	}

	return s
}
