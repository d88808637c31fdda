package jobs

import (
	"fmt"
	"time"

	"probation_app_go/config"
	"probation_app_go/models"
	"probation_app_go/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderWindow is how far ahead appointments are reminded
const ReminderWindow = 24 * time.Hour

// ReminderResult summarizes one reminder run
type ReminderResult struct {
	Found    int
	Reminded int
	Emailed  int
}

// SendAppointmentReminders notifies the assigned officer of each scheduled
// appointment in the next ReminderWindow that has not been reminded, emails
// them, and stamps the appointment so it is reminded once
func SendAppointmentReminders(database *gorm.DB, cfg *config.Config, now time.Time) (*ReminderResult, error) {
	appointments, err := services.DueReminders(database, now, ReminderWindow)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("job", "appointment_reminders"))
	res := &ReminderResult{Found: len(appointments)}
	notifications := services.NewNotificationService(database)

	for _, apt := range appointments {
		clientName := "client"
		if apt.Client != nil {
			clientName = apt.Client.FullName()
		}
		when := apt.ScheduledAt.In(time.Local)

		_, err := notifications.Notify(apt.OfficerID, models.NotificationTypeAppointment,
			"Upcoming appointment",
			fmt.Sprintf("%s with %s on %s", labelFor(apt.AppointmentType), clientName, when.Format("Mon Jan 2 3:04 PM")),
			"appointment", apt.ID)
		if err != nil {
			log.Error("failed to create reminder notification", zap.String("appointment_id", apt.ID), zap.Error(err))
			continue
		}

		if apt.Officer != nil && apt.Officer.Email != "" {
			email := services.BuildAppointmentReminderEmail(apt.Officer.Email, services.AppointmentReminderEmailData{
				OfficerName: apt.Officer.FullName(),
				ClientName:  clientName,
				Type:        apt.AppointmentType,
				When:        when,
				Location:    apt.Location,
			})
			if err := services.SendEmail(cfg, email); err != nil {
				log.Warn("failed to email reminder", zap.String("appointment_id", apt.ID), zap.Error(err))
			} else {
				res.Emailed++
			}
		}

		if err := services.MarkReminded(database, apt.ID, now); err != nil {
			log.Error("failed to mark appointment reminded", zap.String("appointment_id", apt.ID), zap.Error(err))
			continue
		}
		res.Reminded++
	}

	log.Info("appointment reminders sent",
		zap.Int("found", res.Found), zap.Int("reminded", res.Reminded), zap.Int("emailed", res.Emailed))
	return res, nil
}

// CleanupSessions removes expired login sessions
func CleanupSessions(database *gorm.DB) (int64, error) {
	n, err := services.CleanupExpiredSessions(database)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zap.L().Info("expired sessions removed", zap.String("job", "session_cleanup"), zap.Int64("count", n))
	}
	return n, nil
}

func labelFor(kind string) string {
	switch kind {
	case models.AppointmentTypeCheckin:
		return "Check-in"
	case models.AppointmentTypeCounseling:
		return "Counseling session"
	case models.AppointmentTypeCourt:
		return "Court appearance"
	case models.AppointmentTypeDrugTest:
		return "Drug test"
	case models.AppointmentTypeHomeVisit:
		return "Home visit"
	}
	return "Appointment"
}
