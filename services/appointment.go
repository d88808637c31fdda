package services

import (
	"fmt"
	"strings"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"gorm.io/gorm"
)

// UpcomingDays is how far ahead the upcoming list reaches, today included
const UpcomingDays = 7

// AppointmentFilter narrows ListAppointments. Date is YYYY-MM-DD in local time.
type AppointmentFilter struct {
	Date     string
	Status   string
	ClientID string
}

// AppointmentInput is the writable part of an appointment. Nil fields are left unchanged on update.
type AppointmentInput struct {
	ClientID        *string `json:"client_id"`
	OfficerID       *string `json:"officer_id"`
	AppointmentType *string `json:"appointment_type"`
	Status          *string `json:"status"`
	ScheduledDate   *string `json:"scheduled_date"`
	DurationMinutes *int    `json:"duration_minutes"`
	Location        *string `json:"location"`
	Notes           *string `json:"notes"`
}

func visibleAppointments(db *gorm.DB, r access.Requester) *gorm.DB {
	return access.Apply(db.Model(&models.Appointment{}), access.EntityAppointment, r).
		Preload("Client").Preload("Officer")
}

// ListAppointments returns visible appointments ordered by scheduled time
func ListAppointments(db *gorm.DB, r access.Requester, f AppointmentFilter, page Page) ([]models.Appointment, int64, error) {
	query := access.Apply(db.Model(&models.Appointment{}), access.EntityAppointment, r)

	if strings.TrimSpace(f.Date) != "" {
		day, err := ParseDate(f.Date, time.Local)
		if err != nil {
			verr := &ValidationError{}
			verr.Add("date", "Enter a valid date (YYYY-MM-DD).")
			return nil, 0, verr
		}
		start, end := models.UTCDayRange(day)
		query = query.Where("appointments.scheduled_at >= ? AND appointments.scheduled_at < ?", start, end)
	}
	if f.Status != "" {
		query = query.Where("appointments.status = ?", f.Status)
	}
	if f.ClientID != "" {
		query = query.Where("appointments.client_id = ?", f.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	var appointments []models.Appointment
	err := query.Preload("Client").Preload("Officer").
		Order("appointments.scheduled_at").
		Scopes(page.Scope()).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

// AppointmentsBetween returns visible appointments scheduled in [from, to)
func AppointmentsBetween(db *gorm.DB, r access.Requester, from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := visibleAppointments(db, r).
		Where("appointments.scheduled_at >= ? AND appointments.scheduled_at < ?", from.UTC(), to.UTC()).
		Order("appointments.scheduled_at").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// TodayAppointments returns the visible appointments of the local day containing now
func TodayAppointments(db *gorm.DB, r access.Requester, now time.Time) ([]models.Appointment, error) {
	start, end := models.DayRange(now)
	return AppointmentsBetween(db, r, start, end)
}

// UpcomingAppointments covers today through today+7, both days inclusive
func UpcomingAppointments(db *gorm.DB, r access.Requester, now time.Time) ([]models.Appointment, error) {
	start := models.StartOfDay(now)
	_, end := models.DayRange(start.AddDate(0, 0, UpcomingDays))
	return AppointmentsBetween(db, r, start, end)
}

// ClientAppointments returns every appointment of a visible client, newest first
func ClientAppointments(db *gorm.DB, r access.Requester, clientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := visibleAppointments(db, r).
		Where("appointments.client_id = ?", clientID).
		Order("appointments.scheduled_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list client appointments: %w", err)
	}
	return appointments, nil
}

// GetAppointment loads one visible appointment
func GetAppointment(db *gorm.DB, r access.Requester, id string) (*models.Appointment, error) {
	var apt models.Appointment
	err := visibleAppointments(db, r).
		Where("appointments.id = ?", id).
		First(&apt).Error
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	return &apt, nil
}

// CreateAppointment schedules an appointment for a visible client. Officers
// default to running it themselves.
func CreateAppointment(db *gorm.DB, r access.Requester, in AppointmentInput) (*models.Appointment, error) {
	if !access.CanCreateClient(r) {
		return nil, ErrForbidden
	}
	if r.Role == models.RoleOfficer {
		if isBlank(in.OfficerID) {
			in.OfficerID = &r.UserID
		} else if *in.OfficerID != r.UserID {
			return nil, ErrForbidden
		}
	}
	if isBlank(in.Status) {
		in.Status = ptrTo(models.AppointmentStatusScheduled)
	}
	if isBlank(in.AppointmentType) {
		in.AppointmentType = ptrTo(models.AppointmentTypeCheckin)
	}
	if in.DurationMinutes == nil {
		in.DurationMinutes = ptrTo(models.DefaultAppointmentDuration)
	}

	apt := &models.Appointment{}
	if err := applyAppointmentInput(db, r, apt, in, true); err != nil {
		return nil, err
	}
	if err := db.Create(apt).Error; err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return GetAppointment(db, r, apt.ID)
}

// UpdateAppointment applies the non-nil fields of in. Any status may follow any other.
func UpdateAppointment(db *gorm.DB, r access.Requester, id string, in AppointmentInput) (*models.Appointment, error) {
	apt, err := GetAppointment(db, r, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditAppointment(r, apt) {
		return nil, ErrForbidden
	}
	if r.Role == models.RoleOfficer && in.OfficerID != nil && *in.OfficerID != apt.OfficerID {
		return nil, ErrForbidden
	}

	previous := apt.ScheduledAt
	if err := applyAppointmentInput(db, r, apt, in, false); err != nil {
		return nil, err
	}
	// a moved appointment is reminded again
	if !apt.ScheduledAt.Equal(previous) {
		apt.ReminderSentAt = nil
	}

	apt.Client, apt.Officer = nil, nil
	if err := db.Omit("Client", "Officer").Save(apt).Error; err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return GetAppointment(db, r, id)
}

// DeleteAppointment removes an appointment the requester may edit
func DeleteAppointment(db *gorm.DB, r access.Requester, id string) error {
	apt, err := GetAppointment(db, r, id)
	if err != nil {
		return err
	}
	if !access.CanEditAppointment(r, apt) {
		return ErrForbidden
	}
	if err := db.Delete(&models.Appointment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func applyAppointmentInput(db *gorm.DB, r access.Requester, a *models.Appointment, in AppointmentInput, creating bool) error {
	verr := &ValidationError{}

	if creating || in.ClientID != nil {
		clientID := requireString(verr, "client_id", in.ClientID)
		if clientID != "" {
			if _, err := GetClient(db, r, clientID); err != nil {
				if !IsNotFound(err) {
					return err
				}
				verr.Add("client_id", "Select a valid client.")
			}
			a.ClientID = clientID
		}
	}
	if creating || in.OfficerID != nil {
		officerID := requireString(verr, "officer_id", in.OfficerID)
		if officerID != "" {
			officer, err := requireActiveOfficer(db, officerID)
			if err != nil {
				return err
			}
			if officer == nil {
				verr.Add("officer_id", "Select an active probation officer.")
			}
			a.OfficerID = officerID
		}
	}
	if creating || in.AppointmentType != nil {
		t := requireString(verr, "appointment_type", in.AppointmentType)
		if t != "" && !models.IsValidAppointmentType(t) {
			verr.Add("appointment_type", fmt.Sprintf("%q is not a valid choice.", t))
		}
		a.AppointmentType = t
	}
	if creating || in.Status != nil {
		s := requireString(verr, "status", in.Status)
		if s != "" && !models.IsValidAppointmentStatus(s) {
			verr.Add("status", fmt.Sprintf("%q is not a valid choice.", s))
		}
		a.Status = s
	}
	if creating || in.ScheduledDate != nil {
		if at := dateTimeField(verr, "scheduled_date", in.ScheduledDate, time.Local); at != nil {
			a.ScheduledAt = *at
		} else if isBlank(in.ScheduledDate) {
			verr.Add("scheduled_date", "This field is required.")
		}
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes <= 0 {
			verr.Add("duration_minutes", "Ensure this value is greater than 0.")
		}
		a.DurationMinutes = *in.DurationMinutes
	}
	if in.Location != nil {
		a.Location = strings.TrimSpace(*in.Location)
	}
	if in.Notes != nil {
		a.Notes = SanitizePlain(*in.Notes)
	}

	return verr.OrNil()
}

// DueReminders returns scheduled appointments starting within window of now
// that have not been reminded yet. Used by the reminder job, unscoped.
func DueReminders(db *gorm.DB, now time.Time, window time.Duration) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := db.Preload("Client").Preload("Officer").
		Where("status = ? AND reminder_sent_at IS NULL", models.AppointmentStatusScheduled).
		Where("scheduled_at >= ? AND scheduled_at < ?", now.UTC(), now.Add(window).UTC()).
		Order("scheduled_at").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load due reminders: %w", err)
	}
	return appointments, nil
}

// MarkReminded stamps the reminder time
func MarkReminded(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.Appointment{}).Where("id = ?", id).Update("reminder_sent_at", at.UTC()).Error
}
