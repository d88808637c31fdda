package handlers

import (
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListAppointmentsHandler lists visible appointments with optional date and status filters
func ListAppointmentsHandler(c echo.Context) error {
	page, paged := pageFromQuery(c)
	appointments, total, err := services.ListAppointments(dbFor(c), middleware.Requester(c), services.AppointmentFilter{
		Date:     c.QueryParam("date"),
		Status:   c.QueryParam("status"),
		ClientID: c.QueryParam("client"),
	}, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, appointments, total, page, paged)
}

// TodayAppointmentsHandler lists today's visible appointments
func TodayAppointmentsHandler(c echo.Context) error {
	appointments, err := services.TodayAppointments(dbFor(c), middleware.Requester(c), now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, appointments)
}

// UpcomingAppointmentsHandler lists visible appointments from today through the next seven days
func UpcomingAppointmentsHandler(c echo.Context) error {
	appointments, err := services.UpcomingAppointments(dbFor(c), middleware.Requester(c), now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, appointments)
}

func GetAppointmentHandler(c echo.Context) error {
	appointment, err := services.GetAppointment(dbFor(c), middleware.Requester(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, appointment)
}

func CreateAppointmentHandler(c echo.Context) error {
	var in services.AppointmentInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	appointment, err := services.CreateAppointment(dbFor(c), middleware.Requester(c), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "Appointment",
		ResourceID:   appointment.ID,
		Description:  "Appointment scheduled",
		NewValues:    appointment,
	})
	invalidateDashboard(c, clientAudience(c, appointment.ClientID)...)
	return c.JSON(http.StatusCreated, appointment)
}

func UpdateAppointmentHandler(c echo.Context) error {
	var in services.AppointmentInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	before := recordAudience(c, &models.Appointment{}, c.Param("id"))
	appointment, err := services.UpdateAppointment(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "Appointment",
		ResourceID:   appointment.ID,
		Description:  "Appointment updated",
		NewValues:    in,
	})
	invalidateDashboard(c, append(before, clientAudience(c, appointment.ClientID)...)...)
	return c.JSON(http.StatusOK, appointment)
}

func DeleteAppointmentHandler(c echo.Context) error {
	id := c.Param("id")
	before := recordAudience(c, &models.Appointment{}, id)
	if err := services.DeleteAppointment(dbFor(c), middleware.Requester(c), id); err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionDelete,
		ResourceType: "Appointment",
		ResourceID:   id,
		Description:  "Appointment deleted",
	})
	invalidateDashboard(c, before...)
	return c.NoContent(http.StatusNoContent)
}
