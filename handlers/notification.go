package handlers

import (
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListNotificationsHandler lists the current user's notifications, newest first
func ListNotificationsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	page, paged := pageFromQuery(c)
	notifications, total, err := services.NewNotificationService(dbFor(c)).List(user.ID, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, notifications, total, page, paged)
}

func GetNotificationHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	n, err := services.NewNotificationService(dbFor(c)).Get(c.Param("id"), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

// MarkNotificationReadHandler marks one notification read
func MarkNotificationReadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if err := services.NewNotificationService(dbFor(c)).MarkAsRead(c.Param("id"), user.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "marked as read"})
}

// MarkAllNotificationsReadHandler marks every unread notification of the caller read
func MarkAllNotificationsReadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	updated, err := services.NewNotificationService(dbFor(c)).MarkAllAsRead(user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "marked as read", "updated": updated})
}
