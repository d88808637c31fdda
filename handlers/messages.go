package handlers

import (
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListMessagesHandler lists messages sent or received by the current user
func ListMessagesHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	page, paged := pageFromQuery(c)
	messages, total, err := services.ListMessages(dbFor(c), user.ID, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, messages, total, page, paged)
}

// SendMessageHandler sends a message from the current user
func SendMessageHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	var in services.MessageInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	msg, err := services.SendMessage(dbFor(c), getConfig(c), user.ID, in, now())
	if err != nil {
		return respondError(c, err)
	}
	invalidateDashboard(c, msg.RecipientID)
	return c.JSON(http.StatusCreated, msg)
}

// GetMessageHandler returns a message, marking it read for its recipient
func GetMessageHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	msg, err := services.GetMessage(dbFor(c), user.ID, c.Param("id"), now())
	if err != nil {
		return respondError(c, err)
	}
	invalidateDashboard(c, user.ID)
	return c.JSON(http.StatusOK, msg)
}

func DeleteMessageHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if err := services.DeleteMessage(dbFor(c), user.ID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UnreadMessagesHandler returns {"unread_count": n}
func UnreadMessagesHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	count, err := services.UnreadMessageCount(dbFor(c), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": count})
}
