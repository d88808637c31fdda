package handlers

import (
	"encoding/json"
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// SyncHandler acknowledges an offline batch without applying it
func SyncHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	payload := map[string]json.RawMessage{}
	if err := bindJSON(c, &payload); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, services.AcknowledgeSync(user.ID, payload))
}
