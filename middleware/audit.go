package middleware

import (
	"errors"
	"net/http"

	"probation_app_go/db"
	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyAuditContext = "audit_context"

// AuditContext captures the actor of the request for audit records and
// records every request that ends in 403.
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := services.AuditContext{
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			}
			if user := GetCurrentUser(c); user != nil {
				actor.UserID = user.ID
				actor.UserName = user.FullName()
				actor.UserRole = string(user.Role)
			}
			c.Set(ContextKeyAuditContext, actor)

			err := next(c)
			if denied(c, err) && db.DB != nil {
				services.LogAuditEvent(db.DB, actor, deniedEntry(c))
			}
			return err
		}
	}
}

// denied reports a 403, whether already written or still carried by err
func denied(c echo.Context, err error) bool {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code == http.StatusForbidden
	}
	return err == nil && c.Response().Committed && c.Response().Status == http.StatusForbidden
}

func deniedEntry(c echo.Context) services.AuditEntry {
	id := c.Param("id")
	if id == "" {
		id = "-"
	}
	return services.AuditEntry{
		Action:       models.AuditActionDenied,
		ResourceType: "request",
		ResourceID:   id,
		Description:  c.Request().Method + " " + c.Path(),
	}
}

// GetAuditContext returns the actor captured by AuditContext
func GetAuditContext(c echo.Context) services.AuditContext {
	if actor, ok := c.Get(ContextKeyAuditContext).(services.AuditContext); ok {
		return actor
	}
	return services.AuditContext{}
}
