package handlers

import (
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/services"
	"probation_app_go/templates/pages"

	"github.com/labstack/echo/v4"
)

func dashboardService(c echo.Context) *services.DashboardService {
	return services.NewDashboardService(dbFor(c), dashboardCache)
}

// invalidateDashboard drops the cached counters of users touched by a write
func invalidateDashboard(c echo.Context, userIDs ...string) {
	dashboardService(c).Invalidate(c.Request().Context(), userIDs...)
}

// clientAudience collects the users whose counters include a client. Taken
// before a write it keeps previous officers and judges in the set.
func clientAudience(c echo.Context, clientID string) []string {
	return dashboardService(c).ClientAudience(c.Request().Context(), clientID)
}

func recordAudience(c echo.Context, model interface{}, id string) []string {
	return dashboardService(c).RecordAudience(c.Request().Context(), model, id)
}

// DashboardAPIHandler returns the user summary and role specific counters
func DashboardAPIHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	dashboard, err := dashboardService(c).Build(c.Request().Context(), user, now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}

// DashboardHandler renders the dashboard page
func DashboardHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	ctx := c.Request().Context()
	svc := dashboardService(c)
	at := now()

	dashboard, err := svc.Build(ctx, user, at)
	if err != nil {
		return respondError(c, err)
	}
	activity, err := svc.Activity(ctx, user, at)
	if err != nil {
		return respondError(c, err)
	}

	return render(c, http.StatusOK, pages.Dashboard(pages.DashboardData{
		Layout:    layoutData(c, "Dashboard"),
		Dashboard: dashboard,
		Activity:  activity,
		Now:       at,
	}))
}
