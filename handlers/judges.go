package handlers

import (
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListOfficersHandler lists active probation officers by name
func ListOfficersHandler(c echo.Context) error {
	officers, err := services.ListActiveOfficers(dbFor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, officers)
}

// ListUsersHandler lists every account for administrators
func ListUsersHandler(c echo.Context) error {
	page, paged := pageFromQuery(c)
	users, total, err := services.ListUsers(dbFor(c), services.UserFilter{
		Role:   c.QueryParam("role"),
		Active: boolQuery(c, "active"),
		Query:  c.QueryParam("search"),
	}, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, users, total, page, paged)
}

// ListJudgesHandler lists active judge profiles
func ListJudgesHandler(c echo.Context) error {
	judges, err := services.ListActiveJudges(dbFor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, judges)
}

// CreateJudgeHandler creates the profile of a judge user
func CreateJudgeHandler(c echo.Context) error {
	var in services.JudgeInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	judge, err := services.CreateJudgeProfile(dbFor(c), middleware.Requester(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, judge)
}

// JudgeDashboardHandler summarizes the docket of the current judge
func JudgeDashboardHandler(c echo.Context) error {
	d, err := services.BuildJudgeDashboard(dbFor(c), middleware.Requester(c), now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// CourtCalendarHandler lists hearings and court dates for the coming weeks
func CourtCalendarHandler(c echo.Context) error {
	days, err := services.CourtCalendar(dbFor(c), middleware.Requester(c), now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, days)
}
