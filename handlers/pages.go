package handlers

import (
	"errors"
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"
	"probation_app_go/templates/pages"
	"probation_app_go/templates/partials"

	"github.com/labstack/echo/v4"
)

func layoutData(c echo.Context, title string) partials.LayoutData {
	return partials.LayoutData{
		Title:     title,
		User:      middleware.GetCurrentUser(c),
		CSRFToken: middleware.GetCSRFToken(c),
		Flash:     takeFlash(c),
	}
}

// pageError turns a hidden client into a redirect with a message and a
// missing one into a 404
func pageError(c echo.Context, err error, clientID, message string) error {
	if !errors.Is(err, services.ErrNotFound) {
		return respondError(c, err)
	}
	var n int64
	if cerr := dbFor(c).Model(&models.Client{}).Where("id = ?", clientID).Count(&n).Error; cerr != nil {
		return respondError(c, cerr)
	}
	if n == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}
	services.LogSecurityEvent("ACCESS_DENIED", middleware.GetCurrentUser(c).ID, "client "+clientID+" outside visible set")
	return denyPage(c, message)
}

// ClientsPageHandler renders the visible clients, filtered by ?q
func ClientsPageHandler(c echo.Context) error {
	query := c.QueryParam("q")
	clients, total, err := services.ListClients(dbFor(c), middleware.Requester(c), services.ClientFilter{Query: query}, services.Page{})
	if err != nil {
		return respondError(c, err)
	}
	return render(c, http.StatusOK, pages.ClientList(pages.ClientListData{
		Layout:  layoutData(c, "Clients"),
		Clients: clients,
		Query:   query,
		Total:   total,
	}))
}

// ClientDetailPageHandler renders a client with the basic compliance summary
func ClientDetailPageHandler(c echo.Context) error {
	id := c.Param("id")
	r := middleware.Requester(c)
	client, err := services.GetClient(dbFor(c), r, id)
	if err != nil {
		return pageError(c, err, id, "You don't have permission to view this client.")
	}
	basic, err := services.NewRiskService(dbFor(c)).BasicForClient(c.Request().Context(), r, id, now())
	if err != nil {
		return respondError(c, err)
	}
	appointments, err := services.ClientAppointments(dbFor(c), r, id)
	if err != nil {
		return respondError(c, err)
	}
	return render(c, http.StatusOK, pages.ClientDetail(pages.ClientDetailData{
		Layout:       layoutData(c, client.FullName()),
		Client:       client,
		Basic:        basic,
		Appointments: appointments,
	}))
}

// ClientAnalysisPageHandler renders the full risk analysis of a client
func ClientAnalysisPageHandler(c echo.Context) error {
	id := c.Param("id")
	client, analysis, err := services.NewRiskService(dbFor(c)).AnalyzeClient(c.Request().Context(), middleware.Requester(c), id, now())
	if err != nil {
		return pageError(c, err, id, "You don't have permission to view this client's analysis.")
	}
	return render(c, http.StatusOK, pages.ClientAnalysis(pages.ClientAnalysisData{
		Layout:   layoutData(c, "Risk analysis"),
		Client:   client,
		Analysis: analysis,
	}))
}
