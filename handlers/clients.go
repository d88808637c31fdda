package handlers

import (
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListClientsHandler lists visible clients
func ListClientsHandler(c echo.Context) error {
	page, paged := pageFromQuery(c)
	clients, total, err := services.ListClients(dbFor(c), middleware.Requester(c), services.ClientFilter{
		Query:     c.QueryParam("q"),
		Status:    c.QueryParam("status"),
		RiskLevel: c.QueryParam("risk_level"),
		OfficerID: c.QueryParam("officer"),
	}, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, clients, total, page, paged)
}

// GetClientHandler returns one visible client
func GetClientHandler(c echo.Context) error {
	client, err := services.GetClient(dbFor(c), middleware.Requester(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// CreateClientHandler registers a client
func CreateClientHandler(c echo.Context) error {
	var in services.ClientInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	client, err := services.CreateClient(dbFor(c), middleware.Requester(c), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "Client",
		ResourceID:   client.ID,
		ResourceName: client.FullName(),
		Description:  "Client created",
		NewValues:    client,
	})
	invalidateDashboard(c, clientAudience(c, client.ID)...)
	return c.JSON(http.StatusCreated, client)
}

// UpdateClientHandler applies a partial update
func UpdateClientHandler(c echo.Context) error {
	var in services.ClientInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	before := clientAudience(c, c.Param("id"))
	client, err := services.UpdateClient(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "Client",
		ResourceID:   client.ID,
		ResourceName: client.FullName(),
		Description:  "Client updated",
		NewValues:    in,
	})
	invalidateDashboard(c, append(before, client.AssignedOfficerID)...)
	return c.JSON(http.StatusOK, client)
}

// DeleteClientHandler removes a client and everything attached to it
func DeleteClientHandler(c echo.Context) error {
	before := clientAudience(c, c.Param("id"))
	client, err := services.DeleteClient(dbFor(c), middleware.Requester(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionDelete,
		ResourceType: "Client",
		ResourceID:   client.ID,
		ResourceName: client.FullName(),
		Description:  "Client deleted",
		OldValues:    client,
	})
	invalidateDashboard(c, before...)
	return c.NoContent(http.StatusNoContent)
}

// ClientAnalysisHandler runs the risk engine for one client
func ClientAnalysisHandler(c echo.Context) error {
	_, analysis, err := services.NewRiskService(dbFor(c)).AnalyzeClient(c.Request().Context(), middleware.Requester(c), c.Param("id"), now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

// AddAddressHandler attaches an address to a client
func AddAddressHandler(c echo.Context) error {
	var in services.AddressInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	address, err := services.AddAddress(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, address)
}

// RemoveAddressHandler deletes one address of a client
func RemoveAddressHandler(c echo.Context) error {
	if err := services.RemoveAddress(dbFor(c), middleware.Requester(c), c.Param("id"), c.Param("addressId")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddOffenseHandler records an offense against a client
func AddOffenseHandler(c echo.Context) error {
	var in services.OffenseInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	offense, err := services.AddOffense(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, offense)
}
