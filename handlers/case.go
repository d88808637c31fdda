package handlers

import (
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListCasesHandler lists visible cases
func ListCasesHandler(c echo.Context) error {
	page, paged := pageFromQuery(c)
	cases, total, err := services.ListCases(dbFor(c), middleware.Requester(c), services.CaseFilter{
		Status:   c.QueryParam("status"),
		ClientID: c.QueryParam("client"),
		Query:    c.QueryParam("q"),
	}, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, cases, total, page, paged)
}

func GetCaseHandler(c echo.Context) error {
	kase, err := services.GetCase(dbFor(c), middleware.Requester(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, kase)
}

func CreateCaseHandler(c echo.Context) error {
	var in services.CaseInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	kase, err := services.CreateCase(dbFor(c), middleware.Requester(c), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "Case",
		ResourceID:   kase.ID,
		ResourceName: caseLabel(kase),
		Description:  "Case opened",
		NewValues:    kase,
	})
	invalidateDashboard(c, clientAudience(c, kase.ClientID)...)
	return c.JSON(http.StatusCreated, kase)
}

func UpdateCaseHandler(c echo.Context) error {
	var in services.CaseInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	before := recordAudience(c, &models.Case{}, c.Param("id"))
	kase, err := services.UpdateCase(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "Case",
		ResourceID:   kase.ID,
		ResourceName: caseLabel(kase),
		Description:  "Case updated",
		NewValues:    in,
	})
	invalidateDashboard(c, append(before, clientAudience(c, kase.ClientID)...)...)
	return c.JSON(http.StatusOK, kase)
}

func DeleteCaseHandler(c echo.Context) error {
	id := c.Param("id")
	before := recordAudience(c, &models.Case{}, id)
	if err := services.DeleteCase(dbFor(c), middleware.Requester(c), id); err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionDelete,
		ResourceType: "Case",
		ResourceID:   id,
		Description:  "Case deleted",
	})
	invalidateDashboard(c, before...)
	return c.NoContent(http.StatusNoContent)
}

// CasePlansResponse lists the rehabilitation plans of one case
type CasePlansResponse struct {
	CaseID     string                      `json:"case_id"`
	PlansCount int                         `json:"plans_count"`
	Plans      []models.RehabilitationPlan `json:"plans"`
}

// ListCasePlansHandler returns {case_id, plans_count, plans}
func ListCasePlansHandler(c echo.Context) error {
	caseID := c.Param("id")
	plans, err := services.ListPlans(dbFor(c), middleware.Requester(c), caseID)
	if err != nil {
		return respondError(c, err)
	}
	if plans == nil {
		plans = []models.RehabilitationPlan{}
	}
	return c.JSON(http.StatusOK, CasePlansResponse{CaseID: caseID, PlansCount: len(plans), Plans: plans})
}

func CreateCasePlanHandler(c echo.Context) error {
	var in services.PlanInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	plan, err := services.CreatePlan(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "RehabilitationPlan",
		ResourceID:   plan.ID,
		ResourceName: plan.Title,
		Description:  "Rehabilitation plan created",
	})
	return c.JSON(http.StatusCreated, plan)
}

func AddPlanItemHandler(c echo.Context) error {
	var in services.PlanItemInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	item, err := services.AddPlanItem(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// CompletePlanItemHandler marks an item done, stamping its completion date
func CompletePlanItemHandler(c echo.Context) error {
	item, err := services.CompletePlanItem(dbFor(c), middleware.Requester(c), c.Param("id"), now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// JudicialReviewHandler lists open plan items awaiting judicial review
func JudicialReviewHandler(c echo.Context) error {
	items, err := services.JudicialReviewItems(dbFor(c), middleware.Requester(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func caseLabel(kase *models.Case) string {
	if kase.CaseNumber != nil {
		return *kase.CaseNumber
	}
	return kase.ID
}
