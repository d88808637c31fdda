package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"
	"probation_app_go/services/access"

	"github.com/labstack/echo/v4"
)

// ListCourtsHandler lists active courts; managers may include inactive ones
func ListCourtsHandler(c echo.Context) error {
	includeInactive := c.QueryParam("include_inactive") == "true" && access.CanManageCourts(middleware.Requester(c))
	courts, err := services.ListCourts(dbFor(c), includeInactive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, courts)
}

func GetCourtHandler(c echo.Context) error {
	court, err := services.GetCourt(dbFor(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, court)
}

func CreateCourtHandler(c echo.Context) error {
	var in services.CourtInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	court, err := services.CreateCourt(dbFor(c), middleware.Requester(c), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "Court",
		ResourceID:   court.ID,
		ResourceName: court.Name,
		Description:  "Court created",
	})
	return c.JSON(http.StatusCreated, court)
}

func UpdateCourtHandler(c echo.Context) error {
	var in services.CourtInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	court, err := services.UpdateCourt(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "Court",
		ResourceID:   court.ID,
		ResourceName: court.Name,
		Description:  "Court updated",
		NewValues:    in,
	})
	return c.JSON(http.StatusOK, court)
}

// DeleteCourtHandler deactivates a court
func DeleteCourtHandler(c echo.Context) error {
	id := c.Param("id")
	if err := services.DeactivateCourt(dbFor(c), middleware.Requester(c), id); err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionDelete,
		ResourceType: "Court",
		ResourceID:   id,
		Description:  "Court deactivated",
	})
	return c.NoContent(http.StatusNoContent)
}

// ListCourtCasesHandler lists visible court cases
func ListCourtCasesHandler(c echo.Context) error {
	page, paged := pageFromQuery(c)
	cases, total, err := services.ListCourtCases(dbFor(c), middleware.Requester(c), services.CourtCaseFilter{
		Status:  c.QueryParam("status"),
		CourtID: c.QueryParam("court"),
		JudgeID: c.QueryParam("judge"),
		Query:   c.QueryParam("search"),
	}, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, cases, total, page, paged)
}

// GetCourtCaseHandler returns a court case with its hearings and orders
func GetCourtCaseHandler(c echo.Context) error {
	cc, err := services.GetCourtCase(dbFor(c), middleware.Requester(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cc)
}

func CreateCourtCaseHandler(c echo.Context) error {
	var in services.CourtCaseInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	cc, err := services.CreateCourtCase(dbFor(c), middleware.Requester(c), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "CourtCase",
		ResourceID:   cc.ID,
		ResourceName: cc.CaseNumber,
		Description:  "Court case filed",
	})
	return c.JSON(http.StatusCreated, cc)
}

// UpdateCourtCaseHandler edits a court case
func UpdateCourtCaseHandler(c echo.Context) error {
	var in services.CourtCaseInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	cc, err := services.UpdateCourtCase(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "CourtCase",
		ResourceID:   cc.ID,
		ResourceName: cc.CaseNumber,
		Description:  "Court case updated",
		NewValues:    in,
	})
	return c.JSON(http.StatusOK, cc)
}

// ListHearingsHandler lists visible hearings
func ListHearingsHandler(c echo.Context) error {
	page, paged := pageFromQuery(c)
	hearings, total, err := services.ListHearings(dbFor(c), middleware.Requester(c), services.HearingFilter{
		CourtID:   c.QueryParam("court"),
		JudgeID:   c.QueryParam("judge"),
		Completed: boolQuery(c, "completed"),
	}, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, hearings, total, page, paged)
}

func CreateHearingHandler(c echo.Context) error {
	var in services.HearingInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	hearing, err := services.CreateHearing(dbFor(c), middleware.Requester(c), in, now())
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "Hearing",
		ResourceID:   hearing.ID,
		Description:  "Hearing scheduled",
	})
	return c.JSON(http.StatusCreated, hearing)
}

// UpdateHearingHandler reschedules a hearing
func UpdateHearingHandler(c echo.Context) error {
	var in services.HearingUpdateInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	hearing, err := services.UpdateHearing(dbFor(c), middleware.Requester(c), c.Param("id"), in, now())
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "Hearing",
		ResourceID:   hearing.ID,
		Description:  "Hearing rescheduled",
		NewValues:    in,
	})
	return c.JSON(http.StatusOK, hearing)
}

// UpdateHearingStatusHandler records completion and outcome of a hearing
func UpdateHearingStatusHandler(c echo.Context) error {
	var in services.HearingStatusInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	hearing, err := services.UpdateHearingStatus(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "Hearing",
		ResourceID:   hearing.ID,
		Description:  "Hearing status updated",
		NewValues:    in,
	})
	return c.JSON(http.StatusOK, hearing)
}

// ListCourtOrdersHandler lists visible court orders
func ListCourtOrdersHandler(c echo.Context) error {
	page, paged := pageFromQuery(c)
	orders, total, err := services.ListCourtOrders(dbFor(c), middleware.Requester(c), services.CourtOrderFilter{
		OrderType: c.QueryParam("order_type"),
		CourtID:   c.QueryParam("court"),
		JudgeID:   c.QueryParam("judge"),
		Active:    boolQuery(c, "active"),
	}, page)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, orders, total, page, paged)
}

// CreateCourtOrderHandler accepts JSON, or a multipart form with an optional "file"
func CreateCourtOrderHandler(c echo.Context) error {
	var in services.CourtOrderInput
	var file *multipart.FileHeader

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		in = services.CourtOrderInput{
			CourtCaseID:   c.FormValue("court_case_id"),
			OrderType:     c.FormValue("order_type"),
			OrderDate:     c.FormValue("order_date"),
			EffectiveDate: c.FormValue("effective_date"),
			JudgeID:       c.FormValue("judge_id"),
			OrderText:     c.FormValue("order_text"),
		}
		fh, err := c.FormFile("file")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": map[string]string{"file": "Upload could not be read."}})
		}
		file = fh
	} else if err := bindJSON(c, &in); err != nil {
		return err
	}

	order, err := services.CreateCourtOrder(c.Request().Context(), dbFor(c), services.Storage, middleware.Requester(c), in, file)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "CourtOrder",
		ResourceID:   order.ID,
		ResourceName: order.FileName,
		Description:  "Court order filed",
	})
	return c.JSON(http.StatusCreated, order)
}

func UpdateCourtOrderHandler(c echo.Context) error {
	var in services.CourtOrderUpdateInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	order, err := services.UpdateCourtOrder(dbFor(c), middleware.Requester(c), c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	audit(c, services.AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "CourtOrder",
		ResourceID:   order.ID,
		Description:  "Court order updated",
		NewValues:    in,
	})
	return c.JSON(http.StatusOK, order)
}

// DownloadCourtOrderFileHandler redirects to a presigned link when the store
// issues one and streams the document otherwise
func DownloadCourtOrderFileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	r := middleware.Requester(c)
	url, order, err := services.CourtOrderFileURL(ctx, dbFor(c), services.Storage, r, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	downloaded := services.AuditEntry{
		Action:       models.AuditActionDownload,
		ResourceType: "CourtOrder",
		ResourceID:   order.ID,
		ResourceName: order.FileName,
		Description:  "Court order document downloaded",
	}
	if url != "" {
		audit(c, downloaded)
		return c.Redirect(http.StatusFound, url)
	}

	rc, order, err := services.OpenCourtOrderFile(ctx, dbFor(c), services.Storage, r, order.ID)
	if err != nil {
		return respondError(c, err)
	}
	defer rc.Close()
	audit(c, downloaded)

	contentType := order.FileMimeType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+strings.ReplaceAll(order.FileName, `"`, "")+`"`)
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response().Writer, rc)
	return err
}
