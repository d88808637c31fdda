package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
)

// ReportsHandler builds a report (?type=clients|appointments|officers) and
// writes it as json, csv, pdf or xlsx (?format)
func ReportsHandler(c echo.Context) error {
	kind := strings.ToLower(c.QueryParam("type"))
	if kind == "" {
		kind = services.ReportClients
	}
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = services.FormatJSON
	}
	if !services.IsReportFormat(format) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid report format"})
	}

	report, err := services.BuildReport(c.Request().Context(), dbFor(c), middleware.Requester(c), kind, now())
	if err != nil {
		if errors.Is(err, services.ErrInvalidReportType) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid report type"})
		}
		return respondError(c, err)
	}

	audit(c, services.AuditEntry{
		Action:       models.AuditActionDownload,
		ResourceType: "Report",
		ResourceName: report.Filename(format),
		Description:  "Report generated",
	})

	switch format {
	case services.FormatCSV:
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf); err != nil {
			return respondError(c, err)
		}
		return attachment(c, report.Filename(format), "text/csv; charset=utf-8", buf.Bytes())

	case services.FormatXLSX:
		data, err := report.XLSX()
		if err != nil {
			return respondError(c, err)
		}
		return attachment(c, report.Filename(format), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)

	case services.FormatPDF:
		if pdfRenderer == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "PDF rendering is unavailable"})
		}
		data, err := report.PDF(c.Request().Context(), pdfRenderer)
		if err != nil {
			return respondError(c, err)
		}
		return attachment(c, report.Filename(format), "application/pdf", data)
	}

	return c.JSON(http.StatusOK, report)
}

func attachment(c echo.Context, filename, contentType string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, contentType, data)
}
