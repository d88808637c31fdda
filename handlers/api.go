package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"probation_app_go/config"
	"probation_app_go/db"
	"probation_app_go/middleware"
	"probation_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Shared dependencies, set once by Configure at startup
var (
	dashboardCache *services.Cache
	pdfRenderer    services.PDFRenderer
)

// now is replaced in tests
var now = time.Now

// Configure installs the cache and PDF renderer used by dashboard and report handlers
func Configure(cache *services.Cache, pdf services.PDFRenderer) {
	dashboardCache = cache
	pdfRenderer = pdf
}

// dbFor binds the shared handle to the request context
func dbFor(c echo.Context) *gorm.DB {
	return db.DB.WithContext(c.Request().Context())
}

// getConfig returns the app config placed in the context by middleware.WithConfig
func getConfig(c echo.Context) *config.Config {
	if cfg := middleware.GetConfig(c); cfg != nil {
		return cfg
	}
	return &config.Config{Environment: "development", EmailTestMode: true}
}

// respondError maps service errors onto HTTP responses
func respondError(c echo.Context, err error) error {
	if verr, ok := services.AsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"errors": verr.Fields})
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not found."})
	case errors.Is(err, services.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"errors": map[string]string{"non_field_errors": "Unable to log in with provided credentials."},
		})
	}
	zap.L().Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// bindJSON decodes the request body into dst, reporting malformed input as a 400
func bindJSON(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"errors": map[string]string{"non_field_errors": "Malformed request body."},
		})
	}
	return nil
}

// pageFromQuery reads ?page and ?page_size. Without ?page the listing is unpaged.
func pageFromQuery(c echo.Context) (services.Page, bool) {
	raw := c.QueryParam("page")
	if raw == "" {
		return services.Page{}, false
	}
	number, _ := strconv.Atoi(raw)
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return services.NewPage(number, size), true
}

// PagedResponse wraps one page of a listing
type PagedResponse struct {
	Count      int64       `json:"count"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Results    interface{} `json:"results"`
}

// respondList writes a bare array, or a PagedResponse when a page was requested
func respondList(c echo.Context, items interface{}, total int64, page services.Page, paged bool) error {
	if !paged {
		return c.JSON(http.StatusOK, items)
	}
	return c.JSON(http.StatusOK, PagedResponse{
		Count:      total,
		Page:       page.Number,
		TotalPages: page.TotalPages(total),
		Results:    items,
	})
}

// boolQuery parses ?name=true|false; anything else is nil
func boolQuery(c echo.Context, name string) *bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	if err != nil {
		return nil
	}
	return &v
}

func audit(c echo.Context, e services.AuditEntry) {
	services.LogAuditEvent(dbFor(c), middleware.GetAuditContext(c), e)
}
