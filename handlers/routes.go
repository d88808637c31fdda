package handlers

import (
	"net/http"

	"probation_app_go/config"
	"probation_app_go/middleware"
	"probation_app_go/models"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the echo instance with every route and middleware
func NewRouter(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.WithConfig(cfg))
	e.Use(middleware.CSRF(cfg))

	registerPages(e)
	registerAPI(e)
	return e
}

func registerPages(e *echo.Echo) {
	web := e.Group("")
	web.Use(middleware.CSPNonce())

	web.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/dashboard") })
	web.GET("/login", LoginPageHandler)
	web.POST("/login", LoginPostHandler, middleware.LoginRateLimiter.Middleware())

	protected := web.Group("")
	protected.Use(middleware.RequireAuth())
	protected.Use(middleware.AuditContext())
	{
		protected.POST("/logout", LogoutHandler)
		protected.GET("/dashboard", DashboardHandler)
		protected.GET("/clients", ClientsPageHandler)
		protected.GET("/clients/:id", ClientDetailPageHandler)
		protected.GET("/clients/:id/analysis", ClientAnalysisPageHandler)
	}
}

func registerAPI(e *echo.Echo) {
	e.POST("/api/auth/login", APILoginHandler, middleware.LoginRateLimiter.Middleware())

	api := e.Group("/api")
	api.Use(middleware.RequireAPIAuth())
	api.Use(middleware.APIRateLimiter.Middleware())
	api.Use(middleware.AuditContext())

	api.GET("/auth/user", CurrentUserHandler)
	api.POST("/auth/logout", LogoutHandler)
	api.GET("/dashboard", DashboardAPIHandler)
	api.GET("/reports", ReportsHandler)
	api.POST("/sync", SyncHandler)
	api.GET("/officers", ListOfficersHandler)
	api.GET("/users", ListUsersHandler, middleware.RequireRole(models.RoleAdmin))
	api.GET("/judges", ListJudgesHandler)
	api.POST("/judges", CreateJudgeHandler, middleware.RequireRole(models.RoleAdmin))
	api.GET("/security/alerts", SecurityAlertsHandler, middleware.RequireRole(models.RoleAdmin))

	api.GET("/clients", ListClientsHandler)
	api.POST("/clients", CreateClientHandler)
	api.GET("/clients/:id", GetClientHandler)
	api.PUT("/clients/:id", UpdateClientHandler)
	api.PATCH("/clients/:id", UpdateClientHandler)
	api.DELETE("/clients/:id", DeleteClientHandler)
	api.GET("/clients/:id/ai_analysis", ClientAnalysisHandler)
	api.POST("/clients/:id/addresses", AddAddressHandler)
	api.DELETE("/clients/:id/addresses/:addressId", RemoveAddressHandler)
	api.POST("/clients/:id/offenses", AddOffenseHandler)

	api.GET("/appointments", ListAppointmentsHandler)
	api.POST("/appointments", CreateAppointmentHandler)
	api.GET("/appointments/today", TodayAppointmentsHandler)
	api.GET("/appointments/upcoming", UpcomingAppointmentsHandler)
	api.GET("/appointments/:id", GetAppointmentHandler)
	api.PUT("/appointments/:id", UpdateAppointmentHandler)
	api.PATCH("/appointments/:id", UpdateAppointmentHandler)
	api.DELETE("/appointments/:id", DeleteAppointmentHandler)

	api.GET("/cases", ListCasesHandler)
	api.POST("/cases", CreateCaseHandler)
	api.GET("/cases/:id", GetCaseHandler)
	api.PUT("/cases/:id", UpdateCaseHandler)
	api.PATCH("/cases/:id", UpdateCaseHandler)
	api.DELETE("/cases/:id", DeleteCaseHandler)
	api.GET("/cases/:id/rehabilitation_plans", ListCasePlansHandler)
	api.POST("/cases/:id/rehabilitation_plans", CreateCasePlanHandler)
	api.POST("/plans/:id/items", AddPlanItemHandler)
	api.POST("/plan-items/:id/complete", CompletePlanItemHandler)

	api.GET("/messages", ListMessagesHandler)
	api.POST("/messages", SendMessageHandler)
	api.GET("/messages/unread", UnreadMessagesHandler)
	api.GET("/messages/:id", GetMessageHandler)
	api.DELETE("/messages/:id", DeleteMessageHandler)

	api.GET("/notifications", ListNotificationsHandler)
	api.GET("/notifications/:id", GetNotificationHandler)
	api.POST("/notifications/mark_all_read", MarkAllNotificationsReadHandler)
	api.POST("/notifications/:id/mark_read", MarkNotificationReadHandler)

	api.GET("/courts", ListCourtsHandler)
	api.POST("/courts", CreateCourtHandler)
	api.GET("/courts/:id", GetCourtHandler)
	api.PUT("/courts/:id", UpdateCourtHandler)
	api.DELETE("/courts/:id", DeleteCourtHandler)

	api.GET("/court-cases", ListCourtCasesHandler)
	api.POST("/court-cases", CreateCourtCaseHandler)
	api.GET("/court-cases/:id", GetCourtCaseHandler)
	api.PUT("/court-cases/:id", UpdateCourtCaseHandler)

	api.GET("/hearings", ListHearingsHandler)
	api.POST("/hearings", CreateHearingHandler)
	api.PUT("/hearings/:id", UpdateHearingHandler)
	api.PUT("/hearings/:id/status", UpdateHearingStatusHandler)

	api.GET("/court-orders", ListCourtOrdersHandler)
	api.POST("/court-orders", CreateCourtOrderHandler)
	api.PUT("/court-orders/:id", UpdateCourtOrderHandler)
	api.GET("/court-orders/:id/file", DownloadCourtOrderFileHandler)

	judge := api.Group("/judge")
	judge.Use(middleware.RequireRole(models.RoleJudge))
	{
		judge.GET("/dashboard", JudgeDashboardHandler)
		judge.GET("/calendar", CourtCalendarHandler)
		judge.GET("/review", JudicialReviewHandler)
	}
}
