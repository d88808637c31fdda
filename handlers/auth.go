package handlers

import (
	"errors"
	"net/http"

	"probation_app_go/middleware"
	"probation_app_go/models"
	"probation_app_go/services"
	"probation_app_go/templates/pages"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the token issuance body
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse carries the issued token with the user's identity
type LoginResponse struct {
	Token    string      `json:"token"`
	UserID   string      `json:"user_id"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	UserType models.Role `json:"user_type"`
	FullName string      `json:"full_name"`
}

// APILoginHandler exchanges credentials for a token
func APILoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	verr := &services.ValidationError{}
	if req.Username == "" {
		verr.Add("username", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return respondError(c, err)
	}

	user, session, err := startSession(c, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:    session.Token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		UserType: user.Role,
		FullName: user.FullName(),
	})
}

// startSession authenticates and issues a session, auditing the login
func startSession(c echo.Context, req LoginRequest) (*models.User, *models.Session, error) {
	database := dbFor(c)
	user, err := services.Authenticate(database, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			services.Monitor.TrackFailedLogin(c.RealIP())
		}
		return nil, nil, err
	}
	services.Monitor.ClearFailedLogins(c.RealIP())
	session, err := services.CreateSession(database, user.ID, c.RealIP(), c.Request().UserAgent(), getConfig(c).SessionTTL)
	if err != nil {
		return nil, nil, err
	}

	services.LogAuditEvent(database, services.AuditContext{
		UserID:    user.ID,
		UserName:  user.FullName(),
		UserRole:  string(user.Role),
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}, services.AuditEntry{
		Action:       models.AuditActionLogin,
		ResourceType: "User",
		ResourceID:   user.ID,
		ResourceName: user.Username,
		Description:  "User logged in",
	})
	return user, session, nil
}

// CurrentUserHandler returns the authenticated user
func CurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// SecurityAlertsHandler lists recent failed-login alerts for administrators
func SecurityAlertsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Monitor.RecentAlerts())
}

// LoginPageHandler renders the login form
func LoginPageHandler(c echo.Context) error {
	return render(c, http.StatusOK, pages.Login(pages.LoginData{
		CSRFToken: middleware.GetCSRFToken(c),
		Flash:     takeFlash(c),
	}))
}

// LoginPostHandler handles the login form submission
func LoginPostHandler(c echo.Context) error {
	req := LoginRequest{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}

	_, session, err := startSession(c, req)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			return respondError(c, err)
		}
		return render(c, http.StatusOK, pages.Login(pages.LoginData{
			CSRFToken: middleware.GetCSRFToken(c),
			Username:  req.Username,
			Error:     "Please enter a correct username and password.",
		}))
	}

	middleware.SetSessionCookie(c, session)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// LogoutHandler ends the session of the browser or token
func LogoutHandler(c echo.Context) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		audit(c, services.AuditEntry{
			Action:       models.AuditActionLogout,
			ResourceType: "User",
			ResourceID:   user.ID,
			ResourceName: user.Username,
			Description:  "User logged out",
		})
	}
	if session := middleware.GetSession(c); session != nil {
		_ = services.DeleteSession(dbFor(c), session.Token)
	}
	middleware.ClearSessionCookie(c)

	if c.Request().Method == http.MethodPost && isAPI(c) {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}
