package middleware

import (
	"net/http"
	"strings"

	"probation_app_go/config"
	"probation_app_go/db"
	"probation_app_go/models"
	"probation_app_go/services"
	"probation_app_go/services/access"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "probation_session"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
	// ContextKeyConfig is the context key for the app config
	ContextKeyConfig = "config"
)

// RequireAuth protects browser pages with the session cookie. Missing or
// stale sessions redirect to the login page.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			session, err := services.ValidateSession(db.DB, cookie.Value)
			if err != nil || !session.User.IsActive {
				ClearSessionCookie(c)
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			if !session.User.Role.Valid() {
				rejectRole(c, &session.User)
				ClearSessionCookie(c)
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			setIdentity(c, session)
			return next(c)
		}
	}
}

// RequireAPIAuth protects the REST API. The token comes from an
// "Authorization: Token <t>" or "Authorization: Bearer <t>" header. Read-only
// requests may fall back to the session cookie; writes need the header, which
// keeps the API out of reach of cross-site forms.
func RequireAPIAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" && isSafeMethod(c.Request().Method) {
				if cookie, err := c.Cookie(SessionCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			}

			session, err := services.ValidateSession(db.DB, token)
			if err != nil || !session.User.IsActive {
				return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			}
			if !session.User.Role.Valid() {
				rejectRole(c, &session.User)
				return c.JSON(http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
			}

			setIdentity(c, session)
			return next(c)
		}
	}
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead
}

func tokenFromHeader(h string) string {
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return ""
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1]
	}
	return ""
}

func setIdentity(c echo.Context, session *models.Session) {
	c.Set(ContextKeyUser, &session.User)
	c.Set(ContextKeySession, session)
}

func rejectRole(c echo.Context, u *models.User) {
	services.LogSecurityEvent("UNRECOGNIZED_ROLE", u.ID, "role="+string(u.Role)+" path="+c.Request().URL.Path)
}

// RequireRole allows only the listed roles
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetSession retrieves the current session from context
func GetSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// Requester is the access identity of the current user. Without a user it
// is the zero Requester, which sees nothing.
func Requester(c echo.Context) access.Requester {
	return access.FromUser(GetCurrentUser(c))
}

// WithConfig makes cfg available to handlers and cookie helpers
func WithConfig(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyConfig, cfg)
			return next(c)
		}
	}
}

// GetConfig retrieves the app config from context
func GetConfig(c echo.Context) *config.Config {
	cfg, _ := c.Get(ContextKeyConfig).(*config.Config)
	return cfg
}

func secureCookies(c echo.Context) bool {
	cfg := GetConfig(c)
	return cfg != nil && cfg.IsProduction()
}

// SetSessionCookie stores the session token in the browser
func SetSessionCookie(c echo.Context, session *models.Session) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   secureCookies(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookies(c),
		SameSite: http.SameSiteLaxMode,
	})
}
