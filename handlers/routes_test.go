package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"probation_app_go/middleware"
	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	judge := createUser(t, database, "judge1", models.RoleJudge)
	createClient(t, database, "PR-001", officer)

	e := NewRouter(testConfig)

	session := func(user *models.User) string {
		s := &models.Session{UserID: user.ID, Token: "tok-" + user.Username, ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, database.Create(s).Error)
		return s.Token
	}
	admin := createUser(t, database, "admin1", models.RoleAdmin)
	officerToken := session(officer)
	judgeToken := session(judge)
	adminToken := session(admin)

	do := func(method, path, auth, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("LoginThenBearer", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/auth/login", "", `{"username":"officer1","password":"password123"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var login LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

		rec = do(http.MethodGet, "/api/clients", "Bearer "+login.Token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "PR-001")
	})

	t.Run("TokenScheme", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/dashboard", "Token "+officerToken, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("TrailingSlash", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/clients/", "Token "+officerToken, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NoCredentials", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/clients", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authentication credentials were not provided.")
	})

	t.Run("JudgeRoutesRequireJudge", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/judge/dashboard", "Token "+officerToken, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = do(http.MethodGet, "/api/judge/calendar", "Token "+judgeToken, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UsersRequireAdmin", func(t *testing.T) {
		rec := do(http.MethodGet, "/api/users", "Token "+officerToken, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = do(http.MethodGet, "/api/users?role=judge", "Token "+adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var users []models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		require.Len(t, users, 1)
		assert.Equal(t, "judge1", users[0].Username)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("CourtUpdatesRequireCourtManager", func(t *testing.T) {
		for _, path := range []string{"/api/court-cases/x", "/api/hearings/x", "/api/court-orders/x"} {
			rec := do(http.MethodPut, path, "Token "+officerToken, `{"notes":"x"}`)
			assert.Equal(t, http.StatusForbidden, rec.Code, path)

			rec = do(http.MethodPut, path, "Token "+adminToken, `{"notes":"x"}`)
			assert.Equal(t, http.StatusNotFound, rec.Code, path)
		}
	})

	t.Run("MarkAllNotificationsRead", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/notifications/mark_all_read", "Token "+officerToken, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("PageRedirectsToLogin", func(t *testing.T) {
		rec := do(http.MethodGet, "/clients", "", "")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("PageWithSessionCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: officerToken})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "PR-001")
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "nonce-")
	})

	t.Run("LoginPage", func(t *testing.T) {
		rec := do(http.MethodGet, "/login", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="_csrf"`)
	})
}
