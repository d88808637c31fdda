package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashCookie(t *testing.T, header http.Header) string {
	t.Helper()
	for _, cookie := range (&http.Response{Header: header}).Cookies() {
		if cookie.Name == flashCookieName {
			msg, err := url.QueryUnescape(cookie.Value)
			require.NoError(t, err)
			return msg
		}
	}
	return ""
}

func TestClientDetailPageHandler(t *testing.T) {
	database := setupTestDB(t)
	officerA := createUser(t, database, "officera", models.RoleOfficer)
	officerB := createUser(t, database, "officerb", models.RoleOfficer)
	client := createClient(t, database, "PR-001", officerA)
	other := createClient(t, database, "PR-002", officerA)
	apt := createAppointment(t, database, client, officerA, time.Now().Add(48*time.Hour), models.AppointmentStatusScheduled)
	require.NoError(t, database.Model(apt).Update("location", "Field office 12").Error)
	elsewhere := createAppointment(t, database, other, officerA, time.Now().Add(24*time.Hour), models.AppointmentStatusScheduled)
	require.NoError(t, database.Model(elsewhere).Update("location", "Annex 3").Error)

	t.Run("Owner", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/clients/"+client.ID, "")
		require.NoError(t, ClientDetailPageHandler(withParam(as(c, officerA), "id", client.ID)))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "PR-001")
		assert.Contains(t, body, "Field office 12")
		assert.NotContains(t, body, "Annex 3")
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	})

	t.Run("HiddenClientRedirectsWithMessage", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/clients/"+client.ID, "")
		require.NoError(t, ClientDetailPageHandler(withParam(as(c, officerB), "id", client.ID)))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/clients", rec.Header().Get("Location"))
		assert.Equal(t, "You don't have permission to view this client.", flashCookie(t, rec.Header()))
	})

	t.Run("MissingClient404", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/clients/nope", "")
		err := ClientDetailPageHandler(withParam(as(c, officerA), "id", "nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestClientAnalysisPageHandler(t *testing.T) {
	database := setupTestDB(t)
	officerA := createUser(t, database, "officera", models.RoleOfficer)
	officerB := createUser(t, database, "officerb", models.RoleOfficer)
	client := createClient(t, database, "PR-001", officerA)

	_, c, rec := setupEcho(http.MethodGet, "/clients/"+client.ID+"/analysis", "")
	require.NoError(t, ClientAnalysisPageHandler(withParam(as(c, officerA), "id", client.ID)))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, c, rec = setupEcho(http.MethodGet, "/clients/"+client.ID+"/analysis", "")
	require.NoError(t, ClientAnalysisPageHandler(withParam(as(c, officerB), "id", client.ID)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "You don't have permission to view this client's analysis.", flashCookie(t, rec.Header()))
}

func TestClientsPageHandler(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	createClient(t, database, "PR-001", officer)
	createClient(t, database, "PR-777", officer)

	_, c, rec := setupEcho(http.MethodGet, "/clients?q=777", "")
	require.NoError(t, ClientsPageHandler(as(c, officer)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PR-777")
	assert.NotContains(t, rec.Body.String(), "PR-001")
}

func TestDashboardPageHandler(t *testing.T) {
	database := setupTestDB(t)
	freezeNow(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)

	_, c, rec := setupEcho(http.MethodGet, "/dashboard", "")
	require.NoError(t, DashboardHandler(as(c, officer)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "officer1 Test")
}
