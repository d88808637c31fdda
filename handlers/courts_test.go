package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCourtHandlers(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	admin := createUser(t, database, "admin", models.RoleAdmin)

	body := `{"name":"Springfield Circuit Court","court_type":"superior","address":"1 Main St"}`

	_, c, rec := setupEcho(http.MethodPost, "/api/courts", body)
	require.NoError(t, CreateCourtHandler(as(c, officer)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, c, rec = setupEcho(http.MethodPost, "/api/courts", body)
	require.NoError(t, CreateCourtHandler(as(c, admin)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var court models.Court
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &court))
	assert.True(t, court.IsActive)

	_, c, rec = setupEcho(http.MethodDelete, "/api/courts/"+court.ID, "")
	require.NoError(t, DeleteCourtHandler(withParam(as(c, admin), "id", court.ID)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var stored models.Court
	require.NoError(t, database.First(&stored, "id = ?", court.ID).Error)
	assert.False(t, stored.IsActive)

	list := func(query string, user *models.User) []models.Court {
		_, c, rec := setupEcho(http.MethodGet, "/api/courts"+query, "")
		require.NoError(t, ListCourtsHandler(as(c, user)))
		var courts []models.Court
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courts))
		return courts
	}
	assert.Empty(t, list("", officer))
	assert.Empty(t, list("?include_inactive=true", officer))
	assert.Len(t, list("?include_inactive=true", admin), 1)
}

func TestCourtOrderUploadAndDownload(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	stranger := createUser(t, database, "officer2", models.RoleOfficer)
	staff := createUser(t, database, "staff1", models.RoleStaff)
	client := createClient(t, database, "PR-001", officer)
	kase := createCase(t, database, client, officer, nil)

	court := &models.Court{Name: "District Court", CourtType: models.CourtKindDistrict, IsActive: true}
	require.NoError(t, database.Create(court).Error)
	cc := &models.CourtCase{
		CaseID:     kase.ID,
		CourtID:    court.ID,
		CaseNumber: "DC-2026-15",
		FilingDate: time.Now().AddDate(0, -1, 0),
		Status:     models.CourtCaseStatusActive,
	}
	require.NoError(t, database.Create(cc).Error)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("court_case_id", cc.ID))
	require.NoError(t, w.WriteField("order_type", "probation"))
	require.NoError(t, w.WriteField("order_date", "2026-02-01"))
	require.NoError(t, w.WriteField("order_text", "Supervised probation for 24 months."))
	part, err := w.CreateFormFile("file", "order.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("signed order"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, c, rec := setupEcho(http.MethodPost, "/api/court-orders", "")
	req := httptest.NewRequest(http.MethodPost, "/api/court-orders", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.SetRequest(req)
	require.NoError(t, CreateCourtOrderHandler(as(c, staff)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.CourtOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, models.OrderTypeProbation, order.OrderType)
	assert.Equal(t, "order.txt", order.FileName)

	t.Run("OfficerDownloads", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/court-orders/"+order.ID+"/file", "")
		require.NoError(t, DownloadCourtOrderFileHandler(withParam(as(c, officer), "id", order.ID)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "signed order", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="order.txt"`)
	})

	t.Run("OtherOfficerGets404", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/court-orders/"+order.ID+"/file", "")
		require.NoError(t, DownloadCourtOrderFileHandler(withParam(as(c, stranger), "id", order.ID)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("RejectsExecutable", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("court_case_id", cc.ID))
		require.NoError(t, w.WriteField("order_type", "OTHER"))
		require.NoError(t, w.WriteField("order_date", "2026-02-01"))
		require.NoError(t, w.WriteField("order_text", "x"))
		part, err := w.CreateFormFile("file", "run.exe")
		require.NoError(t, err)
		_, _ = part.Write([]byte("MZ"))
		require.NoError(t, w.Close())

		_, c, rec := setupEcho(http.MethodPost, "/api/court-orders", "")
		req := httptest.NewRequest(http.MethodPost, "/api/court-orders", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		c.SetRequest(req)
		require.NoError(t, CreateCourtOrderHandler(as(c, staff)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "file")
	})
}

func courtCaseFixture(t *testing.T, database *gorm.DB, officer *models.User) *models.CourtCase {
	t.Helper()
	client := createClient(t, database, "PR-"+officer.Username, officer)
	kase := createCase(t, database, client, officer, nil)
	court := &models.Court{Name: "District Court", CourtType: models.CourtKindDistrict, IsActive: true}
	require.NoError(t, database.Create(court).Error)
	cc := &models.CourtCase{
		CaseID:     kase.ID,
		CourtID:    court.ID,
		CaseNumber: "DC-" + officer.Username,
		FilingDate: time.Now().AddDate(0, -1, 0),
		Status:     models.CourtCaseStatusPending,
	}
	require.NoError(t, database.Create(cc).Error)
	return cc
}

func TestCourtUpdateHandlers(t *testing.T) {
	database := setupTestDB(t)
	freezeNow(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	judge := createUser(t, database, "judge1", models.RoleJudge)
	staff := createUser(t, database, "staff1", models.RoleStaff)
	cc := courtCaseFixture(t, database, officer)

	hearing := &models.Hearing{CourtCaseID: cc.ID, HearingType: models.HearingTypeReview, HearingDate: time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local), Location: "Room 1"}
	require.NoError(t, database.Create(hearing).Error)
	order := &models.CourtOrder{CourtCaseID: cc.ID, OrderType: models.OrderTypeProbation, OrderDate: time.Now(), OrderText: "Twelve months.", IsActive: true}
	require.NoError(t, database.Create(order).Error)

	t.Run("CourtCase", func(t *testing.T) {
		body := `{"status":"active","notes":"Transferred from intake"}`
		_, c, rec := setupEcho(http.MethodPut, "/api/court-cases/"+cc.ID, body)
		require.NoError(t, UpdateCourtCaseHandler(withParam(as(c, officer), "id", cc.ID)))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		_, c, rec = setupEcho(http.MethodPut, "/api/court-cases/"+cc.ID, body)
		require.NoError(t, UpdateCourtCaseHandler(withParam(as(c, staff), "id", cc.ID)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got models.CourtCase
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, models.CourtCaseStatusActive, got.Status)

		_, c, rec = setupEcho(http.MethodPut, "/api/court-cases/"+cc.ID, `{"status":"adjourned"}`)
		require.NoError(t, UpdateCourtCaseHandler(withParam(as(c, staff), "id", cc.ID)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "status")
	})

	t.Run("HearingReschedule", func(t *testing.T) {
		body := `{"hearing_date":"2026-03-16T13:30","location":"Courtroom 4B"}`
		_, c, rec := setupEcho(http.MethodPut, "/api/hearings/"+hearing.ID, body)
		require.NoError(t, UpdateHearingHandler(withParam(as(c, judge), "id", hearing.ID)))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		_, c, rec = setupEcho(http.MethodPut, "/api/hearings/"+hearing.ID, body)
		require.NoError(t, UpdateHearingHandler(withParam(as(c, staff), "id", hearing.ID)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var stored models.Hearing
		require.NoError(t, database.First(&stored, "id = ?", hearing.ID).Error)
		assert.Equal(t, "Courtroom 4B", stored.Location)
		assert.True(t, stored.HearingDate.Equal(time.Date(2026, 3, 16, 13, 30, 0, 0, time.Local)))

		var reloaded models.CourtCase
		require.NoError(t, database.First(&reloaded, "id = ?", cc.ID).Error)
		require.NotNil(t, reloaded.NextHearingDate)
		assert.True(t, reloaded.NextHearingDate.Equal(stored.HearingDate))
	})

	t.Run("CourtOrder", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPut, "/api/court-orders/"+order.ID, `{"is_active":false}`)
		require.NoError(t, UpdateCourtOrderHandler(withParam(as(c, officer), "id", order.ID)))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		_, c, rec = setupEcho(http.MethodPut, "/api/court-orders/"+order.ID, `{"is_active":false,"order_type":"termination"}`)
		require.NoError(t, UpdateCourtOrderHandler(withParam(as(c, staff), "id", order.ID)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var stored models.CourtOrder
		require.NoError(t, database.First(&stored, "id = ?", order.ID).Error)
		assert.False(t, stored.IsActive)
		assert.Equal(t, models.OrderTypeTermination, stored.OrderType)
	})
}

// presignedStore keeps files locally but hands out links like the R2 store does
type presignedStore struct {
	*services.LocalStorage
}

func (presignedStore) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "https://files.example.test/" + key + "?expires=" + expiration.String(), nil
}

func TestCourtOrderDownloadRedirectsToSignedURL(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	stranger := createUser(t, database, "officer2", models.RoleOfficer)
	cc := courtCaseFixture(t, database, officer)

	order := &models.CourtOrder{
		CourtCaseID: cc.ID, OrderType: models.OrderTypeProbation, OrderDate: time.Now(), OrderText: "x", IsActive: true,
		FileKey: "court-orders/" + cc.ID + "/order.pdf", FileName: "order.pdf", FileMimeType: "application/pdf",
	}
	require.NoError(t, database.Create(order).Error)
	services.Storage = presignedStore{services.NewLocalStorage(t.TempDir())}

	_, c, rec := setupEcho(http.MethodGet, "/api/court-orders/"+order.ID+"/file", "")
	require.NoError(t, DownloadCourtOrderFileHandler(withParam(as(c, officer), "id", order.ID)))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://files.example.test/"+order.FileKey+"?expires=15m0s", rec.Header().Get("Location"))

	_, c, rec = setupEcho(http.MethodGet, "/api/court-orders/"+order.ID+"/file", "")
	require.NoError(t, DownloadCourtOrderFileHandler(withParam(as(c, stranger), "id", order.ID)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
