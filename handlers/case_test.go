package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCasePlanHandlers(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	judge := createUser(t, database, "judge1", models.RoleJudge)
	outsider := createUser(t, database, "judge2", models.RoleJudge)
	client := createClient(t, database, "PR-001", officer)
	kase := createCase(t, database, client, officer, judge)

	listPlans := func(user *models.User) (int, CasePlansResponse) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+kase.ID+"/rehabilitation_plans", "")
		require.NoError(t, ListCasePlansHandler(withParam(as(c, user), "id", kase.ID)))
		var resp CasePlansResponse
		if rec.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		}
		return rec.Code, resp
	}

	code, resp := listPlans(officer)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, kase.ID, resp.CaseID)
	assert.Zero(t, resp.PlansCount)
	assert.NotNil(t, resp.Plans)

	_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+kase.ID+"/rehabilitation_plans",
		`{"title":"Substance program","start_date":"2026-02-01","judicial_review_required":true}`)
	require.NoError(t, CreateCasePlanHandler(withParam(as(c, officer), "id", kase.ID)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var plan models.RehabilitationPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))

	_, c, rec = setupEcho(http.MethodPost, "/api/plans/"+plan.ID+"/items",
		`{"description":"Attend weekly session","due_date":"2026-03-01","requires_judicial_review":true}`)
	require.NoError(t, AddPlanItemHandler(withParam(as(c, officer), "id", plan.ID)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.PlanItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))

	t.Run("PlansShape", func(t *testing.T) {
		code, resp := listPlans(judge)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1, resp.PlansCount)
		require.Len(t, resp.Plans, 1)
		assert.Len(t, resp.Plans[0].Items, 1)
	})

	t.Run("UnrelatedJudgeGets404", func(t *testing.T) {
		code, _ := listPlans(outsider)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("JudgeCannotCreatePlan", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+kase.ID+"/rehabilitation_plans",
			`{"title":"Other","start_date":"2026-02-01"}`)
		require.NoError(t, CreateCasePlanHandler(withParam(as(c, judge), "id", kase.ID)))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("JudicialReviewQueue", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/judge/review", "")
		require.NoError(t, JudicialReviewHandler(as(c, judge)))
		var items []models.PlanItem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		assert.Len(t, items, 1)
	})

	t.Run("JudgeCompletesReviewItem", func(t *testing.T) {
		freezeNow(t)
		_, c, rec := setupEcho(http.MethodPost, "/api/plan-items/"+item.ID+"/complete", "")
		require.NoError(t, CompletePlanItemHandler(withParam(as(c, judge), "id", item.ID)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var stored models.RehabilitationPlan
		require.NoError(t, database.First(&stored, "id = ?", plan.ID).Error)
		assert.True(t, stored.IsCompleted)
	})
}

func TestCaseHandlers(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	other := createUser(t, database, "officer2", models.RoleOfficer)
	client := createClient(t, database, "PR-001", officer)

	body := `{"client_id":"` + client.ID + `","court_type":"district","opening_date":"2026-01-05","case_number":"CR-2026-1"}`
	_, c, rec := setupEcho(http.MethodPost, "/api/cases", body)
	require.NoError(t, CreateCaseHandler(as(c, officer)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var kase models.Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kase))
	assert.Equal(t, models.CaseStatusOpen, kase.Status)

	_, c, rec = setupEcho(http.MethodGet, "/api/cases", "")
	require.NoError(t, ListCasesHandler(as(c, other)))
	var cases []models.Case
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cases))
	assert.Empty(t, cases)

	_, c, rec = setupEcho(http.MethodDelete, "/api/cases/"+kase.ID, "")
	require.NoError(t, DeleteCaseHandler(withParam(as(c, officer), "id", kase.ID)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
