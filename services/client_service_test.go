package services

import (
	"testing"
	"time"

	"probation_app_go/models"
	"probation_app_go/services/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClientInput(caseNumber string) ClientInput {
	return ClientInput{
		CaseNumber:  ptrTo(caseNumber),
		FirstName:   ptrTo("Jane"),
		LastName:    ptrTo("Doe"),
		DateOfBirth: ptrTo("1988-04-12"),
		Gender:      ptrTo(models.GenderFemale),
		StartDate:   ptrTo("2024-01-15"),
		RiskLevel:   ptrTo(models.RiskLevelMedium),
	}
}

func TestCreateClient(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer1", models.RoleOfficer)
	staff := createUser(t, db, "staff1", models.RoleStaff)
	judge := createUser(t, db, "judge1", models.RoleJudge)

	t.Run("officer defaults to self", func(t *testing.T) {
		c, err := CreateClient(db, access.FromUser(officer), validClientInput("PB-001"))
		require.NoError(t, err)
		assert.Equal(t, officer.ID, c.AssignedOfficerID)
		assert.Equal(t, models.ClientStatusActive, c.Status)
		require.NotNil(t, c.CreatedByID)
		assert.Equal(t, officer.ID, *c.CreatedByID)
	})

	t.Run("staff must pick an officer", func(t *testing.T) {
		_, err := CreateClient(db, access.FromUser(staff), validClientInput("PB-002"))
		verr, ok := AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "assigned_officer_id")

		in := validClientInput("PB-002")
		in.AssignedOfficerID = &officer.ID
		c, err := CreateClient(db, access.FromUser(staff), in)
		require.NoError(t, err)
		assert.Equal(t, officer.ID, c.AssignedOfficerID)
	})

	t.Run("judge cannot create", func(t *testing.T) {
		_, err := CreateClient(db, access.FromUser(judge), validClientInput("PB-003"))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("duplicate case number", func(t *testing.T) {
		_, err := CreateClient(db, access.FromUser(officer), validClientInput("PB-001"))
		verr, ok := AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "case_number")
	})

	t.Run("invalid choices and dates", func(t *testing.T) {
		in := validClientInput("PB-004")
		in.Gender = ptrTo("X")
		in.RiskLevel = ptrTo("extreme")
		in.EndDate = ptrTo("2023-01-01")
		_, err := CreateClient(db, access.FromUser(officer), in)
		verr, ok := AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "gender")
		assert.Contains(t, verr.Fields, "risk_level")
		assert.Contains(t, verr.Fields, "end_date")

		var count int64
		db.Model(&models.Client{}).Where("case_number = ?", "PB-004").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("inactive officer rejected", func(t *testing.T) {
		retired := createUser(t, db, "retired", models.RoleOfficer)
		require.NoError(t, DeactivateOfficer(db, retired.ID))
		in := validClientInput("PB-005")
		in.AssignedOfficerID = &retired.ID
		_, err := CreateClient(db, access.FromUser(staff), in)
		verr, ok := AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "assigned_officer_id")
	})
}

func TestListClientsVisibility(t *testing.T) {
	db := setupTestDB(t)
	officerA := createUser(t, db, "officerA", models.RoleOfficer)
	officerB := createUser(t, db, "officerB", models.RoleOfficer)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	judge := createUser(t, db, "judge", models.RoleJudge)

	a1 := createClient(t, db, "A-1", officerA, models.RiskLevelLow)
	createClient(t, db, "A-2", officerA, models.RiskLevelHigh)
	b1 := createClient(t, db, "B-1", officerB, models.RiskLevelHigh)
	createCase(t, db, b1, officerB, judge, models.CaseStatusOpen)

	clients, total, err := ListClients(db, access.FromUser(officerA), ClientFilter{}, NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, clients, 2)

	_, total, err = ListClients(db, access.FromUser(admin), ClientFilter{}, NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	clients, _, err = ListClients(db, access.FromUser(judge), ClientFilter{}, NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, b1.ID, clients[0].ID)

	clients, total, err = ListClients(db, access.FromUser(officerA), ClientFilter{RiskLevel: models.RiskLevelHigh}, NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "A-2", clients[0].CaseNumber)

	// the search OR must not widen the officer's set
	_, total, err = ListClients(db, access.FromUser(officerA), ClientFilter{Query: "B-1"}, NewPage(1, 20))
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = GetClient(db, access.FromUser(officerA), b1.ID)
	assert.True(t, IsNotFound(err))
	got, err := GetClient(db, access.FromUser(officerA), a1.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedOfficer)
	assert.Equal(t, officerA.ID, got.AssignedOfficer.ID)

	high, err := HighRiskClients(db, access.FromUser(admin), 10)
	require.NoError(t, err)
	assert.Len(t, high, 2)
}

func TestUpdateClient(t *testing.T) {
	db := setupTestDB(t)
	officerA := createUser(t, db, "officerA", models.RoleOfficer)
	officerB := createUser(t, db, "officerB", models.RoleOfficer)
	judge := createUser(t, db, "judge", models.RoleJudge)
	client := createClient(t, db, "A-1", officerA, models.RiskLevelLow)
	createCase(t, db, client, officerA, judge, models.CaseStatusOpen)

	updated, err := UpdateClient(db, access.FromUser(officerA), client.ID, ClientInput{
		RiskLevel: ptrTo(models.RiskLevelHigh),
		Notes:     ptrTo("<b>Moved</b> house"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskLevelHigh, updated.RiskLevel)
	assert.Equal(t, "Moved house", updated.Notes)
	assert.Equal(t, "Client", updated.FirstName)

	_, err = UpdateClient(db, access.FromUser(officerA), client.ID, ClientInput{AssignedOfficerID: &officerB.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = UpdateClient(db, access.FromUser(judge), client.ID, ClientInput{Notes: ptrTo("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = UpdateClient(db, access.FromUser(officerB), client.ID, ClientInput{Notes: ptrTo("x")})
	assert.True(t, IsNotFound(err))
}

func TestDeleteClientCascades(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, "admin", models.RoleAdmin)
	officer := createUser(t, db, "officer", models.RoleOfficer)
	client := createClient(t, db, "A-1", officer, models.RiskLevelLow)
	c := createCase(t, db, client, officer, nil, models.CaseStatusOpen)
	createAppointment(t, db, client, officer, time.Now().Add(time.Hour), models.AppointmentStatusScheduled)

	plan, err := CreatePlan(db, access.FromUser(officer), c.ID, PlanInput{Title: "Plan", StartDate: "2024-02-01"})
	require.NoError(t, err)
	_, err = AddPlanItem(db, access.FromUser(officer), plan.ID, PlanItemInput{Description: "Attend class", DueDate: "2024-03-01"})
	require.NoError(t, err)
	_, err = AddAddress(db, access.FromUser(officer), client.ID, AddressInput{AddressType: models.AddressTypeHome, Street: "1 Main St", City: "Springfield"})
	require.NoError(t, err)

	_, err = DeleteClient(db, access.FromUser(officer), client.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := DeleteClient(db, access.FromUser(admin), client.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-1", deleted.CaseNumber)

	for _, m := range []interface{}{&models.Client{}, &models.Case{}, &models.Appointment{}, &models.Address{}, &models.RehabilitationPlan{}, &models.PlanItem{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count, "%T", m)
	}
}

func TestAddAddressPrimary(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer", models.RoleOfficer)
	client := createClient(t, db, "A-1", officer, models.RiskLevelLow)
	r := access.FromUser(officer)

	first, err := AddAddress(db, r, client.ID, AddressInput{AddressType: models.AddressTypeHome, Street: "1 Main", City: "A", IsPrimary: true})
	require.NoError(t, err)
	second, err := AddAddress(db, r, client.ID, AddressInput{AddressType: models.AddressTypeWork, Street: "2 Side", City: "B", IsPrimary: true})
	require.NoError(t, err)

	got, err := GetClient(db, r, client.ID)
	require.NoError(t, err)
	require.Len(t, got.Addresses, 2)
	assert.Equal(t, second.ID, got.Addresses[0].ID)
	assert.True(t, got.Addresses[0].IsPrimary)
	assert.False(t, got.Addresses[1].IsPrimary)

	_, err = AddAddress(db, r, client.ID, AddressInput{AddressType: "boat", Street: "x", City: "y"})
	_, ok := AsValidation(err)
	assert.True(t, ok)

	require.NoError(t, RemoveAddress(db, r, client.ID, first.ID))
	assert.True(t, IsNotFound(RemoveAddress(db, r, client.ID, first.ID)))
}

func TestAddOffense(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer", models.RoleOfficer)
	client := createClient(t, db, "A-1", officer, models.RiskLevelLow)

	o, err := AddOffense(db, access.FromUser(officer), client.ID, OffenseInput{OffenseType: "Theft", DateCommitted: "2022-05-01", Sentence: "2 years"})
	require.NoError(t, err)
	assert.Equal(t, "Theft", o.OffenseType)

	_, err = AddOffense(db, access.FromUser(officer), client.ID, OffenseInput{OffenseType: "Theft"})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "date_committed")
}
