package services

import (
	"encoding/json"
	"testing"
	"time"

	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAuditLog(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer1", models.RoleOfficer)

	ctx := AuditContext{
		UserID:    officer.ID,
		UserName:  officer.FullName(),
		UserRole:  string(officer.Role),
		IPAddress: "10.0.0.1",
	}
	err := WriteAuditLog(db, ctx, AuditEntry{
		Action:       models.AuditActionUpdate,
		ResourceType: "client",
		ResourceID:   "client-1",
		ResourceName: "PR-2024-001",
		OldValues:    map[string]string{"risk_level": "low"},
		NewValues:    map[string]string{"risk_level": "high"},
	})
	require.NoError(t, err)

	logs, err := GetResourceAuditHistory(db, "client", "client-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)

	got := logs[0]
	require.NotNil(t, got.UserID)
	assert.Equal(t, officer.ID, *got.UserID)
	assert.Equal(t, models.AuditActionUpdate, got.Action)
	assert.Equal(t, "10.0.0.1", got.IPAddress)

	var newValues map[string]string
	require.NoError(t, json.Unmarshal([]byte(got.NewValues), &newValues))
	assert.Equal(t, "high", newValues["risk_level"])
}

func TestWriteAuditLogSystemActor(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, WriteAuditLog(db, AuditContext{}, AuditEntry{
		Action:       models.AuditActionDelete,
		ResourceType: "session",
		ResourceID:   "expired",
	}))

	logs, err := GetResourceAuditHistory(db, "session", "expired")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
	assert.Equal(t, "system", logs[0].UserName)
	assert.Equal(t, "system", logs[0].UserRole)
	assert.Empty(t, logs[0].OldValues)
}

func TestListAuditLogs(t *testing.T) {
	db := setupTestDB(t)
	officer := createUser(t, db, "officer1", models.RoleOfficer)
	admin := createUser(t, db, "admin1", models.RoleAdmin)

	write := func(u *models.User, action models.AuditAction, resource string) {
		require.NoError(t, WriteAuditLog(db, AuditContext{UserID: u.ID, UserName: u.Username, UserRole: string(u.Role)}, AuditEntry{
			Action:       action,
			ResourceType: resource,
			ResourceID:   "x",
		}))
	}
	write(officer, models.AuditActionCreate, "client")
	write(officer, models.AuditActionUpdate, "client")
	write(officer, models.AuditActionCreate, "appointment")
	write(admin, models.AuditActionDelete, "client")

	t.Run("by user", func(t *testing.T) {
		logs, total, err := ListAuditLogs(db, AuditLogFilters{UserID: officer.ID}, Page{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, logs, 3)
	})

	t.Run("by resource and action", func(t *testing.T) {
		logs, total, err := ListAuditLogs(db, AuditLogFilters{ResourceType: "client", Action: string(models.AuditActionCreate)}, Page{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, logs, 1)
		assert.Equal(t, officer.ID, *logs[0].UserID)
	})

	t.Run("paged", func(t *testing.T) {
		logs, total, err := ListAuditLogs(db, AuditLogFilters{}, NewPage(2, 3))
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, logs, 1)
	})

	t.Run("date window", func(t *testing.T) {
		_, total, err := ListAuditLogs(db, AuditLogFilters{DateFrom: time.Now().Add(time.Hour)}, Page{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
