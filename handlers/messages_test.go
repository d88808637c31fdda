package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"probation_app_go/models"
	"probation_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHandlers(t *testing.T) {
	database := setupTestDB(t)
	sender := createUser(t, database, "officer1", models.RoleOfficer)
	recipient := createUser(t, database, "staff1", models.RoleStaff)
	outsider := createUser(t, database, "officer2", models.RoleOfficer)

	body := `{"recipient":"` + recipient.ID + `","subject":"Court update","body":"<p>Hearing moved</p><script>x()</script>"}`
	_, c, rec := setupEcho(http.MethodPost, "/api/messages", body)
	require.NoError(t, SendMessageHandler(as(c, sender)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var msg models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.NotContains(t, msg.Body, "<script>")

	unread := func() int64 {
		_, c, rec := setupEcho(http.MethodGet, "/api/messages/unread", "")
		require.NoError(t, UnreadMessagesHandler(as(c, recipient)))
		var resp map[string]int64
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp["unread_count"]
	}
	assert.Equal(t, int64(1), unread())

	t.Run("OutsiderCannotRead", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/messages/"+msg.ID, "")
		require.NoError(t, GetMessageHandler(withParam(as(c, outsider), "id", msg.ID)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("SenderViewDoesNotMarkRead", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/messages/"+msg.ID, "")
		require.NoError(t, GetMessageHandler(withParam(as(c, sender), "id", msg.ID)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(1), unread())
	})

	t.Run("RecipientViewMarksRead", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/messages/"+msg.ID, "")
		require.NoError(t, GetMessageHandler(withParam(as(c, recipient), "id", msg.ID)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, unread())
	})

	t.Run("MissingFields", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/messages", `{"subject":"x"}`)
		require.NoError(t, SendMessageHandler(as(c, sender)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "recipient")
	})
}

func TestNotificationHandlers(t *testing.T) {
	database := setupTestDB(t)
	officer := createUser(t, database, "officer1", models.RoleOfficer)
	other := createUser(t, database, "officer2", models.RoleOfficer)

	svc := services.NewNotificationService(database)
	n, err := svc.Notify(officer.ID, models.NotificationTypeAlert, "High risk client", "Review needed", "", "")
	require.NoError(t, err)

	t.Run("List", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/notifications", "")
		require.NoError(t, ListNotificationsHandler(as(c, officer)))

		var list []models.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.False(t, list[0].IsRead)
	})

	t.Run("OtherUserCannotMark", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/notifications/"+n.ID+"/mark_read", "")
		require.NoError(t, MarkNotificationReadHandler(withParam(as(c, other), "id", n.ID)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("MarkRead", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/notifications/"+n.ID+"/mark_read", "")
		require.NoError(t, MarkNotificationReadHandler(withParam(as(c, officer), "id", n.ID)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"marked as read"}`, rec.Body.String())

		var stored models.Notification
		require.NoError(t, database.First(&stored, "id = ?", n.ID).Error)
		assert.True(t, stored.IsRead)
	})

	t.Run("MarkAllRead", func(t *testing.T) {
		for _, title := range []string{"Hearing moved", "Order filed"} {
			_, err := svc.Notify(officer.ID, models.NotificationTypeSystem, title, "", "", "")
			require.NoError(t, err)
		}
		_, err := svc.Notify(other.ID, models.NotificationTypeSystem, "Untouched", "", "", "")
		require.NoError(t, err)

		assert.Equal(t, int64(2), getDashboard(t, officer).Stats["unread_notifications"])

		_, c, rec := setupEcho(http.MethodPost, "/api/notifications/mark_all_read", "")
		require.NoError(t, MarkAllNotificationsReadHandler(as(c, officer)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"marked as read","updated":2}`, rec.Body.String())

		assert.Equal(t, int64(0), getDashboard(t, officer).Stats["unread_notifications"])
		assert.Equal(t, int64(1), getDashboard(t, other).Stats["unread_notifications"])
	})
}
