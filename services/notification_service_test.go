package services

import (
	"testing"

	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	user := createUser(t, db, "officer", models.RoleOfficer)
	other := createUser(t, db, "other", models.RoleOfficer)

	t.Run("Create and Get Unread", func(t *testing.T) {
		_, err := svc.Notify(user.ID, models.NotificationTypeAppointment, "Reminder", "Check-in tomorrow", "appointment", "")
		require.NoError(t, err)

		notifications, err := svc.GetUnreadNotifications(user.ID, 5)
		assert.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, "Reminder", notifications[0].Title)
		assert.Nil(t, notifications[0].RelatedObjectID)

		count, _ := svc.GetNotificationCount(user.ID)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Invalid type", func(t *testing.T) {
		err := svc.CreateNotification(&models.Notification{UserID: user.ID, NotificationType: "sms", Title: "x"})
		assert.Error(t, err)
	})

	t.Run("Mark as Read", func(t *testing.T) {
		var n models.Notification
		require.NoError(t, db.First(&n).Error)

		assert.True(t, IsNotFound(svc.MarkAsRead(n.ID, other.ID)))
		_, err := svc.Get(n.ID, other.ID)
		assert.True(t, IsNotFound(err))

		require.NoError(t, svc.MarkAsRead(n.ID, user.ID))
		count, _ := svc.GetNotificationCount(user.ID)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Mark All as Read", func(t *testing.T) {
		svc.Notify(user.ID, models.NotificationTypeSystem, "A", "", "", "")
		svc.Notify(user.ID, models.NotificationTypeAlert, "B", "", "", "")

		count, _ := svc.GetNotificationCount(user.ID)
		assert.Equal(t, int64(2), count)

		svc.Notify(other.ID, models.NotificationTypeSystem, "C", "", "", "")
		updated, err := svc.MarkAllAsRead(user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated)
		count, _ = svc.GetNotificationCount(user.ID)
		assert.Equal(t, int64(0), count)

		list, total, err := svc.List(user.ID, NewPage(1, 20))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 3)

		count, _ = svc.GetNotificationCount(other.ID)
		assert.Equal(t, int64(1), count)
	})
}
