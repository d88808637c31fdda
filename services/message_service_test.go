package services

import (
	"testing"
	"time"

	"probation_app_go/config"
	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{EmailTestMode: true, AppURL: "http://localhost:8080"}
	alice := createUser(t, db, "alice", models.RoleOfficer)
	bob := createUser(t, db, "bob", models.RoleJudge)
	carol := createUser(t, db, "carol", models.RoleStaff)
	now := time.Now()

	msg, err := SendMessage(db, cfg, alice.ID, MessageInput{
		RecipientID: bob.ID,
		Subject:     "Hearing moved",
		Body:        `<p>See <a href="javascript:alert(1)">here</a></p><script>x()</script>`,
		IsUrgent:    true,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, msg.SenderID)
	assert.NotContains(t, msg.Body, "script")
	assert.NotContains(t, msg.Body, "javascript")

	_, err = SendMessage(db, cfg, alice.ID, MessageInput{RecipientID: "missing", Subject: "x", Body: "y"}, now)
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "recipient")

	_, err = SendMessage(db, nil, bob.ID, MessageInput{RecipientID: alice.ID, Subject: "Re: Hearing moved", Body: "Thanks"}, now.Add(time.Minute))
	require.NoError(t, err)

	list, total, err := ListMessages(db, alice.ID, NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Re: Hearing moved", list[0].Subject)

	_, total, err = ListMessages(db, carol.ID, NewPage(1, 20))
	require.NoError(t, err)
	assert.Zero(t, total)

	unread, err := UnreadMessageCount(db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	// the sender opening it leaves it unread
	got, err := GetMessage(db, alice.ID, msg.ID, now)
	require.NoError(t, err)
	assert.Nil(t, got.ReadAt)

	got, err = GetMessage(db, bob.ID, msg.ID, now)
	require.NoError(t, err)
	assert.True(t, got.IsRead())
	unread, _ = UnreadMessageCount(db, bob.ID)
	assert.Zero(t, unread)

	_, err = GetMessage(db, carol.ID, msg.ID, now)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(DeleteMessage(db, carol.ID, msg.ID)))
	require.NoError(t, DeleteMessage(db, bob.ID, msg.ID))
}
