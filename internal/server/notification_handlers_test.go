package server

import (
	"net/http"
	"testing"

	"plateful/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsListAndUnreadCount(t *testing.T) {
	s, app := newTestServer(t)
	s.center.Push(models.Notification{Type: models.NotificationLike, Message: "one"})
	s.center.Push(models.Notification{Type: models.NotificationComment, Message: "two"})

	token := signTestToken(t, s, "u1")
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/notifications", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Notifications, 2)
	assert.Equal(t, 2, body.UnreadCount)
	assert.Equal(t, "two", body.Notifications[0].Message)
}

func TestMarkNotificationRead(t *testing.T) {
	s, app := newTestServer(t)
	n := s.center.Push(models.Notification{Type: models.NotificationLike})

	token := signTestToken(t, s, "u1")
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/notifications/"+n.ID+"/read", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UnreadCount int `json:"unread_count"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 0, body.UnreadCount)
}

func TestMarkNotificationReadUnknownID(t *testing.T) {
	s, app := newTestServer(t)

	token := signTestToken(t, s, "u1")
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/notifications/nope/read", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s, app := newTestServer(t)
	for i := 0; i < 3; i++ {
		s.center.Push(models.Notification{Type: models.NotificationLike})
	}

	token := signTestToken(t, s, "u1")
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/notifications/read-all", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, s.center.UnreadCount())
}
