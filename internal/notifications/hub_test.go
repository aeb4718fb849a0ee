package notifications

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(userID, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestHubPushToUser(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, "user-1")

	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 1
	}, time.Second, 10*time.Millisecond)

	hub.PushToUser("user-1", Event{Event: "notification.created", Data: map[string]string{"id": "n-1"}})

	var got Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "notification.created", got.Event)
}

func TestHubPushToUnknownUserIsNoop(t *testing.T) {
	hub := NewHub()
	hub.PushToUser("ghost", Event{Event: "notification.created"})
	assert.Zero(t, hub.ConnectedUsers())
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, "user-1")

	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHubPushToUsersFansOut(t *testing.T) {
	hub := NewHub()
	connA := dialTestHub(t, hub, "user-a")
	connB := dialTestHub(t, hub, "user-b")

	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 2
	}, time.Second, 10*time.Millisecond)

	hub.PushToUsers([]string{"user-a", "user-b"}, Event{Event: "notification.created"})

	for _, conn := range []*websocket.Conn{connA, connB} {
		var got Event
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "notification.created", got.Event)
	}
}
