package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type progress struct {
	UserID string `structs:"user_id" mapstructure:"user_id"`
	XP     int64  `structs:"xp" mapstructure:"xp"`
}

func newTestServer(t *testing.T, hub *Hub, userID string, compression bool) *httptest.Server {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(NewClient(conn, userID, compression))
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func Test_Hub_Send(t *testing.T) {
	hub := NewHub()
	server := newTestServer(t, hub, "user1", false)

	conn1 := dial(t, server)
	defer conn1.Close()
	conn2 := dial(t, server)
	defer conn2.Close()

	require.Eventually(t, func() bool { return hub.Count("user1") == 2 }, time.Second, 10*time.Millisecond)
	require.Equal(t, 2, hub.Send("user1", NewMessage("userDataUpdated", progress{UserID: "user1", XP: 50})))
	require.Equal(t, 0, hub.Send("user2", NewMessage("userDataUpdated", nil)))

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, b, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg Message
		require.NoError(t, json.Unmarshal(b, &msg))
		require.Equal(t, "userDataUpdated", msg.Type)

		var p progress
		require.NoError(t, msg.Decode(&p))
		require.Equal(t, progress{UserID: "user1", XP: 50}, p)
	}
}

func Test_Hub_UnregisterOnClose(t *testing.T) {
	hub := NewHub()
	server := newTestServer(t, hub, "user1", false)

	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.Count("user1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count("user1") == 0 }, time.Second, 10*time.Millisecond)
	require.Equal(t, 0, hub.Send("user1", NewMessage("userDataUpdated", nil)))
}

func Test_Hub_Compression(t *testing.T) {
	hub := NewHub()
	server := newTestServer(t, hub, "user1", true)

	conn := dial(t, server)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count("user1") == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, 1, hub.Send("user1", NewMessage("ping", map[string]any{"n": 1})))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)

	raw, err := Decompress(b)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"ping","value":{"n":1}}`, string(raw))
}
