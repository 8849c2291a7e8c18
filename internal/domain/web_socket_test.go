package domain

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/eventbus"
	"github.com/hauntpass/backend/pkg/pubsub"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/hauntpass/backend/pkg/ws"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_wsDomain_Push(t *testing.T) {
	ctx := testutil.MockContext()
	hub := ws.NewHub()
	domain := NewWsDomain(hub, nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, domain.ServeClient(xcontext.WithRequestUserID(ctx, testutil.User1.ID), w, r))
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count(testutil.User1.ID) == 1 }, time.Second, 10*time.Millisecond)

	read := func() ws.Message {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, b, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg ws.Message
		require.NoError(t, json.Unmarshal(b, &msg))
		return msg
	}

	// From the local bus.
	bus := eventbus.New()
	unsubscribe := domain.ListenBus(bus)
	bus.Publish(ctx, model.EventUserDataUpdated, model.UserDataUpdatedEvent{
		UserID:        testutil.User1.ID,
		WalletAddress: testutil.Wallet1,
	})

	msg := read()
	require.Equal(t, model.EventUserDataUpdated, msg.Type)
	require.Equal(t, map[string]any{"userId": testutil.User1.ID, "walletAddress": testutil.Wallet1}, msg.Value)

	var event model.UserDataUpdatedEvent
	require.NoError(t, msg.Decode(&event))
	require.Equal(t, testutil.User1.ID, event.UserID)
	unsubscribe()

	// From the kafka topic.
	b, err := json.Marshal(model.UserDataUpdatedEvent{UserID: testutil.User1.ID})
	require.NoError(t, err)
	domain.SubscribeUserDataUpdated(ctx, &pubsub.Pack{Key: []byte(testutil.User1.ID), Msg: b}, time.Now())
	require.Equal(t, testutil.User1.ID, read().Value["userId"])
}

func Test_wsDomain_ServeClient_Unauthenticated(t *testing.T) {
	domain := NewWsDomain(ws.NewHub(), nil)
	err := domain.ServeClient(testutil.MockContext(), httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func Test_checkOrigin(t *testing.T) {
	check := checkOrigin([]string{"https://hauntpass.app"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	require.True(t, check(req))

	req.Header.Set("Origin", "https://hauntpass.app")
	require.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	require.False(t, check(req))

	require.True(t, checkOrigin(nil)(req))
}
