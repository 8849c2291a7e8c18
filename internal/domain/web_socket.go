package domain

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/eventbus"
	"github.com/hauntpass/backend/pkg/pubsub"
	"github.com/hauntpass/backend/pkg/ws"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type WsDomain interface {
	ServeClient(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	PushUserDataUpdated(ctx context.Context, event model.UserDataUpdatedEvent)
	SubscribeUserDataUpdated(ctx context.Context, pack *pubsub.Pack, t time.Time)
}

type wsDomain struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewWsDomain(hub *ws.Hub, allowedOrigins []string) *wsDomain {
	return &wsDomain{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// ListenBus pushes the events published on the local bus. Nodes consuming
// the kafka topic use SubscribeUserDataUpdated instead.
func (d *wsDomain) ListenBus(bus eventbus.Bus) func() {
	return eventbus.SubscribeTyped(bus, model.EventUserDataUpdated, d.PushUserDataUpdated)
}

func (d *wsDomain) ServeClient(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		xcontext.Logger(ctx).Debugf("Cannot upgrade websocket of user %s: %v", userID, err)
		return nil
	}

	compression := r.URL.Query().Get("compression") == "zlib"
	d.hub.Register(ws.NewClient(conn, userID, compression))
	return nil
}

func (d *wsDomain) PushUserDataUpdated(ctx context.Context, event model.UserDataUpdatedEvent) {
	n := d.hub.Send(event.UserID, ws.NewMessage(model.EventUserDataUpdated, event))
	xcontext.Logger(ctx).Debugf("Pushed %s of user %s to %d clients", model.EventUserDataUpdated, event.UserID, n)
}

func (d *wsDomain) SubscribeUserDataUpdated(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.UserDataUpdatedEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal %s event: %v", model.EventUserDataUpdated, err)
		return
	}

	d.PushUserDataUpdated(ctx, event)
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowAll := len(allowedOrigins) == 0
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return allowAll || origin == "" || allowed[origin]
	}
}
