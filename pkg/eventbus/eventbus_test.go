package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hauntpass/backend/pkg/pubsub"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	UserID string `json:"user_id"`
}

func Test_bus_PublishInOrder(t *testing.T) {
	ctx := testutil.MockContext()
	b := New()

	calls := []string{}
	b.Subscribe("event", func(ctx context.Context, payload any) {
		calls = append(calls, "first:"+payload.(string))
	})
	b.Subscribe("event", func(ctx context.Context, payload any) {
		panic("broken handler")
	})
	b.Subscribe("event", func(ctx context.Context, payload any) {
		calls = append(calls, "third:"+payload.(string))
	})
	b.Subscribe("other", func(ctx context.Context, payload any) {
		calls = append(calls, "other")
	})

	b.Publish(ctx, "event", "x")
	require.Equal(t, []string{"first:x", "third:x"}, calls)

	// No subscriber.
	b.Publish(ctx, "unknown", "x")
	require.Len(t, calls, 2)
}

func Test_bus_Unsubscribe(t *testing.T) {
	ctx := testutil.MockContext()
	b := New()

	count := 0
	unsubscribe := b.Subscribe("event", func(ctx context.Context, payload any) {
		count++
	})

	b.Publish(ctx, "event", nil)
	unsubscribe()
	unsubscribe()
	b.Publish(ctx, "event", nil)

	require.Equal(t, 1, count)
}

func Test_SubscribeTyped(t *testing.T) {
	ctx := testutil.MockContext()
	b := New()

	received := []testEvent{}
	SubscribeTyped(b, "event", func(ctx context.Context, e testEvent) {
		received = append(received, e)
	})

	b.Publish(ctx, "event", testEvent{UserID: "user1"})
	b.Publish(ctx, "event", "not an event")
	require.Equal(t, []testEvent{{UserID: "user1"}}, received)
}

func Test_Forward(t *testing.T) {
	ctx := testutil.MockContext()
	b := New()

	var gotTopic string
	var gotPack *pubsub.Pack
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			gotTopic = topic
			gotPack = pack
			return nil
		},
	}

	Forward(b, "event", publisher, "user_data_updated", func(payload any) string {
		return payload.(testEvent).UserID
	})

	b.Publish(ctx, "event", testEvent{UserID: "user1"})
	require.Equal(t, "user_data_updated", gotTopic)
	require.Equal(t, []byte("user1"), gotPack.Key)

	var e testEvent
	require.NoError(t, json.Unmarshal(gotPack.Msg, &e))
	require.Equal(t, testEvent{UserID: "user1"}, e)

	// A failing publisher does not break the publishing side.
	publisher.PublishFunc = func(ctx context.Context, topic string, pack *pubsub.Pack) error {
		return errors.New("broker is down")
	}
	b.Publish(ctx, "event", testEvent{UserID: "user2"})
}

func Test_Forward_KeyedByName(t *testing.T) {
	ctx := testutil.MockContext()
	b := New()
	publisher := &testutil.MockPublisher{}

	stop := Forward(b, "event", publisher, "topic", nil)
	b.Publish(ctx, "event", testEvent{UserID: "user1"})
	stop()
	b.Publish(ctx, "event", testEvent{UserID: "user2"})

	require.Len(t, publisher.Published["topic"], 1)
	require.Equal(t, []byte("event"), publisher.Published["topic"][0].Key)
}
