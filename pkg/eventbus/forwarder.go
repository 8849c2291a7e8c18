package eventbus

import (
	"context"
	"encoding/json"

	"github.com/hauntpass/backend/pkg/pubsub"
	"github.com/hauntpass/backend/pkg/xcontext"
)

// Forward publishes every payload of the event to the topic as JSON, keyed by
// keyFn so events of the same entity stay ordered in a partition.
func Forward(
	b Bus, name string, publisher pubsub.Publisher, topic string, keyFn func(payload any) string,
) func() {
	return b.Subscribe(name, func(ctx context.Context, payload any) {
		msg, err := json.Marshal(payload)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal event %s: %v", name, err)
			return
		}

		key := name
		if keyFn != nil {
			key = keyFn(payload)
		}

		err = publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(key), Msg: msg})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot forward event %s to topic %s: %v", name, topic, err)
		}
	})
}
