package testutil

import (
	"context"
	"sync"

	"github.com/hauntpass/backend/pkg/pubsub"
)

// MockPublisher records every published pack by topic unless PublishFunc
// overrides it.
type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mutex     sync.Mutex
	Published map[string][]*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Published == nil {
		m.Published = map[string][]*pubsub.Pack{}
	}

	m.Published[topic] = append(m.Published[topic], pack)
	return nil
}
