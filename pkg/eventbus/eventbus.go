package eventbus

import (
	"context"
	"sync"

	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

type Handler func(ctx context.Context, payload any)

type Bus interface {
	// Subscribe registers the handler and returns a function removing it.
	Subscribe(name string, handler Handler) func()

	// Publish calls every handler of name synchronously, in registration
	// order. A panicking handler does not stop the others.
	Publish(ctx context.Context, name string, payload any)
}

type subscription struct {
	id      uint64
	handler Handler
}

type topic struct {
	mutex         sync.RWMutex
	subscriptions []subscription
}

type bus struct {
	topics *xsync.MapOf[string, *topic]

	mutex  sync.Mutex
	nextID uint64
}

func New() *bus {
	return &bus{topics: xsync.NewMapOf[*topic]()}
}

func (b *bus) Subscribe(name string, handler Handler) func() {
	b.mutex.Lock()
	b.nextID++
	id := b.nextID
	b.mutex.Unlock()

	t, _ := b.topics.LoadOrStore(name, &topic{})
	t.mutex.Lock()
	t.subscriptions = append(t.subscriptions, subscription{id: id, handler: handler})
	t.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mutex.Lock()
			defer t.mutex.Unlock()

			for i, s := range t.subscriptions {
				if s.id == id {
					t.subscriptions = append(t.subscriptions[:i:i], t.subscriptions[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *bus) Publish(ctx context.Context, name string, payload any) {
	t, ok := b.topics.Load(name)
	if !ok {
		return
	}

	// Handlers may subscribe or unsubscribe while being called.
	t.mutex.RLock()
	subscriptions := make([]subscription, len(t.subscriptions))
	copy(subscriptions, t.subscriptions)
	t.mutex.RUnlock()

	for _, s := range subscriptions {
		call(ctx, name, s.handler, payload)
	}
}

func call(ctx context.Context, name string, handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			xcontext.Logger(ctx).Errorf("Handler of event %s panicked: %v", name, r)
		}
	}()

	handler(ctx, payload)
}

// SubscribeTyped registers a handler receiving payloads of type T. Payloads
// of another type are logged and dropped.
func SubscribeTyped[T any](b Bus, name string, handler func(ctx context.Context, payload T)) func() {
	return b.Subscribe(name, func(ctx context.Context, payload any) {
		typed, ok := payload.(T)
		if !ok {
			xcontext.Logger(ctx).Warnf("Invalid payload type %T of event %s", payload, name)
			return
		}

		handler(ctx, typed)
	})
}
