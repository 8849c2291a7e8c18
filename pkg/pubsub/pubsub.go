// Package pubsub abstracts the message broker carrying events between
// processes.
package pubsub

import (
	"context"
	"time"
)

// Pack is a single keyed message on a topic. Messages with the same key keep
// their order.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}

// SubscribeHandler receives a message with the time it was produced.
type SubscribeHandler func(ctx context.Context, pack *Pack, t time.Time)

type Subscriber interface {
	// Subscribe blocks until ctx is done.
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
