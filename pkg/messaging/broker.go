package messaging

import (
	"context"
)

// Broker defines the interface for message brokers. Account channels carry
// the live account-change notifications that session monitors subscribe
// to; the subscription channel closes when ctx is cancelled, which is how
// monitors are torn down on logout.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// AccountChannel names the per-account pub/sub channel.
func AccountChannel(uid string) string {
	return "accounts:" + uid
}
