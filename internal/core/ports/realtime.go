package ports

import (
	"context"
	"time"
)

// RealtimeChannel is a push connection delivering state updates. Transport
// failures are retried internally and never surface to the caller.
type RealtimeChannel interface {
	// Connect opens the channel authenticating with the given bearer token.
	Connect(ctx context.Context, token string) error
	// Disconnect closes the channel for good, cancelling any pending
	// reconnection.
	Disconnect() error
}

// MessageHandler processes a raw frame received on a realtime channel
type MessageHandler func(payload []byte)

// Clock abstracts the current time
type Clock interface {
	Now() time.Time
}
