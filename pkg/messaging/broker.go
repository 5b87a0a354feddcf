package messaging

import (
	"context"
	"time"
)

// Broker is the transport the outbox worker publishes through.
// Downstream systems (care coordination, reporting) subscribe to the
// per-event-type topics.
type Broker interface {
	Publish(ctx context.Context, topic string, message interface{}) error
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope written to every topic.
type Message struct {
	Type        string      `json:"type"`
	Payload     interface{} `json:"payload"`
	PublishedAt time.Time   `json:"published_at"`
}
