package messaging

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// TopicPrefix namespaces every event topic published by this system.
const TopicPrefix = "aafiya:events:"

// TopicFor maps an event type such as RECORD_VALIDATED to its topic,
// aafiya:events:record_validated.
func TopicFor(eventType string) string {
	return TopicPrefix + strings.ToLower(eventType)
}

// EventPublisher wraps a Broker and stamps the standard envelope on
// every event the outbox worker drains.
type EventPublisher struct {
	broker Broker
	now    func() time.Time
}

func NewEventPublisher(broker Broker) *EventPublisher {
	return &EventPublisher{broker: broker, now: time.Now}
}

func (p *EventPublisher) PublishEvent(ctx context.Context, eventType string, payload json.RawMessage) error {
	msg := Message{
		Type:        eventType,
		Payload:     payload,
		PublishedAt: p.now().UTC(),
	}
	return p.broker.Publish(ctx, TopicFor(eventType), msg)
}

func (p *EventPublisher) Close() error {
	return p.broker.Close()
}
