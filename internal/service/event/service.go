package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
)

// eventExpiry is how long processed events stay in the outbox before the
// worker's janitor sweeps them.
const eventExpiry = 24 * time.Hour

// Emitter records domain events for asynchronous publication. Services
// call it inline; the outbox worker owns delivery and retries.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

// Emit writes the event to the outbox in PENDING state. Delivery to the
// broker happens out of band, so a broker outage never fails the caller.
func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}
	return nil
}

// CleanupProcessedEvents drops processed rows older than the retention
// window and returns how many were removed.
func (s *Service) CleanupProcessedEvents(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-eventExpiry)
	removed, err := s.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up processed events: %w", err)
	}
	return removed, nil
}
