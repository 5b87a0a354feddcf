package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// OutboxRepository is the narrow slice of outbox storage the publisher
// worker needs. The full repository lives in internal/repository.
type OutboxRepository interface {
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	CountPending(ctx context.Context) (int64, error)
}
