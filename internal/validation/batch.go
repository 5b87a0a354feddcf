package validation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// DefaultBatchConcurrency caps in-flight record fetches when the
// configuration does not say otherwise.
const DefaultBatchConcurrency = 5

// RecordFetcher is the record store as the batch orchestrator sees it.
// Timeout and cancellation policy belong to the implementation; any
// error it returns is treated as an infrastructure failure for that id.
type RecordFetcher interface {
	FetchRecord(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

// BatchValidator validates many records with a bounded fetch fan-out.
type BatchValidator struct {
	validator   *Validator
	fetcher     RecordFetcher
	concurrency int
	now         func() time.Time
}

// BatchOption configures a BatchValidator.
type BatchOption func(*BatchValidator)

// WithBatchClock overrides the timestamp source used for LastValidated.
func WithBatchClock(now func() time.Time) BatchOption {
	return func(b *BatchValidator) {
		b.now = now
	}
}

// NewBatchValidator wires a batch orchestrator. A non-positive
// concurrency falls back to DefaultBatchConcurrency; unbounded fan-out
// over a large id list would exhaust the record store.
func NewBatchValidator(v *Validator, fetcher RecordFetcher, concurrency int, opts ...BatchOption) *BatchValidator {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	b := &BatchValidator{
		validator:   v,
		fetcher:     fetcher,
		concurrency: concurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type batchSlot struct {
	result  *model.ValidationResult
	failure *model.InfrastructureFailure
}

// ValidateBatch fetches and validates every id and returns one complete
// result; it never returns an error. A failed fetch becomes an
// InfrastructureFailure entry for that id only and never aborts the
// rest. Workers write into indexed slots and the summary is folded
// sequentially afterwards, so the aggregate is independent of worker
// scheduling.
func (b *BatchValidator) ValidateBatch(ctx context.Context, ids []uuid.UUID) *model.BatchValidationResult {
	slots := make([]batchSlot, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			record, err := b.fetcher.FetchRecord(gctx, id)
			if err != nil {
				slots[i] = batchSlot{failure: &model.InfrastructureFailure{Reason: err.Error()}}
				return nil
			}
			result := b.validator.Validate(record)
			stamped := b.now()
			result.LastValidated = &stamped
			slots[i] = batchSlot{result: result}
			return nil
		})
	}
	// Workers never return errors; per-record failures live in their slots.
	_ = g.Wait()

	return b.fold(ids, slots)
}

func (b *BatchValidator) fold(ids []uuid.UUID, slots []batchSlot) *model.BatchValidationResult {
	out := &model.BatchValidationResult{
		Results: make(map[string]model.BatchEntry, len(ids)),
		Summary: model.BatchSummary{
			Total:           len(ids),
			ComplianceRates: map[string]float64{},
		},
	}

	validated := 0
	compliant := make(map[string]int)
	for i, id := range ids {
		slot := slots[i]
		if slot.failure != nil {
			out.Summary.InfrastructureFailed++
			out.Results[id.String()] = model.BatchEntry{Failure: slot.failure}
			continue
		}

		validated++
		if slot.result.IsValid {
			out.Summary.Valid++
		} else {
			out.Summary.Invalid++
		}
		for cat, ok := range slot.result.Compliance {
			if ok {
				compliant[cat]++
			}
		}
		out.Results[id.String()] = model.BatchEntry{Result: slot.result}
	}

	if validated > 0 {
		for _, cat := range b.validator.catalog.Categories() {
			out.Summary.ComplianceRates[cat] = float64(compliant[cat]) / float64(validated)
		}
	}
	return out
}
