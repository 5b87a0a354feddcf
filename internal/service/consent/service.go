package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
	"github.com/aafiyacare/homecare-api/internal/service/event"
	apperrors "github.com/aafiyacare/homecare-api/pkg/errors"
	"github.com/aafiyacare/homecare-api/pkg/logger"
)

type Servicer interface {
	Record(ctx context.Context, patientID, recordedBy uuid.UUID, req *model.RecordConsentRequest) (*model.Consent, error)
	Revoke(ctx context.Context, patientID, consentID, recordedBy uuid.UUID) (*model.Consent, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error)
}

// Service keeps consent history append-only: a grant is never edited,
// a revocation only stamps RevokedAt on the original row.
type Service struct {
	repo        repository.ConsentRepository
	patientRepo repository.PatientRepository
	events      event.Emitter
	logger      *logger.Logger
	now         func() time.Time
}

func NewService(repo repository.ConsentRepository, patientRepo repository.PatientRepository, events event.Emitter, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		events:      events,
		logger:      log.WithComponent("consent-service"),
		now:         time.Now,
	}
}

func (s *Service) Record(ctx context.Context, patientID, recordedBy uuid.UUID, req *model.RecordConsentRequest) (*model.Consent, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	consent := &model.Consent{
		Base:       model.Base{ID: uuid.New()},
		PatientID:  patientID,
		Type:       req.Type,
		Granted:    req.Granted,
		GrantedBy:  req.GrantedBy,
		Notes:      req.Notes,
		GrantedAt:  s.now(),
		RecordedBy: recordedBy,
	}
	if err := s.repo.Create(ctx, consent); err != nil {
		return nil, fmt.Errorf("failed to record consent: %w", err)
	}

	s.emit(ctx, model.EventTypeConsentRecorded, map[string]interface{}{
		"consent_id":   consent.ID,
		"patient_id":   patientID,
		"consent_type": consent.Type,
		"granted":      consent.Granted,
	})
	return consent, nil
}

func (s *Service) Revoke(ctx context.Context, patientID, consentID, recordedBy uuid.UUID) (*model.Consent, error) {
	consent, err := s.repo.Get(ctx, consentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}
	if consent.PatientID != patientID {
		return nil, apperrors.NewNotFound("consent", nil)
	}
	if consent.RevokedAt != nil {
		return nil, apperrors.NewConflict("consent is already revoked", nil)
	}

	revokedAt := s.now()
	if err := s.repo.Revoke(ctx, consentID, recordedBy, revokedAt); err != nil {
		return nil, fmt.Errorf("failed to revoke consent: %w", err)
	}

	consent.RevokedAt = &revokedAt
	consent.RecordedBy = recordedBy

	s.emit(ctx, model.EventTypeConsentRecorded, map[string]interface{}{
		"consent_id":   consent.ID,
		"patient_id":   patientID,
		"consent_type": consent.Type,
		"granted":      false,
		"revoked":      true,
	})
	return consent, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	consents, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}
	return consents, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to emit event", "event_type", eventType)
	}
}
