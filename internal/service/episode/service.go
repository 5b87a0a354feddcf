package episode

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
	"github.com/aafiyacare/homecare-api/internal/service/event"
	apperrors "github.com/aafiyacare/homecare-api/pkg/errors"
	"github.com/aafiyacare/homecare-api/pkg/logger"
	"github.com/aafiyacare/homecare-api/pkg/security"
)

type Servicer interface {
	Open(ctx context.Context, patientID uuid.UUID, req *model.OpenEpisodeRequest) (*model.CareEpisode, error)
	Get(ctx context.Context, patientID, episodeID uuid.UUID) (*model.CareEpisode, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.CareEpisode, error)
	Close(ctx context.Context, patientID, episodeID uuid.UUID, req *model.CloseEpisodeRequest) (*model.CareEpisode, error)
}

// Service manages care episodes. Care plans are clinical content and are
// stored encrypted; both read paths decrypt before returning.
type Service struct {
	repo        repository.EpisodeRepository
	patientRepo repository.PatientRepository
	encryptor   security.Encryptor
	events      event.Emitter
	logger      *logger.Logger
	now         func() time.Time
}

func NewService(repo repository.EpisodeRepository, patientRepo repository.PatientRepository, encryptor security.Encryptor, events event.Emitter, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		encryptor:   encryptor,
		events:      events,
		logger:      log.WithComponent("episode-service"),
		now:         time.Now,
	}
}

// Open starts a new episode. A patient has at most one open or on-hold
// episode at a time; opening a second one is a conflict.
func (s *Service) Open(ctx context.Context, patientID uuid.UUID, req *model.OpenEpisodeRequest) (*model.CareEpisode, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	existing, err := s.repo.GetOpenByPatient(ctx, patientID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check open episodes: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("patient already has an open episode", nil)
	}

	startedAt := s.now()
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	episode := &model.CareEpisode{
		Base:             model.Base{ID: uuid.New()},
		PatientID:        patientID,
		ReferralSource:   req.ReferralSource,
		DiagnosisSummary: req.DiagnosisSummary,
		Status:           model.EpisodeStatusOpen,
		StartedAt:        startedAt,
	}

	episode.CarePlan, err = s.sealPlan(req.CarePlan)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, episode); err != nil {
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}

	s.emit(ctx, model.EventTypeEpisodeOpened, map[string]interface{}{
		"episode_id": episode.ID,
		"patient_id": patientID,
		"started_at": startedAt.UTC(),
	})

	episode.CarePlan = req.CarePlan
	return episode, nil
}

func (s *Service) Get(ctx context.Context, patientID, episodeID uuid.UUID) (*model.CareEpisode, error) {
	episode, err := s.getOwnedEpisode(ctx, patientID, episodeID)
	if err != nil {
		return nil, err
	}
	if err := s.openPlan(episode); err != nil {
		return nil, err
	}
	return episode, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.CareEpisode, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	episodes, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	for _, episode := range episodes {
		if err := s.openPlan(episode); err != nil {
			return nil, err
		}
	}
	return episodes, nil
}

// Close ends an episode. Closing an episode that is not open or on hold
// is a conflict.
func (s *Service) Close(ctx context.Context, patientID, episodeID uuid.UUID, req *model.CloseEpisodeRequest) (*model.CareEpisode, error) {
	episode, err := s.getOwnedEpisode(ctx, patientID, episodeID)
	if err != nil {
		return nil, err
	}
	if episode.Status != model.EpisodeStatusOpen && episode.Status != model.EpisodeStatusOnHold {
		return nil, apperrors.NewConflict("episode is already closed", nil)
	}

	closedAt := s.now()
	episode.Status = model.EpisodeStatusClosed
	episode.ClosedAt = &closedAt
	episode.CloseReason = &req.Reason

	if err := s.repo.Update(ctx, episode); err != nil {
		return nil, fmt.Errorf("failed to close episode: %w", err)
	}

	s.emit(ctx, model.EventTypeEpisodeClosed, map[string]interface{}{
		"episode_id": episode.ID,
		"patient_id": patientID,
		"reason":     req.Reason,
		"closed_at":  closedAt.UTC(),
	})

	if err := s.openPlan(episode); err != nil {
		return nil, err
	}
	return episode, nil
}

func (s *Service) getOwnedEpisode(ctx context.Context, patientID, episodeID uuid.UUID) (*model.CareEpisode, error) {
	episode, err := s.repo.Get(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	if episode.PatientID != patientID {
		return nil, apperrors.NewNotFound("episode", nil)
	}
	return episode, nil
}

// sealPlan encrypts a care plan for storage. The ciphertext is wrapped
// as a base64 JSON string so the column content stays valid JSON.
func (s *Service) sealPlan(plan json.RawMessage) (json.RawMessage, error) {
	if len(plan) == 0 || string(plan) == "null" {
		return nil, nil
	}
	sealed, err := s.encryptor.Encrypt(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt care plan: %w", err)
	}
	return json.RawMessage(strconv.Quote(base64.StdEncoding.EncodeToString(sealed))), nil
}

// openPlan decrypts the stored care plan in place.
func (s *Service) openPlan(episode *model.CareEpisode) error {
	if len(episode.CarePlan) == 0 || string(episode.CarePlan) == "null" {
		episode.CarePlan = nil
		return nil
	}

	quoted, err := strconv.Unquote(string(episode.CarePlan))
	if err != nil {
		return fmt.Errorf("failed to read sealed care plan: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(quoted)
	if err != nil {
		return fmt.Errorf("failed to decode sealed care plan: %w", err)
	}
	plain, err := s.encryptor.Decrypt(sealed)
	if err != nil {
		return fmt.Errorf("failed to decrypt care plan: %w", err)
	}
	episode.CarePlan = plain
	return nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to emit event", "event_type", eventType)
	}
}
