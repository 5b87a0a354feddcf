package visit

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
	Schedule(ctx context.Context, req *model.ScheduleVisitRequest) (*model.TherapyVisit, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TherapyVisit, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateVisitRequest) (*model.TherapyVisit, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
	Complete(ctx context.Context, id uuid.UUID) (*model.TherapyVisit, error)
	List(ctx context.Context, filters *model.VisitFilters) ([]*model.TherapyVisit, error)
}

type Service struct {
	repo          repository.VisitRepository
	patientRepo   repository.PatientRepository
	clinicianRepo repository.ClinicianRepository
	episodeRepo   repository.EpisodeRepository
	events        event.Emitter
	logger        *logger.Logger
}

func NewService(repo repository.VisitRepository, patientRepo repository.PatientRepository, clinicianRepo repository.ClinicianRepository, episodeRepo repository.EpisodeRepository, events event.Emitter, log *logger.Logger) *Service {
	return &Service{
		repo:          repo,
		patientRepo:   patientRepo,
		clinicianRepo: clinicianRepo,
		episodeRepo:   episodeRepo,
		events:        events,
		logger:        log.WithComponent("visit-service"),
	}
}

// Schedule books a home visit. The clinician must be free for the whole
// window; an overlapping scheduled visit is a conflict.
func (s *Service) Schedule(ctx context.Context, req *model.ScheduleVisitRequest) (*model.TherapyVisit, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewBadRequest("visit end time must be after start time", nil)
	}
	if _, err := s.patientRepo.Get(ctx, req.PatientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if _, err := s.clinicianRepo.Get(ctx, req.ClinicianID); err != nil {
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	if req.EpisodeID != nil {
		episode, err := s.episodeRepo.Get(ctx, *req.EpisodeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get episode: %w", err)
		}
		if episode.PatientID != req.PatientID {
			return nil, apperrors.NewBadRequest("episode does not belong to this patient", nil)
		}
	}

	if err := s.checkClinicianFree(ctx, req.ClinicianID, req.StartTime, req.EndTime, nil); err != nil {
		return nil, err
	}

	visit := &model.TherapyVisit{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		EpisodeID:   req.EpisodeID,
		Discipline:  req.Discipline,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      model.VisitStatusScheduled,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}

	s.emit(ctx, model.EventTypeVisitScheduled, map[string]interface{}{
		"visit_id":     visit.ID,
		"patient_id":   visit.PatientID,
		"clinician_id": visit.ClinicianID,
		"start_time":   visit.StartTime.UTC(),
		"end_time":     visit.EndTime.UTC(),
	})
	return visit, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.TherapyVisit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return visit, nil
}

// Update reschedules a visit or moves it through its lifecycle. Time
// changes on a scheduled visit re-run the clinician conflict check.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateVisitRequest) (*model.TherapyVisit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	if req.Status != nil && *req.Status != visit.Status && visit.Status != model.VisitStatusScheduled {
		return nil, apperrors.NewConflict("visit is no longer scheduled", nil)
	}

	start, end := visit.StartTime, visit.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if !end.After(start) {
		return nil, apperrors.NewBadRequest("visit end time must be after start time", nil)
	}

	timesChanged := !start.Equal(visit.StartTime) || !end.Equal(visit.EndTime)
	if timesChanged && visit.Status == model.VisitStatusScheduled {
		if err := s.checkClinicianFree(ctx, visit.ClinicianID, start, end, &visit.ID); err != nil {
			return nil, err
		}
	}

	visit.StartTime = start
	visit.EndTime = end
	if req.Status != nil {
		visit.Status = *req.Status
	}
	if req.Notes != nil {
		visit.Notes = *req.Notes
	}
	if req.CancelReason != nil {
		visit.CancelReason = req.CancelReason
	}

	if err := s.repo.Update(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to update visit: %w", err)
	}
	return visit, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get visit: %w", err)
	}
	if visit.Status != model.VisitStatusScheduled {
		return apperrors.NewConflict("only scheduled visits can be cancelled", nil)
	}

	visit.Status = model.VisitStatusCancelled
	visit.CancelReason = &reason
	if err := s.repo.Update(ctx, visit); err != nil {
		return fmt.Errorf("failed to cancel visit: %w", err)
	}
	return nil
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.TherapyVisit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	if visit.Status != model.VisitStatusScheduled {
		return nil, apperrors.NewConflict("only scheduled visits can be completed", nil)
	}

	visit.Status = model.VisitStatusCompleted
	if err := s.repo.Update(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to complete visit: %w", err)
	}
	return visit, nil
}

func (s *Service) List(ctx context.Context, filters *model.VisitFilters) ([]*model.TherapyVisit, error) {
	visits, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

func (s *Service) checkClinicianFree(ctx context.Context, clinicianID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	overlapping, err := s.repo.FindOverlapping(ctx, clinicianID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check for overlapping visits: %w", err)
	}
	if len(overlapping) > 0 {
		return apperrors.NewConflict("clinician already has a visit in this time window", nil)
	}
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
