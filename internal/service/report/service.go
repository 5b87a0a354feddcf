package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/email"
	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
	"github.com/aafiyacare/homecare-api/internal/service/event"
	"github.com/aafiyacare/homecare-api/pkg/logger"
)

// BatchRunner is the slice of the patient service the report generator
// needs: one bounded batch validation run.
type BatchRunner interface {
	ValidateBatch(ctx context.Context, ids []uuid.UUID) (*model.BatchValidationResult, error)
}

type Servicer interface {
	GenerateCompliance(ctx context.Context, requestedBy uuid.UUID, req *model.ComplianceReportRequest) (*model.ComplianceReport, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ComplianceReport, error)
	List(ctx context.Context, p *model.Pagination) ([]*model.ComplianceReport, int64, error)
}

type Service struct {
	repo              repository.ReportRepository
	batches           BatchRunner
	mailer            email.Service
	events            event.Emitter
	defaultRecipients []string
	logger            *logger.Logger
}

func NewService(repo repository.ReportRepository, batches BatchRunner, mailer email.Service, events event.Emitter, defaultRecipients []string, log *logger.Logger) *Service {
	return &Service{
		repo:              repo,
		batches:           batches,
		mailer:            mailer,
		events:            events,
		defaultRecipients: defaultRecipients,
		logger:            log.WithComponent("report-service"),
	}
}

// GenerateCompliance runs a batch validation over the requested records,
// persists the summary and emails it to the compliance recipients. The
// persisted report is the source of truth; a failed email is logged and
// retried by humans, not by this service.
func (s *Service) GenerateCompliance(ctx context.Context, requestedBy uuid.UUID, req *model.ComplianceReportRequest) (*model.ComplianceReport, error) {
	result, err := s.batches.ValidateBatch(ctx, req.PatientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to run batch validation: %w", err)
	}

	summary, err := json.Marshal(result.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch summary: %w", err)
	}

	recipients := req.Recipients
	if len(recipients) == 0 {
		recipients = s.defaultRecipients
	}

	report := &model.ComplianceReport{
		Base:                 model.Base{ID: uuid.New()},
		RequestedBy:          requestedBy,
		PatientCount:         result.Summary.Total,
		ValidCount:           result.Summary.Valid,
		InvalidCount:         result.Summary.Invalid,
		InfrastructureFailed: result.Summary.InfrastructureFailed,
		Summary:              summary,
		Recipients:           recipients,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist compliance report: %w", err)
	}

	s.sendReport(ctx, report)
	return report, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ComplianceReport, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (s *Service) List(ctx context.Context, p *model.Pagination) ([]*model.ComplianceReport, int64, error) {
	reports, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, total, nil
}

func (s *Service) sendReport(ctx context.Context, report *model.ComplianceReport) {
	if s.mailer == nil || len(report.Recipients) == 0 {
		return
	}
	if err := s.mailer.SendComplianceReport(ctx, report.Recipients, report); err != nil {
		s.logger.Error(err, "failed to email compliance report", "report_id", report.ID.String())
		return
	}

	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, model.EventTypeComplianceReportSent, map[string]interface{}{
		"report_id":  report.ID,
		"recipients": []string(report.Recipients),
	}); err != nil {
		s.logger.Error(err, "failed to emit event", "event_type", model.EventTypeComplianceReportSent)
	}
}
