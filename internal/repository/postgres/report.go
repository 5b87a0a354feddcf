package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
)

const reportColumns = `id, requested_by, patient_count, valid_count, invalid_count,
	infrastructure_failed, summary, recipients, created_at, updated_at`

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.ComplianceReport) error {
	query := `
		INSERT INTO compliance_reports (
			id, requested_by, patient_count, valid_count, invalid_count,
			infrastructure_failed, summary, recipients, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.RequestedBy,
		report.PatientCount,
		report.ValidCount,
		report.InvalidCount,
		report.InfrastructureFailed,
		report.Summary,
		report.Recipients,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*model.ComplianceReport, error) {
	query := fmt.Sprintf(`SELECT %s FROM compliance_reports WHERE id = $1`, reportColumns)
	var report model.ComplianceReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, notFound(err, "report")
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, p *model.Pagination) ([]*model.ComplianceReport, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM compliance_reports`); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM compliance_reports ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		reportColumns)
	var reports []*model.ComplianceReport
	if err := r.db.SelectContext(ctx, &reports, query, p.Limit(), p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, total, nil
}
