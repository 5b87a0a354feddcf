package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
)

const visitColumns = `id, patient_id, clinician_id, episode_id, discipline, start_time, end_time,
	status, notes, cancel_reason, created_at, updated_at`

type visitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, visit *model.TherapyVisit) error {
	query := `
		INSERT INTO therapy_visits (
			id, patient_id, clinician_id, episode_id, discipline, start_time, end_time,
			status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = visit.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		visit.ID,
		visit.PatientID,
		visit.ClinicianID,
		visit.EpisodeID,
		visit.Discipline,
		visit.StartTime,
		visit.EndTime,
		visit.Status,
		visit.Notes,
		visit.CreatedAt,
		visit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Get(ctx context.Context, id uuid.UUID) (*model.TherapyVisit, error) {
	query := fmt.Sprintf(`SELECT %s FROM therapy_visits WHERE id = $1`, visitColumns)
	var visit model.TherapyVisit
	if err := r.db.GetContext(ctx, &visit, query, id); err != nil {
		return nil, notFound(err, "visit")
	}
	return &visit, nil
}

func (r *visitRepository) Update(ctx context.Context, visit *model.TherapyVisit) error {
	query := `
		UPDATE therapy_visits
		SET start_time = $2, end_time = $3, status = $4, notes = $5, cancel_reason = $6, updated_at = $7
		WHERE id = $1
	`
	visit.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		visit.ID,
		visit.StartTime,
		visit.EndTime,
		visit.Status,
		visit.Notes,
		visit.CancelReason,
		visit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	return requireRow(result, "visit")
}

func (r *visitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM therapy_visits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	return requireRow(result, "visit")
}

func (r *visitRepository) List(ctx context.Context, filters *model.VisitFilters) ([]*model.TherapyVisit, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filters.PatientID != uuid.Nil {
		where = append(where, fmt.Sprintf("patient_id = $%d", idx))
		args = append(args, filters.PatientID)
		idx++
	}
	if filters.ClinicianID != uuid.Nil {
		where = append(where, fmt.Sprintf("clinician_id = $%d", idx))
		args = append(args, filters.ClinicianID)
		idx++
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, filters.Status)
		idx++
	}
	if !filters.From.IsZero() {
		where = append(where, fmt.Sprintf("start_time >= $%d", idx))
		args = append(args, filters.From)
		idx++
	}
	if !filters.To.IsZero() {
		where = append(where, fmt.Sprintf("start_time < $%d", idx))
		args = append(args, filters.To)
		idx++
	}

	query := fmt.Sprintf(`SELECT %s FROM therapy_visits WHERE %s ORDER BY start_time ASC`,
		visitColumns, strings.Join(where, " AND "))

	var visits []*model.TherapyVisit
	if err := r.db.SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

// FindOverlapping returns scheduled visits for the clinician that
// intersect [start, end). Cancelled and missed visits do not block.
func (r *visitRepository) FindOverlapping(ctx context.Context, clinicianID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.TherapyVisit, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM therapy_visits
		WHERE clinician_id = $1
		AND status = 'scheduled'
		AND start_time < $3
		AND end_time > $2
	`, visitColumns)
	args := []interface{}{clinicianID, start, end}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	var visits []*model.TherapyVisit
	if err := r.db.SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find overlapping visits: %w", err)
	}
	return visits, nil
}
