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

const clinicianColumns = `id, name, email, phone, discipline, license_number, status, created_at, updated_at, deleted_at`

type clinicianRepository struct {
	db *sqlx.DB
}

func NewClinicianRepository(db *sqlx.DB) repository.ClinicianRepository {
	return &clinicianRepository{db: db}
}

func (r *clinicianRepository) Create(ctx context.Context, clinician *model.Clinician) error {
	query := `
		INSERT INTO clinicians (
			id, name, email, phone, discipline, license_number, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	clinician.CreatedAt = time.Now()
	clinician.UpdatedAt = clinician.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		clinician.ID,
		clinician.Name,
		clinician.Email,
		clinician.Phone,
		clinician.Discipline,
		clinician.LicenseNumber,
		clinician.Status,
		clinician.CreatedAt,
		clinician.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinician: %w", err)
	}
	return nil
}

func (r *clinicianRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	query := fmt.Sprintf(`SELECT %s FROM clinicians WHERE id = $1 AND deleted_at IS NULL`, clinicianColumns)
	var clinician model.Clinician
	if err := r.db.GetContext(ctx, &clinician, query, id); err != nil {
		return nil, notFound(err, "clinician")
	}
	return &clinician, nil
}

func (r *clinicianRepository) Update(ctx context.Context, clinician *model.Clinician) error {
	query := `
		UPDATE clinicians
		SET name = $2, email = $3, phone = $4, discipline = $5, license_number = $6, status = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`
	clinician.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		clinician.ID,
		clinician.Name,
		clinician.Email,
		clinician.Phone,
		clinician.Discipline,
		clinician.LicenseNumber,
		clinician.Status,
		clinician.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinician: %w", err)
	}
	return requireRow(result, "clinician")
}

func (r *clinicianRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE clinicians SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete clinician: %w", err)
	}
	return requireRow(result, "clinician")
}

func (r *clinicianRepository) List(ctx context.Context, p *model.Pagination) ([]*model.Clinician, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM clinicians WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, fmt.Errorf("failed to count clinicians: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM clinicians WHERE deleted_at IS NULL ORDER BY name ASC LIMIT $1 OFFSET $2`,
		clinicianColumns)
	var clinicians []*model.Clinician
	if err := r.db.SelectContext(ctx, &clinicians, query, p.Limit(), p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list clinicians: %w", err)
	}
	return clinicians, total, nil
}
