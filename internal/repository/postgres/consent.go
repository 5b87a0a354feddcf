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

const consentColumns = `id, patient_id, consent_type, granted, granted_by, notes, granted_at,
	revoked_at, recorded_by, created_at, updated_at`

type consentRepository struct {
	db *sqlx.DB
}

func NewConsentRepository(db *sqlx.DB) repository.ConsentRepository {
	return &consentRepository{db: db}
}

func (r *consentRepository) Create(ctx context.Context, consent *model.Consent) error {
	query := `
		INSERT INTO consents (
			id, patient_id, consent_type, granted, granted_by, notes, granted_at,
			recorded_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	consent.CreatedAt = time.Now()
	consent.UpdatedAt = consent.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		consent.ID,
		consent.PatientID,
		consent.Type,
		consent.Granted,
		consent.GrantedBy,
		consent.Notes,
		consent.GrantedAt,
		consent.RecordedBy,
		consent.CreatedAt,
		consent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record consent: %w", err)
	}
	return nil
}

func (r *consentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consent, error) {
	query := fmt.Sprintf(`SELECT %s FROM consents WHERE id = $1`, consentColumns)
	var consent model.Consent
	if err := r.db.GetContext(ctx, &consent, query, id); err != nil {
		return nil, notFound(err, "consent")
	}
	return &consent, nil
}

func (r *consentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM consents WHERE patient_id = $1 ORDER BY granted_at DESC`,
		consentColumns)
	var consents []*model.Consent
	if err := r.db.SelectContext(ctx, &consents, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}
	return consents, nil
}

// Revoke stamps the revocation on a still-active consent. Revoking an
// already revoked consent reports not found.
func (r *consentRepository) Revoke(ctx context.Context, id uuid.UUID, recordedBy uuid.UUID, at time.Time) error {
	query := `
		UPDATE consents
		SET revoked_at = $2, recorded_by = $3, updated_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, at, recordedBy)
	if err != nil {
		return fmt.Errorf("failed to revoke consent: %w", err)
	}
	return requireRow(result, "consent")
}
