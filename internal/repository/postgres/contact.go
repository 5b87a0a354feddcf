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

const contactColumns = `id, patient_id, name, relationship, phone, email, is_primary, created_at, updated_at`

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.EmergencyContact) error {
	query := `
		INSERT INTO emergency_contacts (
			id, patient_id, name, relationship, phone, email, is_primary, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.PatientID,
		contact.Name,
		contact.Relationship,
		contact.Phone,
		contact.Email,
		contact.IsPrimary,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.EmergencyContact, error) {
	query := fmt.Sprintf(`SELECT %s FROM emergency_contacts WHERE id = $1`, contactColumns)
	var contact model.EmergencyContact
	if err := r.db.GetContext(ctx, &contact, query, id); err != nil {
		return nil, notFound(err, "contact")
	}
	return &contact, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.EmergencyContact) error {
	query := `
		UPDATE emergency_contacts
		SET name = $2, relationship = $3, phone = $4, email = $5, is_primary = $6, updated_at = $7
		WHERE id = $1
	`
	contact.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.Name,
		contact.Relationship,
		contact.Phone,
		contact.Email,
		contact.IsPrimary,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return requireRow(result, "contact")
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM emergency_contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return requireRow(result, "contact")
}

func (r *contactRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.EmergencyContact, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM emergency_contacts WHERE patient_id = $1 ORDER BY is_primary DESC, created_at ASC`,
		contactColumns)
	var contacts []*model.EmergencyContact
	if err := r.db.SelectContext(ctx, &contacts, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// ClearPrimary drops the primary flag from every contact of the patient.
// Called before a new primary is set so at most one row carries it.
func (r *contactRepository) ClearPrimary(ctx context.Context, patientID uuid.UUID) error {
	query := `UPDATE emergency_contacts SET is_primary = false, updated_at = $2 WHERE patient_id = $1 AND is_primary`
	if _, err := r.db.ExecContext(ctx, query, patientID, time.Now()); err != nil {
		return fmt.Errorf("failed to clear primary contact: %w", err)
	}
	return nil
}
