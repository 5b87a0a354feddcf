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

const patientColumns = `id, name_en, name_ar, emirates_id, date_of_birth, gender, nationality,
	phone, email, address, insurance_provider, insurance_type, insurance_policy_number,
	insurance_expiry_date, homebound_status, homebound_justification, assessment_date,
	assessor_name, identity_verified, status, notes, last_validated_at,
	created_at, updated_at, deleted_at`

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name_en, name_ar, emirates_id, date_of_birth, gender, nationality,
			phone, email, address, insurance_provider, insurance_type,
			insurance_policy_number, insurance_expiry_date, homebound_status,
			homebound_justification, assessment_date, assessor_name,
			identity_verified, status, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.NameEN,
		patient.NameAR,
		patient.EmiratesID,
		patient.DateOfBirth,
		patient.Gender,
		patient.Nationality,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.InsuranceProvider,
		patient.InsuranceType,
		patient.InsurancePolicyNumber,
		patient.InsuranceExpiryDate,
		patient.HomeboundStatus,
		patient.HomeboundJustification,
		patient.AssessmentDate,
		patient.AssessorName,
		patient.IdentityVerified,
		patient.Status,
		patient.Notes,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE id = $1 AND deleted_at IS NULL`, patientColumns)
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, notFound(err, "patient")
	}
	return &patient, nil
}

// GetSnapshot folds the primary emergency contact into the record. This
// is the view the validation engine runs against.
func (r *patientRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT p.id, p.name_en, p.name_ar, p.emirates_id, p.date_of_birth, p.gender,
			p.nationality, p.phone, p.email, p.address,
			COALESCE(ec.name, '') AS emergency_contact_name,
			COALESCE(ec.phone, '') AS emergency_contact_phone,
			p.insurance_provider, p.insurance_type, p.insurance_policy_number,
			p.insurance_expiry_date, p.homebound_status, p.homebound_justification,
			p.assessment_date, p.assessor_name, p.identity_verified, p.status,
			p.notes, p.last_validated_at, p.created_at, p.updated_at, p.deleted_at
		FROM patients p
		LEFT JOIN LATERAL (
			SELECT name, phone
			FROM emergency_contacts
			WHERE patient_id = p.id AND is_primary
			ORDER BY created_at DESC
			LIMIT 1
		) ec ON true
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, notFound(err, "patient")
	}
	return &patient, nil
}

func (r *patientRepository) GetByEmiratesID(ctx context.Context, emiratesID string) (*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE emirates_id = $1 AND deleted_at IS NULL`, patientColumns)
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, emiratesID); err != nil {
		return nil, notFound(err, "patient")
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			name_en = $2, name_ar = $3, emirates_id = $4, date_of_birth = $5,
			gender = $6, nationality = $7, phone = $8, email = $9, address = $10,
			insurance_provider = $11, insurance_type = $12, insurance_policy_number = $13,
			insurance_expiry_date = $14, homebound_status = $15, homebound_justification = $16,
			assessment_date = $17, assessor_name = $18, identity_verified = $19,
			status = $20, notes = $21, updated_at = $22
		WHERE id = $1 AND deleted_at IS NULL
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.NameEN,
		patient.NameAR,
		patient.EmiratesID,
		patient.DateOfBirth,
		patient.Gender,
		patient.Nationality,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.InsuranceProvider,
		patient.InsuranceType,
		patient.InsurancePolicyNumber,
		patient.InsuranceExpiryDate,
		patient.HomeboundStatus,
		patient.HomeboundJustification,
		patient.AssessmentDate,
		patient.AssessorName,
		patient.IdentityVerified,
		patient.Status,
		patient.Notes,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return requireRow(result, "patient")
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE patients SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return requireRow(result, "patient")
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	idx := 1

	if filters.SearchTerm != "" {
		where = append(where, fmt.Sprintf(
			"(name_en ILIKE $%d OR name_ar ILIKE $%d OR emirates_id ILIKE $%d OR phone ILIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, "%"+filters.SearchTerm+"%")
		idx++
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, filters.Status)
		idx++
	}
	if filters.HomeboundStatus != "" {
		where = append(where, fmt.Sprintf("homebound_status = $%d", idx))
		args = append(args, filters.HomeboundStatus)
		idx++
	}
	if filters.Nationality != "" {
		where = append(where, fmt.Sprintf("nationality = $%d", idx))
		args = append(args, filters.Nationality)
		idx++
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM patients WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM patients WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		patientColumns, whereClause, idx, idx+1)
	args = append(args, filters.Limit(), filters.Offset())

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) SetLastValidated(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE patients SET last_validated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to stamp last validation: %w", err)
	}
	return nil
}
