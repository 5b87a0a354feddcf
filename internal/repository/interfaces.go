package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository stores demographic records. Get returns the raw
	// row; GetSnapshot additionally folds the primary emergency contact
	// into the record, which is the shape the validation engine reads.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetSnapshot(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmiratesID(ctx context.Context, emiratesID string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error)
		SetLastValidated(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	ContactRepository interface {
		Create(ctx context.Context, contact *model.EmergencyContact) error
		Get(ctx context.Context, id uuid.UUID) (*model.EmergencyContact, error)
		Update(ctx context.Context, contact *model.EmergencyContact) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.EmergencyContact, error)
		ClearPrimary(ctx context.Context, patientID uuid.UUID) error
	}

	EpisodeRepository interface {
		Create(ctx context.Context, episode *model.CareEpisode) error
		Get(ctx context.Context, id uuid.UUID) (*model.CareEpisode, error)
		Update(ctx context.Context, episode *model.CareEpisode) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.CareEpisode, error)
		GetOpenByPatient(ctx context.Context, patientID uuid.UUID) (*model.CareEpisode, error)
	}

	VisitRepository interface {
		Create(ctx context.Context, visit *model.TherapyVisit) error
		Get(ctx context.Context, id uuid.UUID) (*model.TherapyVisit, error)
		Update(ctx context.Context, visit *model.TherapyVisit) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.VisitFilters) ([]*model.TherapyVisit, error)
		FindOverlapping(ctx context.Context, clinicianID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.TherapyVisit, error)
	}

	ClinicianRepository interface {
		Create(ctx context.Context, clinician *model.Clinician) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinician, error)
		Update(ctx context.Context, clinician *model.Clinician) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, p *model.Pagination) ([]*model.Clinician, int64, error)
	}

	ConsentRepository interface {
		Create(ctx context.Context, consent *model.Consent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Consent, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consent, error)
		Revoke(ctx context.Context, id uuid.UUID, recordedBy uuid.UUID, at time.Time) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, p *model.Pagination) ([]*model.User, error)
	}

	ReportRepository interface {
		Create(ctx context.Context, report *model.ComplianceReport) error
		Get(ctx context.Context, id uuid.UUID) (*model.ComplianceReport, error)
		List(ctx context.Context, p *model.Pagination) ([]*model.ComplianceReport, int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
		CountPending(ctx context.Context) (int64, error)
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
