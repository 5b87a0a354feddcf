package patient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
	"github.com/aafiyacare/homecare-api/internal/service/event"
	"github.com/aafiyacare/homecare-api/internal/validation"
	apperrors "github.com/aafiyacare/homecare-api/pkg/errors"
	"github.com/aafiyacare/homecare-api/pkg/logger"
	"github.com/aafiyacare/homecare-api/pkg/metrics"
)

type Servicer interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error)

	AddContact(ctx context.Context, patientID uuid.UUID, req *model.CreateContactRequest) (*model.EmergencyContact, error)
	UpdateContact(ctx context.Context, patientID, contactID uuid.UUID, req *model.UpdateContactRequest) (*model.EmergencyContact, error)
	DeleteContact(ctx context.Context, patientID, contactID uuid.UUID) error
	ListContacts(ctx context.Context, patientID uuid.UUID) ([]*model.EmergencyContact, error)

	Validate(ctx context.Context, id uuid.UUID) (*model.ValidationResult, error)
	ValidateBatch(ctx context.Context, ids []uuid.UUID) (*model.BatchValidationResult, error)
}

// Options tunes the validation side of the service. A non-positive
// CacheTTL disables the result cache entirely.
type Options struct {
	CacheTTL         time.Duration
	BatchConcurrency int
}

type Service struct {
	repo        repository.PatientRepository
	contactRepo repository.ContactRepository
	validator   *validation.Validator
	batch       *validation.BatchValidator
	events      event.Emitter
	cache       *gocache.Cache
	metrics     *metrics.Metrics
	logger      *logger.Logger
	now         func() time.Time
}

func NewService(repo repository.PatientRepository, contactRepo repository.ContactRepository, v *validation.Validator, events event.Emitter, m *metrics.Metrics, log *logger.Logger, opts Options) *Service {
	s := &Service{
		repo:        repo,
		contactRepo: contactRepo,
		validator:   v,
		events:      events,
		metrics:     m,
		logger:      log.WithComponent("patient-service"),
		now:         time.Now,
	}
	s.batch = validation.NewBatchValidator(v, &snapshotFetcher{repo: repo}, opts.BatchConcurrency)
	if opts.CacheTTL > 0 {
		s.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return s
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if req.EmiratesID != "" {
		if err := s.checkEmiratesIDFree(ctx, req.EmiratesID, uuid.Nil); err != nil {
			return nil, err
		}
	}

	patient := &model.Patient{
		Base:                   model.Base{ID: uuid.New()},
		NameEN:                 req.NameEN,
		NameAR:                 req.NameAR,
		EmiratesID:             req.EmiratesID,
		DateOfBirth:            req.DateOfBirth,
		Gender:                 req.Gender,
		Nationality:            req.Nationality,
		Phone:                  req.Phone,
		Email:                  req.Email,
		Address:                req.Address,
		InsuranceProvider:      req.InsuranceProvider,
		InsuranceType:          req.InsuranceType,
		InsurancePolicyNumber:  req.InsurancePolicyNumber,
		InsuranceExpiryDate:    req.InsuranceExpiryDate,
		HomeboundStatus:        req.HomeboundStatus,
		HomeboundJustification: req.HomeboundJustification,
		Status:                 string(model.PatientStatusActive),
		Notes:                  req.Notes,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.emit(ctx, model.EventTypePatientCreated, map[string]interface{}{
		"patient_id": patient.ID,
		"name_en":    patient.NameEN,
	})
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if req.EmiratesID != nil && *req.EmiratesID != patient.EmiratesID && *req.EmiratesID != "" {
		if err := s.checkEmiratesIDFree(ctx, *req.EmiratesID, id); err != nil {
			return nil, err
		}
	}

	applyPatientUpdate(patient, req)

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.emit(ctx, model.EventTypePatientUpdated, map[string]interface{}{
		"patient_id": patient.ID,
	})
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.emit(ctx, model.EventTypePatientDeleted, map[string]interface{}{
		"patient_id": id,
	})
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	patients, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

// checkEmiratesIDFree reports a conflict when another record already
// carries the given Emirates ID.
func (s *Service) checkEmiratesIDFree(ctx context.Context, emiratesID string, selfID uuid.UUID) error {
	existing, err := s.repo.GetByEmiratesID(ctx, emiratesID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to check emirates id: %w", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return apperrors.NewConflict("a patient with this emirates id already exists", nil)
}

func applyPatientUpdate(patient *model.Patient, req *model.UpdatePatientRequest) {
	if req.NameEN != nil {
		patient.NameEN = *req.NameEN
	}
	if req.NameAR != nil {
		patient.NameAR = *req.NameAR
	}
	if req.EmiratesID != nil {
		patient.EmiratesID = *req.EmiratesID
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Nationality != nil {
		patient.Nationality = *req.Nationality
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.InsuranceProvider != nil {
		patient.InsuranceProvider = *req.InsuranceProvider
	}
	if req.InsuranceType != nil {
		patient.InsuranceType = *req.InsuranceType
	}
	if req.InsurancePolicyNumber != nil {
		patient.InsurancePolicyNumber = *req.InsurancePolicyNumber
	}
	if req.InsuranceExpiryDate != nil {
		patient.InsuranceExpiryDate = req.InsuranceExpiryDate
	}
	if req.HomeboundStatus != nil {
		patient.HomeboundStatus = *req.HomeboundStatus
	}
	if req.HomeboundJustification != nil {
		patient.HomeboundJustification = *req.HomeboundJustification
	}
	if req.AssessmentDate != nil {
		patient.AssessmentDate = req.AssessmentDate
	}
	if req.AssessorName != nil {
		patient.AssessorName = *req.AssessorName
	}
	if req.IdentityVerified != nil {
		patient.IdentityVerified = *req.IdentityVerified
	}
	if req.Status != nil {
		patient.Status = *req.Status
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}
}

func (s *Service) AddContact(ctx context.Context, patientID uuid.UUID, req *model.CreateContactRequest) (*model.EmergencyContact, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if req.IsPrimary {
		if err := s.contactRepo.ClearPrimary(ctx, patientID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contact: %w", err)
		}
	}

	contact := &model.EmergencyContact{
		Base:         model.Base{ID: uuid.New()},
		PatientID:    patientID,
		Name:         req.Name,
		Relationship: req.Relationship,
		Phone:        req.Phone,
		Email:        req.Email,
		IsPrimary:    req.IsPrimary,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (s *Service) UpdateContact(ctx context.Context, patientID, contactID uuid.UUID, req *model.UpdateContactRequest) (*model.EmergencyContact, error) {
	contact, err := s.getOwnedContact(ctx, patientID, contactID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Relationship != nil {
		contact.Relationship = *req.Relationship
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.IsPrimary != nil {
		if *req.IsPrimary && !contact.IsPrimary {
			if err := s.contactRepo.ClearPrimary(ctx, patientID); err != nil {
				return nil, fmt.Errorf("failed to clear primary contact: %w", err)
			}
		}
		contact.IsPrimary = *req.IsPrimary
	}

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

func (s *Service) DeleteContact(ctx context.Context, patientID, contactID uuid.UUID) error {
	if _, err := s.getOwnedContact(ctx, patientID, contactID); err != nil {
		return err
	}
	if err := s.contactRepo.Delete(ctx, contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (s *Service) ListContacts(ctx context.Context, patientID uuid.UUID) ([]*model.EmergencyContact, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	contacts, err := s.contactRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// getOwnedContact loads a contact and hides it behind not found when it
// belongs to a different patient.
func (s *Service) getOwnedContact(ctx context.Context, patientID, contactID uuid.UUID) (*model.EmergencyContact, error) {
	contact, err := s.contactRepo.Get(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if contact.PatientID != patientID {
		return nil, apperrors.NewNotFound("contact", nil)
	}
	return contact, nil
}

// Validate runs the compliance rules against the patient's current
// snapshot. Results are cached by a digest of the rule inputs, so a hit
// is only possible while the record content is unchanged; every call
// stamps last_validated_at regardless of where the result came from.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (*model.ValidationResult, error) {
	snapshot, err := s.repo.GetSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient snapshot: %w", err)
	}

	digest := snapshotDigest(snapshot)
	result, cached := s.lookupCached(digest)
	if !cached {
		timer := prometheus.NewTimer(s.metrics.ValidationDuration)
		result = s.validator.Validate(snapshot)
		timer.ObserveDuration()
		s.metrics.ValidationCompleteness.Observe(float64(result.Completeness.Percentage))
		s.storeCached(digest, result)
	}

	if result.IsValid {
		s.metrics.ValidationsTotal.WithLabelValues("valid").Inc()
	} else {
		s.metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
	}

	validatedAt := s.now()
	stamped := *result
	stamped.LastValidated = &validatedAt
	if err := s.repo.SetLastValidated(ctx, id, validatedAt); err != nil {
		s.logger.Error(err, "failed to stamp last_validated_at", "patient_id", id.String())
	}

	s.emit(ctx, model.EventTypeRecordValidated, map[string]interface{}{
		"patient_id":   id,
		"is_valid":     stamped.IsValid,
		"completeness": stamped.Completeness.Percentage,
		"validated_at": validatedAt.UTC(),
	})
	return &stamped, nil
}

// ValidateBatch validates every requested record and persists the
// validation stamps for the ones whose snapshot could be fetched.
func (s *Service) ValidateBatch(ctx context.Context, ids []uuid.UUID) (*model.BatchValidationResult, error) {
	s.metrics.BatchesTotal.Inc()
	s.metrics.BatchRecords.Observe(float64(len(ids)))

	timer := prometheus.NewTimer(s.metrics.BatchDuration)
	result := s.batch.ValidateBatch(ctx, ids)
	timer.ObserveDuration()

	s.metrics.BatchInfraFailures.Add(float64(result.Summary.InfrastructureFailed))

	for _, id := range ids {
		entry, ok := result.Results[id.String()]
		if !ok || entry.Result == nil || entry.Result.LastValidated == nil {
			continue
		}
		if err := s.repo.SetLastValidated(ctx, id, *entry.Result.LastValidated); err != nil {
			s.logger.Error(err, "failed to stamp last_validated_at", "patient_id", id.String())
		}
	}

	s.emit(ctx, model.EventTypeBatchValidationCompleted, map[string]interface{}{
		"total":                 result.Summary.Total,
		"valid":                 result.Summary.Valid,
		"invalid":               result.Summary.Invalid,
		"infrastructure_failed": result.Summary.InfrastructureFailed,
		"compliance_rates":      result.Summary.ComplianceRates,
	})
	return result, nil
}

func (s *Service) lookupCached(digest string) (*model.ValidationResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	if v, ok := s.cache.Get(digest); ok {
		s.metrics.CacheHits.Inc()
		return v.(*model.ValidationResult), true
	}
	s.metrics.CacheMisses.Inc()
	return nil, false
}

func (s *Service) storeCached(digest string, result *model.ValidationResult) {
	if s.cache == nil {
		return
	}
	s.cache.Set(digest, result, gocache.DefaultExpiration)
}

// emit records a domain event; a failed enqueue is logged and never
// surfaced, the triggering write has already succeeded.
func (s *Service) emit(ctx context.Context, eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to emit event", "event_type", eventType)
	}
}

// snapshotDigest fingerprints exactly the snapshot fields the rules
// read, in a fixed field order. Any edit that can change a validation
// outcome changes the digest and therefore misses the cache.
func snapshotDigest(p *model.Patient) string {
	accessors := validation.FieldAccessors()
	names := make([]string, 0, len(accessors))
	for name := range accessors {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		fmt.Fprintf(h, "%s=%s\n", name, accessors[name](p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// snapshotFetcher adapts the patient store to the batch orchestrator.
type snapshotFetcher struct {
	repo repository.PatientRepository
}

func (f *snapshotFetcher) FetchRecord(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return f.repo.GetSnapshot(ctx, id)
}
