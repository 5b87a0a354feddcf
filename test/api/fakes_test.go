package api_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/model"
	apperrors "github.com/aafiyacare/homecare-api/pkg/errors"
)

// The fakes below mirror the postgres repositories over in-memory maps:
// same error texture, same timestamp stamping, same soft-delete rules.
// They hand out copies, never interior pointers, so a caller mutating a
// returned record cannot bypass Update.

type memStores struct {
	patients   *fakePatientRepo
	contacts   *fakeContactRepo
	episodes   *fakeEpisodeRepo
	visits     *fakeVisitRepo
	clinicians *fakeClinicianRepo
	consents   *fakeConsentRepo
	users      *fakeUserRepo
	reports    *fakeReportRepo
	outbox     *fakeOutboxRepo
	mailer     *fakeMailer
}

func newMemStores() *memStores {
	contacts := &fakeContactRepo{rows: map[uuid.UUID]model.EmergencyContact{}}
	return &memStores{
		patients:   &fakePatientRepo{rows: map[uuid.UUID]model.Patient{}, contacts: contacts},
		contacts:   contacts,
		episodes:   &fakeEpisodeRepo{rows: map[uuid.UUID]model.CareEpisode{}},
		visits:     &fakeVisitRepo{rows: map[uuid.UUID]model.TherapyVisit{}},
		clinicians: &fakeClinicianRepo{rows: map[uuid.UUID]model.Clinician{}},
		consents:   &fakeConsentRepo{rows: map[uuid.UUID]model.Consent{}},
		users:      &fakeUserRepo{rows: map[uuid.UUID]model.User{}},
		reports:    &fakeReportRepo{rows: map[uuid.UUID]model.ComplianceReport{}},
		outbox:     &fakeOutboxRepo{},
		mailer:     &fakeMailer{},
	}
}

type fakePatientRepo struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]model.Patient
	order    []uuid.UUID
	contacts *fakeContactRepo
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.rows[p.ID] = *p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *fakePatientRepo) get(id uuid.UUID) (*model.Patient, error) {
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakePatientRepo) GetSnapshot(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	p, err := r.get(id)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if primary := r.contacts.primaryFor(id); primary != nil {
		p.EmergencyContactName = primary.Name
		p.EmergencyContactPhone = primary.Phone
	}
	return p, nil
}

func (r *fakePatientRepo) GetByEmiratesID(_ context.Context, emiratesID string) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.DeletedAt == nil && row.EmiratesID == emiratesID {
			cp := row
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("patient", nil)
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[p.ID]
	if !ok || row.DeletedAt != nil {
		return apperrors.NewNotFound("patient", nil)
	}
	p.UpdatedAt = time.Now()
	p.CreatedAt = row.CreatedAt
	r.rows[p.ID] = *p
	return nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return apperrors.NewNotFound("patient", nil)
	}
	now := time.Now()
	row.DeletedAt = &now
	r.rows[id] = row
	return nil
}

func (r *fakePatientRepo) List(_ context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]model.Patient, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		row, ok := r.rows[r.order[i]]
		if !ok || row.DeletedAt != nil {
			continue
		}
		if !patientMatches(&row, filters) {
			continue
		}
		matched = append(matched, row)
	}

	total := int64(len(matched))
	out := []*model.Patient{}
	for i := filters.Offset(); i < len(matched) && len(out) < filters.Limit(); i++ {
		cp := matched[i]
		out = append(out, &cp)
	}
	return out, total, nil
}

func patientMatches(p *model.Patient, f *model.PatientFilters) bool {
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(p.NameEN), term) &&
			!strings.Contains(strings.ToLower(p.NameAR), term) &&
			!strings.Contains(strings.ToLower(p.EmiratesID), term) &&
			!strings.Contains(strings.ToLower(p.Phone), term) {
			return false
		}
	}
	if f.Status != "" && p.Status != string(f.Status) {
		return false
	}
	if f.HomeboundStatus != "" && p.HomeboundStatus != f.HomeboundStatus {
		return false
	}
	if f.Nationality != "" && p.Nationality != f.Nationality {
		return false
	}
	return true
}

func (r *fakePatientRepo) SetLastValidated(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil
	}
	row.LastValidatedAt = &at
	r.rows[id] = row
	return nil
}

type fakeContactRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.EmergencyContact
}

func (r *fakeContactRepo) Create(_ context.Context, c *model.EmergencyContact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeContactRepo) Get(_ context.Context, id uuid.UUID) (*model.EmergencyContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFound("contact", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakeContactRepo) Update(_ context.Context, c *model.EmergencyContact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return apperrors.NewNotFound("contact", nil)
	}
	c.UpdatedAt = time.Now()
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperrors.NewNotFound("contact", nil)
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeContactRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.EmergencyContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.EmergencyContact{}
	for _, row := range r.rows {
		if row.PatientID == patientID {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) ClearPrimary(_ context.Context, patientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.PatientID == patientID && row.IsPrimary {
			row.IsPrimary = false
			r.rows[id] = row
		}
	}
	return nil
}

func (r *fakeContactRepo) primaryFor(patientID uuid.UUID) *model.EmergencyContact {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.PatientID == patientID && row.IsPrimary {
			cp := row
			return &cp
		}
	}
	return nil
}

type fakeEpisodeRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.CareEpisode
}

func (r *fakeEpisodeRepo) Create(_ context.Context, e *model.CareEpisode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.rows[e.ID] = *e
	return nil
}

func (r *fakeEpisodeRepo) Get(_ context.Context, id uuid.UUID) (*model.CareEpisode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFound("episode", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakeEpisodeRepo) Update(_ context.Context, e *model.CareEpisode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.ID]; !ok {
		return apperrors.NewNotFound("episode", nil)
	}
	e.UpdatedAt = time.Now()
	r.rows[e.ID] = *e
	return nil
}

func (r *fakeEpisodeRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.CareEpisode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.CareEpisode{}
	for _, row := range r.rows {
		if row.PatientID == patientID {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeEpisodeRepo) GetOpenByPatient(_ context.Context, patientID uuid.UUID) (*model.CareEpisode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.PatientID != patientID {
			continue
		}
		if row.Status == model.EpisodeStatusOpen || row.Status == model.EpisodeStatusOnHold {
			cp := row
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("episode", nil)
}

type fakeVisitRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.TherapyVisit
}

func (r *fakeVisitRepo) Create(_ context.Context, v *model.TherapyVisit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	r.rows[v.ID] = *v
	return nil
}

func (r *fakeVisitRepo) Get(_ context.Context, id uuid.UUID) (*model.TherapyVisit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFound("visit", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakeVisitRepo) Update(_ context.Context, v *model.TherapyVisit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[v.ID]; !ok {
		return apperrors.NewNotFound("visit", nil)
	}
	v.UpdatedAt = time.Now()
	r.rows[v.ID] = *v
	return nil
}

func (r *fakeVisitRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperrors.NewNotFound("visit", nil)
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeVisitRepo) List(_ context.Context, filters *model.VisitFilters) ([]*model.TherapyVisit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.TherapyVisit{}
	for _, row := range r.rows {
		if filters.PatientID != uuid.Nil && row.PatientID != filters.PatientID {
			continue
		}
		if filters.ClinicianID != uuid.Nil && row.ClinicianID != filters.ClinicianID {
			continue
		}
		if filters.Status != "" && row.Status != filters.Status {
			continue
		}
		if !filters.From.IsZero() && row.EndTime.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && row.StartTime.After(filters.To) {
			continue
		}
		cp := row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeVisitRepo) FindOverlapping(_ context.Context, clinicianID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.TherapyVisit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.TherapyVisit{}
	for _, row := range r.rows {
		if row.ClinicianID != clinicianID || row.Status != model.VisitStatusScheduled {
			continue
		}
		if excludeID != nil && row.ID == *excludeID {
			continue
		}
		if row.StartTime.Before(end) && row.EndTime.After(start) {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeClinicianRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Clinician
}

func (r *fakeClinicianRepo) Create(_ context.Context, c *model.Clinician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeClinicianRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, apperrors.NewNotFound("clinician", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakeClinicianRepo) Update(_ context.Context, c *model.Clinician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[c.ID]
	if !ok || row.DeletedAt != nil {
		return apperrors.NewNotFound("clinician", nil)
	}
	c.UpdatedAt = time.Now()
	c.CreatedAt = row.CreatedAt
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeClinicianRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return apperrors.NewNotFound("clinician", nil)
	}
	now := time.Now()
	row.DeletedAt = &now
	r.rows[id] = row
	return nil
}

func (r *fakeClinicianRepo) List(_ context.Context, p *model.Pagination) ([]*model.Clinician, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := []model.Clinician{}
	for _, row := range r.rows {
		if row.DeletedAt == nil {
			live = append(live, row)
		}
	}
	total := int64(len(live))
	out := []*model.Clinician{}
	for i := p.Offset(); i < len(live) && len(out) < p.Limit(); i++ {
		cp := live[i]
		out = append(out, &cp)
	}
	return out, total, nil
}

type fakeConsentRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Consent
}

func (r *fakeConsentRepo) Create(_ context.Context, c *model.Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeConsentRepo) Get(_ context.Context, id uuid.UUID) (*model.Consent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFound("consent", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakeConsentRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Consent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Consent{}
	for _, row := range r.rows {
		if row.PatientID == patientID {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeConsentRepo) Revoke(_ context.Context, id uuid.UUID, recordedBy uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.RevokedAt != nil {
		return apperrors.NewNotFound("consent", nil)
	}
	row.RevokedAt = &at
	row.RecordedBy = recordedBy
	row.UpdatedAt = at
	r.rows[id] = row
	return nil
}

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email {
			cp := row
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.ID]; !ok {
		return apperrors.NewNotFound("user", nil)
	}
	u.UpdatedAt = time.Now()
	r.rows[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperrors.NewNotFound("user", nil)
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, p *model.Pagination) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.User{}
	for _, row := range r.rows {
		cp := row
		out = append(out, &cp)
	}
	return out, nil
}

type fakeReportRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]model.ComplianceReport
	order []uuid.UUID
}

func (r *fakeReportRepo) Create(_ context.Context, rep *model.ComplianceReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	rep.CreatedAt = now
	rep.UpdatedAt = now
	r.rows[rep.ID] = *rep
	r.order = append(r.order, rep.ID)
	return nil
}

func (r *fakeReportRepo) Get(_ context.Context, id uuid.UUID) (*model.ComplianceReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NewNotFound("report", nil)
	}
	cp := row
	return &cp, nil
}

func (r *fakeReportRepo) List(_ context.Context, p *model.Pagination) ([]*model.ComplianceReport, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := int64(len(r.order))
	out := []*model.ComplianceReport{}
	for i := len(r.order) - 1 - p.Offset(); i >= 0 && len(out) < p.Limit(); i-- {
		cp := r.rows[r.order[i]]
		out = append(out, &cp)
	}
	return out, total, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Status = string(model.OutboxStatusPending)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.OutboxEvent{}
	for i := range r.events {
		if r.events[i].Status != string(model.OutboxStatusPending) {
			continue
		}
		cp := r.events[i]
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			now := time.Now()
			r.events[i].Status = string(model.OutboxStatusProcessed)
			r.events[i].ProcessedAt = &now
		}
	}
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Status = string(model.OutboxStatusFailed)
			r.events[i].ErrorMessage = &reason
			r.events[i].RetryCount++
		}
	}
	return nil
}

func (r *fakeOutboxRepo) CountPending(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.events {
		if r.events[i].Status == string(model.OutboxStatusPending) {
			n++
		}
	}
	return n, nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	var removed int64
	for _, e := range r.events {
		if e.Status == string(model.OutboxStatusProcessed) && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return removed, nil
}

// eventTypes returns every enqueued event type in order.
func (r *fakeOutboxRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for i := range r.events {
		out = append(out, r.events[i].EventType)
	}
	return out
}

type sentMail struct {
	to     []string
	report *model.ComplianceReport
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendComplianceReport(_ context.Context, to []string, report *model.ComplianceReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *report
	m.sent = append(m.sent, sentMail{to: to, report: &cp})
	return nil
}

func (m *fakeMailer) SendCustom(context.Context, []string, string, string) error {
	return nil
}

func (m *fakeMailer) lastSent() *sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}
