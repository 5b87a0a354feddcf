package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive     PatientStatus = "active"
	PatientStatusInactive   PatientStatus = "inactive"
	PatientStatusDischarged PatientStatus = "discharged"
)

// Homebound status values recognized by the DOH compliance rules.
const (
	HomeboundQualified         = "qualified"
	HomeboundNotQualified      = "not_qualified"
	HomeboundPendingAssessment = "pending_assessment"
)

// Insurance type values recognized by the coverage rules.
const (
	InsuranceTypePrivate = "private"
	InsuranceTypePublic  = "public"
	InsuranceTypeSelfPay = "self_pay"
)

// Patient is the demographics record validated by the compliance engine.
// The engine receives it as a read-only snapshot; the emergency contact
// fields are denormalized from the primary contact when the record is
// fetched from the store.
type Patient struct {
	Base
	NameEN                 string     `db:"name_en" json:"name_en"`
	NameAR                 string     `db:"name_ar" json:"name_ar"`
	EmiratesID             string     `db:"emirates_id" json:"emirates_id"`
	DateOfBirth            *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender                 string     `db:"gender" json:"gender"`
	Nationality            string     `db:"nationality" json:"nationality"`
	Phone                  string     `db:"phone" json:"phone"`
	Email                  string     `db:"email" json:"email"`
	Address                string     `db:"address" json:"address"`
	EmergencyContactName   string     `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone  string     `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	InsuranceProvider      string     `db:"insurance_provider" json:"insurance_provider"`
	InsuranceType          string     `db:"insurance_type" json:"insurance_type"`
	InsurancePolicyNumber  string     `db:"insurance_policy_number" json:"insurance_policy_number"`
	InsuranceExpiryDate    *time.Time `db:"insurance_expiry_date" json:"insurance_expiry_date,omitempty"`
	HomeboundStatus        string     `db:"homebound_status" json:"homebound_status"`
	HomeboundJustification string     `db:"homebound_justification" json:"homebound_justification"`
	AssessmentDate         *time.Time `db:"assessment_date" json:"assessment_date,omitempty"`
	AssessorName           string     `db:"assessor_name" json:"assessor_name"`
	IdentityVerified       bool       `db:"identity_verified" json:"identity_verified"`
	Status                 string     `db:"status" json:"status"`
	Notes                  string     `db:"notes" json:"notes,omitempty"`
	LastValidatedAt        *time.Time `db:"last_validated_at" json:"last_validated_at,omitempty"`
}

// CreatePatientRequest accepts partial demographics on registration.
// Completeness is the engine's judgement, not the API's; only syntax is
// enforced at the boundary.
type CreatePatientRequest struct {
	NameEN                 string     `json:"name_en" binding:"required"`
	NameAR                 string     `json:"name_ar"`
	EmiratesID             string     `json:"emirates_id" binding:"omitempty,emiratesid"`
	DateOfBirth            *time.Time `json:"date_of_birth"`
	Gender                 string     `json:"gender" binding:"omitempty,oneof=male female"`
	Nationality            string     `json:"nationality"`
	Phone                  string     `json:"phone"`
	Email                  string     `json:"email" binding:"omitempty,email"`
	Address                string     `json:"address"`
	InsuranceProvider      string     `json:"insurance_provider"`
	InsuranceType          string     `json:"insurance_type" binding:"omitempty,oneof=private public self_pay"`
	InsurancePolicyNumber  string     `json:"insurance_policy_number"`
	InsuranceExpiryDate    *time.Time `json:"insurance_expiry_date"`
	HomeboundStatus        string     `json:"homebound_status" binding:"omitempty,oneof=qualified not_qualified pending_assessment"`
	HomeboundJustification string     `json:"homebound_justification"`
	Notes                  string     `json:"notes"`
}

type UpdatePatientRequest struct {
	NameEN                 *string    `json:"name_en"`
	NameAR                 *string    `json:"name_ar"`
	EmiratesID             *string    `json:"emirates_id" binding:"omitempty,emiratesid"`
	DateOfBirth            *time.Time `json:"date_of_birth"`
	Gender                 *string    `json:"gender" binding:"omitempty,oneof=male female"`
	Nationality            *string    `json:"nationality"`
	Phone                  *string    `json:"phone"`
	Email                  *string    `json:"email" binding:"omitempty,email"`
	Address                *string    `json:"address"`
	InsuranceProvider      *string    `json:"insurance_provider"`
	InsuranceType          *string    `json:"insurance_type" binding:"omitempty,oneof=private public self_pay"`
	InsurancePolicyNumber  *string    `json:"insurance_policy_number"`
	InsuranceExpiryDate    *time.Time `json:"insurance_expiry_date"`
	HomeboundStatus        *string    `json:"homebound_status" binding:"omitempty,oneof=qualified not_qualified pending_assessment"`
	HomeboundJustification *string    `json:"homebound_justification"`
	AssessmentDate         *time.Time `json:"assessment_date"`
	AssessorName           *string    `json:"assessor_name"`
	IdentityVerified       *bool      `json:"identity_verified"`
	Status                 *string    `json:"status" binding:"omitempty,oneof=active inactive discharged"`
	Notes                  *string    `json:"notes"`
}

// PatientFilters narrows patient searches.
type PatientFilters struct {
	SearchTerm      string        `json:"search_term" form:"search_term"`
	Status          PatientStatus `json:"status" form:"status"`
	HomeboundStatus string        `json:"homebound_status" form:"homebound_status"`
	Nationality     string        `json:"nationality" form:"nationality"`
	Pagination
}

// ValidateBatchRequest carries the record ids for a batch validation run.
type ValidateBatchRequest struct {
	PatientIDs []uuid.UUID `json:"patient_ids" binding:"required,min=1,max=500"`
}
