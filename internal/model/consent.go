package model

import (
	"time"

	"github.com/google/uuid"
)

type ConsentType string

const (
	ConsentTypeTreatment   ConsentType = "treatment"
	ConsentTypeDataSharing ConsentType = "data_sharing"
	ConsentTypeHomeAccess  ConsentType = "home_access"
	ConsentTypePhotography ConsentType = "photography"
)

// Consent records a patient's grant or revocation of a specific
// permission. Grants are never edited in place; revocation stamps
// RevokedAt.
type Consent struct {
	Base
	PatientID  uuid.UUID   `db:"patient_id" json:"patient_id"`
	Type       ConsentType `db:"consent_type" json:"consent_type"`
	Granted    bool        `db:"granted" json:"granted"`
	GrantedBy  string      `db:"granted_by" json:"granted_by"`
	Notes      string      `db:"notes" json:"notes,omitempty"`
	GrantedAt  time.Time   `db:"granted_at" json:"granted_at"`
	RevokedAt  *time.Time  `db:"revoked_at" json:"revoked_at,omitempty"`
	RecordedBy uuid.UUID   `db:"recorded_by" json:"recorded_by"`
}

type RecordConsentRequest struct {
	Type      ConsentType `json:"consent_type" binding:"required,oneof=treatment data_sharing home_access photography"`
	Granted   bool        `json:"granted"`
	GrantedBy string      `json:"granted_by" binding:"required"`
	Notes     string      `json:"notes"`
}
