package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ComplianceReport is the persisted trail of one batch compliance run,
// kept so emailed summaries can be traced back to their inputs.
type ComplianceReport struct {
	Base
	RequestedBy          uuid.UUID       `db:"requested_by" json:"requested_by"`
	PatientCount         int             `db:"patient_count" json:"patient_count"`
	ValidCount           int             `db:"valid_count" json:"valid_count"`
	InvalidCount         int             `db:"invalid_count" json:"invalid_count"`
	InfrastructureFailed int             `db:"infrastructure_failed" json:"infrastructure_failed"`
	Summary              json.RawMessage `db:"summary" json:"summary"`
	Recipients           pq.StringArray  `db:"recipients" json:"recipients"`
}

type ComplianceReportRequest struct {
	PatientIDs []uuid.UUID `json:"patient_ids" binding:"required,min=1,max=500"`
	Recipients []string    `json:"recipients" binding:"omitempty,dive,email"`
}
