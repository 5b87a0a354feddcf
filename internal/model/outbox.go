package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Domain event types drained from the outbox and published on the broker.
const (
	EventTypePatientCreated           = "PATIENT_CREATED"
	EventTypePatientUpdated           = "PATIENT_UPDATED"
	EventTypePatientDeleted           = "PATIENT_DELETED"
	EventTypeRecordValidated          = "RECORD_VALIDATED"
	EventTypeBatchValidationCompleted = "BATCH_VALIDATION_COMPLETED"
	EventTypeEpisodeOpened            = "EPISODE_OPENED"
	EventTypeEpisodeClosed            = "EPISODE_CLOSED"
	EventTypeVisitScheduled           = "VISIT_SCHEDULED"
	EventTypeConsentRecorded          = "CONSENT_RECORDED"
	EventTypeComplianceReportSent     = "COMPLIANCE_REPORT_SENT"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
