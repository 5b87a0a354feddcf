package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EpisodeStatus string

const (
	EpisodeStatusOpen      EpisodeStatus = "open"
	EpisodeStatusOnHold    EpisodeStatus = "on_hold"
	EpisodeStatusClosed    EpisodeStatus = "closed"
	EpisodeStatusCancelled EpisodeStatus = "cancelled"
)

// CareEpisode is one continuous period of home care for a patient, from
// referral to discharge.
type CareEpisode struct {
	Base
	PatientID        uuid.UUID       `db:"patient_id" json:"patient_id"`
	ReferralSource   string          `db:"referral_source" json:"referral_source"`
	DiagnosisSummary string          `db:"diagnosis_summary" json:"diagnosis_summary"`
	CarePlan         json.RawMessage `db:"care_plan" json:"care_plan,omitempty"`
	Status           EpisodeStatus   `db:"status" json:"status"`
	StartedAt        time.Time       `db:"started_at" json:"started_at"`
	ClosedAt         *time.Time      `db:"closed_at" json:"closed_at,omitempty"`
	CloseReason      *string         `db:"close_reason" json:"close_reason,omitempty"`
}

type OpenEpisodeRequest struct {
	ReferralSource   string          `json:"referral_source" binding:"required"`
	DiagnosisSummary string          `json:"diagnosis_summary" binding:"required"`
	CarePlan         json.RawMessage `json:"care_plan"`
	StartedAt        *time.Time      `json:"started_at"`
}

type CloseEpisodeRequest struct {
	Reason string `json:"reason" binding:"required"`
}
