package model

import (
	"time"

	"github.com/google/uuid"
)

type VisitStatus string

const (
	VisitStatusScheduled VisitStatus = "scheduled"
	VisitStatusCompleted VisitStatus = "completed"
	VisitStatusCancelled VisitStatus = "cancelled"
	VisitStatusMissed    VisitStatus = "missed"
)

// TherapyVisit is a scheduled home visit by one clinician for one
// patient. Two visits for the same clinician must not overlap.
type TherapyVisit struct {
	Base
	PatientID    uuid.UUID   `db:"patient_id" json:"patient_id"`
	ClinicianID  uuid.UUID   `db:"clinician_id" json:"clinician_id"`
	EpisodeID    *uuid.UUID  `db:"episode_id" json:"episode_id,omitempty"`
	Discipline   string      `db:"discipline" json:"discipline"`
	StartTime    time.Time   `db:"start_time" json:"start_time"`
	EndTime      time.Time   `db:"end_time" json:"end_time"`
	Status       VisitStatus `db:"status" json:"status"`
	Notes        string      `db:"notes" json:"notes,omitempty"`
	CancelReason *string     `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type ScheduleVisitRequest struct {
	PatientID   uuid.UUID  `json:"patient_id" binding:"required"`
	ClinicianID uuid.UUID  `json:"clinician_id" binding:"required"`
	EpisodeID   *uuid.UUID `json:"episode_id"`
	Discipline  string     `json:"discipline" binding:"required,oneof=nursing physiotherapy occupational_therapy speech_therapy respiratory_therapy"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     time.Time  `json:"end_time" binding:"required,gtfield=StartTime"`
	Notes       string     `json:"notes" binding:"max=1000"`
}

type UpdateVisitRequest struct {
	StartTime    *time.Time   `json:"start_time"`
	EndTime      *time.Time   `json:"end_time"`
	Status       *VisitStatus `json:"status" binding:"omitempty,oneof=scheduled completed cancelled missed"`
	Notes        *string      `json:"notes"`
	CancelReason *string      `json:"cancel_reason"`
}

type CancelVisitRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// VisitFilters narrows visit listings.
type VisitFilters struct {
	PatientID   uuid.UUID
	ClinicianID uuid.UUID
	Status      VisitStatus
	From        time.Time
	To          time.Time
}
