package model

import "github.com/google/uuid"

// EmergencyContact is a person reachable on a patient's behalf. At most
// one contact per patient is flagged primary; that one is denormalized
// into the patient snapshot the validation engine sees.
type EmergencyContact struct {
	Base
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	Name         string    `db:"name" json:"name"`
	Relationship string    `db:"relationship" json:"relationship"`
	Phone        string    `db:"phone" json:"phone"`
	Email        string    `db:"email" json:"email,omitempty"`
	IsPrimary    bool      `db:"is_primary" json:"is_primary"`
}

type CreateContactRequest struct {
	Name         string `json:"name" binding:"required"`
	Relationship string `json:"relationship" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	IsPrimary    bool   `json:"is_primary"`
}

type UpdateContactRequest struct {
	Name         *string `json:"name"`
	Relationship *string `json:"relationship"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email" binding:"omitempty,email"`
	IsPrimary    *bool   `json:"is_primary"`
}
