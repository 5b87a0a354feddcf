package model

type ClinicianStatus string

const (
	ClinicianStatusActive   ClinicianStatus = "active"
	ClinicianStatusInactive ClinicianStatus = "inactive"
)

// Clinician is a member of the home-care field team referenced by
// therapy visits and homebound assessments.
type Clinician struct {
	Base
	Name          string          `db:"name" json:"name"`
	Email         string          `db:"email" json:"email"`
	Phone         string          `db:"phone" json:"phone"`
	Discipline    string          `db:"discipline" json:"discipline"`
	LicenseNumber string          `db:"license_number" json:"license_number"`
	Status        ClinicianStatus `db:"status" json:"status"`
}

type CreateClinicianRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
	Discipline    string `json:"discipline" binding:"required,oneof=nursing physiotherapy occupational_therapy speech_therapy respiratory_therapy"`
	LicenseNumber string `json:"license_number" binding:"required"`
}

type UpdateClinicianRequest struct {
	Name          *string          `json:"name"`
	Email         *string          `json:"email" binding:"omitempty,email"`
	Phone         *string          `json:"phone"`
	Discipline    *string          `json:"discipline" binding:"omitempty,oneof=nursing physiotherapy occupational_therapy speech_therapy respiratory_therapy"`
	LicenseNumber *string          `json:"license_number"`
	Status        *ClinicianStatus `json:"status" binding:"omitempty,oneof=active inactive"`
}
