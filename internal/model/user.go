package model

import "time"

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusLocked   = "locked"
)

// Staff roles. Coordinators manage records and run validations; admins
// additionally manage staff and clinicians.
const (
	UserRoleAdmin       = "admin"
	UserRoleCoordinator = "coordinator"
	UserRoleClinician   = "clinician"
)

// User is a staff login account.
type User struct {
	Base
	Email               string     `json:"email" db:"email"`
	Name                string     `json:"name" db:"name"`
	Password            string     `json:"password,omitempty" db:"-"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	Role                string     `json:"role" db:"role"`
	Status              string     `json:"status" db:"status"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	FailedLoginAttempts int        `json:"-" db:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"-" db:"locked_until"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin coordinator clinician"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Role   *string `json:"role" binding:"omitempty,oneof=admin coordinator clinician"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive locked"`
}
