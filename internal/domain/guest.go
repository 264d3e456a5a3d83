package domain

import "time"

type GuestRole string

const (
	RoleGuest  GuestRole = "GUEST"
	RoleStaff  GuestRole = "STAFF"
	RoleWarden GuestRole = "WARDEN"
)

func (r GuestRole) IsValid() bool {
	return r == RoleGuest || r == RoleStaff || r == RoleWarden
}

type Guest struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Role              GuestRole `json:"role"`
	PasswordHash      string    `json:"-"`
	MustResetPassword bool      `json:"must_reset_password"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewGuest is the payload used to provision a guest that is not yet in the directory.
type NewGuest struct {
	Name  string `json:"name" binding:"required" validate:"required"`
	Email string `json:"email" binding:"required,email" validate:"required,email"`
	Phone string `json:"phone" binding:"required" validate:"required"`
}
