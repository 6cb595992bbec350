package model

import (
	"time"

	"github.com/google/uuid"
)

// User role constants
const (
	RolePatient     = "patient"
	RoleDoctor      = "doctor"
	RoleAdmin       = "admin"
	RoleClinic      = "clinic"
	RoleDeliveryBoy = "delivery_boy"
)

// User represents a portal account. AuthID links it to the external
// identity provider and stays nil until the account is reconciled.
type User struct {
	UID             uuid.UUID  `json:"uid" db:"uid"`
	AuthID          *string    `json:"auth_id,omitempty" db:"auth_id"`
	Email           string     `json:"email" db:"email"`
	Name            string     `json:"name" db:"name"`
	Phone           *string    `json:"phone,omitempty" db:"phone"`
	Role            string     `json:"role" db:"role"`
	ProfileImageURL *string    `json:"profile_image_url,omitempty" db:"profile_image_url"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	IsVerified      bool       `json:"is_verified" db:"is_verified"`
	LastLogin       *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// UpdateUserRequest is the allow-listed set of user fields a clinic may
// edit on a roster member. Nil fields are left untouched; an empty phone
// is ignored rather than cleared.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone" binding:"omitempty,phone"`
}

// IsEmpty reports whether the request would change nothing.
func (r *UpdateUserRequest) IsEmpty() bool {
	if r == nil {
		return true
	}
	if r.Name != nil && *r.Name != "" {
		return false
	}
	if r.Phone != nil && *r.Phone != "" {
		return false
	}
	return true
}
