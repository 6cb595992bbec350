package model

import (
	"time"

	"github.com/google/uuid"
)

// Defaults applied when a clinic profile is created lazily during
// identity reconciliation.
const (
	ClinicNameSuffix      = "'s Clinic"
	ClinicCityUnspecified = "Not specified"
)

// Clinic is the profile owned by a clinic-role user (1:1).
type Clinic struct {
	ClinicID           uuid.UUID `json:"clinic_id" db:"clinic_id"`
	UID                uuid.UUID `json:"uid" db:"uid"`
	ClinicName         string    `json:"clinic_name" db:"clinic_name"`
	RegistrationNumber *string   `json:"registration_number,omitempty" db:"registration_number"`
	AddressLine1       *string   `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2       *string   `json:"address_line2,omitempty" db:"address_line2"`
	City               string    `json:"city" db:"city"`
	State              *string   `json:"state,omitempty" db:"state"`
	Country            *string   `json:"country,omitempty" db:"country"`
	PostalCode         *string   `json:"postal_code,omitempty" db:"postal_code"`
	Phone              *string   `json:"phone,omitempty" db:"phone"`
	Email              *string   `json:"email,omitempty" db:"email"`
	Website            *string   `json:"website,omitempty" db:"website"`
	Description        *string   `json:"description,omitempty" db:"description"`
	LogoURL            *string   `json:"logo_url,omitempty" db:"logo_url"`
	IsVerified         bool      `json:"is_verified" db:"is_verified"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateClinicRequest is the allow-listed partial update for a clinic
// profile. Nil fields are left untouched.
type UpdateClinicRequest struct {
	ClinicName         *string `json:"clinic_name"`
	RegistrationNumber *string `json:"registration_number"`
	AddressLine1       *string `json:"address_line1"`
	AddressLine2       *string `json:"address_line2"`
	City               *string `json:"city"`
	State              *string `json:"state"`
	Country            *string `json:"country"`
	PostalCode         *string `json:"postal_code"`
	Phone              *string `json:"phone" binding:"omitempty,phone"`
	Email              *string `json:"email" binding:"omitempty,email"`
	Website            *string `json:"website"`
	Description        *string `json:"description"`
	LogoURL            *string `json:"logo_url"`
}

// IsEmpty reports whether the request would change nothing.
func (r *UpdateClinicRequest) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.ClinicName == nil && r.RegistrationNumber == nil &&
		r.AddressLine1 == nil && r.AddressLine2 == nil && r.City == nil &&
		r.State == nil && r.Country == nil && r.PostalCode == nil &&
		r.Phone == nil && r.Email == nil && r.Website == nil &&
		r.Description == nil && r.LogoURL == nil
}
