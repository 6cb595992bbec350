package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Doctor holds the professional profile owned by a doctor-role user.
// ClinicID is nil while the doctor is unaffiliated. ClinicName is never
// stored on the row; it is joined from clinics on reads.
type Doctor struct {
	DID                uuid.UUID      `json:"did" db:"did"`
	UID                uuid.UUID      `json:"uid" db:"uid"`
	ClinicID           *uuid.UUID     `json:"clinic_id,omitempty" db:"clinic_id"`
	Specialization     pq.StringArray `json:"specialization" db:"specialization"`
	Qualification      string         `json:"qualification" db:"qualification"`
	RegistrationNumber *string        `json:"registration_number,omitempty" db:"registration_number"`
	YearsOfExperience  int            `json:"years_of_experience" db:"years_of_experience"`
	ConsultationFee    float64        `json:"consultation_fee" db:"consultation_fee"`
	Bio                *string        `json:"bio,omitempty" db:"bio"`
	Languages          pq.StringArray `json:"languages,omitempty" db:"languages"`
	IsVerified         bool           `json:"is_verified" db:"is_verified"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`

	// Joined from clinics; nil when unassigned.
	ClinicName *string `json:"clinic_name,omitempty" db:"clinic_name"`
}

// DoctorWithUser is a doctor row joined with its owning user.
type DoctorWithUser struct {
	Doctor
	User User `json:"user" db:"user"`
}

// DoctorStats carries aggregate counts shown on the public profile.
type DoctorStats struct {
	Patients     int64 `json:"patients"`
	Appointments int64 `json:"appointments"`
}

// DoctorProfile is the public read of one doctor.
type DoctorProfile struct {
	Doctor *DoctorWithUser `json:"doctor"`
	Stats  DoctorStats     `json:"stats"`
}

// UpdateDoctorRequest is the allow-listed partial update for the
// professional fields. Nil fields (and nil slices) are left untouched.
type UpdateDoctorRequest struct {
	Qualification      *string  `json:"qualification"`
	RegistrationNumber *string  `json:"registration_number"`
	YearsOfExperience  *int     `json:"years_of_experience"`
	ConsultationFee    *float64 `json:"consultation_fee"`
	Bio                *string  `json:"bio"`
	Specialization     []string `json:"specialization"`
	Languages          []string `json:"languages"`
}

// IsEmpty reports whether the request would change nothing.
func (r *UpdateDoctorRequest) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Qualification == nil && r.RegistrationNumber == nil &&
		r.YearsOfExperience == nil && r.ConsultationFee == nil &&
		r.Bio == nil && r.Specialization == nil && r.Languages == nil
}
