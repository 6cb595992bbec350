package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

const doctorColumns = `
	d.did, d.uid, d.clinic_id, d.specialization, d.qualification,
	d.registration_number, d.years_of_experience, d.consultation_fee,
	d.bio, d.languages, d.is_verified, d.created_at, d.updated_at,
	c.clinic_name AS clinic_name
`

// clinic_name is joined rather than stored on the doctor row, so reads
// never see a stale denormalized copy.
const doctorUserColumns = doctorColumns + `,
	u.uid AS "user.uid",
	u.auth_id AS "user.auth_id",
	u.email AS "user.email",
	u.name AS "user.name",
	u.phone AS "user.phone",
	u.role AS "user.role",
	u.profile_image_url AS "user.profile_image_url",
	u.is_active AS "user.is_active",
	u.is_verified AS "user.is_verified",
	u.last_login AS "user.last_login",
	u.created_at AS "user.created_at",
	u.updated_at AS "user.updated_at"
`

func (r *doctorRepository) Get(ctx context.Context, did uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors d
		LEFT JOIN clinics c ON c.clinic_id = d.clinic_id
		WHERE d.did = $1
	`

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, did); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetWithUser(ctx context.Context, did uuid.UUID) (*model.DoctorWithUser, error) {
	query := `
		SELECT ` + doctorUserColumns + `
		FROM doctors d
		JOIN users u ON u.uid = d.uid
		LEFT JOIN clinics c ON c.clinic_id = d.clinic_id
		WHERE d.did = $1
	`

	var doctor model.DoctorWithUser
	if err := r.db.GetContext(ctx, &doctor, query, did); err != nil {
		return nil, fmt.Errorf("failed to get doctor with user: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.DoctorWithUser, error) {
	query := `
		SELECT ` + doctorUserColumns + `
		FROM doctors d
		JOIN users u ON u.uid = d.uid
		LEFT JOIN clinics c ON c.clinic_id = d.clinic_id
		WHERE d.clinic_id = $1
		ORDER BY d.created_at DESC
	`

	var doctors []*model.DoctorWithUser
	if err := r.db.SelectContext(ctx, &doctors, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list clinic doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) ListAll(ctx context.Context) ([]*model.DoctorWithUser, error) {
	query := `
		SELECT ` + doctorUserColumns + `
		FROM doctors d
		JOIN users u ON u.uid = d.uid
		LEFT JOIN clinics c ON c.clinic_id = d.clinic_id
		ORDER BY d.created_at DESC
	`

	var doctors []*model.DoctorWithUser
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Unassign(ctx context.Context, did uuid.UUID) error {
	query := `
		UPDATE doctors
		SET clinic_id = NULL, updated_at = NOW()
		WHERE did = $1
	`

	result, err := r.db.ExecContext(ctx, query, did)
	if err != nil {
		return fmt.Errorf("failed to unassign doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) SetVerified(ctx context.Context, did uuid.UUID, verified bool) error {
	query := `
		UPDATE doctors
		SET is_verified = $1, updated_at = NOW()
		WHERE did = $2
	`

	result, err := r.db.ExecContext(ctx, query, verified, did)
	if err != nil {
		return fmt.Errorf("failed to update doctor verification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) UpdateFields(ctx context.Context, did uuid.UUID, req *model.UpdateDoctorRequest) error {
	query := `UPDATE doctors SET updated_at = NOW()`
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, len(args)+1)
		args = append(args, value)
	}

	if req.Qualification != nil {
		appendSet("qualification", *req.Qualification)
	}
	if req.RegistrationNumber != nil {
		appendSet("registration_number", *req.RegistrationNumber)
	}
	if req.YearsOfExperience != nil {
		appendSet("years_of_experience", *req.YearsOfExperience)
	}
	if req.ConsultationFee != nil {
		appendSet("consultation_fee", *req.ConsultationFee)
	}
	if req.Bio != nil {
		appendSet("bio", *req.Bio)
	}
	if req.Specialization != nil {
		appendSet("specialization", pq.StringArray(req.Specialization))
	}
	if req.Languages != nil {
		appendSet("languages", pq.StringArray(req.Languages))
	}

	if len(args) == 0 {
		return nil
	}

	query += fmt.Sprintf(" WHERE did = $%d", len(args)+1)
	args = append(args, did)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update doctor fields: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) CountPatients(ctx context.Context, did uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM doctor_patient_relationships WHERE did = $1`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, did); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

func (r *doctorRepository) CountAppointments(ctx context.Context, did uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE did = $1`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, did); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}
