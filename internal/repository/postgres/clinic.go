package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

const clinicColumns = `
	clinic_id, uid, clinic_name, registration_number, address_line1,
	address_line2, city, state, country, postal_code, phone, email,
	website, description, logo_url, is_verified, created_at, updated_at
`

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			clinic_id, uid, clinic_name, city, is_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	clinic.ClinicID = uuid.New()
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		clinic.ClinicID,
		clinic.UID,
		clinic.ClinicName,
		clinic.City,
		clinic.IsVerified,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, clinicID uuid.UUID) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE clinic_id = $1`

	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) FindByOwner(ctx context.Context, uid uuid.UUID) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE uid = $1`

	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find clinic by owner: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) UpdateFields(ctx context.Context, clinicID uuid.UUID, req *model.UpdateClinicRequest) error {
	query := `UPDATE clinics SET updated_at = NOW()`
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, len(args)+1)
		args = append(args, value)
	}

	if req.ClinicName != nil {
		appendSet("clinic_name", *req.ClinicName)
	}
	if req.RegistrationNumber != nil {
		appendSet("registration_number", *req.RegistrationNumber)
	}
	if req.AddressLine1 != nil {
		appendSet("address_line1", *req.AddressLine1)
	}
	if req.AddressLine2 != nil {
		appendSet("address_line2", *req.AddressLine2)
	}
	if req.City != nil {
		appendSet("city", *req.City)
	}
	if req.State != nil {
		appendSet("state", *req.State)
	}
	if req.Country != nil {
		appendSet("country", *req.Country)
	}
	if req.PostalCode != nil {
		appendSet("postal_code", *req.PostalCode)
	}
	if req.Phone != nil {
		appendSet("phone", *req.Phone)
	}
	if req.Email != nil {
		appendSet("email", *req.Email)
	}
	if req.Website != nil {
		appendSet("website", *req.Website)
	}
	if req.Description != nil {
		appendSet("description", *req.Description)
	}
	if req.LogoURL != nil {
		appendSet("logo_url", *req.LogoURL)
	}

	if len(args) == 0 {
		return nil
	}

	query += fmt.Sprintf(" WHERE clinic_id = $%d", len(args)+1)
	args = append(args, clinicID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("clinic not found")
	}
	return nil
}
