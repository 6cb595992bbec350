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

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

const userColumns = `
	uid, auth_id, email, name, phone, role, profile_image_url,
	is_active, is_verified, last_login, created_at, updated_at
`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			uid, auth_id, email, name, phone, role,
			is_active, is_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	user.UID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		user.UID,
		user.AuthID,
		user.Email,
		user.Name,
		user.Phone,
		user.Role,
		user.IsActive,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, uid uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, uid); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByAuthID(ctx context.Context, authID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_id = $1`

	var user model.User
	err := r.db.GetContext(ctx, &user, query, authID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by auth id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user model.User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, uid uuid.UUID, role string) error {
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW()
		WHERE uid = $2
	`

	result, err := r.db.ExecContext(ctx, query, role, uid)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) LinkIdentity(ctx context.Context, uid uuid.UUID, authID, name string) error {
	query := `
		UPDATE users
		SET auth_id = $1, name = $2, updated_at = NOW()
		WHERE uid = $3
	`

	result, err := r.db.ExecContext(ctx, query, authID, name, uid)
	if err != nil {
		return fmt.Errorf("failed to link identity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, uid uuid.UUID, active bool) error {
	query := `
		UPDATE users
		SET is_active = $1, updated_at = NOW()
		WHERE uid = $2
	`

	result, err := r.db.ExecContext(ctx, query, active, uid)
	if err != nil {
		return fmt.Errorf("failed to update user activation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, uid uuid.UUID, req *model.UpdateUserRequest) error {
	query := `UPDATE users SET updated_at = NOW()`
	args := []interface{}{}

	if req.Name != nil && *req.Name != "" {
		query += fmt.Sprintf(", name = $%d", len(args)+1)
		args = append(args, *req.Name)
	}

	if req.Phone != nil && *req.Phone != "" {
		query += fmt.Sprintf(", phone = $%d", len(args)+1)
		args = append(args, *req.Phone)
	}

	if len(args) == 0 {
		return nil
	}

	query += fmt.Sprintf(" WHERE uid = $%d", len(args)+1)
	args = append(args, uid)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user fields: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, uid uuid.UUID) error {
	query := `
		UPDATE users
		SET last_login = NOW(), updated_at = NOW()
		WHERE uid = $1
	`
	if _, err := r.db.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("failed to touch last login: %w", err)
	}
	return nil
}
