package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/clinic-portal-api/internal/model"
)

// All repository interfaces in one file.
//
// Find* methods implement maybe-single semantics: they return (nil, nil)
// when no row matches. Get* methods fail with a not-found error instead.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, uid uuid.UUID) (*model.User, error)
		FindByAuthID(ctx context.Context, authID string) (*model.User, error)
		FindByEmail(ctx context.Context, email string) (*model.User, error)
		UpdateRole(ctx context.Context, uid uuid.UUID, role string) error
		LinkIdentity(ctx context.Context, uid uuid.UUID, authID, name string) error
		SetActive(ctx context.Context, uid uuid.UUID, active bool) error
		UpdateFields(ctx context.Context, uid uuid.UUID, req *model.UpdateUserRequest) error
		TouchLastLogin(ctx context.Context, uid uuid.UUID) error
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, clinicID uuid.UUID) (*model.Clinic, error)
		FindByOwner(ctx context.Context, uid uuid.UUID) (*model.Clinic, error)
		UpdateFields(ctx context.Context, clinicID uuid.UUID, req *model.UpdateClinicRequest) error
	}

	DoctorRepository interface {
		Get(ctx context.Context, did uuid.UUID) (*model.Doctor, error)
		GetWithUser(ctx context.Context, did uuid.UUID) (*model.DoctorWithUser, error)
		ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.DoctorWithUser, error)
		ListAll(ctx context.Context) ([]*model.DoctorWithUser, error)
		Unassign(ctx context.Context, did uuid.UUID) error
		SetVerified(ctx context.Context, did uuid.UUID, verified bool) error
		UpdateFields(ctx context.Context, did uuid.UUID, req *model.UpdateDoctorRequest) error
		CountPatients(ctx context.Context, did uuid.UUID) (int64, error)
		CountAppointments(ctx context.Context, did uuid.UUID) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
