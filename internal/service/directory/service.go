// Package directory exposes doctor profiles across clinics: the public
// profile page and the authenticated cross-clinic listing.
package directory

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository"
	"github.com/carelink/clinic-portal-api/pkg/errors"
)

type Servicer interface {
	GetProfile(ctx context.Context, did uuid.UUID) (*model.DoctorProfile, error)
	List(ctx context.Context) ([]*model.DoctorWithUser, error)
	SetVerification(ctx context.Context, did uuid.UUID, verified bool) error
	SetActivation(ctx context.Context, did uuid.UUID, active bool) error
	Update(ctx context.Context, did uuid.UUID, user *model.UpdateUserRequest, doctor *model.UpdateDoctorRequest) (*model.DoctorWithUser, error)
	ResolveRole(ctx context.Context, authID string) (string, error)
}

type Service struct {
	doctors repository.DoctorRepository
	users   repository.UserRepository
	outbox  repository.OutboxRepository
}

func NewService(doctors repository.DoctorRepository, users repository.UserRepository, outbox repository.OutboxRepository) *Service {
	return &Service{
		doctors: doctors,
		users:   users,
		outbox:  outbox,
	}
}

// GetProfile returns a doctor's public profile with patient and
// appointment counts.
func (s *Service) GetProfile(ctx context.Context, did uuid.UUID) (*model.DoctorProfile, error) {
	doctor, err := s.doctors.GetWithUser(ctx, did)
	if err != nil {
		return nil, errors.NotFound("doctor", err)
	}

	patients, err := s.doctors.CountPatients(ctx, did)
	if err != nil {
		return nil, errors.Store(err)
	}
	appointments, err := s.doctors.CountAppointments(ctx, did)
	if err != nil {
		return nil, errors.Store(err)
	}

	return &model.DoctorProfile{
		Doctor: doctor,
		Stats: model.DoctorStats{
			Patients:     patients,
			Appointments: appointments,
		},
	}, nil
}

func (s *Service) List(ctx context.Context) ([]*model.DoctorWithUser, error) {
	doctors, err := s.doctors.ListAll(ctx)
	if err != nil {
		return nil, errors.Store(err)
	}
	return doctors, nil
}

func (s *Service) SetVerification(ctx context.Context, did uuid.UUID, verified bool) error {
	doctor, err := s.doctors.GetWithUser(ctx, did)
	if err != nil {
		return errors.NotFound("doctor", err)
	}

	if err := s.doctors.SetVerified(ctx, did, verified); err != nil {
		return errors.Store(err)
	}
	doctor.IsVerified = verified

	s.emit(ctx, model.EventDoctorVerified, doctor)
	return nil
}

func (s *Service) SetActivation(ctx context.Context, did uuid.UUID, active bool) error {
	doctor, err := s.doctors.GetWithUser(ctx, did)
	if err != nil {
		return errors.NotFound("doctor", err)
	}

	if err := s.users.SetActive(ctx, doctor.UID, active); err != nil {
		return errors.Store(err)
	}

	s.emit(ctx, model.EventDoctorActivated, doctor)
	return nil
}

func (s *Service) Update(ctx context.Context, did uuid.UUID, user *model.UpdateUserRequest, doctor *model.UpdateDoctorRequest) (*model.DoctorWithUser, error) {
	current, err := s.doctors.GetWithUser(ctx, did)
	if err != nil {
		return nil, errors.NotFound("doctor", err)
	}

	if user != nil && !user.IsEmpty() {
		if err := s.users.UpdateFields(ctx, current.UID, user); err != nil {
			return nil, errors.Store(err)
		}
	}
	if doctor != nil && !doctor.IsEmpty() {
		if err := s.doctors.UpdateFields(ctx, did, doctor); err != nil {
			return nil, errors.Store(err)
		}
	}

	updated, err := s.doctors.GetWithUser(ctx, did)
	if err != nil {
		return nil, errors.Store(err)
	}

	s.emit(ctx, model.EventDoctorUpdated, updated)
	return updated, nil
}

// ResolveRole maps an auth identity to the portal role, or an empty
// string when no account exists yet. Handlers use it to redirect
// clinic accounts away from the doctor-facing surface.
func (s *Service) ResolveRole(ctx context.Context, authID string) (string, error) {
	user, err := s.users.FindByAuthID(ctx, authID)
	if err != nil {
		return "", errors.Store(err)
	}
	if user == nil {
		return "", nil
	}
	return user.Role, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   body,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}
