// Package roster manages the doctors attached to a clinic.
package roster

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
	List(ctx context.Context, clinicID uuid.UUID) ([]*model.DoctorWithUser, error)
	Unassign(ctx context.Context, clinicID, did uuid.UUID) error
	SetVerification(ctx context.Context, clinicID, did uuid.UUID, verified bool) error
	SetActivation(ctx context.Context, clinicID, did uuid.UUID, active bool) error
	Update(ctx context.Context, clinicID, did uuid.UUID, user *model.UpdateUserRequest, doctor *model.UpdateDoctorRequest) (*model.DoctorWithUser, error)
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

func (s *Service) List(ctx context.Context, clinicID uuid.UUID) ([]*model.DoctorWithUser, error) {
	doctors, err := s.doctors.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, errors.Store(err)
	}
	return doctors, nil
}

// Unassign detaches a doctor from the clinic. The doctor account and
// profile survive; only the clinic linkage is cleared.
func (s *Service) Unassign(ctx context.Context, clinicID, did uuid.UUID) error {
	doctor, err := s.verifyOwnership(ctx, clinicID, did)
	if err != nil {
		return err
	}

	if err := s.doctors.Unassign(ctx, did); err != nil {
		return errors.Store(err)
	}

	s.emit(ctx, model.EventDoctorUnassigned, doctor)
	return nil
}

func (s *Service) SetVerification(ctx context.Context, clinicID, did uuid.UUID, verified bool) error {
	doctor, err := s.verifyOwnership(ctx, clinicID, did)
	if err != nil {
		return err
	}

	if err := s.doctors.SetVerified(ctx, did, verified); err != nil {
		return errors.Store(err)
	}
	doctor.IsVerified = verified

	s.emit(ctx, model.EventDoctorVerified, doctor)
	return nil
}

// SetActivation toggles the doctor's user account, not the doctor row.
func (s *Service) SetActivation(ctx context.Context, clinicID, did uuid.UUID, active bool) error {
	doctor, err := s.verifyOwnership(ctx, clinicID, did)
	if err != nil {
		return err
	}

	if err := s.users.SetActive(ctx, doctor.UID, active); err != nil {
		return errors.Store(err)
	}

	s.emit(ctx, model.EventDoctorActivated, doctor)
	return nil
}

// Update applies allow-listed changes to a doctor's user record and
// doctor profile. Nil or empty requests are skipped.
func (s *Service) Update(ctx context.Context, clinicID, did uuid.UUID, user *model.UpdateUserRequest, doctor *model.UpdateDoctorRequest) (*model.DoctorWithUser, error) {
	current, err := s.verifyOwnership(ctx, clinicID, did)
	if err != nil {
		return nil, err
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

// verifyOwnership re-checks that the doctor belongs to the clinic right
// before a mutation. A missing doctor and a foreign doctor are
// indistinguishable to the caller.
func (s *Service) verifyOwnership(ctx context.Context, clinicID, did uuid.UUID) (*model.DoctorWithUser, error) {
	doctor, err := s.doctors.GetWithUser(ctx, did)
	if err != nil || doctor == nil {
		return nil, errors.Forbidden("doctor not found or access denied", err)
	}
	if doctor.ClinicID == nil || *doctor.ClinicID != clinicID {
		return nil, errors.Forbidden("doctor not found or access denied", nil)
	}
	return doctor, nil
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
