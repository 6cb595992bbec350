// Package profile serves the clinic's own profile.
package profile

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
	Get(ctx context.Context, ownerUID uuid.UUID) (*model.Clinic, error)
	Update(ctx context.Context, clinicID uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error)
}

type Service struct {
	clinics repository.ClinicRepository
	outbox  repository.OutboxRepository
}

func NewService(clinics repository.ClinicRepository, outbox repository.OutboxRepository) *Service {
	return &Service{
		clinics: clinics,
		outbox:  outbox,
	}
}

func (s *Service) Get(ctx context.Context, ownerUID uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.clinics.FindByOwner(ctx, ownerUID)
	if err != nil {
		return nil, errors.Store(err)
	}
	if clinic == nil {
		return nil, errors.NotFound("clinic", nil)
	}
	return clinic, nil
}

// Update applies allow-listed changes to the clinic record and returns
// the fresh state. An empty request is a no-op read.
func (s *Service) Update(ctx context.Context, clinicID uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	if req != nil && !req.IsEmpty() {
		if err := s.clinics.UpdateFields(ctx, clinicID, req); err != nil {
			return nil, errors.Store(err)
		}
	}

	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, errors.Store(err)
	}

	if req != nil && !req.IsEmpty() {
		s.emit(ctx, model.EventClinicUpdated, clinic)
	}
	return clinic, nil
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
