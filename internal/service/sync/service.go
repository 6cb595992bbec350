// Package sync reconciles identities from the external provider with
// portal accounts. Signing in through the provider is the only way a
// clinic account comes into existence.
package sync

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository"
	"github.com/carelink/clinic-portal-api/pkg/errors"
)

type Servicer interface {
	Sync(ctx context.Context, principal *model.Principal) (*Result, error)
}

// Result describes the reconciled account after a sync.
type Result struct {
	User    *model.User   `json:"user"`
	Clinic  *model.Clinic `json:"clinic"`
	Created bool          `json:"created"`
	Message string        `json:"message"`
}

type Service struct {
	users   repository.UserRepository
	clinics repository.ClinicRepository
	outbox  repository.OutboxRepository
}

func NewService(users repository.UserRepository, clinics repository.ClinicRepository, outbox repository.OutboxRepository) *Service {
	return &Service{
		users:   users,
		clinics: clinics,
		outbox:  outbox,
	}
}

// Sync reconciles the principal with the portal's account records.
// Matching runs by auth ID first, then by email, and falls back to
// creating a fresh clinic account.
func (s *Service) Sync(ctx context.Context, principal *model.Principal) (*Result, error) {
	if principal == nil || principal.AuthID == "" {
		return nil, errors.Unauthorized("authentication required", nil)
	}

	user, err := s.users.FindByAuthID(ctx, principal.AuthID)
	if err != nil {
		return nil, errors.Store(err)
	}
	if user != nil {
		return s.syncExisting(ctx, user)
	}

	user, err = s.users.FindByEmail(ctx, principal.Email)
	if err != nil {
		return nil, errors.Store(err)
	}
	if user != nil {
		return s.linkByEmail(ctx, user, principal)
	}

	return s.createAccount(ctx, principal)
}

// syncExisting handles a user already linked to this auth identity.
// Non-clinic roles are promoted so returning owners keep access.
func (s *Service) syncExisting(ctx context.Context, user *model.User) (*Result, error) {
	if user.Role != model.RoleClinic {
		if err := s.users.UpdateRole(ctx, user.UID, model.RoleClinic); err != nil {
			return nil, errors.Store(err)
		}
		user.Role = model.RoleClinic
	}

	clinic, err := s.ensureClinic(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.UID); err != nil {
		log.Warn().Err(err).Str("uid", user.UID.String()).Msg("failed to record login")
	}

	s.emit(ctx, model.EventUserSynced, user)

	return &Result{User: user, Clinic: clinic, Message: "account synced"}, nil
}

// linkByEmail attaches the auth identity to an account that shares the
// principal's email but has no identity link yet. The account keeps
// its role; doctor and patient records get no clinic.
func (s *Service) linkByEmail(ctx context.Context, user *model.User, principal *model.Principal) (*Result, error) {
	if user.AuthID != nil && *user.AuthID != principal.AuthID {
		return nil, errors.Conflict("email already registered to another account", nil)
	}

	// Stored display names survive the link; only a clinic account
	// with no name yet picks up the provider's.
	name := user.Name
	if user.Role == model.RoleClinic && name == "" {
		name = principal.DisplayName()
	}

	if err := s.users.LinkIdentity(ctx, user.UID, principal.AuthID, name); err != nil {
		return nil, errors.Store(err)
	}
	user.AuthID = &principal.AuthID
	user.Name = name

	var clinic *model.Clinic
	if user.Role == model.RoleClinic {
		var err error
		clinic, err = s.ensureClinic(ctx, user)
		if err != nil {
			return nil, err
		}
	}

	if err := s.users.TouchLastLogin(ctx, user.UID); err != nil {
		log.Warn().Err(err).Str("uid", user.UID.String()).Msg("failed to record login")
	}

	s.emit(ctx, model.EventUserSynced, user)

	return &Result{User: user, Clinic: clinic, Message: "account linked"}, nil
}

func (s *Service) createAccount(ctx context.Context, principal *model.Principal) (*Result, error) {
	user := &model.User{
		AuthID:     &principal.AuthID,
		Email:      principal.Email,
		Name:       principal.DisplayName(),
		Role:       model.RoleClinic,
		IsActive:   true,
		IsVerified: false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.Store(err)
	}

	clinic, err := s.ensureClinic(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.UID); err != nil {
		log.Warn().Err(err).Str("uid", user.UID.String()).Msg("failed to record login")
	}

	s.emit(ctx, model.EventUserSynced, user)

	return &Result{User: user, Clinic: clinic, Created: true, Message: "account created"}, nil
}

// ensureClinic lazily creates the clinic record for an owner account.
func (s *Service) ensureClinic(ctx context.Context, user *model.User) (*model.Clinic, error) {
	clinic, err := s.clinics.FindByOwner(ctx, user.UID)
	if err != nil {
		return nil, errors.Store(err)
	}
	if clinic != nil {
		return clinic, nil
	}

	clinic = &model.Clinic{
		UID:        user.UID,
		ClinicName: user.Name + model.ClinicNameSuffix,
		City:       model.ClinicCityUnspecified,
		IsVerified: false,
	}
	if err := s.clinics.Create(ctx, clinic); err != nil {
		return nil, errors.Store(err)
	}

	s.emit(ctx, model.EventClinicCreated, clinic)

	return clinic, nil
}

// emit records a domain event for asynchronous delivery. A sync never
// fails because the outbox write did; the event is simply lost.
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
