// Package repositorytest provides in-memory repository implementations
// for service and handler tests.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/clinic-portal-api/internal/model"
)

type UserRepo struct {
	mu    sync.Mutex
	Users map[uuid.UUID]*model.User

	Err error
}

func NewUserRepo(users ...*model.User) *UserRepo {
	repo := &UserRepo{Users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		repo.Users[u.UID] = u
	}
	return repo
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user.UID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.Users[user.UID] = user
	return nil
}

func (r *UserRepo) Get(ctx context.Context, uid uuid.UUID) (*model.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.Users[uid]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (r *UserRepo) FindByAuthID(ctx context.Context, authID string) (*model.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.Users {
		if user.AuthID != nil && *user.AuthID == authID {
			return user, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, uid uuid.UUID, role string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.Users[uid]
	if !ok {
		return fmt.Errorf("user not found")
	}
	user.Role = role
	return nil
}

func (r *UserRepo) LinkIdentity(ctx context.Context, uid uuid.UUID, authID, name string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.Users[uid]
	if !ok {
		return fmt.Errorf("user not found")
	}
	user.AuthID = &authID
	user.Name = name
	return nil
}

func (r *UserRepo) SetActive(ctx context.Context, uid uuid.UUID, active bool) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.Users[uid]
	if !ok {
		return fmt.Errorf("user not found")
	}
	user.IsActive = active
	return nil
}

func (r *UserRepo) UpdateFields(ctx context.Context, uid uuid.UUID, req *model.UpdateUserRequest) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.Users[uid]
	if !ok {
		return fmt.Errorf("user not found")
	}
	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.Phone != nil && *req.Phone != "" {
		user.Phone = req.Phone
	}
	return nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, uid uuid.UUID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.Users[uid]
	if !ok {
		return fmt.Errorf("user not found")
	}
	now := time.Now()
	user.LastLogin = &now
	return nil
}

type ClinicRepo struct {
	mu      sync.Mutex
	Clinics map[uuid.UUID]*model.Clinic

	Err error
}

func NewClinicRepo(clinics ...*model.Clinic) *ClinicRepo {
	repo := &ClinicRepo{Clinics: make(map[uuid.UUID]*model.Clinic)}
	for _, c := range clinics {
		repo.Clinics[c.ClinicID] = c
	}
	return repo
}

func (r *ClinicRepo) Create(ctx context.Context, clinic *model.Clinic) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clinic.ClinicID = uuid.New()
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = time.Now()
	r.Clinics[clinic.ClinicID] = clinic
	return nil
}

func (r *ClinicRepo) Get(ctx context.Context, clinicID uuid.UUID) (*model.Clinic, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clinic, ok := r.Clinics[clinicID]
	if !ok {
		return nil, fmt.Errorf("clinic not found")
	}
	return clinic, nil
}

func (r *ClinicRepo) FindByOwner(ctx context.Context, uid uuid.UUID) (*model.Clinic, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, clinic := range r.Clinics {
		if clinic.UID == uid {
			return clinic, nil
		}
	}
	return nil, nil
}

func (r *ClinicRepo) UpdateFields(ctx context.Context, clinicID uuid.UUID, req *model.UpdateClinicRequest) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clinic, ok := r.Clinics[clinicID]
	if !ok {
		return fmt.Errorf("clinic not found")
	}
	if req.ClinicName != nil {
		clinic.ClinicName = *req.ClinicName
	}
	if req.RegistrationNumber != nil {
		clinic.RegistrationNumber = req.RegistrationNumber
	}
	if req.AddressLine1 != nil {
		clinic.AddressLine1 = req.AddressLine1
	}
	if req.AddressLine2 != nil {
		clinic.AddressLine2 = req.AddressLine2
	}
	if req.City != nil {
		clinic.City = *req.City
	}
	if req.State != nil {
		clinic.State = req.State
	}
	if req.Country != nil {
		clinic.Country = req.Country
	}
	if req.PostalCode != nil {
		clinic.PostalCode = req.PostalCode
	}
	if req.Phone != nil {
		clinic.Phone = req.Phone
	}
	if req.Email != nil {
		clinic.Email = req.Email
	}
	if req.Website != nil {
		clinic.Website = req.Website
	}
	if req.Description != nil {
		clinic.Description = req.Description
	}
	if req.LogoURL != nil {
		clinic.LogoURL = req.LogoURL
	}
	return nil
}

type DoctorRepo struct {
	mu      sync.Mutex
	Doctors map[uuid.UUID]*model.DoctorWithUser

	PatientCounts     map[uuid.UUID]int64
	AppointmentCounts map[uuid.UUID]int64

	Err error
}

func NewDoctorRepo(doctors ...*model.DoctorWithUser) *DoctorRepo {
	repo := &DoctorRepo{
		Doctors:           make(map[uuid.UUID]*model.DoctorWithUser),
		PatientCounts:     make(map[uuid.UUID]int64),
		AppointmentCounts: make(map[uuid.UUID]int64),
	}
	for _, d := range doctors {
		repo.Doctors[d.DID] = d
	}
	return repo
}

func (r *DoctorRepo) Get(ctx context.Context, did uuid.UUID) (*model.Doctor, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor, ok := r.Doctors[did]
	if !ok {
		return nil, fmt.Errorf("doctor not found")
	}
	return &doctor.Doctor, nil
}

func (r *DoctorRepo) GetWithUser(ctx context.Context, did uuid.UUID) (*model.DoctorWithUser, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor, ok := r.Doctors[did]
	if !ok {
		return nil, fmt.Errorf("doctor not found")
	}
	return doctor, nil
}

func (r *DoctorRepo) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.DoctorWithUser, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var doctors []*model.DoctorWithUser
	for _, d := range r.Doctors {
		if d.ClinicID != nil && *d.ClinicID == clinicID {
			doctors = append(doctors, d)
		}
	}
	return doctors, nil
}

func (r *DoctorRepo) ListAll(ctx context.Context) ([]*model.DoctorWithUser, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var doctors []*model.DoctorWithUser
	for _, d := range r.Doctors {
		doctors = append(doctors, d)
	}
	return doctors, nil
}

func (r *DoctorRepo) Unassign(ctx context.Context, did uuid.UUID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor, ok := r.Doctors[did]
	if !ok {
		return fmt.Errorf("doctor not found")
	}
	doctor.ClinicID = nil
	doctor.ClinicName = nil
	return nil
}

func (r *DoctorRepo) SetVerified(ctx context.Context, did uuid.UUID, verified bool) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor, ok := r.Doctors[did]
	if !ok {
		return fmt.Errorf("doctor not found")
	}
	doctor.IsVerified = verified
	return nil
}

func (r *DoctorRepo) UpdateFields(ctx context.Context, did uuid.UUID, req *model.UpdateDoctorRequest) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor, ok := r.Doctors[did]
	if !ok {
		return fmt.Errorf("doctor not found")
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}
	if req.RegistrationNumber != nil {
		doctor.RegistrationNumber = req.RegistrationNumber
	}
	if req.YearsOfExperience != nil {
		doctor.YearsOfExperience = *req.YearsOfExperience
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.Bio != nil {
		doctor.Bio = req.Bio
	}
	if req.Specialization != nil {
		doctor.Specialization = req.Specialization
	}
	if req.Languages != nil {
		doctor.Languages = req.Languages
	}
	return nil
}

func (r *DoctorRepo) CountPatients(ctx context.Context, did uuid.UUID) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.PatientCounts[did], nil
}

func (r *DoctorRepo) CountAppointments(ctx context.Context, did uuid.UUID) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.AppointmentCounts[did], nil
}

type OutboxRepo struct {
	mu     sync.Mutex
	Events []*model.OutboxEvent

	Err error
}

func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{}
}

func (r *OutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New()
	event.Status = string(model.OutboxStatusPending)
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	r.Events = append(r.Events, event)
	return nil
}

func (r *OutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*model.OutboxEvent
	for _, e := range r.Events {
		if len(pending) == limit {
			break
		}
		status := model.OutboxStatus(e.Status)
		if status != model.OutboxStatusPending && status != model.OutboxStatusRetry {
			continue
		}
		if e.RetryAt != nil && e.RetryAt.After(time.Now()) {
			continue
		}
		pending = append(pending, e)
	}
	return pending, nil
}

func (r *OutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Events {
		if e.ID != id {
			continue
		}
		e.Status = string(status)
		e.ErrorMessage = errorMessage
		e.RetryAt = retryAt
		if status == model.OutboxStatusRetry {
			e.RetryCount++
		}
		if status == model.OutboxStatusProcessed {
			now := time.Now()
			e.ProcessedAt = &now
		}
		e.UpdatedAt = time.Now()
		return nil
	}
	return fmt.Errorf("event not found")
}

func (r *OutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*model.OutboxEvent
	var deleted int64
	for _, e := range r.Events {
		if model.OutboxStatus(e.Status) == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.Events = kept
	return deleted, nil
}

// EventTypes returns the recorded event types in creation order.
func (r *OutboxRepo) EventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		types = append(types, e.EventType)
	}
	return types
}
