package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository/repositorytest"
	"github.com/carelink/clinic-portal-api/pkg/errors"
)

func seedDoctor() (*model.DoctorWithUser, *repositorytest.DoctorRepo, *repositorytest.UserRepo) {
	user := &model.User{
		UID:      uuid.New(),
		Email:    "doctor@example.com",
		Name:     "Dr Mira Shah",
		Role:     model.RoleDoctor,
		IsActive: true,
	}
	doctor := &model.DoctorWithUser{
		Doctor: model.Doctor{
			DID:           uuid.New(),
			UID:           user.UID,
			Qualification: "MBBS",
		},
		User: *user,
	}
	return doctor, repositorytest.NewDoctorRepo(doctor), repositorytest.NewUserRepo(user)
}

func TestGetProfile(t *testing.T) {
	doctor, doctors, users := seedDoctor()
	doctors.PatientCounts[doctor.DID] = 42
	doctors.AppointmentCounts[doctor.DID] = 120
	svc := NewService(doctors, users, repositorytest.NewOutboxRepo())

	profile, err := svc.GetProfile(context.Background(), doctor.DID)
	require.NoError(t, err)

	assert.Equal(t, doctor.DID, profile.Doctor.DID)
	assert.Equal(t, int64(42), profile.Stats.Patients)
	assert.Equal(t, int64(120), profile.Stats.Appointments)
}

func TestGetProfileUnknownDoctor(t *testing.T) {
	_, doctors, users := seedDoctor()
	svc := NewService(doctors, users, repositorytest.NewOutboxRepo())

	_, err := svc.GetProfile(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestList(t *testing.T) {
	doctor, doctors, users := seedDoctor()
	svc := NewService(doctors, users, repositorytest.NewOutboxRepo())

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, doctor.DID, all[0].DID)
}

func TestSetVerification(t *testing.T) {
	doctor, doctors, users := seedDoctor()
	outbox := repositorytest.NewOutboxRepo()
	svc := NewService(doctors, users, outbox)

	require.NoError(t, svc.SetVerification(context.Background(), doctor.DID, true))
	assert.True(t, doctor.IsVerified)
	assert.Equal(t, []string{model.EventDoctorVerified}, outbox.EventTypes())
}

func TestSetActivation(t *testing.T) {
	doctor, doctors, users := seedDoctor()
	svc := NewService(doctors, users, repositorytest.NewOutboxRepo())

	require.NoError(t, svc.SetActivation(context.Background(), doctor.DID, false))

	user, err := users.Get(context.Background(), doctor.UID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestUpdate(t *testing.T) {
	doctor, doctors, users := seedDoctor()
	svc := NewService(doctors, users, repositorytest.NewOutboxRepo())

	bio := "Cardiologist with 12 years of practice."
	updated, err := svc.Update(context.Background(), doctor.DID, nil, &model.UpdateDoctorRequest{Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, bio, *updated.Bio)
}

func TestResolveRole(t *testing.T) {
	_, doctors, users := seedDoctor()
	svc := NewService(doctors, users, repositorytest.NewOutboxRepo())

	authID := "kp_owner"
	owner := &model.User{UID: uuid.New(), AuthID: &authID, Email: "owner@example.com", Role: model.RoleClinic}
	users.Users[owner.UID] = owner

	role, err := svc.ResolveRole(context.Background(), authID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleClinic, role)

	role, err = svc.ResolveRole(context.Background(), "kp_stranger")
	require.NoError(t, err)
	assert.Empty(t, role)
}
