package roster

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

type fixture struct {
	svc      *Service
	doctors  *repositorytest.DoctorRepo
	users    *repositorytest.UserRepo
	outbox   *repositorytest.OutboxRepo
	clinicID uuid.UUID
	doctor   *model.DoctorWithUser
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clinicID := uuid.New()
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
			ClinicID:      &clinicID,
			Qualification: "MBBS",
		},
		User: *user,
	}

	doctors := repositorytest.NewDoctorRepo(doctor)
	users := repositorytest.NewUserRepo(user)
	outbox := repositorytest.NewOutboxRepo()

	return &fixture{
		svc:      NewService(doctors, users, outbox),
		doctors:  doctors,
		users:    users,
		outbox:   outbox,
		clinicID: clinicID,
		doctor:   doctor,
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)

	doctors, err := f.svc.List(context.Background(), f.clinicID)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, f.doctor.DID, doctors[0].DID)

	doctors, err = f.svc.List(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, doctors)
}

func TestUnassign(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Unassign(context.Background(), f.clinicID, f.doctor.DID)
	require.NoError(t, err)

	assert.Nil(t, f.doctor.ClinicID)
	assert.Equal(t, []string{model.EventDoctorUnassigned}, f.outbox.EventTypes())

	// The account itself is untouched.
	user, err := f.users.Get(context.Background(), f.doctor.UID)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
}

func TestUnassignForeignDoctor(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Unassign(context.Background(), uuid.New(), f.doctor.DID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	assert.NotNil(t, f.doctor.ClinicID)
}

func TestUnassignUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Unassign(context.Background(), f.clinicID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

func TestSetVerification(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.SetVerification(context.Background(), f.clinicID, f.doctor.DID, true))
	assert.True(t, f.doctor.IsVerified)

	require.NoError(t, f.svc.SetVerification(context.Background(), f.clinicID, f.doctor.DID, false))
	assert.False(t, f.doctor.IsVerified)

	assert.Equal(t, []string{model.EventDoctorVerified, model.EventDoctorVerified}, f.outbox.EventTypes())
}

func TestSetActivationTogglesUserAccount(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.SetActivation(context.Background(), f.clinicID, f.doctor.DID, false))

	user, err := f.users.Get(context.Background(), f.doctor.UID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, []string{model.EventDoctorActivated}, f.outbox.EventTypes())
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)

	name := "Dr Mira S Shah"
	qualification := "MBBS, MD"
	fee := 750.0

	updated, err := f.svc.Update(context.Background(), f.clinicID, f.doctor.DID,
		&model.UpdateUserRequest{Name: &name},
		&model.UpdateDoctorRequest{Qualification: &qualification, ConsultationFee: &fee},
	)
	require.NoError(t, err)

	assert.Equal(t, "MBBS, MD", updated.Qualification)
	assert.Equal(t, 750.0, updated.ConsultationFee)

	user, err := f.users.Get(context.Background(), f.doctor.UID)
	require.NoError(t, err)
	assert.Equal(t, "Dr Mira S Shah", user.Name)

	assert.Equal(t, []string{model.EventDoctorUpdated}, f.outbox.EventTypes())
}

func TestUpdateSkipsEmptyRequests(t *testing.T) {
	f := newFixture(t)

	updated, err := f.svc.Update(context.Background(), f.clinicID, f.doctor.DID, &model.UpdateUserRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "MBBS", updated.Qualification)
	assert.Equal(t, "Dr Mira Shah", updated.User.Name)
}

func TestUpdateForeignDoctor(t *testing.T) {
	f := newFixture(t)

	name := "Hijacked"
	_, err := f.svc.Update(context.Background(), uuid.New(), f.doctor.DID, &model.UpdateUserRequest{Name: &name}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}
