package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/clinic-portal-api/internal/middleware"
	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository/repositorytest"
	profileService "github.com/carelink/clinic-portal-api/internal/service/profile"
	rosterService "github.com/carelink/clinic-portal-api/internal/service/roster"
)

type env struct {
	router  *gin.Engine
	clinic  *model.Clinic
	owner   *model.User
	doctor  *model.DoctorWithUser
	doctors *repositorytest.DoctorRepo
	users   *repositorytest.UserRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	owner := &model.User{UID: uuid.New(), Email: "owner@example.com", Name: "Asha Rao", Role: model.RoleClinic}
	clinic := &model.Clinic{ClinicID: uuid.New(), UID: owner.UID, ClinicName: "Sunrise Clinic", City: "Pune"}

	docUser := &model.User{UID: uuid.New(), Email: "doctor@example.com", Name: "Dr Mira Shah", Role: model.RoleDoctor, IsActive: true}
	doctor := &model.DoctorWithUser{
		Doctor: model.Doctor{DID: uuid.New(), UID: docUser.UID, ClinicID: &clinic.ClinicID, Qualification: "MBBS"},
		User:   *docUser,
	}

	users := repositorytest.NewUserRepo(owner, docUser)
	clinics := repositorytest.NewClinicRepo(clinic)
	doctors := repositorytest.NewDoctorRepo(doctor)
	outbox := repositorytest.NewOutboxRepo()

	h := NewHandler(
		rosterService.NewService(doctors, users, outbox),
		profileService.NewService(clinics, outbox),
	)

	router := gin.New()
	group := router.Group("/api/v1/clinic")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.ContextCurrentUser, owner)
		c.Set(middleware.ContextCurrentClinic, clinic)
	})
	h.RegisterRoutes(group)

	return &env{router: router, clinic: clinic, owner: owner, doctor: doctor, doctors: doctors, users: users}
}

func (e *env) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestListDoctors(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/clinic/doctors", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                  `json:"status"`
		Data   []*model.DoctorWithUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, e.doctor.DID, resp.Data[0].DID)
}

func TestUnassignDoctor(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodDelete, "/api/v1/clinic/doctors?did="+e.doctor.DID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, e.doctor.ClinicID)
}

func TestUnassignDoctorBadID(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodDelete, "/api/v1/clinic/doctors?did=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnassignForeignDoctorForbidden(t *testing.T) {
	e := newEnv(t)

	other := uuid.New()
	e.doctor.ClinicID = &other

	w := e.do(t, http.MethodDelete, "/api/v1/clinic/doctors?did="+e.doctor.DID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestManageDoctorVerify(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPatch, "/api/v1/clinic/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "verify_doctor",
		"value":  true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, e.doctor.IsVerified)
}

func TestManageDoctorActivate(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPatch, "/api/v1/clinic/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "activate_user",
		"value":  false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	user, err := e.users.Get(context.Background(), e.doctor.UID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestManageDoctorUpdates(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPatch, "/api/v1/clinic/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "updates",
		"updates": gin.H{
			"doctor": gin.H{"qualification": "MBBS, MD"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MBBS, MD", e.doctor.Qualification)
}

func TestManageDoctorRejectsUnknownAction(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPatch, "/api/v1/clinic/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "delete_everything",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManageDoctorRequiresValue(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPatch, "/api/v1/clinic/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "verify_doctor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/clinic/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data *model.Clinic `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, e.clinic.ClinicID, resp.Data.ClinicID)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPatch, "/api/v1/clinic/profile", gin.H{
		"clinic_name": "Sunrise Multispeciality Clinic",
		"phone":       "+91 20 1234 5678",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data *model.Clinic `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Sunrise Multispeciality Clinic", resp.Data.ClinicName)
}
