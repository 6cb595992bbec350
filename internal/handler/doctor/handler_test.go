package doctor

import (
	"bytes"
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
	directoryService "github.com/carelink/clinic-portal-api/internal/service/directory"
)

type env struct {
	router *gin.Engine
	doctor *model.DoctorWithUser
	users  *repositorytest.UserRepo
}

// newEnv wires the handler behind a stand-in auth middleware that
// injects the given principal.
func newEnv(t *testing.T, principal *model.Principal) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docAuthID := "kp_doctor"
	docUser := &model.User{UID: uuid.New(), AuthID: &docAuthID, Email: "doctor@example.com", Name: "Dr Mira Shah", Role: model.RoleDoctor, IsActive: true}
	doctor := &model.DoctorWithUser{
		Doctor: model.Doctor{DID: uuid.New(), UID: docUser.UID, Qualification: "MBBS"},
		User:   *docUser,
	}

	ownerAuthID := "kp_owner"
	owner := &model.User{UID: uuid.New(), AuthID: &ownerAuthID, Email: "owner@example.com", Role: model.RoleClinic}

	users := repositorytest.NewUserRepo(docUser, owner)
	doctors := repositorytest.NewDoctorRepo(doctor)
	doctors.PatientCounts[doctor.DID] = 7

	h := NewHandler(directoryService.NewService(doctors, users, repositorytest.NewOutboxRepo()))

	router := gin.New()
	api := router.Group("/api/v1")
	h.RegisterPublicRoutes(api)

	authed := api.Group("")
	authed.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(middleware.ContextPrincipal, principal)
		}
	})
	h.RegisterRoutes(authed)

	return &env{router: router, doctor: doctor, users: users}
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

func TestGetProfileIsPublic(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(t, http.MethodGet, "/api/v1/doctors/"+e.doctor.DID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data *model.DoctorProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, e.doctor.DID, resp.Data.Doctor.DID)
	assert.Equal(t, int64(7), resp.Data.Stats.Patients)
}

func TestGetProfileUnknownDoctor(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(t, http.MethodGet, "/api/v1/doctors/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProfileBadID(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(t, http.MethodGet, "/api/v1/doctors/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDoctors(t *testing.T) {
	e := newEnv(t, &model.Principal{AuthID: "kp_doctor"})

	w := e.do(t, http.MethodGet, "/api/v1/doctors", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []*model.DoctorWithUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
}

func TestListDoctorsRequiresPrincipal(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(t, http.MethodGet, "/api/v1/doctors", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListDoctorsRejectsClinicAccounts(t *testing.T) {
	e := newEnv(t, &model.Principal{AuthID: "kp_owner"})

	w := e.do(t, http.MethodGet, "/api/v1/doctors", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestManageDoctorVerify(t *testing.T) {
	e := newEnv(t, &model.Principal{AuthID: "kp_doctor"})

	w := e.do(t, http.MethodPatch, "/api/v1/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "verify_doctor",
		"value":  true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, e.doctor.IsVerified)
}

func TestManageDoctorUpdates(t *testing.T) {
	e := newEnv(t, &model.Principal{AuthID: "kp_doctor"})

	w := e.do(t, http.MethodPatch, "/api/v1/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "updates",
		"updates": gin.H{
			"user":   gin.H{"name": "Dr Mira S Shah"},
			"doctor": gin.H{"years_of_experience": 12},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12, e.doctor.YearsOfExperience)
}

func TestManageDoctorRejectsClinicAccounts(t *testing.T) {
	e := newEnv(t, &model.Principal{AuthID: "kp_owner"})

	w := e.do(t, http.MethodPatch, "/api/v1/doctors", gin.H{
		"did":    e.doctor.DID.String(),
		"action": "verify_doctor",
		"value":  true,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, e.doctor.IsVerified)
}
