package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository/repositorytest"
)

func guardRouter(t *testing.T, principal *model.Principal, users *repositorytest.UserRepo, clinics *repositorytest.ClinicRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	guard := NewClinicAuthMiddleware(users, clinics)

	router := gin.New()
	group := router.Group("/clinic")
	group.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(ContextPrincipal, principal)
		}
	})
	group.Use(guard.RequireClinic())
	group.GET("/ping", func(c *gin.Context) {
		user, ok := CurrentUserFromContext(c)
		require.True(t, ok)
		clinic, ok := CurrentClinicFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"uid": user.UID, "clinic_id": clinic.ClinicID})
	})
	return router
}

func ping(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/clinic/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireClinicPasses(t *testing.T) {
	authID := "kp_owner"
	users := repositorytest.NewUserRepo()
	owner := &model.User{AuthID: &authID, Email: "owner@example.com", Role: model.RoleClinic}
	require.NoError(t, users.Create(context.Background(), owner))

	clinics := repositorytest.NewClinicRepo()
	require.NoError(t, clinics.Create(context.Background(), &model.Clinic{UID: owner.UID, ClinicName: "Sunrise Clinic"}))

	router := guardRouter(t, &model.Principal{AuthID: authID}, users, clinics)
	assert.Equal(t, http.StatusOK, ping(router).Code)
}

func TestRequireClinicWithoutPrincipal(t *testing.T) {
	router := guardRouter(t, nil, repositorytest.NewUserRepo(), repositorytest.NewClinicRepo())
	assert.Equal(t, http.StatusUnauthorized, ping(router).Code)
}

func TestRequireClinicRejectsUnknownAccount(t *testing.T) {
	router := guardRouter(t, &model.Principal{AuthID: "kp_stranger"}, repositorytest.NewUserRepo(), repositorytest.NewClinicRepo())
	assert.Equal(t, http.StatusForbidden, ping(router).Code)
}

func TestRequireClinicRejectsNonClinicRole(t *testing.T) {
	authID := "kp_doctor"
	users := repositorytest.NewUserRepo()
	require.NoError(t, users.Create(context.Background(), &model.User{AuthID: &authID, Email: "doctor@example.com", Role: model.RoleDoctor}))

	router := guardRouter(t, &model.Principal{AuthID: authID}, users, repositorytest.NewClinicRepo())
	assert.Equal(t, http.StatusForbidden, ping(router).Code)
}

func TestRequireClinicMissingClinicRecord(t *testing.T) {
	authID := "kp_owner"
	users := repositorytest.NewUserRepo()
	require.NoError(t, users.Create(context.Background(), &model.User{AuthID: &authID, Email: "owner@example.com", Role: model.RoleClinic}))

	router := guardRouter(t, &model.Principal{AuthID: authID}, users, repositorytest.NewClinicRepo())
	assert.Equal(t, http.StatusNotFound, ping(router).Code)
}

func TestContextHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := CurrentUserFromContext(c)
	assert.False(t, ok)
	_, ok = CurrentClinicFromContext(c)
	assert.False(t, ok)
	_, ok = PrincipalFromContext(c)
	assert.False(t, ok)

	c.Set(ContextCurrentUser, &model.User{UID: uuid.New()})
	_, ok = CurrentUserFromContext(c)
	assert.True(t, ok)
}
