package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carelink/clinic-portal-api/internal/handler"
	"github.com/carelink/clinic-portal-api/internal/model"
	"github.com/carelink/clinic-portal-api/internal/repository"
)

const (
	ContextCurrentUser   = "current_user"
	ContextCurrentClinic = "current_clinic"
)

// ClinicAuthMiddleware resolves the authenticated principal to a clinic
// owner account. Every /clinic route runs behind it.
type ClinicAuthMiddleware struct {
	users   repository.UserRepository
	clinics repository.ClinicRepository
}

func NewClinicAuthMiddleware(users repository.UserRepository, clinics repository.ClinicRepository) *ClinicAuthMiddleware {
	return &ClinicAuthMiddleware{users: users, clinics: clinics}
}

// RequireClinic rejects requests whose principal is not an active
// clinic account with a clinic record, and sets the resolved user and
// clinic in context for downstream handlers.
func (m *ClinicAuthMiddleware) RequireClinic() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
			c.Abort()
			return
		}

		user, err := m.users.FindByAuthID(c.Request.Context(), principal.AuthID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to resolve account"))
			c.Abort()
			return
		}
		if user == nil || user.Role != model.RoleClinic {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("clinic access required"))
			c.Abort()
			return
		}

		clinic, err := m.clinics.FindByOwner(c.Request.Context(), user.UID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to resolve clinic"))
			c.Abort()
			return
		}
		if clinic == nil {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("clinic not found"))
			c.Abort()
			return
		}

		c.Set(ContextCurrentUser, user)
		c.Set(ContextCurrentClinic, clinic)
		c.Next()
	}
}

// CurrentUserFromContext returns the clinic owner account resolved by
// RequireClinic.
func CurrentUserFromContext(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(ContextCurrentUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

// CurrentClinicFromContext returns the clinic resolved by RequireClinic.
func CurrentClinicFromContext(c *gin.Context) (*model.Clinic, bool) {
	value, exists := c.Get(ContextCurrentClinic)
	if !exists {
		return nil, false
	}
	clinic, ok := value.(*model.Clinic)
	return clinic, ok
}
