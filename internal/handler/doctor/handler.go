package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/clinic-portal-api/internal/handler"
	"github.com/carelink/clinic-portal-api/internal/middleware"
	"github.com/carelink/clinic-portal-api/internal/model"
	directoryService "github.com/carelink/clinic-portal-api/internal/service/directory"
	"github.com/carelink/clinic-portal-api/pkg/errors"
)

type Handler struct {
	service directoryService.Servicer
}

func NewHandler(service directoryService.Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes registers the unauthenticated profile page.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/doctors/:did", h.GetProfile)
}

// RegisterRoutes registers the authenticated directory surface.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors", h.ListDoctors)
	r.PATCH("/doctors", h.ManageDoctor)
}

const (
	actionVerifyDoctor = "verify_doctor"
	actionActivateUser = "activate_user"
	actionUpdates      = "updates"
)

type updatesPayload struct {
	User   *model.UpdateUserRequest   `json:"user"`
	Doctor *model.UpdateDoctorRequest `json:"doctor"`
}

type manageDoctorRequest struct {
	DID     string          `json:"did" binding:"required,uuid"`
	Action  string          `json:"action" binding:"required,oneof=verify_doctor activate_user updates"`
	Value   *bool           `json:"value"`
	Updates *updatesPayload `json:"updates"`
}

// GetProfile serves a doctor's public profile with patient and
// appointment counts.
func (h *Handler) GetProfile(c *gin.Context) {
	did, err := uuid.Parse(c.Param("did"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), did)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	if !h.allowPrincipal(c) {
		return
	}

	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ManageDoctor(c *gin.Context) {
	if !h.allowPrincipal(c) {
		return
	}

	var req manageDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	did, err := uuid.Parse(req.DID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	switch req.Action {
	case actionVerifyDoctor:
		if req.Value == nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("value is required"))
			return
		}
		if err := h.service.SetVerification(c.Request.Context(), did, *req.Value); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewMessageResponse("doctor verification updated"))

	case actionActivateUser:
		if req.Value == nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("value is required"))
			return
		}
		if err := h.service.SetActivation(c.Request.Context(), did, *req.Value); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewMessageResponse("doctor activation updated"))

	case actionUpdates:
		if req.Updates == nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("updates are required"))
			return
		}
		doctor, err := h.service.Update(c.Request.Context(), did, req.Updates.User, req.Updates.Doctor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
	}
}

// allowPrincipal rejects clinic accounts; their surface is /clinic.
func (h *Handler) allowPrincipal(c *gin.Context) bool {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return false
	}

	role, err := h.service.ResolveRole(c.Request.Context(), principal.AuthID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if role == model.RoleClinic {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("clinic accounts must use the clinic portal"))
		return false
	}
	return true
}

func respondError(c *gin.Context, err error) {
	appErr := errors.From(err)
	c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
}
