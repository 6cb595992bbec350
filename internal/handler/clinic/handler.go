package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/clinic-portal-api/internal/handler"
	"github.com/carelink/clinic-portal-api/internal/middleware"
	"github.com/carelink/clinic-portal-api/internal/model"
	profileService "github.com/carelink/clinic-portal-api/internal/service/profile"
	rosterService "github.com/carelink/clinic-portal-api/internal/service/roster"
	"github.com/carelink/clinic-portal-api/pkg/errors"
)

// Handler serves the clinic owner's portal surface. All routes assume
// the clinic guard middleware already resolved the current clinic.
type Handler struct {
	roster  rosterService.Servicer
	profile profileService.Servicer
}

func NewHandler(roster rosterService.Servicer, profile profileService.Servicer) *Handler {
	return &Handler{roster: roster, profile: profile}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.DELETE("", h.UnassignDoctor)
		doctors.PATCH("", h.ManageDoctor)
	}
	profile := r.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PATCH("", h.UpdateProfile)
	}
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

func (h *Handler) ListDoctors(c *gin.Context) {
	clinic, ok := middleware.CurrentClinicFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("clinic access required"))
		return
	}

	doctors, err := h.roster.List(c.Request.Context(), clinic.ClinicID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

// UnassignDoctor detaches a doctor from the clinic. The doctor keeps
// their account and profile.
func (h *Handler) UnassignDoctor(c *gin.Context) {
	clinic, ok := middleware.CurrentClinicFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("clinic access required"))
		return
	}

	did, err := uuid.Parse(c.Query("did"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	if err := h.roster.Unassign(c.Request.Context(), clinic.ClinicID, did); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("doctor removed from clinic"))
}

func (h *Handler) ManageDoctor(c *gin.Context) {
	clinic, ok := middleware.CurrentClinicFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("clinic access required"))
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
		if err := h.roster.SetVerification(c.Request.Context(), clinic.ClinicID, did, *req.Value); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewMessageResponse("doctor verification updated"))

	case actionActivateUser:
		if req.Value == nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("value is required"))
			return
		}
		if err := h.roster.SetActivation(c.Request.Context(), clinic.ClinicID, did, *req.Value); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewMessageResponse("doctor activation updated"))

	case actionUpdates:
		if req.Updates == nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("updates are required"))
			return
		}
		doctor, err := h.roster.Update(c.Request.Context(), clinic.ClinicID, did, req.Updates.User, req.Updates.Doctor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUserFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("clinic access required"))
		return
	}

	clinic, err := h.profile.Get(c.Request.Context(), user.UID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	clinic, ok := middleware.CurrentClinicFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("clinic access required"))
		return
	}

	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.profile.Update(c.Request.Context(), clinic.ClinicID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func respondError(c *gin.Context, err error) {
	appErr := errors.From(err)
	c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
}
