package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carelink/clinic-portal-api/internal/handler"
	"github.com/carelink/clinic-portal-api/internal/middleware"
	syncService "github.com/carelink/clinic-portal-api/internal/service/sync"
	"github.com/carelink/clinic-portal-api/pkg/errors"
)

type Handler struct {
	service syncService.Servicer
}

func NewHandler(service syncService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/sync", h.Sync)
	}
}

// Sync reconciles the signed-in identity with the portal's account
// records. The frontend calls it once after every provider login.
func (h *Handler) Sync(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	result, err := h.service.Sync(c.Request.Context(), principal)
	if err != nil {
		appErr := errors.From(err)
		c.JSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, handler.NewSuccessResponse(result))
}
