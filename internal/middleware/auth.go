package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carelink/clinic-portal-api/internal/handler"
	"github.com/carelink/clinic-portal-api/internal/identity"
	"github.com/carelink/clinic-portal-api/internal/model"
)

const ContextPrincipal = "principal"

type AuthMiddleware struct {
	verifier identity.Verifier
}

func NewAuthMiddleware(verifier identity.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate verifies the session token and sets the principal in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := m.principalFromRequest(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// MaybeAuthenticate sets the principal in context when a valid session
// token is present and lets the request through either way.
func (m *AuthMiddleware) MaybeAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := m.principalFromRequest(c); ok {
			c.Set(ContextPrincipal, principal)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) principalFromRequest(c *gin.Context) (*model.Principal, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	principal, err := m.verifier.Verify(parts[1])
	if err != nil {
		return nil, false
	}
	return principal, true
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (*model.Principal, bool) {
	value, exists := c.Get(ContextPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*model.Principal)
	return principal, ok
}
