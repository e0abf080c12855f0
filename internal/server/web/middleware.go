package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tatame/backend/internal/server/models"
)

const (
	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "

	// principalKey is the gin context key the gate binds the resolved
	// principal under.
	principalKey = "principal"
)

const invalidCredentialMessage = "Credencial inválida ou expirada."

// Authenticator resolves a bearer credential into its principal.
type Authenticator interface {
	Authenticate(ctx context.Context, value string) (*models.User, error)
}

// AuthenticationGate runs before every business handler. Without an
// Authorization header the request passes through unauthenticated and
// downstream authorization decides; with one, the credential must verify,
// resolve to a principal and have an active store record, or the request
// halts with 401.
func AuthenticationGate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authHeaderKey)
		if header == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
			return
		}

		value := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		user, err := authenticator.Authenticate(c.Request.Context(), value)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
			return
		}

		c.Set(principalKey, user)
		c.Next()
	}
}

// Principal returns the authenticated principal bound to the request, if any.
func Principal(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// RequireRole halts with 401 when no principal is bound and with 403 when
// the principal's role is not among the allowed ones. The role table is
// fixed; role-to-permission mapping is decided outside this subsystem.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := Principal(c)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		AbortWithError(c, http.StatusForbidden, "Acesso negado.")
	}
}
