package web

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tatame/backend/internal/logging"
)

// NewRouter assembles the gin engine: the authentication gate runs on every
// route, then the public auth endpoints and the health check.
func NewRouter(handler *AuthHandler, authenticator Authenticator, db *sql.DB, logger logging.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(AuthenticationGate(authenticator))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.POST("/logout", handler.Logout)
		authGroup.POST("/recuperar-senha", handler.RecoverPassword)
		authGroup.POST("/recuperar-senha/validar-codigo", handler.ValidateRecoveryCode)
		authGroup.POST("/recuperar-senha/nova-senha", handler.ConfirmPasswordReset)
	}

	router.POST("/ativar", handler.Activate)

	router.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			logger.Error(c.Request.Context(), "health check failed", "error", err)
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	})

	return router
}
