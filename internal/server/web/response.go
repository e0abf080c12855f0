// Package web exposes the REST surface of the credential subsystem: the
// authentication endpoints, the health endpoint and the per-request
// authentication gate.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error shape shared by every non-2xx response.
type ErrorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// AbortWithError writes the shared error body and stops the handler chain.
// Message is the only caller-controlled field; internal causes never reach it.
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}
