package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tatame/backend/internal/common"
	"github.com/tatame/backend/internal/logging"
	"github.com/tatame/backend/internal/server/services"
)

const (
	loginFailedMessage   = "E-mail ou senha incorretos."
	typeMismatchMessage  = "Tipo de credencial inválido para esta operação."
	notFoundMessage      = "Usuário não encontrado."
	badRequestMessage    = "Requisição inválida."
	internalErrorMessage = "Erro interno."
)

// AuthProvider is the slice of the authentication service the HTTP layer
// uses.
type AuthProvider interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshValue string) (string, error)
	Logout(ctx context.Context, bearerHeader string) error
	RecoverPassword(ctx context.Context, email string) error
	ValidateRecoveryCode(ctx context.Context, email, code string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
	ActivateAccount(ctx context.Context, token, password, phone, address string) error
}

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	auth   AuthProvider
	logger logging.Logger
}

func NewAuthHandler(auth AuthProvider, logger logging.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger.With("component", "web")}
}

type loginRequest struct {
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, badRequestMessage)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Senha)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			AbortWithError(c, http.StatusUnauthorized, loginFailedMessage)
			return
		}
		h.logger.Error(c.Request.Context(), "login failed", "error", err)
		AbortWithError(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	c.JSON(http.StatusOK, loginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, badRequestMessage)
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTypeMismatch):
			AbortWithError(c, http.StatusConflict, typeMismatchMessage)
		case errors.Is(err, common.ErrInvalidCredentials):
			AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
		default:
			h.logger.Error(c.Request.Context(), "refresh failed", "error", err)
			AbortWithError(c, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	c.JSON(http.StatusOK, refreshResponse{AccessToken: access})
}

// Logout handles POST /auth/logout. The credential comes from the
// Authorization header; there is no body.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.GetHeader(authHeaderKey)); err != nil {
		AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
		return
	}

	c.Status(http.StatusOK)
}

type recoverRequest struct {
	Email string `json:"email" binding:"required"`
}

// RecoverPassword handles POST /auth/recuperar-senha. A 404 for an unknown
// e-mail is the documented product behavior.
func (h *AuthHandler) RecoverPassword(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, badRequestMessage)
		return
	}

	if err := h.auth.RecoverPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			AbortWithError(c, http.StatusNotFound, notFoundMessage)
			return
		}
		h.logger.Error(c.Request.Context(), "password recovery failed", "error", err)
		AbortWithError(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	c.Status(http.StatusOK)
}

type validateCodeRequest struct {
	Email  string `json:"email" binding:"required"`
	Codigo string `json:"codigo" binding:"required"`
}

// ValidateRecoveryCode handles POST /auth/recuperar-senha/validar-codigo.
// Validation does not consume the code; only the final confirm does.
func (h *AuthHandler) ValidateRecoveryCode(c *gin.Context) {
	var req validateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, badRequestMessage)
		return
	}

	if err := h.auth.ValidateRecoveryCode(c.Request.Context(), req.Email, req.Codigo); err != nil {
		AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
		return
	}

	c.Status(http.StatusOK)
}

type confirmResetRequest struct {
	Email     string `json:"email" binding:"required"`
	Codigo    string `json:"codigo" binding:"required"`
	NovaSenha string `json:"novaSenha" binding:"required"`
}

// ConfirmPasswordReset handles POST /auth/recuperar-senha/nova-senha.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, badRequestMessage)
		return
	}

	if err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Codigo, req.NovaSenha); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
			return
		}
		h.logger.Error(c.Request.Context(), "password reset failed", "error", err)
		AbortWithError(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	c.Status(http.StatusOK)
}

type activateRequest struct {
	Token    string `json:"token" binding:"required"`
	Senha    string `json:"senha" binding:"required"`
	Telefone string `json:"telefone"`
	Endereco string `json:"endereco"`
}

// Activate handles POST /ativar: first-time account setup with the token
// delivered by e-mail.
func (h *AuthHandler) Activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, badRequestMessage)
		return
	}

	err := h.auth.ActivateAccount(c.Request.Context(), req.Token, req.Senha, req.Telefone, req.Endereco)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			AbortWithError(c, http.StatusUnauthorized, invalidCredentialMessage)
		case errors.Is(err, common.ErrorNotFound):
			AbortWithError(c, http.StatusNotFound, notFoundMessage)
		default:
			h.logger.Error(c.Request.Context(), "activation failed", "error", err)
			AbortWithError(c, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	c.Status(http.StatusOK)
}
