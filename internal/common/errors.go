// Package common defines shared sentinel errors used across the server
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrInvalidCredentials is the only authentication failure callers are
	// allowed to see. Bad e-mail, bad password, malformed / expired / revoked
	// tokens all collapse into it at the service boundary.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Internal credential-failure causes. Logged, never exposed.
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenExpired     = errors.New("token expired")
	ErrRevokedOrUnknown = errors.New("token revoked or unknown")

	// ErrTypeMismatch means a credential of the wrong kind was presented
	// (e.g. an access token where a refresh token was expected). A caller
	// bug, not a security event, so it is reported distinctly.
	ErrTypeMismatch = errors.New("credential type mismatch")

	// ErrUserInactive marks a principal that has not completed activation.
	ErrUserInactive = errors.New("user not activated")
)
