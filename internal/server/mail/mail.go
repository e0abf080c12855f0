// Package mail declares the outbound e-mail contract of the authentication
// subsystem. Message content and real delivery belong to the notification
// module; the server ships a logging dispatcher for development.
package mail

import (
	"context"

	"github.com/tatame/backend/internal/logging"
	"github.com/tatame/backend/internal/server/models"
)

// Dispatcher delivers credential material to the user out of band.
type Dispatcher interface {
	// SendActivation delivers the account-activation token.
	SendActivation(ctx context.Context, user *models.User, token string) error

	// SendRecoveryCode delivers the password-recovery code.
	SendRecoveryCode(ctx context.Context, user *models.User, code string) error
}

// LogDispatcher writes outbound messages to the structured log instead of
// sending them. Useful for development and tests.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.With("component", "mail")}
}

func (d *LogDispatcher) SendActivation(ctx context.Context, user *models.User, token string) error {
	d.logger.Info(ctx, "activation e-mail", "to", user.Email, "token", token)
	return nil
}

func (d *LogDispatcher) SendRecoveryCode(ctx context.Context, user *models.User, code string) error {
	d.logger.Info(ctx, "recovery-code e-mail", "to", user.Email, "code", code)
	return nil
}
