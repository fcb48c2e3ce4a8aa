// Package session owns the single login attempt made at startup.
package session

import (
	"context"
	"errors"

	errs "igmenu/pkg/errors"
	"igmenu/pkg/logger"
	"igmenu/pkg/ui"
)

// Messages shown for each login outcome
const (
	MsgBadCredentials = "Error: The username or password is incorrect."
	MsgTwoFactor      = "Error: Two-factor authentication is required. This tool does not support 2FA."
	MsgLoginError     = "An error occurred during login: %s"
)

// Authenticator performs one login against the platform
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
}

// Manager authenticates the session once and reports the outcome
type Manager struct {
	auth   Authenticator
	term   *ui.Terminal
	logger logger.Logger
}

// NewManager creates a session manager for auth
func NewManager(auth Authenticator, term *ui.Terminal, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		auth:   auth,
		term:   term,
		logger: log,
	}
}

// Login makes exactly one authentication attempt. It prints the reason on
// failure and reports whether the session is now authenticated. Empty
// credentials are sent as-is.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	err := m.auth.Login(ctx, username, password)
	if err == nil {
		m.logger.InfoWithFields("session authenticated", map[string]interface{}{
			"username": username,
		})
		return true
	}

	m.logger.WithError(err).WarnWithFields("login failed", map[string]interface{}{
		"username": username,
		"type":     string(errs.TypeOf(err)),
	})

	switch {
	case errors.Is(err, errs.ErrBadCredentials):
		m.term.PrintError(MsgBadCredentials)
	case errors.Is(err, errs.ErrTwoFactorRequired):
		m.term.PrintError(MsgTwoFactor)
	default:
		m.term.PrintError(MsgLoginError, errs.UserMessage(err))
	}
	return false
}
