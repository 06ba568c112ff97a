// Package email declares the one-shot send capability of spec.md §6: a
// collaborator this module depends on but does not implement end-to-end
// delivery for (out of scope per spec.md §1). Templates are authored
// within the system, not on the provider.
package email

import (
	"context"
	"time"

	"citytycoon-backend/internal/logger"
)

// Template names a pre-authored email template.
type Template string

const (
	TemplateMagicLink       Template = "magic_link"
	TemplateInvitation      Template = "invitation"
	TemplateTOTPEnabled     Template = "totp_enabled"
	TemplatePasswordChanged Template = "password_changed"
)

// Sender is the capability interface: send(template, recipient, context).
type Sender interface {
	Send(ctx context.Context, template Template, recipient string, data map[string]interface{}) error
}

// LoggingSender is a development Sender that logs the would-be email
// instead of delivering it — the default when no real provider is wired,
// and the target tests exercise against.
type LoggingSender struct {
	Timeout time.Duration
}

func (s *LoggingSender) Send(ctx context.Context, template Template, recipient string, data map[string]interface{}) error {
	logger.Info("email send (no provider configured, logging instead)")
	_ = ctx
	_ = template
	_ = recipient
	_ = data
	return nil
}

// SendBestEffort sends an email and swallows any error into a log line,
// matching spec.md §7's propagation policy: "upstream failures on email do
// not [abort the action]... failures are logged but do not abort the
// action."
func SendBestEffort(ctx context.Context, s Sender, template Template, recipient string, data map[string]interface{}) {
	if err := s.Send(ctx, template, recipient, data); err != nil {
		logger.Warn("email send failed, continuing")
	}
}
