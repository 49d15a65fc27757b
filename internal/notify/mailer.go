// Package notify delivers member invitations.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/logging"
)

// LogMailer records invitations in the process log instead of sending mail.
// It stands in for an outbound mail provider.
type LogMailer struct {
	acceptURL string
	logger    *slog.Logger
}

// NewLogMailer returns a mailer that points invitees at acceptURL.
func NewLogMailer(acceptURL string, logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{acceptURL: strings.TrimSpace(acceptURL), logger: logger}
}

// SendInvite implements application.InviteNotifier.
func (m *LogMailer) SendInvite(ctx context.Context, invitee application.User, invitedBy application.Principal) error {
	if strings.TrimSpace(invitee.Email) == "" {
		return errors.New("notify: invitee has no email address")
	}
	logging.FromContextOr(ctx, m.logger).InfoContext(ctx, "invite sent",
		"component", "LogMailer",
		"to", invitee.Email,
		"user_id", invitee.ID,
		"invited_by", invitedBy.Email,
		"accept_url", m.acceptURL,
	)
	return nil
}
