package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meatupclub/meatup/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContextOr(ctx, base)

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logOutcome writes the deferred success or failure line used by every service
// operation. Expected business outcomes log at warn, everything else at error.
func logOutcome(ctx context.Context, logger *slog.Logger, err error, success string, attrs ...any) {
	if err == nil {
		logger.InfoContext(ctx, success, attrs...)
		return
	}
	kind := ErrorKind(err)
	if kind == "unexpected" {
		logger.ErrorContext(ctx, success+" failed", "error", err, "error_kind", kind)
		return
	}
	logger.WarnContext(ctx, success+" rejected", "error", err, "error_kind", kind)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, ErrAlreadyActive):
		return "already_active"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrSessionRevoked):
		return "session_revoked"
	case errors.Is(err, ErrNoUpcomingEvent):
		return "no_upcoming_event"
	case errors.Is(err, ErrDuplicateSuggestion):
		return "duplicate_suggestion"
	case errors.Is(err, ErrVoteNotFound):
		return "vote_not_found"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrPollClosed):
		return "poll_closed"
	case errors.Is(err, ErrPollAlreadyOpen):
		return "poll_already_open"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
