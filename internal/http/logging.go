package http

import (
	"context"
	"log/slog"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContextOr(ctx, fallback)

	pairs := []any{"handler", handlerName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logFailure logs expected business failures at warn and everything else at error.
func logFailure(ctx context.Context, logger *slog.Logger, message string, err error) {
	kind := application.ErrorKind(err)
	if kind == "unexpected" {
		logger.ErrorContext(ctx, message, "error", err, "error_kind", kind)
		return
	}
	logger.WarnContext(ctx, message, "error", err, "error_kind", kind)
}
