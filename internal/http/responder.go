package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/logging"
)

var (
	errBadRequestBody      = errors.New("request body must be valid JSON")
	errMissingSessionToken = errors.New("a session token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes a client error whose message is safe to show as is.
func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	r.writeJSON(ctx, w, status, errorResponse{Error: message})
}

// handleServiceError maps the application error taxonomy onto HTTP statuses.
// Unexpected errors are logged and answered with a generic message.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := describeError(err)
	if status == http.StatusInternalServerError {
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}
	r.writeJSON(ctx, w, status, body)
}

func describeError(err error) (int, errorResponse) {
	var vErr *application.ValidationError
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	case errors.Is(err, application.ErrUnknownIdentity):
		return http.StatusUnauthorized, errorResponse{Error: "no member is registered for this identity"}
	case errors.Is(err, application.ErrSessionExpired):
		return http.StatusUnauthorized, errorResponse{Error: "session expired, please sign in again"}
	case errors.Is(err, application.ErrSessionRevoked):
		return http.StatusUnauthorized, errorResponse{Error: "session revoked, please sign in again"}
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required"}
	case errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "you are not allowed to perform this action"}
	case errors.Is(err, application.ErrVoteNotFound):
		return http.StatusNotFound, errorResponse{Error: "vote not found"}
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "resource not found"}
	case errors.Is(err, application.ErrNoUpcomingEvent):
		return http.StatusBadRequest, errorResponse{Error: "no upcoming event is open for suggestions"}
	case errors.Is(err, application.ErrDuplicateSuggestion):
		return http.StatusBadRequest, errorResponse{Error: "you already suggested this date"}
	case errors.Is(err, application.ErrInvalidStatus):
		return http.StatusBadRequest, errorResponse{
			Error:   "invalid status",
			Details: map[string]string{"status": "status must be one of: yes, no, maybe"},
		}
	case errors.Is(err, application.ErrAlreadyExists):
		return http.StatusConflict, errorResponse{Error: "a member with this email already exists"}
	case errors.Is(err, application.ErrPollClosed):
		return http.StatusConflict, errorResponse{Error: "the poll for this event is closed"}
	case errors.Is(err, application.ErrPollAlreadyOpen):
		return http.StatusConflict, errorResponse{Error: "another poll is already open"}
	case errors.Is(err, application.ErrAlreadyActive):
		return http.StatusConflict, errorResponse{Error: "member is already active"}
	case errors.As(err, &vErr):
		return http.StatusBadRequest, errorResponse{Error: "invalid request", Details: vErr.FieldErrors}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, r.logger)
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
