package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/meatupclub/meatup/internal/application"
)

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RevokeSession(ctx context.Context, token string) error
	AcceptInvite(ctx context.Context, principal application.Principal) (application.User, error)
	Me(ctx context.Context, principal application.Principal) (application.User, error)
}

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Secure bool
}

// AuthHandler serves sign in, sign out and the caller's own member record.
type AuthHandler struct {
	service   authService
	cookie    CookieOptions
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, cookie CookieOptions, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, cookie: cookie, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// CreateSession exchanges an identity provider token for a session.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "CreateSession")

	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode session request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{IDToken: req.IDToken})
	if err != nil {
		logFailure(r.Context(), logger, "authentication failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set("X-Session-Token", result.Session.Token)

	logger.InfoContext(r.Context(), "member authenticated", "user_id", result.User.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, signInResponse{
		Token:     result.Session.Token,
		ExpiresAt: formatTimestamp(result.Session.ExpiresAt),
		User:      toMemberDTO(result.User),
	})
}

// DeleteCurrentSession signs the caller out.
func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token := extractTokenFromRequest(r)
	if token == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "DeleteCurrentSession")
	if err := h.service.RevokeSession(r.Context(), token); err != nil {
		logFailure(r.Context(), logger, "failed to revoke session", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.clearSessionCookie(w)
	logger.InfoContext(r.Context(), "session revoked")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Me returns the caller's member record whatever their status.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal := principalOf(r)
	user, err := h.service.Me(r.Context(), principal)
	if err != nil {
		logFailure(r.Context(), h.log(r.Context(), "Me"), "member lookup failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMemberDTO(user))
}

// AcceptInvite activates the caller. Repeating it reports changed=false.
func (h *AuthHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal := principalOf(r)
	logger := h.log(r.Context(), "AcceptInvite")

	user, err := h.service.AcceptInvite(r.Context(), principal)
	switch {
	case err == nil:
		logger.InfoContext(r.Context(), "invite accepted")
		h.responder.writeJSON(r.Context(), w, http.StatusOK, acceptInviteResponse{Changed: true, Message: "welcome to the club", User: toMemberDTO(user)})
	case errors.Is(err, application.ErrAlreadyActive):
		h.responder.writeJSON(r.Context(), w, http.StatusOK, acceptInviteResponse{Changed: false, Message: "membership is already active", User: toMemberDTO(user)})
	default:
		logFailure(r.Context(), logger, "invite acceptance failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
	}
}

type signInRequest struct {
	IDToken string `json:"id_token"`
}

type signInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expires_at"`
	User      memberDTO `json:"user"`
}

type acceptInviteResponse struct {
	Changed bool      `json:"changed"`
	Message string    `json:"message"`
	User    memberDTO `json:"user"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
