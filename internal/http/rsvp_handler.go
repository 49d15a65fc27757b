package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/meatupclub/meatup/internal/application"
)

type rsvpService interface {
	SetRSVP(ctx context.Context, params application.SetRSVPParams) (application.SetRSVPResult, error)
	GetRSVP(ctx context.Context, principal application.Principal, eventID int64) (*application.RSVP, error)
	ListRSVPs(ctx context.Context, principal application.Principal, eventID int64) ([]application.RSVPEntry, error)
}

// RSVPHandler serves attendance declarations.
type RSVPHandler struct {
	service   rsvpService
	responder responder
	logger    *slog.Logger
}

func NewRSVPHandler(service rsvpService, logger *slog.Logger) *RSVPHandler {
	base := defaultLogger(logger)
	return &RSVPHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RSVPHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RSVPHandler", operation, attrs...)
}

// Get returns the caller's RSVP and every RSVP for the event.
func (h *RSVPHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, err := parseID("event_id", r.URL.Query().Get("event_id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger := h.log(r.Context(), "Get", "event_id", eventID)
	principal := principalOf(r)

	entries, err := h.service.ListRSVPs(r.Context(), principal, eventID)
	if err != nil {
		logFailure(r.Context(), logger, "rsvp list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	mine, err := h.service.GetRSVP(r.Context(), principal, eventID)
	if err != nil {
		logFailure(r.Context(), logger, "rsvp lookup failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := rsvpListResponse{AllRSVPs: toRSVPEntryDTOs(entries)}
	if mine != nil {
		dto := toRSVPDTO(*mine)
		response.UserRSVP = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

// Set creates or updates the caller's RSVP: 201 on create, 200 on update.
func (h *RSVPHandler) Set(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Set")

	var req rsvpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode rsvp", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	eventID, err := req.EventID.required("event_id")
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	comment := req.DietaryRestrictions
	if comment == nil {
		comment = req.Comments
	}
	result, err := h.service.SetRSVP(r.Context(), application.SetRSVPParams{
		Principal: principalOf(r),
		EventID:   eventID,
		Status:    req.Status,
		Comment:   deref(comment),
	})
	if err != nil {
		logFailure(r.Context(), logger, "rsvp failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	logger.InfoContext(r.Context(), "rsvp recorded", "rsvp_id", result.RSVP.ID, "created", result.Created)
	h.responder.writeJSON(r.Context(), w, status, rsvpResponse{RSVP: toRSVPDTO(result.RSVP), Created: result.Created})
}

type rsvpRequest struct {
	EventID             flexibleID `json:"event_id"`
	Status              string     `json:"status"`
	DietaryRestrictions *string    `json:"dietary_restrictions"`
	Comments            *string    `json:"comments"`
}

type rsvpResponse struct {
	RSVP    rsvpDTO `json:"rsvp"`
	Created bool    `json:"created"`
}

type rsvpListResponse struct {
	UserRSVP *rsvpDTO  `json:"user_rsvp"`
	AllRSVPs []rsvpDTO `json:"all_rsvps"`
}
