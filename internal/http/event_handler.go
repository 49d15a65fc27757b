package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/meatupclub/meatup/internal/application"
)

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.Event, error)
	GetEvent(ctx context.Context, principal application.Principal, eventID int64) (application.Event, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (application.Event, error)
	ListEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error)
}

// EventHandler serves the event catalogue.
type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status := r.URL.Query().Get("status")
	logger := h.log(r.Context(), "List", "status", status)
	events, err := h.service.ListEvents(r.Context(), application.ListEventsParams{
		Principal: principalOf(r),
		Status:    status,
	})
	if err != nil {
		logFailure(r.Context(), logger, "event list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Create")

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode event request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principalOf(r),
		Input: application.EventInput{
			RestaurantName:    deref(req.RestaurantName),
			RestaurantAddress: deref(req.RestaurantAddress),
			EventDate:         deref(req.EventDate),
		},
	})
	if err != nil {
		logFailure(r.Context(), logger, "event creation failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event created", "event_id", event.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, err := parseID("event_id", rawID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	event, err := h.service.GetEvent(r.Context(), principalOf(r), eventID)
	if err != nil {
		logFailure(r.Context(), h.log(r.Context(), "Get", "event_id", eventID), "event lookup failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, rawID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, err := parseID("event_id", rawID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger := h.log(r.Context(), "Update", "event_id", eventID)

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode event update", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		Principal: principalOf(r),
		EventID:   eventID,
		Input: application.EventPatch{
			RestaurantName:    req.RestaurantName,
			RestaurantAddress: req.RestaurantAddress,
			EventDate:         req.EventDate,
			Status:            req.Status,
		},
	})
	if err != nil {
		logFailure(r.Context(), logger, "event update failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event updated", "status", event.Status)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

type eventRequest struct {
	RestaurantName    *string `json:"restaurant_name"`
	RestaurantAddress *string `json:"restaurant_address"`
	EventDate         *string `json:"event_date"`
	Status            *string `json:"status"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
