package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meatupclub/meatup/internal/application"
)

type pollService interface {
	OpenPoll(ctx context.Context, params application.OpenPollParams) (application.Poll, error)
	PollOptions(ctx context.Context, params application.PollOptionsParams) (application.PollOptions, error)
	CloseAndPromote(ctx context.Context, params application.ClosePollParams) (application.ClosePollResult, error)
}

// PollHandler serves the voting round lifecycle.
type PollHandler struct {
	service   pollService
	responder responder
	logger    *slog.Logger
}

func NewPollHandler(service pollService, logger *slog.Logger) *PollHandler {
	base := defaultLogger(logger)
	return &PollHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PollHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PollHandler", operation, attrs...)
}

// Current returns the candidates and leaders used to prefill the close form.
func (h *PollHandler) Current(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, err := optionalID("event_id", r.URL.Query().Get("event_id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	options, err := h.service.PollOptions(r.Context(), application.PollOptionsParams{
		Principal: principalOf(r),
		EventID:   eventID,
	})
	if err != nil {
		logFailure(r.Context(), h.log(r.Context(), "Current"), "poll options failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPollOptionsResponse(options))
}

func (h *PollHandler) Open(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Open")

	var req openPollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode poll request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	eventID, err := req.EventID.required("event_id")
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	poll, err := h.service.OpenPoll(r.Context(), application.OpenPollParams{Principal: principalOf(r), EventID: eventID})
	if err != nil {
		logFailure(r.Context(), logger, "poll open failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "poll opened", "poll_id", poll.ID, "event_id", poll.EventID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, pollResponse{Poll: toPollDTO(poll)})
}

// Close records the winners and, when create_event is set, promotes them
// into a new upcoming event.
func (h *PollHandler) Close(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Close")

	var req closePollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode poll close", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vErr := &application.ValidationError{}
	eventID, err := req.EventID.ptr("event_id")
	collect(vErr, err)
	restaurantID, err := req.WinningRestaurantID.ptr("winning_restaurant_id")
	collect(vErr, err)
	dateID, err := req.WinningDateID.ptr("winning_date_id")
	collect(vErr, err)
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	result, err := h.service.CloseAndPromote(r.Context(), application.ClosePollParams{
		Principal:           principalOf(r),
		EventID:             eventID,
		WinningRestaurantID: restaurantID,
		WinningDateID:       dateID,
		CreateEvent:         req.CreateEvent,
	})
	if err != nil {
		logFailure(r.Context(), logger, "poll close failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := closePollResponse{Poll: toPollDTO(result.Poll)}
	if result.Event != nil {
		event := toEventDTO(*result.Event)
		response.Event = &event
	}
	logger.InfoContext(r.Context(), "poll closed", "poll_id", result.Poll.ID, "promoted", result.Event != nil)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

// collect folds a field validation error into vErr.
func collect(vErr *application.ValidationError, err error) {
	var field *application.ValidationError
	if !errors.As(err, &field) {
		return
	}
	for name, message := range field.FieldErrors {
		if vErr.FieldErrors == nil {
			vErr.FieldErrors = make(map[string]string)
		}
		vErr.FieldErrors[name] = message
	}
}

type openPollRequest struct {
	EventID flexibleID `json:"event_id"`
}

type closePollRequest struct {
	EventID             flexibleID `json:"event_id"`
	WinningRestaurantID flexibleID `json:"winning_restaurant_id"`
	WinningDateID       flexibleID `json:"winning_date_id"`
	CreateEvent         bool       `json:"create_event"`
}

type pollResponse struct {
	Poll pollDTO `json:"poll"`
}

type closePollResponse struct {
	Poll  pollDTO   `json:"poll"`
	Event *eventDTO `json:"event,omitempty"`
}

type pollOptionsResponse struct {
	Event            eventDTO        `json:"event"`
	Poll             *pollDTO        `json:"poll"`
	Restaurants      []restaurantDTO `json:"restaurants"`
	Dates            []dateDTO       `json:"dates"`
	RestaurantLeader *restaurantDTO  `json:"restaurant_leader"`
	DateLeader       *dateDTO        `json:"date_leader"`
}

func toPollOptionsResponse(options application.PollOptions) pollOptionsResponse {
	response := pollOptionsResponse{
		Event:       toEventDTO(options.Event),
		Restaurants: toRestaurantTallyDTOs(options.Restaurants),
		Dates:       toDateTallyDTOs(options.Dates),
	}
	if options.Poll != nil {
		poll := toPollDTO(*options.Poll)
		response.Poll = &poll
	}
	if options.RestaurantLeader != nil {
		leader := toRestaurantTallyDTO(*options.RestaurantLeader)
		response.RestaurantLeader = &leader
	}
	if options.DateLeader != nil {
		leader := toDateTallyDTO(*options.DateLeader)
		response.DateLeader = &leader
	}
	return response
}
