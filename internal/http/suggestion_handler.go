package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/meatupclub/meatup/internal/application"
)

type suggestionService interface {
	SuggestRestaurant(ctx context.Context, params application.SuggestRestaurantParams) (application.RestaurantSuggestion, error)
	SuggestDate(ctx context.Context, params application.SuggestDateParams) (application.DateSuggestion, error)
	ListRestaurants(ctx context.Context, params application.ListSuggestionsParams) (application.SuggestionList[application.RestaurantSuggestion], error)
	ListDates(ctx context.Context, params application.ListSuggestionsParams) (application.SuggestionList[application.DateSuggestion], error)
}

type voteService interface {
	CastOrToggleVote(ctx context.Context, params application.VoteParams) (application.VoteResult, error)
	RemoveVote(ctx context.Context, params application.VoteParams) error
}

// SuggestionHandler serves both suggestion ledgers and their votes. The
// restaurant and date routes share the vote handlers and differ by kind.
type SuggestionHandler struct {
	suggestions suggestionService
	votes       voteService
	responder   responder
	logger      *slog.Logger
}

func NewSuggestionHandler(suggestions suggestionService, votes voteService, logger *slog.Logger) *SuggestionHandler {
	base := defaultLogger(logger)
	return &SuggestionHandler{suggestions: suggestions, votes: votes, responder: newResponder(base), logger: base}
}

func (h *SuggestionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SuggestionHandler", operation, attrs...)
}

func (h *SuggestionHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.suggestions == nil || h.votes == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *SuggestionHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, err := optionalID("event_id", r.URL.Query().Get("event_id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	list, err := h.suggestions.ListRestaurants(r.Context(), application.ListSuggestionsParams{
		Principal: principalOf(r),
		EventID:   eventID,
	})
	if err != nil {
		logFailure(r.Context(), h.log(r.Context(), "ListRestaurants"), "restaurant list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	response := restaurantListResponse{
		Event:       toEventDTO(list.Event),
		Suggestions: toRestaurantTallyDTOs(list.Items),
	}
	if list.Leader != nil {
		leader := toRestaurantTallyDTO(*list.Leader)
		response.Leader = &leader
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *SuggestionHandler) SuggestRestaurant(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	logger := h.log(r.Context(), "SuggestRestaurant")

	var req restaurantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode restaurant suggestion", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	eventID, err := req.EventID.ptr("event_id")
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	suggestion, err := h.suggestions.SuggestRestaurant(r.Context(), application.SuggestRestaurantParams{
		Principal: principalOf(r),
		EventID:   eventID,
		Input: application.RestaurantInput{
			Name:    req.Name,
			Address: req.Address,
			Cuisine: req.Cuisine,
			URL:     req.URL,
		},
	})
	if err != nil {
		logFailure(r.Context(), logger, "restaurant suggestion failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "restaurant suggested", "suggestion_id", suggestion.ID, "event_id", suggestion.EventID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, restaurantResponse{Suggestion: toRestaurantDTO(suggestion)})
}

func (h *SuggestionHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	eventID, err := optionalID("event_id", r.URL.Query().Get("event_id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	list, err := h.suggestions.ListDates(r.Context(), application.ListSuggestionsParams{
		Principal: principalOf(r),
		EventID:   eventID,
	})
	if err != nil {
		logFailure(r.Context(), h.log(r.Context(), "ListDates"), "date list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	response := dateListResponse{
		Event:       toEventDTO(list.Event),
		Suggestions: toDateTallyDTOs(list.Items),
	}
	if list.Leader != nil {
		leader := toDateTallyDTO(*list.Leader)
		response.Leader = &leader
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *SuggestionHandler) SuggestDate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	logger := h.log(r.Context(), "SuggestDate")

	var req dateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode date suggestion", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	eventID, err := req.EventID.ptr("event_id")
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	date := req.SuggestedDate
	if date == "" {
		date = req.Date
	}
	suggestion, err := h.suggestions.SuggestDate(r.Context(), application.SuggestDateParams{
		Principal: principalOf(r),
		EventID:   eventID,
		Input:     application.DateInput{Date: date},
	})
	if err != nil {
		logFailure(r.Context(), logger, "date suggestion failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "date suggested", "suggestion_id", suggestion.ID, "event_id", suggestion.EventID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, dateResponse{Suggestion: toDateDTO(suggestion)})
}

// Vote toggles the caller's vote. A new vote answers 201, a removal 200.
func (h *SuggestionHandler) Vote(kind application.SuggestionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready(w) {
			return
		}

		logger := h.log(r.Context(), "Vote", "kind", kind)

		var req voteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			logger.WarnContext(r.Context(), "failed to decode vote", "error", err, "error_kind", "bad_request")
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		suggestionID, err := req.SuggestionID.required("suggestion_id")
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}

		result, err := h.votes.CastOrToggleVote(r.Context(), application.VoteParams{
			Principal:    principalOf(r),
			Kind:         kind,
			SuggestionID: suggestionID,
			Intent:       application.VoteIntent(strings.ToLower(strings.TrimSpace(req.Action))),
		})
		if err != nil {
			logFailure(r.Context(), logger, "vote failed", err)
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}

		status := http.StatusOK
		message := "vote removed"
		if result.Voted {
			status = http.StatusCreated
			message = "vote recorded"
		}
		h.responder.writeJSON(r.Context(), w, status, voteResponse{Voted: result.Voted, Message: message})
	}
}

// Unvote removes the caller's vote named by the suggestion_id query parameter.
func (h *SuggestionHandler) Unvote(kind application.SuggestionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready(w) {
			return
		}

		suggestionID, err := parseID("suggestion_id", r.URL.Query().Get("suggestion_id"))
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}

		err = h.votes.RemoveVote(r.Context(), application.VoteParams{
			Principal:    principalOf(r),
			Kind:         kind,
			SuggestionID: suggestionID,
		})
		if err != nil {
			logFailure(r.Context(), h.log(r.Context(), "Unvote", "kind", kind), "vote removal failed", err)
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, voteResponse{Voted: false, Message: "vote removed"})
	}
}

type restaurantRequest struct {
	EventID flexibleID `json:"event_id"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Cuisine string     `json:"cuisine"`
	URL     string     `json:"url"`
}

type dateRequest struct {
	EventID       flexibleID `json:"event_id"`
	SuggestedDate string     `json:"suggested_date"`
	Date          string     `json:"date"`
}

type voteRequest struct {
	SuggestionID flexibleID `json:"suggestion_id"`
	Action       string     `json:"action"`
}

type voteResponse struct {
	Voted   bool   `json:"voted"`
	Message string `json:"message"`
}

type restaurantResponse struct {
	Suggestion restaurantDTO `json:"suggestion"`
}

type dateResponse struct {
	Suggestion dateDTO `json:"suggestion"`
}

type restaurantListResponse struct {
	Event       eventDTO        `json:"event"`
	Suggestions []restaurantDTO `json:"suggestions"`
	Leader      *restaurantDTO  `json:"leader"`
}

type dateListResponse struct {
	Event       eventDTO  `json:"event"`
	Suggestions []dateDTO `json:"suggestions"`
	Leader      *dateDTO  `json:"leader"`
}
