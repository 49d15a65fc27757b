package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SuggestionService records and lists restaurant and date candidates for the
// target event.
type SuggestionService struct {
	ballot
	now    func() time.Time
	logger *slog.Logger
}

// NewSuggestionService wires the suggestion ledger.
func NewSuggestionService(events EventRepository, polls PollRepository, suggestions SuggestionRepository, now func() time.Time, logger *slog.Logger) *SuggestionService {
	if now == nil {
		now = time.Now
	}
	return &SuggestionService{
		ballot: ballot{events: events, polls: polls, suggestions: suggestions},
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *SuggestionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SuggestionService", operation, attrs...)
}

// ResolveTargetEvent returns the named event or the event of the open poll.
// It fails with ErrNoUpcomingEvent when neither exists.
func (s *SuggestionService) ResolveTargetEvent(ctx context.Context, explicitEventID *int64) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("SuggestionService is nil")
	}
	if err := s.configured(); err != nil {
		return Event{}, err
	}
	return s.resolveTarget(ctx, explicitEventID)
}

// SuggestRestaurant records a restaurant candidate. Duplicate names are allowed.
func (s *SuggestionService) SuggestRestaurant(ctx context.Context, params SuggestRestaurantParams) (suggestion RestaurantSuggestion, err error) {
	if s == nil {
		err = fmt.Errorf("SuggestionService is nil")
		return
	}
	if err = RequireActive(params.Principal); err != nil {
		return
	}
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SuggestRestaurant", "principal_id", params.Principal.UserID)
	defer func() {
		logOutcome(ctx, logger, err, "restaurant suggestion", "suggestion_id", suggestion.ID, "event_id", suggestion.EventID)
	}()

	input := RestaurantInput{
		Name:    strings.TrimSpace(params.Input.Name),
		Address: strings.TrimSpace(params.Input.Address),
		Cuisine: strings.TrimSpace(params.Input.Cuisine),
		URL:     strings.TrimSpace(params.Input.URL),
	}
	if err = validateInput(input).errOrNil(); err != nil {
		return
	}

	var event Event
	event, err = s.resolveTarget(ctx, params.EventID)
	if err != nil {
		return
	}
	if err = s.ensureWritable(ctx, event); err != nil {
		return
	}

	suggestion, err = s.suggestions.CreateRestaurantSuggestion(ctx, RestaurantSuggestion{
		UserID:    params.Principal.UserID,
		EventID:   event.ID,
		Name:      input.Name,
		Address:   input.Address,
		Cuisine:   input.Cuisine,
		URL:       input.URL,
		CreatedAt: s.now(),
	})
	return
}

// SuggestDate records a date candidate. The same member may not suggest the
// same date twice for one event.
func (s *SuggestionService) SuggestDate(ctx context.Context, params SuggestDateParams) (suggestion DateSuggestion, err error) {
	if s == nil {
		err = fmt.Errorf("SuggestionService is nil")
		return
	}
	if err = RequireActive(params.Principal); err != nil {
		return
	}
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SuggestDate", "principal_id", params.Principal.UserID)
	defer func() {
		logOutcome(ctx, logger, err, "date suggestion", "suggestion_id", suggestion.ID, "event_id", suggestion.EventID)
	}()

	input := DateInput{Date: strings.TrimSpace(params.Input.Date)}
	if err = validateInput(input).errOrNil(); err != nil {
		return
	}
	date, perr := parseDate(input.Date)
	if perr != nil {
		err = NewValidationError("suggested_date", "suggested_date must be a date formatted YYYY-MM-DD")
		return
	}

	var event Event
	event, err = s.resolveTarget(ctx, params.EventID)
	if err != nil {
		return
	}
	if err = s.ensureWritable(ctx, event); err != nil {
		return
	}

	suggestion, err = s.suggestions.CreateDateSuggestion(ctx, DateSuggestion{
		UserID:        params.Principal.UserID,
		EventID:       event.ID,
		SuggestedDate: date,
		CreatedAt:     s.now(),
	})
	return
}

// ListRestaurants returns the ranked restaurant candidates of the target event.
func (s *SuggestionService) ListRestaurants(ctx context.Context, params ListSuggestionsParams) (SuggestionList[RestaurantSuggestion], error) {
	if s == nil {
		return SuggestionList[RestaurantSuggestion]{}, fmt.Errorf("SuggestionService is nil")
	}
	if err := RequireActive(params.Principal); err != nil {
		return SuggestionList[RestaurantSuggestion]{}, err
	}
	if err := s.configured(); err != nil {
		return SuggestionList[RestaurantSuggestion]{}, err
	}

	event, err := s.resolveTarget(ctx, params.EventID)
	if err != nil {
		return SuggestionList[RestaurantSuggestion]{}, err
	}
	items, err := s.restaurants(ctx, event.ID, params.Principal.UserID)
	if err != nil {
		return SuggestionList[RestaurantSuggestion]{}, err
	}
	return SuggestionList[RestaurantSuggestion]{Event: event, Items: items, Leader: Leader(items)}, nil
}

// ListDates returns the ranked date candidates of the target event.
func (s *SuggestionService) ListDates(ctx context.Context, params ListSuggestionsParams) (SuggestionList[DateSuggestion], error) {
	if s == nil {
		return SuggestionList[DateSuggestion]{}, fmt.Errorf("SuggestionService is nil")
	}
	if err := RequireActive(params.Principal); err != nil {
		return SuggestionList[DateSuggestion]{}, err
	}
	if err := s.configured(); err != nil {
		return SuggestionList[DateSuggestion]{}, err
	}

	event, err := s.resolveTarget(ctx, params.EventID)
	if err != nil {
		return SuggestionList[DateSuggestion]{}, err
	}
	items, err := s.dates(ctx, event.ID, params.Principal.UserID)
	if err != nil {
		return SuggestionList[DateSuggestion]{}, err
	}
	return SuggestionList[DateSuggestion]{Event: event, Items: items, Leader: Leader(items)}, nil
}
