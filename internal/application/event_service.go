package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// EventService manages events, opens polls and promotes poll winners into
// confirmed events.
type EventService struct {
	ballot
	now    func() time.Time
	logger *slog.Logger
}

// NewEventService wires the event promoter.
func NewEventService(events EventRepository, polls PollRepository, suggestions SuggestionRepository, now func() time.Time, logger *slog.Logger) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{
		ballot: ballot{events: events, polls: polls, suggestions: suggestions},
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent creates an upcoming event.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if err = RequireAdmin(params.Principal); err != nil {
		return
	}
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "principal_id", params.Principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "event creation", "event_id", event.ID) }()

	input := EventInput{
		RestaurantName:    strings.TrimSpace(params.Input.RestaurantName),
		RestaurantAddress: strings.TrimSpace(params.Input.RestaurantAddress),
		EventDate:         strings.TrimSpace(params.Input.EventDate),
	}
	if err = validateInput(input).errOrNil(); err != nil {
		return
	}
	date, perr := parseDate(input.EventDate)
	if perr != nil {
		err = NewValidationError("event_date", "event_date must be a date formatted YYYY-MM-DD")
		return
	}

	now := s.now()
	event, err = s.events.CreateEvent(ctx, Event{
		RestaurantName:    input.RestaurantName,
		RestaurantAddress: input.RestaurantAddress,
		EventDate:         date,
		Status:            EventUpcoming,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	return
}

// GetEvent returns one event to an active member.
func (s *EventService) GetEvent(ctx context.Context, principal Principal, eventID int64) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if err := RequireActive(principal); err != nil {
		return Event{}, err
	}
	if err := s.configured(); err != nil {
		return Event{}, err
	}
	return s.events.GetEvent(ctx, eventID)
}

// UpdateEvent edits any event field. Status may only move from upcoming to
// completed or cancelled; setting the current status again is allowed.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if err = RequireAdmin(params.Principal); err != nil {
		return
	}
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent", "principal_id", params.Principal.UserID, "event_id", params.EventID)
	defer func() { logOutcome(ctx, logger, err, "event update", "status", event.Status) }()

	patch := EventPatch{
		RestaurantName:    trimPtr(params.Input.RestaurantName),
		RestaurantAddress: trimPtr(params.Input.RestaurantAddress),
		EventDate:         trimPtr(params.Input.EventDate),
		Status:            trimPtr(params.Input.Status),
	}
	vErr := validateInput(patch)
	if patch.RestaurantName != nil && *patch.RestaurantName == "" {
		vErr.add("restaurant_name", "restaurant_name is required")
	}
	if patch.EventDate != nil && *patch.EventDate == "" {
		vErr.add("event_date", "event_date is required")
	}
	if err = vErr.errOrNil(); err != nil {
		return
	}

	var existing Event
	existing, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return
	}

	updated := existing
	if patch.RestaurantName != nil {
		updated.RestaurantName = *patch.RestaurantName
	}
	if patch.RestaurantAddress != nil {
		updated.RestaurantAddress = *patch.RestaurantAddress
	}
	if patch.EventDate != nil {
		date, perr := parseDate(*patch.EventDate)
		if perr != nil {
			err = NewValidationError("event_date", "event_date must be a date formatted YYYY-MM-DD")
			return
		}
		updated.EventDate = date
	}
	if patch.Status != nil {
		next := EventStatus(*patch.Status)
		if !CanTransition(existing.Status, next) {
			err = NewValidationError("status", fmt.Sprintf("status cannot change from %s to %s", existing.Status, next))
			return
		}
		updated.Status = next
	}
	updated.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, updated)
	return
}

// CanTransition reports whether an event may move from one status to another.
func CanTransition(from, to EventStatus) bool {
	if from == to {
		return true
	}
	return from == EventUpcoming && (to == EventCompleted || to == EventCancelled)
}

// ListEvents returns events ordered by date descending, optionally filtered by status.
func (s *EventService) ListEvents(ctx context.Context, params ListEventsParams) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if err := RequireActive(params.Principal); err != nil {
		return nil, err
	}
	if err := s.configured(); err != nil {
		return nil, err
	}

	var status EventStatus
	switch filter := strings.ToLower(strings.TrimSpace(params.Status)); filter {
	case "", "all":
	case string(EventUpcoming), string(EventCompleted), string(EventCancelled):
		status = EventStatus(filter)
	default:
		return nil, NewValidationError("status", "status must be one of: upcoming, completed, cancelled, all")
	}
	return s.events.ListEvents(ctx, status)
}

// OpenPoll starts voting on an upcoming event. Only one poll may be open.
func (s *EventService) OpenPoll(ctx context.Context, params OpenPollParams) (poll Poll, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if err = RequireAdmin(params.Principal); err != nil {
		return
	}
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "OpenPoll", "principal_id", params.Principal.UserID, "event_id", params.EventID)
	defer func() { logOutcome(ctx, logger, err, "poll open", "poll_id", poll.ID) }()

	if params.EventID <= 0 {
		err = NewValidationError("event_id", "event_id is required")
		return
	}

	var event Event
	event, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return
	}
	if event.Status != EventUpcoming {
		err = NewValidationError("event_id", "polls can only be opened on upcoming events")
		return
	}

	var existing *Poll
	existing, err = s.pollFor(ctx, event.ID)
	if err != nil {
		return
	}
	if existing != nil {
		if existing.Status == PollClosed {
			err = ErrPollClosed
		} else {
			err = ErrPollAlreadyOpen
		}
		return
	}

	poll, err = s.polls.CreatePoll(ctx, Poll{
		EventID:  event.ID,
		Status:   PollOpen,
		OpenedAt: s.now(),
	})
	return
}

// PollOptions returns the ranked candidates and leaders of the target event.
// Leaders are taken from the same ranking as the option lists.
func (s *EventService) PollOptions(ctx context.Context, params PollOptionsParams) (PollOptions, error) {
	if s == nil {
		return PollOptions{}, fmt.Errorf("EventService is nil")
	}
	if err := RequireActive(params.Principal); err != nil {
		return PollOptions{}, err
	}
	if err := s.configured(); err != nil {
		return PollOptions{}, err
	}

	event, err := s.resolveTarget(ctx, params.EventID)
	if err != nil {
		return PollOptions{}, err
	}
	return s.optionsFor(ctx, event, params.Principal.UserID)
}

func (s *EventService) optionsFor(ctx context.Context, event Event, voterID int64) (PollOptions, error) {
	poll, err := s.pollFor(ctx, event.ID)
	if err != nil {
		return PollOptions{}, err
	}
	restaurants, err := s.restaurants(ctx, event.ID, voterID)
	if err != nil {
		return PollOptions{}, err
	}
	dates, err := s.dates(ctx, event.ID, voterID)
	if err != nil {
		return PollOptions{}, err
	}
	return PollOptions{
		Event:            event,
		Poll:             poll,
		Restaurants:      restaurants,
		Dates:            dates,
		RestaurantLeader: Leader(restaurants),
		DateLeader:       Leader(dates),
	}, nil
}

// CloseAndPromote closes the target event's poll with the chosen winners and,
// when requested, creates the promoted event in the same transaction. Winners
// must belong to the options offered for that event.
func (s *EventService) CloseAndPromote(ctx context.Context, params ClosePollParams) (result ClosePollResult, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if err = RequireAdmin(params.Principal); err != nil {
		return
	}
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CloseAndPromote", "principal_id", params.Principal.UserID, "create_event", params.CreateEvent)
	defer func() {
		var promotedID int64
		if result.Event != nil {
			promotedID = result.Event.ID
		}
		logOutcome(ctx, logger, err, "poll close", "poll_id", result.Poll.ID, "promoted_event_id", promotedID)
	}()

	var event Event
	event, err = s.resolveTarget(ctx, params.EventID)
	if err != nil {
		return
	}

	var options PollOptions
	options, err = s.optionsFor(ctx, event, params.Principal.UserID)
	if err != nil {
		return
	}
	if options.Poll == nil {
		err = fmt.Errorf("%w: event %d has no poll", ErrNotFound, event.ID)
		return
	}
	if options.Poll.Status == PollClosed {
		err = ErrPollClosed
		return
	}

	vErr := &ValidationError{}
	restaurant, restaurantErr := pickWinner(options.Restaurants, params.WinningRestaurantID, params.CreateEvent, "winning_restaurant_id")
	vErr.merge(restaurantErr)
	date, dateErr := pickWinner(options.Dates, params.WinningDateID, params.CreateEvent, "winning_date_id")
	vErr.merge(dateErr)
	if err = vErr.errOrNil(); err != nil {
		return
	}

	closure := PollClosure{
		PollID:              options.Poll.ID,
		ClosedAt:            s.now(),
		WinningRestaurantID: params.WinningRestaurantID,
		WinningDateID:       params.WinningDateID,
	}
	if params.CreateEvent {
		closure.Promote = &Event{
			RestaurantName:    restaurant.Suggestion.Name,
			RestaurantAddress: restaurant.Suggestion.Address,
			EventDate:         date.Suggestion.SuggestedDate,
			Status:            EventUpcoming,
			CreatedAt:         closure.ClosedAt,
			UpdatedAt:         closure.ClosedAt,
		}
	}

	var poll Poll
	var promoted *Event
	poll, promoted, err = s.polls.ClosePoll(ctx, closure)
	if err != nil {
		return
	}
	result = ClosePollResult{Poll: poll, Event: promoted}
	return
}

// pickWinner checks that id is one of the offered options. A nil id is only
// allowed when no event is being promoted.
func pickWinner[T Suggestion](options []Tally[T], id *int64, required bool, field string) (Tally[T], *ValidationError) {
	if id == nil {
		if required {
			return Tally[T]{}, NewValidationError(field, field+" is required to create an event")
		}
		return Tally[T]{}, nil
	}
	tally, ok := FindTally(options, *id)
	if !ok {
		return Tally[T]{}, NewValidationError(field, field+" is not one of the offered options")
	}
	return tally, nil
}
