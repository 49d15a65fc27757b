package application

import (
	"context"
	"errors"
	"fmt"
)

// ballot is the read side shared by the suggestion, vote and event services:
// resolving the target event, guarding closed polls and ranking tallies.
type ballot struct {
	events      EventRepository
	polls       PollRepository
	suggestions SuggestionRepository
}

func (b ballot) configured() error {
	if b.events == nil || b.polls == nil || b.suggestions == nil {
		return fmt.Errorf("ballot repositories not configured")
	}
	return nil
}

// resolveTarget returns the explicitly named event, or the event of the single
// open poll. It never creates anything.
func (b ballot) resolveTarget(ctx context.Context, explicit *int64) (Event, error) {
	if explicit != nil {
		if *explicit <= 0 {
			return Event{}, NewValidationError("event_id", "event_id must be a positive integer")
		}
		return b.events.GetEvent(ctx, *explicit)
	}

	poll, err := b.polls.GetOpenPoll(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Event{}, ErrNoUpcomingEvent
		}
		return Event{}, err
	}
	event, err := b.events.GetEvent(ctx, poll.EventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Event{}, ErrNoUpcomingEvent
		}
		return Event{}, err
	}
	return event, nil
}

// pollFor returns the poll attached to the event, or nil when none was opened.
func (b ballot) pollFor(ctx context.Context, eventID int64) (*Poll, error) {
	poll, err := b.polls.GetPollByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &poll, nil
}

// ensureWritable rejects suggestion and vote writes against a closed poll or
// an event that is no longer upcoming.
func (b ballot) ensureWritable(ctx context.Context, event Event) error {
	if event.Status != EventUpcoming {
		return ErrPollClosed
	}
	poll, err := b.pollFor(ctx, event.ID)
	if err != nil {
		return err
	}
	if poll != nil && poll.Status == PollClosed {
		return ErrPollClosed
	}
	return nil
}

func (b ballot) restaurants(ctx context.Context, eventID, voterID int64) ([]Tally[RestaurantSuggestion], error) {
	tallies, err := b.suggestions.ListRestaurantTallies(ctx, eventID, voterID)
	if err != nil {
		return nil, err
	}
	return RankRestaurants(tallies), nil
}

func (b ballot) dates(ctx context.Context, eventID, voterID int64) ([]Tally[DateSuggestion], error) {
	tallies, err := b.suggestions.ListDateTallies(ctx, eventID, voterID)
	if err != nil {
		return nil, err
	}
	return RankDates(tallies), nil
}
