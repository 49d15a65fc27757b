package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// VoteService toggles member votes and reports the current leaders.
type VoteService struct {
	ballot
	votes  VoteRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewVoteService wires the vote tally.
func NewVoteService(events EventRepository, polls PollRepository, suggestions SuggestionRepository, votes VoteRepository, now func() time.Time, logger *slog.Logger) *VoteService {
	if now == nil {
		now = time.Now
	}
	return &VoteService{
		ballot: ballot{events: events, polls: polls, suggestions: suggestions},
		votes:  votes,
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *VoteService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "VoteService", operation, attrs...)
}

// CastOrToggleVote removes the caller's vote when one exists, whatever the
// intent, and otherwise inserts one. An explicit remove intent without a vote
// fails with ErrVoteNotFound.
func (s *VoteService) CastOrToggleVote(ctx context.Context, params VoteParams) (result VoteResult, err error) {
	if s == nil {
		err = fmt.Errorf("VoteService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CastOrToggleVote",
		"principal_id", params.Principal.UserID,
		"kind", params.Kind,
		"suggestion_id", params.SuggestionID,
		"intent", params.Intent,
	)
	defer func() { logOutcome(ctx, logger, err, "vote", "voted", result.Voted) }()

	if err = s.prepare(ctx, params); err != nil {
		return
	}

	if params.Intent == IntentRemove {
		err = s.votes.DeleteVote(ctx, params.Kind, params.SuggestionID, params.Principal.UserID)
		return
	}

	result.Voted, err = s.votes.ToggleVote(ctx, params.Kind, params.SuggestionID, params.Principal.UserID, s.now())
	return
}

// RemoveVote deletes the caller's vote, failing with ErrVoteNotFound when none exists.
func (s *VoteService) RemoveVote(ctx context.Context, params VoteParams) (err error) {
	if s == nil {
		return fmt.Errorf("VoteService is nil")
	}

	logger := s.loggerWith(ctx, "RemoveVote",
		"principal_id", params.Principal.UserID,
		"kind", params.Kind,
		"suggestion_id", params.SuggestionID,
	)
	defer func() { logOutcome(ctx, logger, err, "vote removal") }()

	params.Intent = IntentRemove
	if err = s.prepare(ctx, params); err != nil {
		return err
	}
	return s.votes.DeleteVote(ctx, params.Kind, params.SuggestionID, params.Principal.UserID)
}

// prepare runs the checks shared by every vote write: active caller, known
// kind and intent, existing suggestion and a poll that is still open.
func (s *VoteService) prepare(ctx context.Context, params VoteParams) error {
	if err := RequireActive(params.Principal); err != nil {
		return err
	}
	if err := s.configured(); err != nil {
		return err
	}
	if s.votes == nil {
		return fmt.Errorf("vote repository not configured")
	}

	vErr := &ValidationError{}
	switch params.Kind {
	case KindRestaurant, KindDate:
	default:
		vErr.add("kind", "kind must be one of: restaurant, date")
	}
	switch params.Intent {
	case IntentToggle, IntentAdd, IntentRemove:
	default:
		vErr.add("action", "action must be one of: add, remove")
	}
	if params.SuggestionID <= 0 {
		vErr.add("suggestion_id", "suggestion_id is required")
	}
	if err := vErr.errOrNil(); err != nil {
		return err
	}

	eventID, err := s.suggestions.SuggestionEventID(ctx, params.Kind, params.SuggestionID)
	if err != nil {
		return err
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	return s.ensureWritable(ctx, event)
}
