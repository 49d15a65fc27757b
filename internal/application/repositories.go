package application

import (
	"context"
	"time"
)

// UserRepository persists members. CreateUser and UpdateUser return
// ErrAlreadyExists when the email is taken.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	// ActivateUser flips invited to active in one conditional write. It
	// returns ErrAlreadyActive when the row exists but was not invited.
	ActivateUser(ctx context.Context, id int64, at time.Time) (User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]User, error)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// EventRepository persists dinner events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	// ListEvents returns events ordered by date descending. An empty status
	// returns every event.
	ListEvents(ctx context.Context, status EventStatus) ([]Event, error)
}

// PollRepository persists voting rounds.
type PollRepository interface {
	// CreatePoll returns ErrPollAlreadyOpen when another poll is open.
	CreatePoll(ctx context.Context, poll Poll) (Poll, error)
	GetOpenPoll(ctx context.Context) (Poll, error)
	GetPollByEvent(ctx context.Context, eventID int64) (Poll, error)
	// ClosePoll records winners and inserts the promoted event atomically. It
	// returns ErrPollClosed when the poll was no longer open.
	ClosePoll(ctx context.Context, closure PollClosure) (Poll, *Event, error)
}

// SuggestionRepository persists both suggestion ledgers and reads their
// unranked tallies.
type SuggestionRepository interface {
	CreateRestaurantSuggestion(ctx context.Context, suggestion RestaurantSuggestion) (RestaurantSuggestion, error)
	// CreateDateSuggestion returns ErrDuplicateSuggestion for a repeated
	// (user, event, date) triple.
	CreateDateSuggestion(ctx context.Context, suggestion DateSuggestion) (DateSuggestion, error)
	ListRestaurantTallies(ctx context.Context, eventID, voterID int64) ([]Tally[RestaurantSuggestion], error)
	ListDateTallies(ctx context.Context, eventID, voterID int64) ([]Tally[DateSuggestion], error)
	SuggestionEventID(ctx context.Context, kind SuggestionKind, suggestionID int64) (int64, error)
}

// VoteRepository persists votes with one row per (suggestion, voter).
type VoteRepository interface {
	// ToggleVote removes an existing vote or inserts a new one and reports
	// whether a vote exists afterwards.
	ToggleVote(ctx context.Context, kind SuggestionKind, suggestionID, userID int64, at time.Time) (bool, error)
	// DeleteVote returns ErrVoteNotFound when no vote existed.
	DeleteVote(ctx context.Context, kind SuggestionKind, suggestionID, userID int64) error
}

// RSVPRepository persists attendance with one row per (event, member).
type RSVPRepository interface {
	// UpsertRSVP inserts or updates in place and reports whether a row was created.
	UpsertRSVP(ctx context.Context, rsvp RSVP) (RSVP, bool, error)
	GetRSVP(ctx context.Context, eventID, userID int64) (RSVP, error)
	ListRSVPs(ctx context.Context, eventID int64) ([]RSVPEntry, error)
}

// IdentityVerifier turns an identity provider token into a verified Identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// InviteNotifier delivers invitations to newly provisioned members.
type InviteNotifier interface {
	SendInvite(ctx context.Context, invitee User, invitedBy Principal) error
}
