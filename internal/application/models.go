package application

import "time"

// DateLayout is the calendar date format used for events and date suggestions.
const DateLayout = "2006-01-02"

// MemberStatus is the membership lifecycle state of a user.
type MemberStatus string

const (
	MemberInvited MemberStatus = "invited"
	MemberActive  MemberStatus = "active"
)

// EventStatus is the lifecycle state of a dinner event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// PollStatus tags the voting round of an event.
type PollStatus string

const (
	PollOpen   PollStatus = "open"
	PollClosed PollStatus = "closed"
)

// RSVPStatus is a member's attendance answer.
type RSVPStatus string

const (
	RSVPYes   RSVPStatus = "yes"
	RSVPNo    RSVPStatus = "no"
	RSVPMaybe RSVPStatus = "maybe"
)

// SuggestionKind distinguishes the two parallel suggestion ledgers.
type SuggestionKind string

const (
	KindRestaurant SuggestionKind = "restaurant"
	KindDate       SuggestionKind = "date"
)

// VoteIntent is the optional action accompanying a vote request.
type VoteIntent string

const (
	IntentToggle VoteIntent = ""
	IntentAdd    VoteIntent = "add"
	IntentRemove VoteIntent = "remove"
)

// Principal represents the authenticated member invoking a service method.
// It is rebuilt from the users table on every request.
type Principal struct {
	UserID  int64
	Email   string
	IsAdmin bool
	Status  MemberStatus
}

// Active reports whether the principal has accepted their invite.
func (p Principal) Active() bool {
	return p.Status == MemberActive
}

// Identity is the verified assertion supplied by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// User is a provisioned club member.
type User struct {
	ID        int64
	Email     string
	Name      string
	Picture   string
	IsAdmin   bool
	Status    MemberStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal returns the access principal for the user.
func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin, Status: u.Status}
}

// Summary returns the display fields shown next to suggestions and RSVPs.
func (u User) Summary() MemberSummary {
	return MemberSummary{ID: u.ID, Name: u.Name, Email: u.Email, Picture: u.Picture}
}

// MemberSummary carries the public display fields of a member.
type MemberSummary struct {
	ID      int64
	Name    string
	Email   string
	Picture string
}

// Session represents an authenticated session issued to a member. Token is
// only populated when the session is first issued.
type Session struct {
	ID        string
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// Event is a scheduled dinner.
type Event struct {
	ID                int64
	RestaurantName    string
	RestaurantAddress string
	EventDate         time.Time
	Status            EventStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Poll is the voting round attached to one event. At most one poll is open.
type Poll struct {
	ID                  int64
	EventID             int64
	Status              PollStatus
	OpenedAt            time.Time
	ClosedAt            *time.Time
	WinningRestaurantID *int64
	WinningDateID       *int64
	PromotedEventID     *int64
}

// PollClosure is the atomic write performed when an admin closes a poll.
// Promote, when set, is inserted as a new event in the same transaction.
type PollClosure struct {
	PollID              int64
	ClosedAt            time.Time
	WinningRestaurantID *int64
	WinningDateID       *int64
	Promote             *Event
}

// RestaurantSuggestion is a candidate restaurant proposed for an event.
type RestaurantSuggestion struct {
	ID        int64
	UserID    int64
	EventID   int64
	Name      string
	Address   string
	Cuisine   string
	URL       string
	CreatedAt time.Time
}

// SuggestionID implements Suggestion.
func (s RestaurantSuggestion) SuggestionID() int64 { return s.ID }

// DateSuggestion is a candidate calendar date proposed for an event.
type DateSuggestion struct {
	ID            int64
	UserID        int64
	EventID       int64
	SuggestedDate time.Time
	CreatedAt     time.Time
}

// SuggestionID implements Suggestion.
func (s DateSuggestion) SuggestionID() int64 { return s.ID }

// Tally is a suggestion annotated with its proposer, vote count and whether
// the requesting member voted for it.
type Tally[T Suggestion] struct {
	Suggestion   T
	Proposer     MemberSummary
	VoteCount    int
	UserHasVoted bool
}

// RSVP is a member's attendance declaration for an event.
type RSVP struct {
	ID        int64
	EventID   int64
	UserID    int64
	Status    RSVPStatus
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RSVPEntry is an RSVP joined with the attendee's display fields.
type RSVPEntry struct {
	RSVP     RSVP
	Attendee MemberSummary
}

// AuthenticateParams captures the identity token presented at sign in.
type AuthenticateParams struct {
	IDToken string
}

// AuthenticateResult captures the outcome of a successful sign in.
type AuthenticateResult struct {
	User    User
	Session Session
}

// MemberInput captures the fields an admin supplies when inviting a member.
type MemberInput struct {
	Email   string `label:"email" validate:"required,email,max=320"`
	Name    string `label:"name" validate:"max=200"`
	IsAdmin bool
}

// MemberPatch captures optional member fields an admin may change. Status is
// absent: a member only becomes active by accepting their own invite.
type MemberPatch struct {
	Email   *string `label:"email" validate:"omitempty,email,max=320"`
	Name    *string `label:"name" validate:"omitempty,max=200"`
	IsAdmin *bool
}

// InviteMemberParams wraps the data required to invite a member.
type InviteMemberParams struct {
	Principal Principal
	Input     MemberInput
}

// UpdateMemberParams wraps the data required to update a member.
type UpdateMemberParams struct {
	Principal Principal
	UserID    int64
	Input     MemberPatch
}

// RestaurantInput captures a restaurant suggestion.
type RestaurantInput struct {
	Name    string `label:"name" validate:"required,max=200"`
	Address string `label:"address" validate:"max=500"`
	Cuisine string `label:"cuisine" validate:"max=100"`
	URL     string `label:"url" validate:"omitempty,http_url,max=2048"`
}

// SuggestRestaurantParams wraps a restaurant suggestion request.
type SuggestRestaurantParams struct {
	Principal Principal
	EventID   *int64
	Input     RestaurantInput
}

// DateInput captures a date suggestion.
type DateInput struct {
	Date string `label:"suggested_date" validate:"required,datetime=2006-01-02"`
}

// SuggestDateParams wraps a date suggestion request.
type SuggestDateParams struct {
	Principal Principal
	EventID   *int64
	Input     DateInput
}

// ListSuggestionsParams scopes a suggestion listing.
type ListSuggestionsParams struct {
	Principal Principal
	EventID   *int64
}

// SuggestionList is a ranked listing for one event.
type SuggestionList[T Suggestion] struct {
	Event Event
	Items []Tally[T]
	// Leader is Items[0], or nil when Items is empty.
	Leader *Tally[T]
}

// VoteParams wraps a vote toggle or removal.
type VoteParams struct {
	Principal    Principal
	Kind         SuggestionKind
	SuggestionID int64
	Intent       VoteIntent
}

// VoteResult reports whether a vote exists after the call.
type VoteResult struct {
	Voted bool
}

// EventInput captures an admin created event.
type EventInput struct {
	RestaurantName    string `label:"restaurant_name" validate:"required,max=200"`
	RestaurantAddress string `label:"restaurant_address" validate:"max=500"`
	EventDate         string `label:"event_date" validate:"required,datetime=2006-01-02"`
}

// EventPatch captures optional event fields an admin may change.
type EventPatch struct {
	RestaurantName    *string `label:"restaurant_name" validate:"omitempty,max=200"`
	RestaurantAddress *string `label:"restaurant_address" validate:"omitempty,max=500"`
	EventDate         *string `label:"event_date" validate:"omitempty,datetime=2006-01-02"`
	Status            *string `label:"status" validate:"omitempty,oneof=upcoming completed cancelled"`
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an event.
type UpdateEventParams struct {
	Principal Principal
	EventID   int64
	Input     EventPatch
}

// ListEventsParams filters the event listing. Status may be empty or "all".
type ListEventsParams struct {
	Principal Principal
	Status    string
}

// OpenPollParams wraps the data required to open voting on an event.
type OpenPollParams struct {
	Principal Principal
	EventID   int64
}

// PollOptionsParams scopes the poll options read.
type PollOptionsParams struct {
	Principal Principal
	EventID   *int64
}

// PollOptions is the candidate set and current leaders for one event, all
// derived from a single ranking.
type PollOptions struct {
	Event            Event
	Poll             *Poll
	Restaurants      []Tally[RestaurantSuggestion]
	Dates            []Tally[DateSuggestion]
	RestaurantLeader *Tally[RestaurantSuggestion]
	DateLeader       *Tally[DateSuggestion]
}

// ClosePollParams wraps the admin's winner selection.
type ClosePollParams struct {
	Principal           Principal
	EventID             *int64
	WinningRestaurantID *int64
	WinningDateID       *int64
	CreateEvent         bool
}

// ClosePollResult reports the closed poll and, when requested, the promoted event.
type ClosePollResult struct {
	Poll  Poll
	Event *Event
}

// SetRSVPParams wraps an RSVP submission.
type SetRSVPParams struct {
	Principal Principal
	EventID   int64
	Status    string
	Comment   string
}

// SetRSVPResult reports the stored RSVP and whether it was newly created.
type SetRSVPResult struct {
	RSVP    RSVP
	Created bool
}
