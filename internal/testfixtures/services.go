package testfixtures

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/meatupclub/meatup/internal/application"
)

// DefaultSessionTTL is the session lifetime used by factory-built services.
const DefaultSessionTTL = 24 * time.Hour

// ServiceFactory builds application services over a harness with a shared
// clock and predictable session ids and tokens.
type ServiceFactory struct {
	Clock      *Clock
	SessionIDs *Sequence
	Tokens     *Sequence
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.SessionIDs == nil {
		factory.SessionIDs = NewSequence("session")
	}
	if factory.Tokens == nil {
		factory.Tokens = NewSequence("token")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithTokens overrides the bearer token sequence.
func WithTokens(tokens *Sequence) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Tokens = tokens
	}
}

// Services bundles every application service over one harness.
type Services struct {
	Auth        *application.AuthService
	Members     *application.MemberService
	Suggestions *application.SuggestionService
	Votes       *application.VoteService
	Events      *application.EventService
	RSVPs       *application.RSVPService
}

// NewServices wires every service to the harness repositories. notifier may
// be nil.
func (f *ServiceFactory) NewServices(h *SQLiteHarness, verifier application.IdentityVerifier, notifier application.InviteNotifier) Services {
	now := f.Clock.NowFunc()
	return Services{
		Auth: application.NewAuthService(h.Users, h.Sessions, verifier,
			f.SessionIDs.Func(), f.Tokens.Func(), now, DefaultSessionTTL, nil),
		Members:     application.NewMemberService(h.Users, notifier, now, nil),
		Suggestions: application.NewSuggestionService(h.Events, h.Polls, h.Suggestions, now, nil),
		Votes:       application.NewVoteService(h.Events, h.Polls, h.Suggestions, h.Votes, now, nil),
		Events:      application.NewEventService(h.Events, h.Polls, h.Suggestions, now, nil),
		RSVPs:       application.NewRSVPService(h.Events, h.RSVPs, now, nil),
	}
}

// ErrTokenRejected is returned by StaticVerifier for unknown tokens.
var ErrTokenRejected = errors.New("identity token rejected")

// StaticVerifier resolves pre-registered tokens to identities.
type StaticVerifier struct {
	mu         sync.Mutex
	identities map[string]application.Identity
}

// NewStaticVerifier returns an empty verifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{identities: make(map[string]application.Identity)}
}

// Register makes token verify as identity.
func (v *StaticVerifier) Register(token string, identity application.Identity) {
	v.mu.Lock()
	v.identities[token] = identity
	v.mu.Unlock()
}

// Verify implements application.IdentityVerifier.
func (v *StaticVerifier) Verify(_ context.Context, token string) (application.Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	identity, ok := v.identities[token]
	if !ok {
		return application.Identity{}, ErrTokenRejected
	}
	return identity, nil
}

// RecordingNotifier captures invitations instead of sending them.
type RecordingNotifier struct {
	mu      sync.Mutex
	Invites []application.User
	Err     error
}

// SendInvite implements application.InviteNotifier.
func (n *RecordingNotifier) SendInvite(_ context.Context, invitee application.User, _ application.Principal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Invites = append(n.Invites, invitee)
	return n.Err
}
