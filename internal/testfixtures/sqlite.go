package testfixtures

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/persistence/sqlstore"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database.
type SQLiteHarness struct {
	Store       *sqlstore.Store
	Users       *sqlstore.UserRepository
	Sessions    *sqlstore.SessionRepository
	Events      *sqlstore.EventRepository
	Polls       *sqlstore.PollRepository
	Suggestions *sqlstore.SuggestionRepository
	Votes       *sqlstore.VoteRepository
	RSVPs       *sqlstore.RSVPRepository

	tb      testing.TB
	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a temporary database file and migrates it. The
// harness registers its own cleanup with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dsn := "file:" + filepath.Join(tb.TempDir(), "meatup.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn, nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store:       store,
		Users:       sqlstore.NewUserRepository(store),
		Sessions:    sqlstore.NewSessionRepository(store),
		Events:      sqlstore.NewEventRepository(store),
		Polls:       sqlstore.NewPollRepository(store),
		Suggestions: sqlstore.NewSuggestionRepository(store),
		Votes:       sqlstore.NewVoteRepository(store),
		RSVPs:       sqlstore.NewRSVPRepository(store),
		tb:          tb,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedMember inserts a member built from opts.
func (h *SQLiteHarness) SeedMember(opts ...MemberOption) application.User {
	h.tb.Helper()
	user, err := h.Users.CreateUser(context.Background(), NewMember(opts...))
	if err != nil {
		h.tb.Fatalf("seed member: %v", err)
	}
	return user
}

// SeedEvent inserts an event built from opts.
func (h *SQLiteHarness) SeedEvent(opts ...EventOption) application.Event {
	h.tb.Helper()
	event, err := h.Events.CreateEvent(context.Background(), NewEvent(opts...))
	if err != nil {
		h.tb.Fatalf("seed event: %v", err)
	}
	return event
}

// SeedOpenPoll inserts an upcoming event with an open poll.
func (h *SQLiteHarness) SeedOpenPoll(opts ...EventOption) (application.Event, application.Poll) {
	h.tb.Helper()
	event := h.SeedEvent(opts...)
	poll, err := h.Polls.CreatePoll(context.Background(), application.Poll{
		EventID:  event.ID,
		Status:   application.PollOpen,
		OpenedAt: referenceTime,
	})
	if err != nil {
		h.tb.Fatalf("seed poll: %v", err)
	}
	return event, poll
}

// SeedRestaurant inserts a restaurant suggestion by member for event.
func (h *SQLiteHarness) SeedRestaurant(member application.User, event application.Event, name string) application.RestaurantSuggestion {
	h.tb.Helper()
	suggestion, err := h.Suggestions.CreateRestaurantSuggestion(context.Background(), application.RestaurantSuggestion{
		UserID:    member.ID,
		EventID:   event.ID,
		Name:      name,
		CreatedAt: referenceTime,
	})
	if err != nil {
		h.tb.Fatalf("seed restaurant: %v", err)
	}
	return suggestion
}

// SeedDate inserts a date suggestion by member for event.
func (h *SQLiteHarness) SeedDate(member application.User, event application.Event, date string) application.DateSuggestion {
	h.tb.Helper()
	parsed, err := time.ParseInLocation(application.DateLayout, date, time.UTC)
	if err != nil {
		h.tb.Fatalf("seed date: %v", err)
	}
	suggestion, err := h.Suggestions.CreateDateSuggestion(context.Background(), application.DateSuggestion{
		UserID:        member.ID,
		EventID:       event.ID,
		SuggestedDate: parsed,
		CreatedAt:     referenceTime,
	})
	if err != nil {
		h.tb.Fatalf("seed date: %v", err)
	}
	return suggestion
}
