package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/meatupclub/meatup/internal/application"
)

var (
	memberCounter uint64
	eventCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Member fixtures -----------------------------

// MemberOption configures a generated member.
type MemberOption func(*application.User)

// NewMember returns a deterministic active, non-admin member without an id.
func NewMember(opts ...MemberOption) application.User {
	idx := atomic.AddUint64(&memberCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := application.User{
		Email:     fmt.Sprintf("member%03d@example.com", idx),
		Name:      fmt.Sprintf("Member %03d", idx),
		Status:    application.MemberActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithEmail overrides the member email.
func WithEmail(email string) MemberOption {
	return func(u *application.User) { u.Email = email }
}

// WithName overrides the member display name.
func WithName(name string) MemberOption {
	return func(u *application.User) { u.Name = name }
}

// AsAdmin marks the member as an administrator.
func AsAdmin() MemberOption {
	return func(u *application.User) { u.IsAdmin = true }
}

// AsInvited leaves the member in the invited state.
func AsInvited() MemberOption {
	return func(u *application.User) { u.Status = application.MemberInvited }
}

// ----------------------------- Event fixtures ------------------------------

// EventOption configures a generated event.
type EventOption func(*application.Event)

// NewEvent returns a deterministic upcoming event without an id.
func NewEvent(opts ...EventOption) application.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	event := application.Event{
		RestaurantName:    fmt.Sprintf("Steakhouse %03d", idx),
		RestaurantAddress: fmt.Sprintf("%d Main Street", idx),
		EventDate:         Date(2024, time.February, int(idx%28)+1),
		Status:            application.EventUpcoming,
		CreatedAt:         referenceTime,
		UpdatedAt:         referenceTime,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventDate overrides the event date.
func WithEventDate(date time.Time) EventOption {
	return func(e *application.Event) { e.EventDate = date }
}

// WithEventStatus overrides the event status.
func WithEventStatus(status application.EventStatus) EventOption {
	return func(e *application.Event) { e.Status = status }
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}
