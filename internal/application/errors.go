package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when no valid session or identity accompanies a request.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the principal lacks the status or role an operation needs.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute such as an email is already taken.
	ErrAlreadyExists = errors.New("application: already exists")

	// ErrUnknownIdentity is returned when a verified identity has no provisioned member.
	ErrUnknownIdentity = errors.New("application: unknown identity")
	// ErrAlreadyActive is returned when an active member accepts their invite again.
	ErrAlreadyActive = errors.New("application: member already active")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token was signed out.
	ErrSessionRevoked = errors.New("application: session revoked")

	// ErrNoUpcomingEvent is returned when no event was named and no poll is open.
	ErrNoUpcomingEvent = errors.New("application: no upcoming event")
	// ErrDuplicateSuggestion is returned when a member suggests the same date twice for an event.
	ErrDuplicateSuggestion = errors.New("application: duplicate suggestion")
	// ErrVoteNotFound is returned when removing a vote that does not exist.
	ErrVoteNotFound = errors.New("application: vote not found")
	// ErrInvalidStatus is returned for RSVP statuses outside yes, no and maybe.
	ErrInvalidStatus = errors.New("application: invalid status")
	// ErrPollClosed is returned when writing to or closing a poll that is already closed.
	ErrPollClosed = errors.New("application: poll closed")
	// ErrPollAlreadyOpen is returned when opening a poll while another one is open.
	ErrPollAlreadyOpen = errors.New("application: poll already open")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// NewValidationError returns a ValidationError holding a single field message.
func NewValidationError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

// add records a field level validation error. The first message per field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// errOrNil keeps an empty *ValidationError from becoming a non-nil error interface.
func (v *ValidationError) errOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
