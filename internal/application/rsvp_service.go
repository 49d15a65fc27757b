package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const maxRSVPCommentLength = 1000

// RSVPService records attendance intent for events.
type RSVPService struct {
	events EventRepository
	rsvps  RSVPRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewRSVPService wires the RSVP ledger.
func NewRSVPService(events EventRepository, rsvps RSVPRepository, now func() time.Time, logger *slog.Logger) *RSVPService {
	if now == nil {
		now = time.Now
	}
	return &RSVPService{events: events, rsvps: rsvps, now: now, logger: defaultLogger(logger)}
}

func (s *RSVPService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RSVPService", operation, attrs...)
}

func (s *RSVPService) configured() error {
	if s.events == nil || s.rsvps == nil {
		return fmt.Errorf("rsvp repositories not configured")
	}
	return nil
}

// ParseRSVPStatus validates an RSVP status string.
func ParseRSVPStatus(value string) (RSVPStatus, error) {
	switch status := RSVPStatus(strings.ToLower(strings.TrimSpace(value))); status {
	case RSVPYes, RSVPNo, RSVPMaybe:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// SetRSVP creates the caller's RSVP for the event or updates it in place.
func (s *RSVPService) SetRSVP(ctx context.Context, params SetRSVPParams) (result SetRSVPResult, err error) {
	if s == nil {
		err = fmt.Errorf("RSVPService is nil")
		return
	}
	if err = RequireActive(params.Principal); err != nil {
		return
	}
	if err = s.configured(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "SetRSVP", "principal_id", params.Principal.UserID, "event_id", params.EventID)
	defer func() {
		logOutcome(ctx, logger, err, "rsvp", "rsvp_id", result.RSVP.ID, "created", result.Created, "status", result.RSVP.Status)
	}()

	if params.EventID <= 0 {
		err = NewValidationError("event_id", "event_id is required")
		return
	}
	if strings.TrimSpace(params.Status) == "" {
		err = NewValidationError("status", "status is required")
		return
	}
	var status RSVPStatus
	status, err = ParseRSVPStatus(params.Status)
	if err != nil {
		return
	}
	comment := strings.TrimSpace(params.Comment)
	if utf8.RuneCountInString(comment) > maxRSVPCommentLength {
		err = NewValidationError("comment", fmt.Sprintf("comment must be at most %d characters", maxRSVPCommentLength))
		return
	}

	if _, err = s.events.GetEvent(ctx, params.EventID); err != nil {
		return
	}

	now := s.now()
	var rsvp RSVP
	var created bool
	rsvp, created, err = s.rsvps.UpsertRSVP(ctx, RSVP{
		EventID:   params.EventID,
		UserID:    params.Principal.UserID,
		Status:    status,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return
	}
	result = SetRSVPResult{RSVP: rsvp, Created: created}
	return
}

// GetRSVP returns the caller's RSVP for the event, or nil when none exists.
func (s *RSVPService) GetRSVP(ctx context.Context, principal Principal, eventID int64) (*RSVP, error) {
	if s == nil {
		return nil, fmt.Errorf("RSVPService is nil")
	}
	if err := RequireActive(principal); err != nil {
		return nil, err
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	if eventID <= 0 {
		return nil, NewValidationError("event_id", "event_id is required")
	}

	rsvp, err := s.rsvps.GetRSVP(ctx, eventID, principal.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rsvp, nil
}

// ListRSVPs returns every RSVP for the event ordered by creation time.
func (s *RSVPService) ListRSVPs(ctx context.Context, principal Principal, eventID int64) ([]RSVPEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("RSVPService is nil")
	}
	if err := RequireActive(principal); err != nil {
		return nil, err
	}
	if err := s.configured(); err != nil {
		return nil, err
	}
	if eventID <= 0 {
		return nil, NewValidationError("event_id", "event_id is required")
	}
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.rsvps.ListRSVPs(ctx, eventID)
}
