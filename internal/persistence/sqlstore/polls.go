package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meatupclub/meatup/internal/application"
)

const pollColumns = `id, event_id, status, opened_at, closed_at, winning_restaurant_id, winning_date_id, promoted_event_id`

// PollRepository implements application.PollRepository. The schema allows
// one poll per event and at most one open poll overall.
type PollRepository struct {
	store *Store
}

// NewPollRepository creates a poll repository on the store.
func NewPollRepository(store *Store) *PollRepository {
	return &PollRepository{store: store}
}

// CreatePoll opens a poll.
func (r *PollRepository) CreatePoll(ctx context.Context, poll application.Poll) (application.Poll, error) {
	if poll.Status == "" {
		poll.Status = application.PollOpen
	}
	id, err := r.store.insert(ctx, r.store.db, `
		INSERT INTO polls (event_id, status, opened_at)
		VALUES (?, ?, ?)`,
		poll.EventID,
		string(poll.Status),
		formatTime(poll.OpenedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return application.Poll{}, application.ErrPollAlreadyOpen
		}
		return application.Poll{}, mapError(err)
	}
	poll.ID = id
	return poll, nil
}

// GetOpenPoll returns the single open poll.
func (r *PollRepository) GetOpenPoll(ctx context.Context) (application.Poll, error) {
	return scanPoll(r.store.queryRow(ctx, r.store.db, `SELECT `+pollColumns+` FROM polls WHERE status = 'open'`))
}

// GetPollByEvent returns the poll of an event.
func (r *PollRepository) GetPollByEvent(ctx context.Context, eventID int64) (application.Poll, error) {
	return r.pollByEvent(ctx, r.store.db, eventID)
}

func (r *PollRepository) pollByEvent(ctx context.Context, q querier, eventID int64) (application.Poll, error) {
	return scanPoll(r.store.queryRow(ctx, q, `SELECT `+pollColumns+` FROM polls WHERE event_id = ?`, eventID))
}

// ClosePoll records the winners, inserts the promoted event when asked and
// closes the poll in one transaction. Nothing is written unless the poll
// was still open.
func (r *PollRepository) ClosePoll(ctx context.Context, closure application.PollClosure) (application.Poll, *application.Event, error) {
	var (
		poll     application.Poll
		promoted *application.Event
	)
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		var promotedID sql.NullInt64
		if closure.Promote != nil {
			event, err := insertEvent(ctx, r.store, tx, *closure.Promote)
			if err != nil {
				return err
			}
			promoted = &event
			promotedID = sql.NullInt64{Int64: event.ID, Valid: true}
		}

		n, err := r.store.execAffecting(ctx, tx, `
			UPDATE polls
			SET status = 'closed', closed_at = ?, winning_restaurant_id = ?, winning_date_id = ?, promoted_event_id = ?
			WHERE id = ? AND status = 'open'`,
			formatTime(closure.ClosedAt),
			nullInt64(closure.WinningRestaurantID),
			nullInt64(closure.WinningDateID),
			promotedID,
			closure.PollID,
		)
		if err != nil {
			return mapError(err)
		}
		if n == 0 {
			var exists int
			if err := r.store.queryRow(ctx, tx, `SELECT 1 FROM polls WHERE id = ?`, closure.PollID).Scan(&exists); err != nil {
				return mapError(err)
			}
			return application.ErrPollClosed
		}

		poll, err = scanPoll(r.store.queryRow(ctx, tx, `SELECT `+pollColumns+` FROM polls WHERE id = ?`, closure.PollID))
		return err
	})
	if err != nil {
		return application.Poll{}, nil, err
	}
	return poll, promoted, nil
}

func scanPoll(row rowScanner) (application.Poll, error) {
	var (
		poll                                application.Poll
		status, openedAt                    string
		closedAt                            sql.NullString
		restaurantID, dateID, promotedEvent sql.NullInt64
	)
	if err := row.Scan(&poll.ID, &poll.EventID, &status, &openedAt, &closedAt, &restaurantID, &dateID, &promotedEvent); err != nil {
		return application.Poll{}, mapError(err)
	}
	poll.Status = application.PollStatus(status)
	poll.WinningRestaurantID = int64Ptr(restaurantID)
	poll.WinningDateID = int64Ptr(dateID)
	poll.PromotedEventID = int64Ptr(promotedEvent)

	var err error
	if poll.OpenedAt, err = parseTime("opened_at", openedAt); err != nil {
		return application.Poll{}, err
	}
	if poll.ClosedAt, err = parseNullTime("closed_at", closedAt); err != nil {
		return application.Poll{}, fmt.Errorf("poll %d: %w", poll.ID, err)
	}
	return poll, nil
}
