package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meatupclub/meatup/internal/application"
)

const rsvpColumns = `r.id, r.event_id, r.user_id, r.status, COALESCE(r.dietary_restrictions, ''), r.created_at, r.updated_at`

// RSVPRepository implements application.RSVPRepository.
type RSVPRepository struct {
	store *Store
}

// NewRSVPRepository creates an RSVP repository on the store.
func NewRSVPRepository(store *Store) *RSVPRepository {
	return &RSVPRepository{store: store}
}

// UpsertRSVP inserts the member's RSVP or updates the existing row in place.
// The insert ignores the (event, member) conflict so concurrent first writes
// collapse into one row.
func (r *RSVPRepository) UpsertRSVP(ctx context.Context, rsvp application.RSVP) (application.RSVP, bool, error) {
	var (
		saved   application.RSVP
		created bool
	)
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		n, err := r.store.execAffecting(ctx, tx, `
			INSERT INTO rsvps (event_id, user_id, status, dietary_restrictions, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (event_id, user_id) DO NOTHING`,
			rsvp.EventID,
			rsvp.UserID,
			string(rsvp.Status),
			rsvp.Comment,
			formatTime(rsvp.CreatedAt),
			formatTime(rsvp.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		created = n > 0

		if !created {
			if _, err := r.store.exec(ctx, tx, `
				UPDATE rsvps SET status = ?, dietary_restrictions = ?, updated_at = ?
				WHERE event_id = ? AND user_id = ?`,
				string(rsvp.Status),
				rsvp.Comment,
				formatTime(rsvp.UpdatedAt),
				rsvp.EventID,
				rsvp.UserID,
			); err != nil {
				return mapError(err)
			}
		}

		saved, err = r.getRSVP(ctx, tx, rsvp.EventID, rsvp.UserID)
		return err
	})
	if err != nil {
		return application.RSVP{}, false, err
	}
	return saved, created, nil
}

// GetRSVP loads one member's RSVP for an event.
func (r *RSVPRepository) GetRSVP(ctx context.Context, eventID, userID int64) (application.RSVP, error) {
	return r.getRSVP(ctx, r.store.db, eventID, userID)
}

func (r *RSVPRepository) getRSVP(ctx context.Context, q querier, eventID, userID int64) (application.RSVP, error) {
	row := r.store.queryRow(ctx, q, `SELECT `+rsvpColumns+` FROM rsvps r WHERE r.event_id = ? AND r.user_id = ?`, eventID, userID)
	return scanRSVP(row)
}

// ListRSVPs returns the event's RSVPs with attendee details in creation order.
func (r *RSVPRepository) ListRSVPs(ctx context.Context, eventID int64) ([]application.RSVPEntry, error) {
	rows, err := r.store.query(ctx, r.store.db, `
		SELECT `+rsvpColumns+`, u.id, COALESCE(u.name, ''), u.email, COALESCE(u.picture, '')
		FROM rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ?
		ORDER BY r.created_at ASC, r.id ASC`, eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	entries := []application.RSVPEntry{}
	for rows.Next() {
		var (
			entry                application.RSVPEntry
			a                    = &entry.Attendee
			status               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(
			&entry.RSVP.ID, &entry.RSVP.EventID, &entry.RSVP.UserID, &status, &entry.RSVP.Comment, &createdAt, &updatedAt,
			&a.ID, &a.Name, &a.Email, &a.Picture,
		); err != nil {
			return nil, mapError(err)
		}
		if entry.RSVP, err = finishRSVP(entry.RSVP, status, createdAt, updatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rsvps: %w", err)
	}
	return entries, nil
}

func scanRSVP(row rowScanner) (application.RSVP, error) {
	var (
		rsvp                         application.RSVP
		status, createdAt, updatedAt string
	)
	if err := row.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &status, &rsvp.Comment, &createdAt, &updatedAt); err != nil {
		return application.RSVP{}, mapError(err)
	}
	return finishRSVP(rsvp, status, createdAt, updatedAt)
}

func finishRSVP(rsvp application.RSVP, status, createdAt, updatedAt string) (application.RSVP, error) {
	rsvp.Status = application.RSVPStatus(status)
	var err error
	if rsvp.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return application.RSVP{}, err
	}
	if rsvp.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return application.RSVP{}, err
	}
	return rsvp, nil
}
