package sqlstore

import (
	"context"
	"fmt"

	"github.com/meatupclub/meatup/internal/application"
)

const eventColumns = `id, restaurant_name, COALESCE(restaurant_address, ''), event_date, status, created_at, updated_at`

// EventRepository implements application.EventRepository.
type EventRepository struct {
	store *Store
}

// NewEventRepository creates an event repository on the store.
func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

// CreateEvent inserts an event.
func (r *EventRepository) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	return insertEvent(ctx, r.store, r.store.db, event)
}

func insertEvent(ctx context.Context, store *Store, q querier, event application.Event) (application.Event, error) {
	if event.Status == "" {
		event.Status = application.EventUpcoming
	}
	id, err := store.insert(ctx, q, `
		INSERT INTO events (restaurant_name, restaurant_address, event_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.RestaurantName,
		event.RestaurantAddress,
		formatDate(event.EventDate),
		string(event.Status),
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return application.Event{}, mapError(err)
	}
	event.ID = id
	return event, nil
}

// GetEvent loads an event by id.
func (r *EventRepository) GetEvent(ctx context.Context, id int64) (application.Event, error) {
	if id <= 0 {
		return application.Event{}, application.ErrNotFound
	}
	return scanEvent(r.store.queryRow(ctx, r.store.db, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
}

// UpdateEvent overwrites every mutable event field.
func (r *EventRepository) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	n, err := r.store.execAffecting(ctx, r.store.db, `
		UPDATE events
		SET restaurant_name = ?, restaurant_address = ?, event_date = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		event.RestaurantName,
		event.RestaurantAddress,
		formatDate(event.EventDate),
		string(event.Status),
		formatTime(event.UpdatedAt),
		event.ID,
	)
	if err != nil {
		return application.Event{}, mapError(err)
	}
	if n == 0 {
		return application.Event{}, application.ErrNotFound
	}
	return r.GetEvent(ctx, event.ID)
}

// ListEvents returns events by date descending. An empty status lists all.
func (r *EventRepository) ListEvents(ctx context.Context, status application.EventStatus) ([]application.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY event_date DESC, id DESC`

	rows, err := r.store.query(ctx, r.store.db, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	events := []application.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(row rowScanner) (application.Event, error) {
	var (
		event                application.Event
		eventDate, status    string
		createdAt, updatedAt string
	)
	if err := row.Scan(&event.ID, &event.RestaurantName, &event.RestaurantAddress, &eventDate, &status, &createdAt, &updatedAt); err != nil {
		return application.Event{}, mapError(err)
	}
	event.Status = application.EventStatus(status)

	var err error
	if event.EventDate, err = parseDate("event_date", eventDate); err != nil {
		return application.Event{}, err
	}
	if event.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return application.Event{}, err
	}
	if event.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return application.Event{}, err
	}
	return event, nil
}
