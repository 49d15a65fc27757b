package sqlstore

import (
	"context"
	"fmt"

	"github.com/meatupclub/meatup/internal/application"
)

// ledger names the tables behind one suggestion kind.
type ledger struct {
	suggestions string
	votes       string
	voteFK      string
}

var (
	restaurantLedger = ledger{suggestions: "restaurant_suggestions", votes: "restaurant_votes", voteFK: "suggestion_id"}
	dateLedger       = ledger{suggestions: "date_suggestions", votes: "date_votes", voteFK: "date_suggestion_id"}
)

func ledgerFor(kind application.SuggestionKind) (ledger, error) {
	switch kind {
	case application.KindRestaurant:
		return restaurantLedger, nil
	case application.KindDate:
		return dateLedger, nil
	default:
		return ledger{}, application.NewValidationError("kind", "kind must be one of: restaurant, date")
	}
}

// tallyColumns selects the proposer, the vote count and whether the voter
// (first placeholder) has voted, for suggestion alias s.
func (l ledger) tallyColumns() string {
	return `u.id, COALESCE(u.name, ''), u.email, COALESCE(u.picture, ''),
		(SELECT COUNT(*) FROM ` + l.votes + ` v WHERE v.` + l.voteFK + ` = s.id),
		EXISTS (SELECT 1 FROM ` + l.votes + ` v WHERE v.` + l.voteFK + ` = s.id AND v.user_id = ?)`
}

// SuggestionRepository implements application.SuggestionRepository.
type SuggestionRepository struct {
	store *Store
}

// NewSuggestionRepository creates a suggestion repository on the store.
func NewSuggestionRepository(store *Store) *SuggestionRepository {
	return &SuggestionRepository{store: store}
}

// CreateRestaurantSuggestion inserts a restaurant candidate.
func (r *SuggestionRepository) CreateRestaurantSuggestion(ctx context.Context, suggestion application.RestaurantSuggestion) (application.RestaurantSuggestion, error) {
	id, err := r.store.insert(ctx, r.store.db, `
		INSERT INTO restaurant_suggestions (user_id, event_id, name, address, cuisine, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		suggestion.UserID,
		suggestion.EventID,
		suggestion.Name,
		suggestion.Address,
		suggestion.Cuisine,
		suggestion.URL,
		formatTime(suggestion.CreatedAt),
	)
	if err != nil {
		return application.RestaurantSuggestion{}, mapError(err)
	}
	suggestion.ID = id
	return suggestion, nil
}

// CreateDateSuggestion inserts a date candidate. The (user, event, date)
// unique constraint reports repeats as ErrDuplicateSuggestion.
func (r *SuggestionRepository) CreateDateSuggestion(ctx context.Context, suggestion application.DateSuggestion) (application.DateSuggestion, error) {
	id, err := r.store.insert(ctx, r.store.db, `
		INSERT INTO date_suggestions (user_id, event_id, suggested_date, created_at)
		VALUES (?, ?, ?, ?)`,
		suggestion.UserID,
		suggestion.EventID,
		formatDate(suggestion.SuggestedDate),
		formatTime(suggestion.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return application.DateSuggestion{}, application.ErrDuplicateSuggestion
		}
		return application.DateSuggestion{}, mapError(err)
	}
	suggestion.ID = id
	return suggestion, nil
}

// ListRestaurantTallies returns the event's restaurant candidates with vote
// counts, unranked.
func (r *SuggestionRepository) ListRestaurantTallies(ctx context.Context, eventID, voterID int64) ([]application.Tally[application.RestaurantSuggestion], error) {
	rows, err := r.store.query(ctx, r.store.db, `
		SELECT s.id, s.user_id, s.event_id, s.name, COALESCE(s.address, ''), COALESCE(s.cuisine, ''), COALESCE(s.url, ''), s.created_at,
			`+restaurantLedger.tallyColumns()+`
		FROM restaurant_suggestions s
		JOIN users u ON u.id = s.user_id
		WHERE s.event_id = ?
		ORDER BY s.id ASC`,
		voterID, eventID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tallies := []application.Tally[application.RestaurantSuggestion]{}
	for rows.Next() {
		var (
			tally     application.Tally[application.RestaurantSuggestion]
			s         = &tally.Suggestion
			p         = &tally.Proposer
			createdAt string
		)
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.EventID, &s.Name, &s.Address, &s.Cuisine, &s.URL, &createdAt,
			&p.ID, &p.Name, &p.Email, &p.Picture,
			&tally.VoteCount, &tally.UserHasVoted,
		); err != nil {
			return nil, mapError(err)
		}
		if s.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		tallies = append(tallies, tally)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant suggestions: %w", err)
	}
	return tallies, nil
}

// ListDateTallies returns the event's date candidates with vote counts,
// unranked.
func (r *SuggestionRepository) ListDateTallies(ctx context.Context, eventID, voterID int64) ([]application.Tally[application.DateSuggestion], error) {
	rows, err := r.store.query(ctx, r.store.db, `
		SELECT s.id, s.user_id, s.event_id, s.suggested_date, s.created_at,
			`+dateLedger.tallyColumns()+`
		FROM date_suggestions s
		JOIN users u ON u.id = s.user_id
		WHERE s.event_id = ?
		ORDER BY s.id ASC`,
		voterID, eventID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tallies := []application.Tally[application.DateSuggestion]{}
	for rows.Next() {
		var (
			tally                application.Tally[application.DateSuggestion]
			s                    = &tally.Suggestion
			p                    = &tally.Proposer
			suggested, createdAt string
		)
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.EventID, &suggested, &createdAt,
			&p.ID, &p.Name, &p.Email, &p.Picture,
			&tally.VoteCount, &tally.UserHasVoted,
		); err != nil {
			return nil, mapError(err)
		}
		if s.SuggestedDate, err = parseDate("suggested_date", suggested); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		tallies = append(tallies, tally)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate date suggestions: %w", err)
	}
	return tallies, nil
}

// SuggestionEventID returns the event a suggestion belongs to.
func (r *SuggestionRepository) SuggestionEventID(ctx context.Context, kind application.SuggestionKind, suggestionID int64) (int64, error) {
	l, err := ledgerFor(kind)
	if err != nil {
		return 0, err
	}
	var eventID int64
	if err := r.store.queryRow(ctx, r.store.db, `SELECT event_id FROM `+l.suggestions+` WHERE id = ?`, suggestionID).Scan(&eventID); err != nil {
		return 0, mapError(err)
	}
	return eventID, nil
}
