package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/meatupclub/meatup/internal/application"
)

// VoteRepository implements application.VoteRepository for both ledgers.
type VoteRepository struct {
	store *Store
}

// NewVoteRepository creates a vote repository on the store.
func NewVoteRepository(store *Store) *VoteRepository {
	return &VoteRepository{store: store}
}

// ToggleVote deletes the member's vote when present and inserts it
// otherwise. The insert ignores a conflicting row, so a concurrent toggle
// that already inserted counts as voted rather than failing.
func (r *VoteRepository) ToggleVote(ctx context.Context, kind application.SuggestionKind, suggestionID, userID int64, at time.Time) (bool, error) {
	l, err := ledgerFor(kind)
	if err != nil {
		return false, err
	}

	var voted bool
	err = r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		n, err := r.store.execAffecting(ctx, tx,
			`DELETE FROM `+l.votes+` WHERE `+l.voteFK+` = ? AND user_id = ?`,
			suggestionID, userID,
		)
		if err != nil {
			return mapError(err)
		}
		if n > 0 {
			voted = false
			return nil
		}

		if _, err := r.store.exec(ctx, tx,
			`INSERT INTO `+l.votes+` (`+l.voteFK+`, user_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT (`+l.voteFK+`, user_id) DO NOTHING`,
			suggestionID, userID, formatTime(at),
		); err != nil {
			return mapError(err)
		}
		voted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return voted, nil
}

// DeleteVote removes the member's vote or fails with ErrVoteNotFound.
func (r *VoteRepository) DeleteVote(ctx context.Context, kind application.SuggestionKind, suggestionID, userID int64) error {
	l, err := ledgerFor(kind)
	if err != nil {
		return err
	}
	n, err := r.store.execAffecting(ctx, r.store.db,
		`DELETE FROM `+l.votes+` WHERE `+l.voteFK+` = ? AND user_id = ?`,
		suggestionID, userID,
	)
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return application.ErrVoteNotFound
	}
	return nil
}
