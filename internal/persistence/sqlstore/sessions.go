package sqlstore

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/meatupclub/meatup/internal/application"
)

// SessionRepository implements application.SessionRepository. Only a
// BLAKE2b-256 digest of each token is stored.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository creates a session repository on the store.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func hashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateSession stores a session. A missing id is generated.
func (r *SessionRepository) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if strings.TrimSpace(session.Token) == "" || session.UserID <= 0 {
		return application.Session{}, application.NewValidationError("token", "session token and user are required")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	_, err := r.store.exec(ctx, r.store.db, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, revoked_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		hashToken(session.Token),
		formatTime(session.ExpiresAt),
		formatNullTime(session.RevokedAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return application.Session{}, mapError(err)
	}
	return session, nil
}

// GetSession loads the session issued for token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (application.Session, error) {
	if token == "" {
		return application.Session{}, application.ErrNotFound
	}

	var (
		session                       application.Session
		expiresAt, createdAt, updated string
		revokedAt                     sql.NullString
	)
	err := r.store.queryRow(ctx, r.store.db, `
		SELECT id, user_id, expires_at, revoked_at, created_at, updated_at
		FROM sessions
		WHERE token_hash = ?`, hashToken(token),
	).Scan(&session.ID, &session.UserID, &expiresAt, &revokedAt, &createdAt, &updated)
	if err != nil {
		return application.Session{}, mapError(err)
	}

	session.Token = token
	if session.ExpiresAt, err = parseTime("expires_at", expiresAt); err != nil {
		return application.Session{}, err
	}
	if session.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return application.Session{}, err
	}
	if session.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return application.Session{}, err
	}
	if session.RevokedAt, err = parseNullTime("revoked_at", revokedAt); err != nil {
		return application.Session{}, err
	}
	return session, nil
}

// RevokeSession marks the session revoked. Revoking twice is a no-op.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	hash := hashToken(token)
	n, err := r.store.execAffecting(ctx, r.store.db,
		`UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE token_hash = ? AND revoked_at IS NULL`,
		formatTime(revokedAt), formatTime(revokedAt), hash,
	)
	if err != nil {
		return mapError(err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	if err := r.store.queryRow(ctx, r.store.db, `SELECT 1 FROM sessions WHERE token_hash = ?`, hash).Scan(&exists); err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired at or before reference.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if _, err := r.store.exec(ctx, r.store.db, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference)); err != nil {
		return mapError(err)
	}
	return nil
}
