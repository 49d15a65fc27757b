package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/testfixtures"
)

func TestSessionRepositoryLifecycle(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	member := h.SeedMember()
	now := testfixtures.ReferenceTime()

	created, err := h.Sessions.CreateSession(ctx, application.Session{
		UserID:    member.ID,
		Token:     "secret-token",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "id is generated when missing")

	var stored string
	require.NoError(t, h.Store.DB().QueryRow(`SELECT token_hash FROM sessions WHERE id = ?`, created.ID).Scan(&stored))
	assert.NotEqual(t, "secret-token", stored)
	assert.Len(t, stored, 64)

	loaded, err := h.Sessions.GetSession(ctx, "secret-token")
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, member.ID, loaded.UserID)
	assert.Nil(t, loaded.RevokedAt)
	assert.True(t, loaded.ExpiresAt.Equal(now.Add(time.Hour)))

	require.NoError(t, h.Sessions.RevokeSession(ctx, "secret-token", now.Add(time.Minute)))
	require.NoError(t, h.Sessions.RevokeSession(ctx, "secret-token", now.Add(2*time.Minute)))
	loaded, err = h.Sessions.GetSession(ctx, "secret-token")
	require.NoError(t, err)
	require.NotNil(t, loaded.RevokedAt)
	assert.True(t, loaded.RevokedAt.Equal(now.Add(time.Minute)))

	assert.ErrorIs(t, h.Sessions.RevokeSession(ctx, "unknown", now), application.ErrNotFound)
	_, err = h.Sessions.GetSession(ctx, "unknown")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestSessionRepositoryDeleteExpired(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	member := h.SeedMember()
	now := testfixtures.ReferenceTime()

	for token, ttl := range map[string]time.Duration{"old": -time.Minute, "fresh": time.Hour} {
		_, err := h.Sessions.CreateSession(ctx, application.Session{
			UserID: member.ID, Token: token, ExpiresAt: now.Add(ttl), CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	require.NoError(t, h.Sessions.DeleteExpiredSessions(ctx, now))

	_, err := h.Sessions.GetSession(ctx, "old")
	assert.ErrorIs(t, err, application.ErrNotFound)
	_, err = h.Sessions.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}
