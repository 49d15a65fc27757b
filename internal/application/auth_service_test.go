package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var authNow = time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)

func newTestAuthService(users UserRepository, sessions SessionRepository, verifier IdentityVerifier) *AuthService {
	return NewAuthService(users, sessions, verifier, sequence("session-id"), sequence("session-token"),
		func() time.Time { return authNow }, time.Hour, nil)
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("issues a session for a provisioned member", func(t *testing.T) {
		t.Parallel()

		users := newUserRepositoryStub(User{ID: 1, Email: "member@example.com", Name: "Old Name", Status: MemberActive})
		sessions := newSessionRepositoryStub()
		svc := newTestAuthService(users, sessions, verifierStub{identity: Identity{Email: "member@example.com", Name: "New Name"}})

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{IDToken: " id-token "})
		require.NoError(t, err)
		assert.Equal(t, "session-token", result.Session.Token)
		assert.Equal(t, "session-id", result.Session.ID)
		assert.True(t, result.Session.ExpiresAt.Equal(authNow.Add(time.Hour)))
		assert.Equal(t, "New Name", result.User.Name)
		assert.Equal(t, []time.Time{authNow}, sessions.deleteCalls)
	})

	t.Run("keeps stored profile when the provider asserts nothing new", func(t *testing.T) {
		t.Parallel()

		users := newUserRepositoryStub(User{ID: 1, Email: "member@example.com", Name: "Kept", Picture: "p.png", Status: MemberActive})
		svc := newTestAuthService(users, newSessionRepositoryStub(), verifierStub{identity: Identity{Email: "member@example.com", Picture: "p.png"}})

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{IDToken: "token"})
		require.NoError(t, err)
		assert.Equal(t, "Kept", result.User.Name)
		assert.Zero(t, users.updates)
	})

	t.Run("invited members may sign in", func(t *testing.T) {
		t.Parallel()

		users := newUserRepositoryStub(User{ID: 2, Email: "new@example.com", Status: MemberInvited})
		svc := newTestAuthService(users, newSessionRepositoryStub(), verifierStub{identity: Identity{Email: "new@example.com"}})

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{IDToken: "token"})
		require.NoError(t, err)
		assert.Equal(t, MemberInvited, result.User.Status)
	})

	t.Run("rejects unknown identities", func(t *testing.T) {
		t.Parallel()

		svc := newTestAuthService(newUserRepositoryStub(), newSessionRepositoryStub(), verifierStub{identity: Identity{Email: "stranger@example.com"}})
		_, err := svc.Authenticate(context.Background(), AuthenticateParams{IDToken: "token"})
		assert.ErrorIs(t, err, ErrUnknownIdentity)
	})

	t.Run("rejects tokens the verifier refuses", func(t *testing.T) {
		t.Parallel()

		svc := newTestAuthService(newUserRepositoryStub(), newSessionRepositoryStub(), verifierStub{err: errors.New("bad signature")})
		_, err := svc.Authenticate(context.Background(), AuthenticateParams{IDToken: "token"})
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = svc.Authenticate(context.Background(), AuthenticateParams{IDToken: "   "})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("rejects identities without email", func(t *testing.T) {
		t.Parallel()

		svc := newTestAuthService(newUserRepositoryStub(), newSessionRepositoryStub(), verifierStub{identity: Identity{Subject: "sub"}})
		_, err := svc.Authenticate(context.Background(), AuthenticateParams{IDToken: "token"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		sessions := newSessionRepositoryStub()
		sessions.createErr = expected
		users := newUserRepositoryStub(User{ID: 1, Email: "member@example.com", Status: MemberActive})
		svc := newTestAuthService(users, sessions, verifierStub{identity: Identity{Email: "member@example.com"}})

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{IDToken: "token"})
		assert.ErrorIs(t, err, expected)
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	member := User{ID: 1, Email: "member@example.com", Status: MemberActive, IsAdmin: true}
	revokedAt := authNow.Add(-time.Minute)

	sessions := newSessionRepositoryStub()
	sessions.sessions["live"] = Session{ID: "a", UserID: 1, Token: "live", ExpiresAt: authNow.Add(time.Minute)}
	sessions.sessions["expired"] = Session{ID: "b", UserID: 1, Token: "expired", ExpiresAt: authNow}
	sessions.sessions["revoked"] = Session{ID: "c", UserID: 1, Token: "revoked", ExpiresAt: authNow.Add(time.Hour), RevokedAt: &revokedAt}
	sessions.sessions["orphan"] = Session{ID: "d", UserID: 99, Token: "orphan", ExpiresAt: authNow.Add(time.Hour)}

	svc := newTestAuthService(newUserRepositoryStub(member), sessions, nil)
	ctx := context.Background()

	principal, err := svc.ValidateSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, member.Principal(), principal)

	_, err = svc.ValidateSession(ctx, "expired")
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = svc.ValidateSession(ctx, "revoked")
	assert.ErrorIs(t, err, ErrSessionRevoked)
	_, err = svc.ValidateSession(ctx, "orphan")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.ValidateSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.ValidateSession(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	sessions := newSessionRepositoryStub()
	sessions.sessions["live"] = Session{ID: "a", UserID: 1, Token: "live", ExpiresAt: authNow.Add(time.Hour)}
	svc := newTestAuthService(newUserRepositoryStub(User{ID: 1, Status: MemberActive}), sessions, nil)

	require.NoError(t, svc.RevokeSession(context.Background(), "live"))
	_, err := svc.ValidateSession(context.Background(), "live")
	assert.ErrorIs(t, err, ErrSessionRevoked)

	assert.ErrorIs(t, svc.RevokeSession(context.Background(), "missing"), ErrUnauthorized)
}

func TestAuthService_AcceptInvite(t *testing.T) {
	t.Parallel()

	users := newUserRepositoryStub(User{ID: 3, Email: "invitee@example.com", Status: MemberInvited})
	svc := newTestAuthService(users, newSessionRepositoryStub(), nil)
	principal := Principal{UserID: 3, Status: MemberInvited}

	user, err := svc.AcceptInvite(context.Background(), principal)
	require.NoError(t, err)
	assert.Equal(t, MemberActive, user.Status)
	assert.True(t, user.UpdatedAt.Equal(authNow))

	user, err = svc.AcceptInvite(context.Background(), principal)
	assert.ErrorIs(t, err, ErrAlreadyActive)
	assert.Equal(t, MemberActive, user.Status)

	_, err = svc.AcceptInvite(context.Background(), Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
