package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AuthService is the access gate: it signs members in from identity provider
// tokens, validates sessions and handles invite acceptance.
type AuthService struct {
	users          UserRepository
	sessions       SessionRepository
	verifier       IdentityVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users UserRepository, sessions SessionRepository, verifier IdentityVerifier, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		verifier:       verifier,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate verifies the identity token, maps it to a provisioned member and
// issues a session. Unknown emails fail with ErrUnknownIdentity.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.sessions == nil || s.verifier == nil {
		err = fmt.Errorf("auth dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate")
	defer func() {
		logOutcome(ctx, logger, err, "authentication", "user_id", result.User.ID, "session_id", result.Session.ID)
	}()

	token := strings.TrimSpace(params.IDToken)
	if token == "" {
		err = ErrUnauthorized
		return
	}

	var identity Identity
	identity, err = s.verifier.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrUnauthorized) {
			err = fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return
	}

	email := strings.TrimSpace(identity.Email)
	if email == "" {
		err = fmt.Errorf("%w: identity carries no email", ErrUnauthorized)
		return
	}

	var user User
	user, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnknownIdentity
		}
		return
	}

	now := s.now()
	if refreshed, changed := refreshProfile(user, identity); changed {
		refreshed.UpdatedAt = now
		user, err = s.users.UpdateUser(ctx, refreshed)
		if err != nil {
			return
		}
	}

	session := Session{
		ID:        s.idGenerator(),
		UserID:    user.ID,
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		err = fmt.Errorf("session token generator returned an empty token")
		return
	}

	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}
	var persisted Session
	persisted, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		return
	}
	persisted.Token = session.Token

	result = AuthenticateResult{User: user, Session: persisted}
	return
}

// refreshProfile applies last-login-wins for the display fields the provider
// asserted. Empty assertions leave the stored value alone.
func refreshProfile(user User, identity Identity) (User, bool) {
	changed := false
	if name := strings.TrimSpace(identity.Name); name != "" && name != user.Name {
		user.Name = name
		changed = true
	}
	if picture := strings.TrimSpace(identity.Picture); picture != "" && picture != user.Picture {
		user.Picture = picture
		changed = true
	}
	return user, changed
}

// ValidateSession resolves a session token into a principal reloaded from the
// member record.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.sessions == nil || s.users == nil {
		err = fmt.Errorf("auth dependencies not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "session validated", "principal_id", principal.UserID)
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	var user User
	user, err = s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	principal = user.Principal()
	return
}

// RevokeSession signs the session out.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "RevokeSession")
	now := s.now()

	if err := s.sessions.RevokeSession(ctx, trimmed, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		logger.WarnContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session revoked")
	return nil
}

// AcceptInvite moves the caller from invited to active. A second call returns
// ErrAlreadyActive without writing.
func (s *AuthService) AcceptInvite(ctx context.Context, principal Principal) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AcceptInvite", "principal_id", principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "invite acceptance") }()

	if principal.UserID <= 0 {
		err = ErrUnauthorized
		return
	}

	user, err = s.users.ActivateUser(ctx, principal.UserID, s.now())
	return
}

// Me returns the caller's member record regardless of status.
func (s *AuthService) Me(ctx context.Context, principal Principal) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("AuthService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	if principal.UserID <= 0 {
		return User{}, ErrUnauthorized
	}
	return s.users.GetUser(ctx, principal.UserID)
}
