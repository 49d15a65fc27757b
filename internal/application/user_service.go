package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// MemberService lets admins invite, edit, remove and list members.
type MemberService struct {
	users    UserRepository
	notifier InviteNotifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewMemberService wires dependencies for the member service. notifier may be nil.
func NewMemberService(users UserRepository, notifier InviteNotifier, now func() time.Time, logger *slog.Logger) *MemberService {
	if now == nil {
		now = time.Now
	}
	return &MemberService{users: users, notifier: notifier, now: now, logger: defaultLogger(logger)}
}

func (s *MemberService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MemberService", operation, attrs...)
}

// InviteMember provisions a member in the invited state and asks the notifier
// to deliver the invitation. Notification failures are logged only.
func (s *MemberService) InviteMember(ctx context.Context, params InviteMemberParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("MemberService is nil")
		return
	}
	if err = RequireAdmin(params.Principal); err != nil {
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	input := normalizeMemberInput(params.Input)
	logger := s.loggerWith(ctx, "InviteMember", "principal_id", params.Principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "member invite", "user_id", user.ID) }()

	if err = validateInput(input).errOrNil(); err != nil {
		return
	}

	now := s.now()
	user, err = s.users.CreateUser(ctx, User{
		Email:     input.Email,
		Name:      input.Name,
		IsAdmin:   input.IsAdmin,
		Status:    MemberInvited,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return
	}

	if s.notifier != nil {
		if nErr := s.notifier.SendInvite(ctx, user, params.Principal); nErr != nil {
			logger.WarnContext(ctx, "invite notification failed", "user_id", user.ID, "error", nErr)
		}
	}
	return
}

// UpdateMember applies the supplied fields to an existing member.
func (s *MemberService) UpdateMember(ctx context.Context, params UpdateMemberParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("MemberService is nil")
		return
	}
	if err = RequireAdmin(params.Principal); err != nil {
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateMember", "principal_id", params.Principal.UserID, "user_id", params.UserID)
	defer func() { logOutcome(ctx, logger, err, "member update") }()

	if params.UserID <= 0 {
		err = NewValidationError("user_id", "user_id is required")
		return
	}

	patch := MemberPatch{
		Email:   trimPtr(params.Input.Email),
		Name:    trimPtr(params.Input.Name),
		IsAdmin: params.Input.IsAdmin,
	}
	vErr := validateInput(patch)
	if patch.Email != nil && *patch.Email == "" {
		vErr.add("email", "email is required")
	}
	if err = vErr.errOrNil(); err != nil {
		return
	}

	var existing User
	existing, err = s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return
	}

	updated := existing
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.IsAdmin != nil {
		updated.IsAdmin = *patch.IsAdmin
	}
	updated.UpdatedAt = s.now()

	user, err = s.users.UpdateUser(ctx, updated)
	return
}

// RemoveMember deletes a member together with their suggestions, votes,
// RSVPs and sessions. Admins cannot remove themselves.
func (s *MemberService) RemoveMember(ctx context.Context, principal Principal, userID int64) (err error) {
	if s == nil {
		return fmt.Errorf("MemberService is nil")
	}
	if err = RequireAdmin(principal); err != nil {
		return err
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "RemoveMember", "principal_id", principal.UserID, "user_id", userID)
	defer func() { logOutcome(ctx, logger, err, "member removal") }()

	if userID <= 0 {
		return NewValidationError("user_id", "user_id is required")
	}
	if userID == principal.UserID {
		return NewValidationError("user_id", "admins cannot remove themselves")
	}
	return s.users.DeleteUser(ctx, userID)
}

// ListMembers returns every member ordered by creation.
func (s *MemberService) ListMembers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("MemberService is nil")
	}
	if err := RequireAdmin(principal); err != nil {
		return nil, err
	}
	if s.users == nil {
		return nil, nil
	}
	return s.users.ListUsers(ctx)
}

// BootstrapAdmin provisions an active admin with the given email when no
// member uses it yet. It reports whether a member was created.
func (s *MemberService) BootstrapAdmin(ctx context.Context, email string) (user User, created bool, err error) {
	if s == nil {
		err = fmt.Errorf("MemberService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	input := MemberInput{Email: strings.TrimSpace(email), IsAdmin: true}
	if err = validateInput(input).errOrNil(); err != nil {
		return
	}

	user, err = s.users.GetUserByEmail(ctx, input.Email)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return
	}

	logger := s.loggerWith(ctx, "BootstrapAdmin")
	defer func() { logOutcome(ctx, logger, err, "admin bootstrap", "user_id", user.ID) }()

	now := s.now()
	user, err = s.users.CreateUser(ctx, User{
		Email:     input.Email,
		IsAdmin:   true,
		Status:    MemberActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	created = err == nil
	return
}

func normalizeMemberInput(input MemberInput) MemberInput {
	return MemberInput{
		Email:   strings.TrimSpace(input.Email),
		Name:    strings.TrimSpace(input.Name),
		IsAdmin: input.IsAdmin,
	}
}
