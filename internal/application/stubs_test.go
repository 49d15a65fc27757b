package application

import (
	"context"
	"sync"
	"time"
)

type userRepositoryStub struct {
	mu      sync.Mutex
	users   map[int64]User
	nextID  int64
	updates int
}

func newUserRepositoryStub(users ...User) *userRepositoryStub {
	stub := &userRepositoryStub{users: make(map[int64]User)}
	for _, user := range users {
		stub.users[user.ID] = user
		if user.ID > stub.nextID {
			stub.nextID = user.ID
		}
	}
	return stub
}

func (s *userRepositoryStub) CreateUser(_ context.Context, user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return User{}, ErrAlreadyExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return user, nil
}

func (s *userRepositoryStub) GetUser(_ context.Context, id int64) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (s *userRepositoryStub) GetUserByEmail(_ context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *userRepositoryStub) UpdateUser(_ context.Context, user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return User{}, ErrNotFound
	}
	s.updates++
	s.users[user.ID] = user
	return user, nil
}

func (s *userRepositoryStub) ActivateUser(_ context.Context, id int64, at time.Time) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if user.Status != MemberInvited {
		return user, ErrAlreadyActive
	}
	user.Status = MemberActive
	user.UpdatedAt = at
	s.users[id] = user
	return user, nil
}

func (s *userRepositoryStub) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *userRepositoryStub) ListUsers(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]User, 0, len(s.users))
	for id := int64(1); id <= s.nextID; id++ {
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

type sessionRepositoryStub struct {
	mu          sync.Mutex
	sessions    map[string]Session
	createErr   error
	deleteErr   error
	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]Session)}
}

func (s *sessionRepositoryStub) CreateSession(_ context.Context, session Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionRepositoryStub) GetSession(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionRepositoryStub) RevokeSession(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	session.RevokedAt = &at
	s.sessions[token] = session
	return nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, reference)
	return s.deleteErr
}

type verifierStub struct {
	identity Identity
	err      error
}

func (v verifierStub) Verify(context.Context, string) (Identity, error) {
	return v.identity, v.err
}

type notifierStub struct {
	sent []User
	err  error
}

func (n *notifierStub) SendInvite(_ context.Context, invitee User, _ Principal) error {
	n.sent = append(n.sent, invitee)
	return n.err
}

func sequence(values ...string) func() string {
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(values) == 0 {
			return "fallback"
		}
		next := values[0]
		values = values[1:]
		return next
	}
}
