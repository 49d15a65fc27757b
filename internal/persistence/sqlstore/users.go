package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/meatupclub/meatup/internal/application"
)

const userColumns = `id, email, COALESCE(name, ''), COALESCE(picture, ''), is_admin, status, created_at, updated_at`

// UserRepository implements application.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository on the store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// CreateUser inserts a member. A taken email yields ErrAlreadyExists.
func (r *UserRepository) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	if user.Status == "" {
		user.Status = application.MemberInvited
	}
	id, err := r.store.insert(ctx, r.store.db, `
		INSERT INTO users (email, name, picture, is_admin, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.Name,
		user.Picture,
		user.IsAdmin,
		string(user.Status),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return application.User{}, mapError(err)
	}
	user.ID = id
	return user, nil
}

// GetUser loads a member by id.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (application.User, error) {
	return r.getUser(ctx, r.store.db, id)
}

func (r *UserRepository) getUser(ctx context.Context, q querier, id int64) (application.User, error) {
	if id <= 0 {
		return application.User{}, application.ErrNotFound
	}
	row := r.store.queryRow(ctx, q, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail loads a member by exact email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	if email == "" {
		return application.User{}, application.ErrNotFound
	}
	row := r.store.queryRow(ctx, r.store.db, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UpdateUser overwrites the mutable member fields.
func (r *UserRepository) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	n, err := r.store.execAffecting(ctx, r.store.db, `
		UPDATE users
		SET email = ?, name = ?, picture = ?, is_admin = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		user.Email,
		user.Name,
		user.Picture,
		user.IsAdmin,
		string(user.Status),
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return application.User{}, mapError(err)
	}
	if n == 0 {
		return application.User{}, application.ErrNotFound
	}
	return r.GetUser(ctx, user.ID)
}

// ActivateUser moves an invited member to active. Only the first call
// writes; later calls return ErrAlreadyActive.
func (r *UserRepository) ActivateUser(ctx context.Context, id int64, at time.Time) (application.User, error) {
	var user application.User
	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		n, err := r.store.execAffecting(ctx, tx,
			`UPDATE users SET status = 'active', updated_at = ? WHERE id = ? AND status = 'invited'`,
			formatTime(at), id,
		)
		if err != nil {
			return mapError(err)
		}
		user, err = r.getUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return application.ErrAlreadyActive
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, application.ErrAlreadyActive) {
			return user, err
		}
		return application.User{}, err
	}
	return user, nil
}

// DeleteUser removes a member. Their sessions, suggestions, votes and RSVPs
// go with them through ON DELETE CASCADE.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	n, err := r.store.execAffecting(ctx, r.store.db, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return application.ErrNotFound
	}
	return nil
}

// ListUsers returns every member in creation order.
func (r *UserRepository) ListUsers(ctx context.Context) ([]application.User, error) {
	rows, err := r.store.query(ctx, r.store.db, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []application.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (application.User, error) {
	var (
		user               application.User
		status             string
		createdAt, updated string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Picture, &user.IsAdmin, &status, &createdAt, &updated); err != nil {
		return application.User{}, mapError(err)
	}
	user.Status = application.MemberStatus(status)

	var err error
	if user.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return application.User{}, err
	}
	if user.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return application.User{}, err
	}
	return user, nil
}
