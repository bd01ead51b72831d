package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role gates access to administrative routes.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a registered account. Albums is the backlink to every album the user owns.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash []byte      `json:"-"`
	Role         Role        `json:"role"`
	Albums       []uuid.UUID `json:"albums"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// UserUpdate carries the optional fields of a user patch.
type UserUpdate struct {
	Email        *string
	PasswordHash []byte
	Role         *Role
}

const userColumns = `id, email, password_hash, role, album_ids, created_at`

// CreateUser registers a new account with an empty album list.
func (s *Store) CreateUser(ctx context.Context, email string, passwordHash []byte, role Role) (User, error) {
	email = normalizeEmail(email)
	if email == "" || len(passwordHash) == 0 {
		return User{}, &ValidationError{Message: "All fields must be filled"}
	}
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return User{}, &ValidationError{Message: fmt.Sprintf("unknown role %q", role)}
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Albums:       []uuid.UUID{},
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, user.ID, user.Email, user.PasswordHash, string(user.Role)).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// UserByEmail looks up an account, including its password hash, by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, normalizeEmail(email))
	return scanUserRow(row)
}

// UserByID looks up an account by id.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUserRow(row)
}

// ListUsers returns every account, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of update and returns the stored account.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (User, error) {
	var (
		sets []string
		args = []any{id}
	)

	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return User{}, &ValidationError{Message: "email must not be empty", EmptyFields: []string{"email"}}
		}
		args = append(args, email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if len(update.PasswordHash) > 0 {
		args = append(args, update.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return User{}, &ValidationError{Message: fmt.Sprintf("unknown role %q", *update.Role)}
		}
		args = append(args, string(*update.Role))
		sets = append(sets, fmt.Sprintf("role = $%d", len(args)))
	}

	if len(sets) == 0 {
		return s.UserByID(ctx, id)
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+userColumns, args...)
	user, err := scanUserRow(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, err
	}
	return user, nil
}

// DeleteUser removes an account. Albums, songs and playlists go with it through
// the schema's cascading foreign keys.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM users
		WHERE id = $1
		RETURNING `+userColumns, id)
	return scanUserRow(row)
}

func scanUserRow(scanner rowScanner) (User, error) {
	var (
		u    User
		role string
	)
	if err := scanner.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, (*idList)(&u.Albums), &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = Role(role)
	return u, nil
}
