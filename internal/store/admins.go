package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Admin is an operator account kept apart from regular users.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateAdmin registers a new admin account.
func (s *Store) CreateAdmin(ctx context.Context, email string, passwordHash []byte) (Admin, error) {
	email = normalizeEmail(email)
	if email == "" || len(passwordHash) == 0 {
		return Admin{}, &ValidationError{Message: "All fields must be filled"}
	}

	admin := Admin{ID: uuid.New(), Email: email, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admins (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, admin.ID, admin.Email, admin.PasswordHash).Scan(&admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Admin{}, ErrUserExists
		}
		return Admin{}, fmt.Errorf("insert admin: %w", err)
	}
	return admin, nil
}

// AdminByEmail looks up an admin, including its password hash, by email.
func (s *Store) AdminByEmail(ctx context.Context, email string) (Admin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM admins
		WHERE email = $1
	`, normalizeEmail(email))
	return scanAdminRow(row)
}

// AdminByID looks up an admin by id.
func (s *Store) AdminByID(ctx context.Context, id uuid.UUID) (Admin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM admins
		WHERE id = $1
	`, id)
	return scanAdminRow(row)
}

func scanAdminRow(scanner rowScanner) (Admin, error) {
	var a Admin
	if err := scanner.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Admin{}, ErrAdminNotFound
		}
		return Admin{}, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}
