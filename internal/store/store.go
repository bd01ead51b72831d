package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrUserExists signals the email is already registered.
	ErrUserExists = errors.New("email already in use")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUserNotFound signals a missing user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrAdminNotFound signals a missing admin record.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrAlbumNotFound signals a missing album record.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrSongNotFound signals a missing song record.
	ErrSongNotFound = errors.New("song not found")
	// ErrPlaylistNotFound signals a missing playlist record.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrForbidden indicates the caller does not own the resource.
	ErrForbidden = errors.New("not authorized to modify this resource")
	// ErrAlbumSlugTaken indicates another album already resolves to the same title slug.
	ErrAlbumSlugTaken = errors.New("an album with a matching title already exists")
	// ErrInvalidInput is the root of every validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports required fields that were left empty.
type ValidationError struct {
	Message     string
	EmptyFields []string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Please fill in all fields"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func checkOwner(owner, requester uuid.UUID) error {
	if owner != requester {
		return ErrForbidden
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// idList maps a Postgres uuid[] column onto a slice of ids.
type idList []uuid.UUID

func (l *idList) Scan(src any) error {
	var raw pq.StringArray
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan id list: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("parse id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

func (l idList) Value() (driver.Value, error) {
	raw := make(pq.StringArray, len(l))
	for i, id := range l {
		raw[i] = id.String()
	}
	return raw.Value()
}

type rowScanner interface {
	Scan(dest ...any) error
}
