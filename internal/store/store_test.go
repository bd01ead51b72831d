package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return New(db), mock
}

func pgArray(ids ...any) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func albumRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "slug", "artist", "cover", "user_id", "is_public", "favorites", "song_ids", "created_at", "updated_at"})
}

func songRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "album_id", "file_url", "created_at", "updated_at"})
}

func playlistRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "user_id", "song_ids", "created_at", "updated_at"})
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "album_ids", "created_at"})
}

func TestIDListScan(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	var ids idList
	if err := ids.Scan(pgArray(a, b)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("unexpected ids %v", ids)
	}

	if err := ids.Scan([]byte("{}")); err != nil {
		t.Fatalf("Scan empty: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", ids)
	}

	if err := ids.Scan("{not-a-uuid}"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIDListValue(t *testing.T) {
	a := uuid.New()
	v, err := idList{a}.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != `{"`+a.String()+`"}` {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestValidationErrorUnwrapsToInvalidInput(t *testing.T) {
	err := error(&ValidationError{EmptyFields: []string{"title"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("expected ErrInvalidInput in chain")
	}
	if err.Error() != "Please fill in all fields" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if msg := (&ValidationError{Message: "custom"}).Error(); msg != "custom" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestPgErrorClassification(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation")
	}
	if !isForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("expected foreign key violation")
	}
	if isUniqueViolation(sql.ErrNoRows) {
		t.Fatal("ErrNoRows is not a unique violation")
	}
}
