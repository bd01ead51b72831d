package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestCreatePlaylistRequiresTitle(t *testing.T) {
	s, _ := newMockStore(t)

	_, err := s.CreatePlaylist(context.Background(), uuid.New(), PlaylistInput{Title: "  "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.EmptyFields) != 1 || verr.EmptyFields[0] != "title" {
		t.Fatalf("unexpected empty fields %v", verr.EmptyFields)
	}
}

func TestCreatePlaylist(t *testing.T) {
	s, mock := newMockStore(t)
	owner := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO playlists (id, title, description, user_id)`)).
		WithArgs(sqlmock.AnyArg(), "Road trip", "", owner).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(fixedTime, fixedTime))

	playlist, err := s.CreatePlaylist(context.Background(), owner, PlaylistInput{Title: "Road trip"})
	if err != nil {
		t.Fatalf("CreatePlaylist returned error: %v", err)
	}
	if playlist.Songs == nil || len(playlist.Songs) != 0 {
		t.Fatalf("expected empty song list, got %v", playlist.Songs)
	}
}

func TestPlaylistByIDOwnership(t *testing.T) {
	s, mock := newMockStore(t)
	id, owner := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM playlists`)).
		WithArgs(id).
		WillReturnRows(playlistRows().AddRow(id.String(), "P", "", owner.String(), "{}", fixedTime, fixedTime))

	if _, err := s.PlaylistByID(context.Background(), uuid.New(), id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM playlists`)).
		WithArgs(id).
		WillReturnRows(playlistRows())

	if _, err := s.PlaylistByID(context.Background(), owner, id); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestAddSongToPlaylistIsSetInsert(t *testing.T) {
	s, mock := newMockStore(t)
	id, owner, song := uuid.New(), uuid.New(), uuid.New()

	// The second add finds the id already present and the CASE keeps the list unchanged.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM playlists WHERE id = $1 FOR UPDATE`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(owner.String()))
		mock.ExpectQuery(regexp.QuoteMeta(`WHEN $2::uuid = ANY(song_ids) THEN song_ids`)).
			WithArgs(id, song).
			WillReturnRows(playlistRows().AddRow(id.String(), "P", "", owner.String(), pgArray(song), fixedTime, fixedTime))
		mock.ExpectCommit()
	}

	for i := 0; i < 2; i++ {
		playlist, err := s.AddSongToPlaylist(context.Background(), owner, id, song)
		if err != nil {
			t.Fatalf("AddSongToPlaylist returned error: %v", err)
		}
		if len(playlist.Songs) != 1 || playlist.Songs[0] != song {
			t.Fatalf("unexpected songs %v", playlist.Songs)
		}
	}
}

func TestRemoveSongFromPlaylistForbidden(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(uuid.NewString()))
	mock.ExpectRollback()

	if _, err := s.RemoveSongFromPlaylist(context.Background(), uuid.New(), uuid.New(), uuid.New()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeletePlaylistNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	if _, err := s.DeletePlaylist(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestUpdatePlaylistDedupsSongs(t *testing.T) {
	s, mock := newMockStore(t)
	id, owner := uuid.New(), uuid.New()
	a, b := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(owner.String()))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE playlists SET song_ids = $2::uuid[], updated_at = NOW()`)).
		WithArgs(id, `{"`+a.String()+`","`+b.String()+`"}`).
		WillReturnRows(playlistRows().AddRow(id.String(), "P", "", owner.String(), pgArray(a, b), fixedTime, fixedTime))
	mock.ExpectCommit()

	songs := []uuid.UUID{a, b, a}
	playlist, err := s.UpdatePlaylist(context.Background(), owner, id, PlaylistPatch{Songs: &songs})
	if err != nil {
		t.Fatalf("UpdatePlaylist returned error: %v", err)
	}
	if len(playlist.Songs) != 2 {
		t.Fatalf("expected 2 songs, got %v", playlist.Songs)
	}
}
