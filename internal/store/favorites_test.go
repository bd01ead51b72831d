package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
)

func TestToggleFavoriteSingleStatement(t *testing.T) {
	s, mock := newMockStore(t)
	album, owner, user := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHEN $2::uuid = ANY(favorites) THEN array_remove(favorites, $2::uuid)`)).
		WithArgs(album, user).
		WillReturnRows(albumRows().AddRow(album.String(), "T", "t", "A", "c", owner.String(), false, pgArray(user), "{}", fixedTime, fixedTime))
	mock.ExpectQuery(regexp.QuoteMeta(`WHEN $2::uuid = ANY(favorites) THEN array_remove(favorites, $2::uuid)`)).
		WithArgs(album, user).
		WillReturnRows(albumRows().AddRow(album.String(), "T", "t", "A", "c", owner.String(), false, "{}", "{}", fixedTime, fixedTime))

	first, err := s.ToggleFavorite(context.Background(), album, user)
	if err != nil {
		t.Fatalf("ToggleFavorite returned error: %v", err)
	}
	if len(first.Favorites) != 1 || first.Favorites[0] != user {
		t.Fatalf("expected user in favorites, got %v", first.Favorites)
	}

	second, err := s.ToggleFavorite(context.Background(), album, user)
	if err != nil {
		t.Fatalf("ToggleFavorite returned error: %v", err)
	}
	if len(second.Favorites) != 0 {
		t.Fatalf("expected favorites cleared, got %v", second.Favorites)
	}
}

func TestSetFavoriteMissingAlbum(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`array_remove(favorites, $2::uuid)`)).
		WillReturnRows(albumRows())

	if _, err := s.SetFavorite(context.Background(), uuid.New(), uuid.New(), false); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestSetFavoriteAddIsIdempotent(t *testing.T) {
	s, mock := newMockStore(t)
	album, user := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`ELSE array_append(favorites, $2::uuid)`)).
		WithArgs(album, user).
		WillReturnRows(albumRows().AddRow(album.String(), "T", "t", "A", "c", uuid.NewString(), true, pgArray(user), "{}", fixedTime, fixedTime))

	got, err := s.SetFavorite(context.Background(), album, user, true)
	if err != nil {
		t.Fatalf("SetFavorite returned error: %v", err)
	}
	if len(got.Favorites) != 1 {
		t.Fatalf("unexpected favorites %v", got.Favorites)
	}
}

func TestFavoriteAlbums(t *testing.T) {
	s, mock := newMockStore(t)
	user := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE $1::uuid = ANY(favorites)`)).
		WithArgs(user).
		WillReturnRows(albumRows().AddRow(uuid.NewString(), "T", "t", "A", "c", uuid.NewString(), false, pgArray(user), "{}", fixedTime, fixedTime))

	albums, err := s.FavoriteAlbums(context.Background(), user)
	if err != nil {
		t.Fatalf("FavoriteAlbums returned error: %v", err)
	}
	if len(albums) != 1 {
		t.Fatalf("expected 1 album, got %d", len(albums))
	}
}
