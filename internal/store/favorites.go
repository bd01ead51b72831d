package store

import (
	"context"

	"github.com/google/uuid"
)

// SetFavorite adds (favorited) or removes user from the album's favorites set.
// Adding an existing member and removing an absent one are both no-ops.
// Any user may favorite any album regardless of ownership or visibility.
func (s *Store) SetFavorite(ctx context.Context, albumID, user uuid.UUID, favorited bool) (Album, error) {
	query := `
		UPDATE albums
		SET favorites = array_remove(favorites, $2::uuid)
		WHERE id = $1
		RETURNING ` + albumColumns
	if favorited {
		query = `
		UPDATE albums
		SET favorites = CASE
			WHEN $2::uuid = ANY(favorites) THEN favorites
			ELSE array_append(favorites, $2::uuid)
		END
		WHERE id = $1
		RETURNING ` + albumColumns
	}

	return scanAlbumRow(s.db.QueryRowContext(ctx, query, albumID, user))
}

// ToggleFavorite flips user's membership in the album's favorites set. The
// read and the write happen in a single UPDATE, so concurrent toggles serialize
// on the row lock.
func (s *Store) ToggleFavorite(ctx context.Context, albumID, user uuid.UUID) (Album, error) {
	return scanAlbumRow(s.db.QueryRowContext(ctx, `
		UPDATE albums
		SET favorites = CASE
			WHEN $2::uuid = ANY(favorites) THEN array_remove(favorites, $2::uuid)
			ELSE array_append(favorites, $2::uuid)
		END
		WHERE id = $1
		RETURNING `+albumColumns, albumID, user))
}

// FavoriteAlbums lists the albums user has favorited, newest first.
func (s *Store) FavoriteAlbums(ctx context.Context, user uuid.UUID) ([]Album, error) {
	return s.queryAlbums(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE $1::uuid = ANY(favorites)
		ORDER BY created_at DESC
	`, user)
}
