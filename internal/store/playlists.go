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

// Playlist is a user-curated, ordered set of song ids. Songs carry no backlink
// to the playlists that reference them.
type Playlist struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	UserID      uuid.UUID   `json:"user_id"`
	Songs       []uuid.UUID `json:"songs"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// PlaylistInput carries the fields used to create a playlist.
type PlaylistInput struct {
	Title       string
	Description string
}

// PlaylistPatch carries the optional fields of a playlist update. A non-nil
// Songs replaces the song list; duplicates are dropped keeping the first occurrence.
type PlaylistPatch struct {
	Title       *string
	Description *string
	Songs       *[]uuid.UUID
}

const playlistColumns = `id, title, description, user_id, song_ids, created_at, updated_at`

// CreatePlaylist inserts an empty playlist owned by owner.
func (s *Store) CreatePlaylist(ctx context.Context, owner uuid.UUID, input PlaylistInput) (Playlist, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Playlist{}, &ValidationError{EmptyFields: []string{"title"}}
	}

	playlist := Playlist{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		UserID:      owner,
		Songs:       []uuid.UUID{},
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (id, title, description, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, playlist.ID, playlist.Title, playlist.Description, playlist.UserID).Scan(&playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Playlist{}, ErrUserNotFound
		}
		return Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}
	return playlist, nil
}

// PlaylistsByOwner lists owner's playlists, newest first.
func (s *Store) PlaylistsByOwner(ctx context.Context, owner uuid.UUID) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("select playlists: %w", err)
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		p, err := scanPlaylistRow(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// PlaylistByID returns a playlist owned by requester.
func (s *Store) PlaylistByID(ctx context.Context, requester, id uuid.UUID) (Playlist, error) {
	playlist, err := scanPlaylistRow(s.db.QueryRowContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE id = $1
	`, id))
	if err != nil {
		return Playlist{}, err
	}
	if err := checkOwner(playlist.UserID, requester); err != nil {
		return Playlist{}, err
	}
	return playlist, nil
}

// UpdatePlaylist applies patch to a playlist owned by requester.
func (s *Store) UpdatePlaylist(ctx context.Context, requester, id uuid.UUID, patch PlaylistPatch) (Playlist, error) {
	var (
		sets []string
		args = []any{id}
	)
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Playlist{}, &ValidationError{EmptyFields: []string{"title"}}
		}
		args = append(args, title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, strings.TrimSpace(*patch.Description))
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if patch.Songs != nil {
		args = append(args, idList(dedupIDs(*patch.Songs)))
		sets = append(sets, fmt.Sprintf("song_ids = $%d::uuid[]", len(args)))
	}

	if len(sets) == 0 {
		return s.mutatePlaylist(ctx, requester, id, `
			SELECT `+playlistColumns+`
			FROM playlists
			WHERE id = $1
		`)
	}

	sets = append(sets, "updated_at = NOW()")
	return s.mutatePlaylist(ctx, requester, id, `
		UPDATE playlists SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+playlistColumns, args[1:]...)
}

// DeletePlaylist removes a playlist owned by requester.
func (s *Store) DeletePlaylist(ctx context.Context, requester, id uuid.UUID) (Playlist, error) {
	return s.mutatePlaylist(ctx, requester, id, `
		DELETE FROM playlists
		WHERE id = $1
		RETURNING `+playlistColumns)
}

// AddSongToPlaylist appends songID unless it is already present. The song id
// is not checked against the songs table.
func (s *Store) AddSongToPlaylist(ctx context.Context, requester, id, songID uuid.UUID) (Playlist, error) {
	return s.mutatePlaylist(ctx, requester, id, `
		UPDATE playlists
		SET song_ids = CASE
			WHEN $2::uuid = ANY(song_ids) THEN song_ids
			ELSE array_append(song_ids, $2::uuid)
		END,
		updated_at = NOW()
		WHERE id = $1
		RETURNING `+playlistColumns, songID)
}

// RemoveSongFromPlaylist drops songID; removing an absent id is a no-op.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, requester, id, songID uuid.UUID) (Playlist, error) {
	return s.mutatePlaylist(ctx, requester, id, `
		UPDATE playlists
		SET song_ids = array_remove(song_ids, $2::uuid), updated_at = NOW()
		WHERE id = $1
		RETURNING `+playlistColumns, songID)
}

// mutatePlaylist locks the playlist, verifies requester owns it, then runs query
// with the playlist id as $1 followed by args.
func (s *Store) mutatePlaylist(ctx context.Context, requester, id uuid.UUID, query string, args ...any) (Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var owner uuid.UUID
	if err := tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM playlists
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Playlist{}, ErrPlaylistNotFound
		}
		return Playlist{}, fmt.Errorf("lock playlist: %w", err)
	}
	if err := checkOwner(owner, requester); err != nil {
		return Playlist{}, err
	}

	playlist, err := scanPlaylistRow(tx.QueryRowContext(ctx, query, append([]any{id}, args...)...))
	if err != nil {
		return Playlist{}, err
	}

	if err := tx.Commit(); err != nil {
		return Playlist{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return playlist, nil
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func scanPlaylistRow(scanner rowScanner) (Playlist, error) {
	var p Playlist
	if err := scanner.Scan(&p.ID, &p.Title, &p.Description, &p.UserID, (*idList)(&p.Songs), &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Playlist{}, ErrPlaylistNotFound
		}
		return Playlist{}, fmt.Errorf("scan playlist: %w", err)
	}
	return p, nil
}
