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

// Song is a track belonging to exactly one album.
type Song struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	AlbumID   uuid.UUID `json:"album_id"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SongInput carries the fields required to create a song.
type SongInput struct {
	Title   string
	AlbumID uuid.UUID
	FileURL string
}

// SongPatch carries the optional fields of a song update.
type SongPatch struct {
	Title   *string
	FileURL *string
}

const songColumns = `id, title, album_id, file_url, created_at, updated_at`

// CreateSong inserts a song into an album owned by requester and appends its id
// to the album's song list. The album row is locked before the ownership check,
// and both writes share one transaction.
func (s *Store) CreateSong(ctx context.Context, requester uuid.UUID, input SongInput) (Song, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.FileURL = strings.TrimSpace(input.FileURL)

	if err := ValidateSongInput(input); err != nil {
		return Song{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	owner, err := lockAlbumOwner(ctx, tx, input.AlbumID)
	if err != nil {
		return Song{}, err
	}
	if err := checkOwner(owner, requester); err != nil {
		return Song{}, err
	}

	song := Song{
		ID:      uuid.New(),
		Title:   input.Title,
		AlbumID: input.AlbumID,
		FileURL: input.FileURL,
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO songs (id, title, album_id, file_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, song.ID, song.Title, song.AlbumID, song.FileURL).Scan(&song.CreatedAt, &song.UpdatedAt); err != nil {
		return Song{}, fmt.Errorf("insert song: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE albums SET song_ids = array_append(song_ids, $2::uuid), updated_at = NOW()
		WHERE id = $1
	`, song.AlbumID, song.ID); err != nil {
		return Song{}, fmt.Errorf("link song to album: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Song{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return song, nil
}

// ListSongs returns every song, newest first.
func (s *Store) ListSongs(ctx context.Context) ([]Song, error) {
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		ORDER BY created_at DESC
	`)
}

// SongsByAlbum returns the songs of an album, newest first.
func (s *Store) SongsByAlbum(ctx context.Context, albumID uuid.UUID) ([]Song, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM albums WHERE id = $1)
	`, albumID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup album: %w", err)
	}
	if !exists {
		return nil, ErrAlbumNotFound
	}

	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE album_id = $1
		ORDER BY created_at DESC
	`, albumID)
}

// SongsByIDs returns the songs with the given ids in the order the ids are listed.
// Ids with no matching song are skipped.
func (s *Store) SongsByIDs(ctx context.Context, ids []uuid.UUID) ([]Song, error) {
	if len(ids) == 0 {
		return []Song{}, nil
	}
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = ANY($1::uuid[])
		ORDER BY array_position($1::uuid[], id)
	`, idList(ids))
}

// SongByID returns a single song.
func (s *Store) SongByID(ctx context.Context, id uuid.UUID) (Song, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = $1
	`, id)
	return scanSongRow(row)
}

// UpdateSong applies patch to a song whose album is owned by requester.
func (s *Store) UpdateSong(ctx context.Context, requester, id uuid.UUID, patch SongPatch) (Song, error) {
	var (
		sets []string
		args = []any{id}
	)
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Song{}, &ValidationError{EmptyFields: []string{"title"}}
		}
		args = append(args, title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.FileURL != nil {
		fileURL := strings.TrimSpace(*patch.FileURL)
		if fileURL == "" {
			return Song{}, &ValidationError{EmptyFields: []string{"file_url"}}
		}
		args = append(args, fileURL)
		sets = append(sets, fmt.Sprintf("file_url = $%d", len(args)))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	_, owner, err := lockSongOwner(ctx, tx, id)
	if err != nil {
		return Song{}, err
	}
	if err := checkOwner(owner, requester); err != nil {
		return Song{}, err
	}

	var song Song
	if len(sets) == 0 {
		song, err = scanSongRow(tx.QueryRowContext(ctx, `
			SELECT `+songColumns+`
			FROM songs
			WHERE id = $1
		`, id))
	} else {
		sets = append(sets, "updated_at = NOW()")
		song, err = scanSongRow(tx.QueryRowContext(ctx, `
			UPDATE songs SET `+strings.Join(sets, ", ")+`
			WHERE id = $1
			RETURNING `+songColumns, args...))
	}
	if err != nil {
		return Song{}, err
	}

	if err := tx.Commit(); err != nil {
		return Song{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return song, nil
}

// DeleteSong removes a song whose album is owned by requester, pulls its id from
// the album's song list and from every playlist, all in one transaction.
func (s *Store) DeleteSong(ctx context.Context, requester, id uuid.UUID) (Song, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	albumID, owner, err := lockSongOwner(ctx, tx, id)
	if err != nil {
		return Song{}, err
	}
	if err := checkOwner(owner, requester); err != nil {
		return Song{}, err
	}

	song, err := scanSongRow(tx.QueryRowContext(ctx, `
		DELETE FROM songs
		WHERE id = $1
		RETURNING `+songColumns, id))
	if err != nil {
		return Song{}, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE albums SET song_ids = array_remove(song_ids, $2::uuid), updated_at = NOW()
		WHERE id = $1
	`, albumID, id)
	if err != nil {
		return Song{}, fmt.Errorf("unlink song from album: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Song{}, fmt.Errorf("unlink song from album: %w", err)
	} else if n != 1 {
		return Song{}, ErrAlbumNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE playlists SET song_ids = array_remove(song_ids, $1::uuid), updated_at = NOW()
		WHERE $1::uuid = ANY(song_ids)
	`, id); err != nil {
		return Song{}, fmt.Errorf("unlink song from playlists: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Song{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return song, nil
}

// ValidateSongInput reports every required song field that is empty.
func ValidateSongInput(input SongInput) error {
	var empty []string
	if strings.TrimSpace(input.Title) == "" {
		empty = append(empty, "title")
	}
	if input.AlbumID == uuid.Nil {
		empty = append(empty, "album_id")
	}
	if strings.TrimSpace(input.FileURL) == "" {
		empty = append(empty, "file_url")
	}
	if len(empty) > 0 {
		return &ValidationError{EmptyFields: empty}
	}
	return nil
}

// lockSongOwner locks a song and its album and returns the album id and its owner.
func lockSongOwner(ctx context.Context, tx *sql.Tx, id uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	var albumID, owner uuid.UUID
	err := tx.QueryRowContext(ctx, `
		SELECT s.album_id, a.user_id
		FROM songs s
		JOIN albums a ON a.id = s.album_id
		WHERE s.id = $1
		FOR UPDATE OF s, a
	`, id).Scan(&albumID, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, uuid.Nil, ErrSongNotFound
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("lock song: %w", err)
	}
	return albumID, owner, nil
}

func (s *Store) querySongs(ctx context.Context, query string, args ...any) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select songs: %w", err)
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		song, err := scanSongRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

func scanSongRow(scanner rowScanner) (Song, error) {
	var song Song
	if err := scanner.Scan(&song.ID, &song.Title, &song.AlbumID, &song.FileURL, &song.CreatedAt, &song.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrSongNotFound
		}
		return Song{}, fmt.Errorf("scan song: %w", err)
	}
	return song, nil
}
