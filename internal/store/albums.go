package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"musicshare/internal/slug"
)

// Album is a user-owned record. Songs mirrors, in insertion order, the ids of
// every song whose album_id points at this album.
type Album struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Slug      string      `json:"slug"`
	Artist    string      `json:"artist"`
	Cover     string      `json:"cover"`
	UserID    uuid.UUID   `json:"user_id"`
	IsPublic  bool        `json:"isPublic"`
	Favorites []uuid.UUID `json:"favorites"`
	Songs     []uuid.UUID `json:"songs"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// AlbumInput carries the fields required to create an album.
type AlbumInput struct {
	Title    string
	Artist   string
	Cover    string
	IsPublic bool
}

// AlbumPatch carries the optional fields of an album update.
type AlbumPatch struct {
	Title    *string
	Artist   *string
	Cover    *string
	IsPublic *bool
}

const albumColumns = `id, title, slug, artist, cover, user_id, is_public, favorites, song_ids, created_at, updated_at`

// CreateAlbum inserts an album with an empty song list and appends its id to
// the owner's album list. Both writes share one transaction.
func (s *Store) CreateAlbum(ctx context.Context, owner uuid.UUID, input AlbumInput) (Album, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Artist = strings.TrimSpace(input.Artist)
	input.Cover = strings.TrimSpace(input.Cover)

	if err := ValidateAlbumInput(input); err != nil {
		return Album{}, err
	}

	album := Album{
		ID:        uuid.New(),
		Title:     input.Title,
		Slug:      slug.Make(input.Title),
		Artist:    input.Artist,
		Cover:     input.Cover,
		UserID:    owner,
		IsPublic:  input.IsPublic,
		Favorites: []uuid.UUID{},
		Songs:     []uuid.UUID{},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Album{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO albums (id, title, slug, artist, cover, user_id, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, album.ID, album.Title, album.Slug, album.Artist, album.Cover, album.UserID, album.IsPublic).
		Scan(&album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return Album{}, ErrAlbumSlugTaken
		case isForeignKeyViolation(err):
			return Album{}, ErrUserNotFound
		}
		return Album{}, fmt.Errorf("insert album: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET album_ids = array_append(album_ids, $2::uuid)
		WHERE id = $1
	`, owner, album.ID)
	if err != nil {
		return Album{}, fmt.Errorf("link album to owner: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Album{}, fmt.Errorf("link album to owner: %w", err)
	} else if n != 1 {
		return Album{}, ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return Album{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return album, nil
}

// AlbumsByOwner lists albums created by owner, newest first.
func (s *Store) AlbumsByOwner(ctx context.Context, owner uuid.UUID) ([]Album, error) {
	return s.queryAlbums(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, owner)
}

// PublicAlbums lists every album flagged public, newest first.
func (s *Store) PublicAlbums(ctx context.Context) ([]Album, error) {
	return s.queryAlbums(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE is_public
		ORDER BY created_at DESC
	`)
}

// AlbumByID returns a single album.
func (s *Store) AlbumByID(ctx context.Context, id uuid.UUID) (Album, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE id = $1
	`, id)
	return scanAlbumRow(row)
}

// AlbumBySlug resolves a title slug. Slugs are unique, so at most one album matches.
func (s *Store) AlbumBySlug(ctx context.Context, albumSlug string) (Album, error) {
	albumSlug = strings.TrimSpace(albumSlug)
	if albumSlug == "" {
		return Album{}, ErrAlbumNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE slug = $1
	`, albumSlug)
	return scanAlbumRow(row)
}

// UpdateAlbum applies patch to an album owned by requester.
func (s *Store) UpdateAlbum(ctx context.Context, requester, id uuid.UUID, patch AlbumPatch) (Album, error) {
	var (
		sets []string
		args = []any{id}
	)

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Album{}, &ValidationError{EmptyFields: []string{"title"}}
		}
		albumSlug := slug.Make(title)
		if albumSlug == "" {
			return Album{}, &ValidationError{Message: "title must contain at least one letter or digit"}
		}
		args = append(args, title, albumSlug)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)-1), fmt.Sprintf("slug = $%d", len(args)))
	}
	if patch.Artist != nil {
		artist := strings.TrimSpace(*patch.Artist)
		if artist == "" {
			return Album{}, &ValidationError{EmptyFields: []string{"artist"}}
		}
		args = append(args, artist)
		sets = append(sets, fmt.Sprintf("artist = $%d", len(args)))
	}
	if patch.Cover != nil {
		cover := strings.TrimSpace(*patch.Cover)
		if cover == "" {
			return Album{}, &ValidationError{EmptyFields: []string{"cover"}}
		}
		args = append(args, cover)
		sets = append(sets, fmt.Sprintf("cover = $%d", len(args)))
	}
	if patch.IsPublic != nil {
		args = append(args, *patch.IsPublic)
		sets = append(sets, fmt.Sprintf("is_public = $%d", len(args)))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Album{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	owner, err := lockAlbumOwner(ctx, tx, id)
	if err != nil {
		return Album{}, err
	}
	if err := checkOwner(owner, requester); err != nil {
		return Album{}, err
	}

	var album Album
	if len(sets) == 0 {
		album, err = scanAlbumRow(tx.QueryRowContext(ctx, `
			SELECT `+albumColumns+`
			FROM albums
			WHERE id = $1
		`, id))
	} else {
		sets = append(sets, "updated_at = NOW()")
		album, err = scanAlbumRow(tx.QueryRowContext(ctx, `
			UPDATE albums SET `+strings.Join(sets, ", ")+`
			WHERE id = $1
			RETURNING `+albumColumns, args...))
	}
	if err != nil {
		if isUniqueViolation(err) {
			return Album{}, ErrAlbumSlugTaken
		}
		return Album{}, err
	}

	if err := tx.Commit(); err != nil {
		return Album{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return album, nil
}

// DeleteAlbum removes an album owned by requester together with its songs. The
// deleted song ids are pulled from every playlist and the album id is pulled
// from the owner's album list, all in one transaction. It also returns the
// file references of the deleted songs.
func (s *Store) DeleteAlbum(ctx context.Context, requester, id uuid.UUID) (Album, []string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Album{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	owner, err := lockAlbumOwner(ctx, tx, id)
	if err != nil {
		return Album{}, nil, err
	}
	if err := checkOwner(owner, requester); err != nil {
		return Album{}, nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		DELETE FROM songs
		WHERE album_id = $1
		RETURNING id, file_url
	`, id)
	if err != nil {
		return Album{}, nil, fmt.Errorf("delete album songs: %w", err)
	}
	var (
		songIDs idList
		files   []string
	)
	for rows.Next() {
		var (
			songID uuid.UUID
			file   string
		)
		if err := rows.Scan(&songID, &file); err != nil {
			rows.Close()
			return Album{}, nil, fmt.Errorf("scan deleted song: %w", err)
		}
		songIDs = append(songIDs, songID)
		files = append(files, file)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Album{}, nil, fmt.Errorf("iterate deleted songs: %w", err)
	}

	if len(songIDs) > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE playlists
			SET song_ids = ARRAY(
				SELECT s FROM unnest(song_ids) WITH ORDINALITY AS t(s, n)
				WHERE s <> ALL($1::uuid[])
				ORDER BY n
			), updated_at = NOW()
			WHERE song_ids && $1::uuid[]
		`, songIDs); err != nil {
			return Album{}, nil, fmt.Errorf("unlink songs from playlists: %w", err)
		}
	}

	album, err := scanAlbumRow(tx.QueryRowContext(ctx, `
		DELETE FROM albums
		WHERE id = $1
		RETURNING `+albumColumns, id))
	if err != nil {
		return Album{}, nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET album_ids = array_remove(album_ids, $2::uuid)
		WHERE id = $1
	`, owner, id); err != nil {
		return Album{}, nil, fmt.Errorf("unlink album from owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Album{}, nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return album, files, nil
}

// ValidateAlbumInput reports every required album field that is empty.
func ValidateAlbumInput(input AlbumInput) error {
	var empty []string
	if strings.TrimSpace(input.Title) == "" {
		empty = append(empty, "title")
	}
	if strings.TrimSpace(input.Artist) == "" {
		empty = append(empty, "artist")
	}
	if strings.TrimSpace(input.Cover) == "" {
		empty = append(empty, "cover")
	}
	if len(empty) > 0 {
		return &ValidationError{EmptyFields: empty}
	}
	if slug.Make(input.Title) == "" {
		return &ValidationError{Message: "title must contain at least one letter or digit"}
	}
	return nil
}

func lockAlbumOwner(ctx context.Context, tx *sql.Tx, id uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	err := tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM albums
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrAlbumNotFound
		}
		return uuid.Nil, fmt.Errorf("lock album: %w", err)
	}
	return owner, nil
}

func (s *Store) queryAlbums(ctx context.Context, query string, args ...any) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	albums := []Album{}
	for rows.Next() {
		a, err := scanAlbumRow(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

func scanAlbumRow(scanner rowScanner) (Album, error) {
	var a Album
	if err := scanner.Scan(
		&a.ID,
		&a.Title,
		&a.Slug,
		&a.Artist,
		&a.Cover,
		&a.UserID,
		&a.IsPublic,
		(*idList)(&a.Favorites),
		(*idList)(&a.Songs),
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, ErrAlbumNotFound
		}
		return Album{}, fmt.Errorf("scan album: %w", err)
	}
	return a, nil
}
