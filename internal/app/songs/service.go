package songs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"musicshare/internal/assets"
	"musicshare/internal/logging"
	"musicshare/internal/store"
)

// ErrStoredFileRef rejects a client-supplied file_url naming an uploaded object.
var ErrStoredFileRef = fmt.Errorf("%w: file_url may not reference a stored upload", store.ErrInvalidInput)

// Store captures the persistence needs for song workflows.
type Store interface {
	CreateSong(ctx context.Context, requester uuid.UUID, input store.SongInput) (store.Song, error)
	SongByID(ctx context.Context, id uuid.UUID) (store.Song, error)
	ListSongs(ctx context.Context) ([]store.Song, error)
	SongsByAlbum(ctx context.Context, albumID uuid.UUID) ([]store.Song, error)
	UpdateSong(ctx context.Context, requester, id uuid.UUID, patch store.SongPatch) (store.Song, error)
	DeleteSong(ctx context.Context, requester, id uuid.UUID) (store.Song, error)
}

// CreateInput describes a new song. Either FileURL names an existing file or
// File carries the audio to upload.
type CreateInput struct {
	Title   string
	AlbumID uuid.UUID
	FileURL string
	File    *assets.Upload
}

// Service coordinates song-related operations.
type Service interface {
	Create(ctx context.Context, requester uuid.UUID, input CreateInput) (store.Song, error)
	Get(ctx context.Context, id uuid.UUID) (store.Song, error)
	List(ctx context.Context) ([]store.Song, error)
	ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]store.Song, error)
	Update(ctx context.Context, requester, id uuid.UUID, patch store.SongPatch) (store.Song, error)
	Delete(ctx context.Context, requester, id uuid.UUID) (store.Song, error)
}

type service struct {
	store  Store
	assets assets.Store
}

// New constructs a Service backed by the provided Store.
func New(store Store, files assets.Store) Service {
	return &service{store: store, assets: files}
}

func (s *service) Create(ctx context.Context, requester uuid.UUID, input CreateInput) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}

	pending := store.SongInput{Title: input.Title, AlbumID: input.AlbumID, FileURL: input.FileURL}
	upload := input.File != nil && input.File.Size != 0
	if upload {
		pending.FileURL = input.File.Filename
	}
	if err := store.ValidateSongInput(pending); err != nil {
		return store.Song{}, err
	}
	if !upload {
		if assets.Managed(pending.FileURL) {
			return store.Song{}, ErrStoredFileRef
		}
		return s.store.CreateSong(ctx, requester, pending)
	}

	key, err := assets.Save(ctx, s.assets, assets.FolderSongs, input.File)
	if err != nil {
		return store.Song{}, err
	}
	pending.FileURL = key

	song, err := s.store.CreateSong(ctx, requester, pending)
	if err != nil {
		s.discard(ctx, key)
		return store.Song{}, err
	}
	return song, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.SongByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx)
}

func (s *service) ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SongsByAlbum(ctx, albumID)
}

func (s *service) Update(ctx context.Context, requester, id uuid.UUID, patch store.SongPatch) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	if patch.FileURL == nil {
		return s.store.UpdateSong(ctx, requester, id, patch)
	}
	if assets.Managed(*patch.FileURL) {
		return store.Song{}, ErrStoredFileRef
	}

	before, err := s.store.SongByID(ctx, id)
	if err != nil {
		return store.Song{}, err
	}
	song, err := s.store.UpdateSong(ctx, requester, id, patch)
	if err != nil {
		return store.Song{}, err
	}
	// The replaced upload is no longer referenced by any song.
	if before.FileURL != song.FileURL && assets.Owned(before.FileURL, assets.FolderSongs) {
		s.discard(ctx, before.FileURL)
	}
	return song, nil
}

func (s *service) Delete(ctx context.Context, requester, id uuid.UUID) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	song, err := s.store.DeleteSong(ctx, requester, id)
	if err != nil {
		return store.Song{}, err
	}
	if assets.Owned(song.FileURL, assets.FolderSongs) {
		s.discard(ctx, song.FileURL)
	}
	return song, nil
}

func (s *service) discard(ctx context.Context, key string) {
	if err := s.assets.Delete(context.WithoutCancel(ctx), key); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("delete song asset")
	}
}
