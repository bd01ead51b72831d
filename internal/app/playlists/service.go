package playlists

import (
	"context"

	"github.com/google/uuid"

	"musicshare/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, owner uuid.UUID, input store.PlaylistInput) (store.Playlist, error)
	PlaylistsByOwner(ctx context.Context, owner uuid.UUID) ([]store.Playlist, error)
	PlaylistByID(ctx context.Context, requester, id uuid.UUID) (store.Playlist, error)
	UpdatePlaylist(ctx context.Context, requester, id uuid.UUID, patch store.PlaylistPatch) (store.Playlist, error)
	DeletePlaylist(ctx context.Context, requester, id uuid.UUID) (store.Playlist, error)
	AddSongToPlaylist(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error)
	RemoveSongFromPlaylist(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error)
	SongsByIDs(ctx context.Context, ids []uuid.UUID) ([]store.Song, error)
}

// Detail is a playlist with its songs resolved, in playlist order. Ids whose
// song has since been deleted are skipped.
type Detail struct {
	store.Playlist
	Tracks []store.Song `json:"tracks"`
}

// Service coordinates playlist operations. Every call is scoped to the caller's
// own playlists.
type Service interface {
	List(ctx context.Context, owner uuid.UUID) ([]store.Playlist, error)
	Get(ctx context.Context, requester, id uuid.UUID) (Detail, error)
	Create(ctx context.Context, owner uuid.UUID, input store.PlaylistInput) (store.Playlist, error)
	Update(ctx context.Context, requester, id uuid.UUID, patch store.PlaylistPatch) (store.Playlist, error)
	Delete(ctx context.Context, requester, id uuid.UUID) (store.Playlist, error)
	AddSong(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error)
	RemoveSong(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, owner uuid.UUID) ([]store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.PlaylistsByOwner(ctx, owner)
}

func (s *service) Get(ctx context.Context, requester, id uuid.UUID) (Detail, error) {
	if err := ctx.Err(); err != nil {
		return Detail{}, err
	}
	playlist, err := s.store.PlaylistByID(ctx, requester, id)
	if err != nil {
		return Detail{}, err
	}
	tracks, err := s.store.SongsByIDs(ctx, playlist.Songs)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Playlist: playlist, Tracks: tracks}, nil
}

func (s *service) Create(ctx context.Context, owner uuid.UUID, input store.PlaylistInput) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.CreatePlaylist(ctx, owner, input)
}

func (s *service) Update(ctx context.Context, requester, id uuid.UUID, patch store.PlaylistPatch) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.UpdatePlaylist(ctx, requester, id, patch)
}

func (s *service) Delete(ctx context.Context, requester, id uuid.UUID) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.DeletePlaylist(ctx, requester, id)
}

func (s *service) AddSong(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	if songID == uuid.Nil {
		return store.Playlist{}, &store.ValidationError{EmptyFields: []string{"songId"}}
	}
	return s.store.AddSongToPlaylist(ctx, requester, id, songID)
}

func (s *service) RemoveSong(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.RemoveSongFromPlaylist(ctx, requester, id, songID)
}
