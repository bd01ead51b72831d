package albums

import (
	"context"

	"github.com/google/uuid"

	"musicshare/internal/assets"
	"musicshare/internal/logging"
	"musicshare/internal/store"
)

// Store captures the persistence needs for album workflows.
type Store interface {
	CreateAlbum(ctx context.Context, owner uuid.UUID, input store.AlbumInput) (store.Album, error)
	UpdateAlbum(ctx context.Context, requester, id uuid.UUID, patch store.AlbumPatch) (store.Album, error)
	DeleteAlbum(ctx context.Context, requester, id uuid.UUID) (store.Album, []string, error)
	AlbumsByOwner(ctx context.Context, owner uuid.UUID) ([]store.Album, error)
	PublicAlbums(ctx context.Context) ([]store.Album, error)
	FavoriteAlbums(ctx context.Context, user uuid.UUID) ([]store.Album, error)
	AlbumByID(ctx context.Context, id uuid.UUID) (store.Album, error)
	AlbumBySlug(ctx context.Context, slug string) (store.Album, error)
	SetFavorite(ctx context.Context, albumID, user uuid.UUID, favorited bool) (store.Album, error)
	ToggleFavorite(ctx context.Context, albumID, user uuid.UUID) (store.Album, error)
	SongsByIDs(ctx context.Context, ids []uuid.UUID) ([]store.Song, error)
}

// CreateInput is an album submitted together with its cover image.
type CreateInput struct {
	Title    string
	Artist   string
	IsPublic bool
	Cover    *assets.Upload
}

// UpdateInput carries the optional fields of an album edit. A non-nil Cover
// replaces the stored image.
type UpdateInput struct {
	Title    *string
	Artist   *string
	IsPublic *bool
	Cover    *assets.Upload
}

// Detail is an album with its songs resolved, in album order.
type Detail struct {
	store.Album
	Tracks []store.Song `json:"tracks"`
}

// Service coordinates album-related operations.
type Service interface {
	Create(ctx context.Context, owner uuid.UUID, input CreateInput) (store.Album, error)
	Update(ctx context.Context, requester, id uuid.UUID, input UpdateInput) (store.Album, error)
	Delete(ctx context.Context, requester, id uuid.UUID) (store.Album, error)
	ListMine(ctx context.Context, owner uuid.UUID) ([]store.Album, error)
	ListPublic(ctx context.Context) ([]store.Album, error)
	ListFavorites(ctx context.Context, user uuid.UUID) ([]store.Album, error)
	Get(ctx context.Context, id uuid.UUID) (Detail, error)
	GetByTitle(ctx context.Context, slug string) (Detail, error)
	ToggleFavorite(ctx context.Context, user, id uuid.UUID) (store.Album, error)
	Favorite(ctx context.Context, user, id uuid.UUID) (store.Album, error)
	Unfavorite(ctx context.Context, user, id uuid.UUID) (store.Album, error)
}

type service struct {
	store  Store
	assets assets.Store
}

// New constructs a Service backed by the provided Store.
func New(store Store, files assets.Store) Service {
	return &service{store: store, assets: files}
}

// Create validates every field before anything is uploaded, stores the cover,
// then the album. If the album cannot be stored the uploaded cover is removed.
func (s *service) Create(ctx context.Context, owner uuid.UUID, input CreateInput) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}

	pending := store.AlbumInput{Title: input.Title, Artist: input.Artist, IsPublic: input.IsPublic}
	if input.Cover != nil && input.Cover.Size != 0 {
		pending.Cover = input.Cover.Filename
	}
	if err := store.ValidateAlbumInput(pending); err != nil {
		return store.Album{}, err
	}

	key, err := assets.Save(ctx, s.assets, assets.FolderImages, input.Cover)
	if err != nil {
		return store.Album{}, err
	}
	pending.Cover = key

	album, err := s.store.CreateAlbum(ctx, owner, pending)
	if err != nil {
		s.discard(ctx, key)
		return store.Album{}, err
	}
	return album, nil
}

func (s *service) Update(ctx context.Context, requester, id uuid.UUID, input UpdateInput) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}

	patch := store.AlbumPatch{Title: input.Title, Artist: input.Artist, IsPublic: input.IsPublic}
	if input.Cover == nil {
		return s.store.UpdateAlbum(ctx, requester, id, patch)
	}

	before, err := s.store.AlbumByID(ctx, id)
	if err != nil {
		return store.Album{}, err
	}
	if before.UserID != requester {
		return store.Album{}, store.ErrForbidden
	}

	key, err := assets.Save(ctx, s.assets, assets.FolderImages, input.Cover)
	if err != nil {
		return store.Album{}, err
	}
	patch.Cover = &key

	album, err := s.store.UpdateAlbum(ctx, requester, id, patch)
	if err != nil {
		s.discard(ctx, key)
		return store.Album{}, err
	}
	if before.Cover != key && assets.Owned(before.Cover, assets.FolderImages) {
		s.discard(ctx, before.Cover)
	}
	return album, nil
}

func (s *service) Delete(ctx context.Context, requester, id uuid.UUID) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	album, songFiles, err := s.store.DeleteAlbum(ctx, requester, id)
	if err != nil {
		return store.Album{}, err
	}
	if assets.Owned(album.Cover, assets.FolderImages) {
		s.discard(ctx, album.Cover)
	}
	for _, file := range songFiles {
		if assets.Owned(file, assets.FolderSongs) {
			s.discard(ctx, file)
		}
	}
	return album, nil
}

func (s *service) ListMine(ctx context.Context, owner uuid.UUID) ([]store.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.AlbumsByOwner(ctx, owner)
}

func (s *service) ListPublic(ctx context.Context) ([]store.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.PublicAlbums(ctx)
}

func (s *service) ListFavorites(ctx context.Context, user uuid.UUID) ([]store.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.FavoriteAlbums(ctx, user)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	if err := ctx.Err(); err != nil {
		return Detail{}, err
	}
	album, err := s.store.AlbumByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return s.detail(ctx, album)
}

func (s *service) GetByTitle(ctx context.Context, slug string) (Detail, error) {
	if err := ctx.Err(); err != nil {
		return Detail{}, err
	}
	album, err := s.store.AlbumBySlug(ctx, slug)
	if err != nil {
		return Detail{}, err
	}
	return s.detail(ctx, album)
}

func (s *service) ToggleFavorite(ctx context.Context, user, id uuid.UUID) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.ToggleFavorite(ctx, id, user)
}

func (s *service) Favorite(ctx context.Context, user, id uuid.UUID) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.SetFavorite(ctx, id, user, true)
}

func (s *service) Unfavorite(ctx context.Context, user, id uuid.UUID) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.SetFavorite(ctx, id, user, false)
}

func (s *service) detail(ctx context.Context, album store.Album) (Detail, error) {
	tracks, err := s.store.SongsByIDs(ctx, album.Songs)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Album: album, Tracks: tracks}, nil
}

// discard removes an object that is no longer referenced. Failures only leave
// an orphaned object behind, so they are logged and swallowed.
func (s *service) discard(ctx context.Context, key string) {
	if err := s.assets.Delete(context.WithoutCancel(ctx), key); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("delete album asset")
	}
}
