package albums

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicshare/internal/assets"
	"musicshare/internal/store"
)

type fakeStore struct {
	albums    map[uuid.UUID]store.Album
	songs     map[uuid.UUID]store.Song
	createErr error
	created   []store.AlbumInput
}

func newFakeStore() *fakeStore {
	return &fakeStore{albums: map[uuid.UUID]store.Album{}, songs: map[uuid.UUID]store.Song{}}
}

func (f *fakeStore) CreateAlbum(_ context.Context, owner uuid.UUID, input store.AlbumInput) (store.Album, error) {
	f.created = append(f.created, input)
	if f.createErr != nil {
		return store.Album{}, f.createErr
	}
	a := store.Album{ID: uuid.New(), Title: input.Title, Artist: input.Artist, Cover: input.Cover, UserID: owner, IsPublic: input.IsPublic, Songs: []uuid.UUID{}, Favorites: []uuid.UUID{}}
	f.albums[a.ID] = a
	return a, nil
}

func (f *fakeStore) UpdateAlbum(_ context.Context, requester, id uuid.UUID, patch store.AlbumPatch) (store.Album, error) {
	a, ok := f.albums[id]
	if !ok {
		return store.Album{}, store.ErrAlbumNotFound
	}
	if a.UserID != requester {
		return store.Album{}, store.ErrForbidden
	}
	if patch.Cover != nil {
		a.Cover = *patch.Cover
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	f.albums[id] = a
	return a, nil
}

func (f *fakeStore) DeleteAlbum(_ context.Context, requester, id uuid.UUID) (store.Album, []string, error) {
	a, ok := f.albums[id]
	if !ok {
		return store.Album{}, nil, store.ErrAlbumNotFound
	}
	if a.UserID != requester {
		return store.Album{}, nil, store.ErrForbidden
	}
	var files []string
	for _, songID := range a.Songs {
		if s, ok := f.songs[songID]; ok {
			files = append(files, s.FileURL)
			delete(f.songs, songID)
		}
	}
	delete(f.albums, id)
	return a, files, nil
}

func (f *fakeStore) AlbumsByOwner(context.Context, uuid.UUID) ([]store.Album, error) { return nil, nil }
func (f *fakeStore) PublicAlbums(context.Context) ([]store.Album, error)             { return nil, nil }
func (f *fakeStore) FavoriteAlbums(context.Context, uuid.UUID) ([]store.Album, error) {
	return nil, nil
}

func (f *fakeStore) AlbumByID(_ context.Context, id uuid.UUID) (store.Album, error) {
	a, ok := f.albums[id]
	if !ok {
		return store.Album{}, store.ErrAlbumNotFound
	}
	return a, nil
}

func (f *fakeStore) AlbumBySlug(_ context.Context, slug string) (store.Album, error) {
	for _, a := range f.albums {
		if a.Slug == slug {
			return a, nil
		}
	}
	return store.Album{}, store.ErrAlbumNotFound
}

func (f *fakeStore) SetFavorite(_ context.Context, albumID, user uuid.UUID, favorited bool) (store.Album, error) {
	a, ok := f.albums[albumID]
	if !ok {
		return store.Album{}, store.ErrAlbumNotFound
	}
	a.Favorites = []uuid.UUID{}
	if favorited {
		a.Favorites = []uuid.UUID{user}
	}
	f.albums[albumID] = a
	return a, nil
}

func (f *fakeStore) ToggleFavorite(ctx context.Context, albumID, user uuid.UUID) (store.Album, error) {
	a, err := f.AlbumByID(ctx, albumID)
	if err != nil {
		return store.Album{}, err
	}
	return f.SetFavorite(ctx, albumID, user, len(a.Favorites) == 0)
}

func (f *fakeStore) SongsByIDs(_ context.Context, ids []uuid.UUID) ([]store.Song, error) {
	songs := []store.Song{}
	for _, id := range ids {
		if s, ok := f.songs[id]; ok {
			songs = append(songs, s)
		}
	}
	return songs, nil
}

func cover() *assets.Upload {
	return &assets.Upload{Filename: "cover.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}

func TestCreateReportsEveryEmptyField(t *testing.T) {
	files := assets.NewMemory()
	fs := newFakeStore()
	svc := New(fs, files)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{Title: " "})

	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"title", "artist", "cover"}, verr.EmptyFields)
	assert.Zero(t, files.Len())
	assert.Empty(t, fs.created)
}

func TestCreateUploadsCover(t *testing.T) {
	files := assets.NewMemory()
	svc := New(newFakeStore(), files)
	owner := uuid.New()

	album, err := svc.Create(context.Background(), owner, CreateInput{Title: "Abbey Road", Artist: "The Beatles", IsPublic: true, Cover: cover()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(album.Cover, "images/"))
	assert.True(t, strings.HasSuffix(album.Cover, ".png"))
	assert.Equal(t, owner, album.UserID)
	assert.Equal(t, 1, files.Len())
}

func TestCreateRemovesCoverWhenStoreFails(t *testing.T) {
	files := assets.NewMemory()
	fs := newFakeStore()
	fs.createErr = store.ErrAlbumSlugTaken
	svc := New(fs, files)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{Title: "T", Artist: "A", Cover: cover()})
	assert.ErrorIs(t, err, store.ErrAlbumSlugTaken)
	assert.Zero(t, files.Len())
}

func TestGetResolvesTracksInOrder(t *testing.T) {
	fs := newFakeStore()
	first, second := store.Song{ID: uuid.New(), Title: "one"}, store.Song{ID: uuid.New(), Title: "two"}
	fs.songs[first.ID], fs.songs[second.ID] = first, second
	album := store.Album{ID: uuid.New(), Songs: []uuid.UUID{second.ID, first.ID}}
	fs.albums[album.ID] = album

	detail, err := New(fs, assets.NewMemory()).Get(context.Background(), album.ID)
	require.NoError(t, err)
	require.Len(t, detail.Tracks, 2)
	assert.Equal(t, "two", detail.Tracks[0].Title)
	assert.Equal(t, album.Songs, detail.Songs)
}

func TestUpdateCoverForbiddenSkipsUpload(t *testing.T) {
	files := assets.NewMemory()
	fs := newFakeStore()
	album := store.Album{ID: uuid.New(), UserID: uuid.New()}
	fs.albums[album.ID] = album

	_, err := New(fs, files).Update(context.Background(), uuid.New(), album.ID, UpdateInput{Cover: cover()})
	assert.ErrorIs(t, err, store.ErrForbidden)
	assert.Zero(t, files.Len())
}

func TestUpdateCoverReplacesOldAsset(t *testing.T) {
	ctx := context.Background()
	files := assets.NewMemory()
	fs := newFakeStore()
	svc := New(fs, files)
	owner := uuid.New()

	album, err := svc.Create(ctx, owner, CreateInput{Title: "T", Artist: "A", Cover: cover()})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, album.ID, UpdateInput{Cover: cover()})
	require.NoError(t, err)
	assert.NotEqual(t, album.Cover, updated.Cover)
	assert.Equal(t, 1, files.Len())

	_, err = files.Get(ctx, album.Cover)
	assert.ErrorIs(t, err, assets.ErrNotFound)
}

func TestDeleteRemovesCover(t *testing.T) {
	ctx := context.Background()
	files := assets.NewMemory()
	svc := New(newFakeStore(), files)
	owner := uuid.New()

	album, err := svc.Create(ctx, owner, CreateInput{Title: "T", Artist: "A", Cover: cover()})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, owner, album.ID)
	require.NoError(t, err)
	assert.Zero(t, files.Len())
}

func TestDeleteRemovesUploadedSongFiles(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	files := assets.NewMemory()
	svc := New(fs, files)
	owner := uuid.New()

	album, err := svc.Create(ctx, owner, CreateInput{Title: "T", Artist: "A", Cover: cover()})
	require.NoError(t, err)

	key, err := files.Put(ctx, assets.FolderSongs, "track.mp3", strings.NewReader("mp3"), 3, "audio/mpeg")
	require.NoError(t, err)
	uploaded := store.Song{ID: uuid.New(), AlbumID: album.ID, FileURL: key}
	external := store.Song{ID: uuid.New(), AlbumID: album.ID, FileURL: "https://cdn.example/b.mp3"}
	fs.songs[uploaded.ID] = uploaded
	fs.songs[external.ID] = external
	stored := fs.albums[album.ID]
	stored.Songs = []uuid.UUID{uploaded.ID, external.ID}
	fs.albums[album.ID] = stored
	require.Equal(t, 2, files.Len())

	_, err = svc.Delete(ctx, owner, album.ID)
	require.NoError(t, err)
	assert.Zero(t, files.Len())
	assert.Empty(t, fs.songs)
}

func TestToggleFavoriteFlips(t *testing.T) {
	fs := newFakeStore()
	album := store.Album{ID: uuid.New(), UserID: uuid.New(), Favorites: []uuid.UUID{}}
	fs.albums[album.ID] = album
	svc := New(fs, assets.NewMemory())
	user := uuid.New()

	got, err := svc.ToggleFavorite(context.Background(), user, album.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{user}, got.Favorites)

	got, err = svc.ToggleFavorite(context.Background(), user, album.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Favorites)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newFakeStore(), assets.NewMemory()).ListPublic(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
