package playlists

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicshare/internal/store"
)

type fakeStore struct {
	playlists map[uuid.UUID]store.Playlist
	songs     map[uuid.UUID]store.Song
	added     int
}

func (f *fakeStore) CreatePlaylist(_ context.Context, owner uuid.UUID, input store.PlaylistInput) (store.Playlist, error) {
	p := store.Playlist{ID: uuid.New(), Title: input.Title, UserID: owner, Songs: []uuid.UUID{}}
	f.playlists[p.ID] = p
	return p, nil
}

func (f *fakeStore) PlaylistsByOwner(context.Context, uuid.UUID) ([]store.Playlist, error) {
	return nil, nil
}

func (f *fakeStore) PlaylistByID(_ context.Context, requester, id uuid.UUID) (store.Playlist, error) {
	p, ok := f.playlists[id]
	if !ok {
		return store.Playlist{}, store.ErrPlaylistNotFound
	}
	if p.UserID != requester {
		return store.Playlist{}, store.ErrForbidden
	}
	return p, nil
}

func (f *fakeStore) UpdatePlaylist(context.Context, uuid.UUID, uuid.UUID, store.PlaylistPatch) (store.Playlist, error) {
	return store.Playlist{}, nil
}

func (f *fakeStore) DeletePlaylist(context.Context, uuid.UUID, uuid.UUID) (store.Playlist, error) {
	return store.Playlist{}, nil
}

func (f *fakeStore) AddSongToPlaylist(_ context.Context, requester, id, songID uuid.UUID) (store.Playlist, error) {
	f.added++
	p, err := f.PlaylistByID(context.Background(), requester, id)
	if err != nil {
		return store.Playlist{}, err
	}
	for _, s := range p.Songs {
		if s == songID {
			return p, nil
		}
	}
	p.Songs = append(p.Songs, songID)
	f.playlists[id] = p
	return p, nil
}

func (f *fakeStore) RemoveSongFromPlaylist(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (store.Playlist, error) {
	return store.Playlist{}, nil
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

func TestGetSkipsDeletedSongs(t *testing.T) {
	owner := uuid.New()
	kept := store.Song{ID: uuid.New(), Title: "kept"}
	p := store.Playlist{ID: uuid.New(), UserID: owner, Songs: []uuid.UUID{uuid.New(), kept.ID}}
	fs := &fakeStore{
		playlists: map[uuid.UUID]store.Playlist{p.ID: p},
		songs:     map[uuid.UUID]store.Song{kept.ID: kept},
	}

	detail, err := New(fs).Get(context.Background(), owner, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Tracks, 1)
	assert.Equal(t, "kept", detail.Tracks[0].Title)
	assert.Len(t, detail.Songs, 2)
}

func TestGetForeignPlaylist(t *testing.T) {
	p := store.Playlist{ID: uuid.New(), UserID: uuid.New()}
	fs := &fakeStore{playlists: map[uuid.UUID]store.Playlist{p.ID: p}}

	_, err := New(fs).Get(context.Background(), uuid.New(), p.ID)
	assert.ErrorIs(t, err, store.ErrForbidden)
}

func TestAddSongRequiresID(t *testing.T) {
	fs := &fakeStore{playlists: map[uuid.UUID]store.Playlist{}}

	_, err := New(fs).AddSong(context.Background(), uuid.New(), uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
	assert.Zero(t, fs.added)
}

func TestAddSongTwiceKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	owner, song := uuid.New(), uuid.New()
	fs := &fakeStore{playlists: map[uuid.UUID]store.Playlist{}}
	svc := New(fs)

	p, err := svc.Create(ctx, owner, store.PlaylistInput{Title: "Mix"})
	require.NoError(t, err)

	_, err = svc.AddSong(ctx, owner, p.ID, song)
	require.NoError(t, err)
	got, err := svc.AddSong(ctx, owner, p.ID, song)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{song}, got.Songs)
}
