package assets

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey("images", "Cover.PNG")
	assert.True(t, strings.HasPrefix(key, "images/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, NewKey("images", "Cover.PNG"))

	assert.NotContains(t, NewKey("songs", `..\..\evil.mp3`), "..")
	assert.Regexp(t, `^songs/[0-9a-f-]{36}$`, NewKey("songs", "noext"))
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("images/abc.png"))
	for _, key := range []string{"", "/etc/passwd", "images/../x", "images//x", `images\x`} {
		assert.False(t, ValidKey(key), key)
	}
}

func TestManaged(t *testing.T) {
	for _, ref := range []string{"songs/a.mp3", "/songs/a.mp3", " IMAGES/a.png", "images/x"} {
		assert.True(t, Managed(ref), ref)
	}
	for _, ref := range []string{"", "https://cdn.example/songs/a.mp3", "songsx/a.mp3", "audio/a.mp3"} {
		assert.False(t, Managed(ref), ref)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	key, err := m.Put(ctx, FolderSongs, "track.mp3", strings.NewReader("audio"), 5, "audio/mpeg")
	require.NoError(t, err)
	assert.True(t, ValidKey(key))
	assert.Equal(t, 1, m.Len())

	obj, err := m.Get(ctx, key)
	require.NoError(t, err)
	defer obj.Body.Close()
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(body))
	assert.Equal(t, "audio/mpeg", obj.ContentType)
	assert.EqualValues(t, 5, obj.Size)

	require.NoError(t, m.Delete(ctx, key))
	_, err = m.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, m.Delete(ctx, key))
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().Put(ctx, FolderImages, "a.png", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrUpload)
}
