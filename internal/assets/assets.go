// Package assets stores uploaded binaries (album covers, audio files) in an
// object store and hands back the key persisted on the owning record.
package assets

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	// FolderImages holds album covers.
	FolderImages = "images"
	// FolderSongs holds audio files.
	FolderSongs = "songs"
)

var (
	// ErrUpload wraps every failure talking to the object store on write.
	ErrUpload = errors.New("upload failed")
	// ErrNotFound reports a key with no stored object.
	ErrNotFound = errors.New("object not found")
)

// Object is a stored binary opened for reading. Callers close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Upload is an incoming file waiting to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store is the object-store abstraction the services depend on.
type Store interface {
	Put(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-free key "<folder>/<uuid><ext>", keeping the
// extension of the uploaded filename.
func NewKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	return strings.Trim(folder, "/") + "/" + uuid.NewString() + ext
}

// Save stores u under folder.
func Save(ctx context.Context, s Store, folder string, u *Upload) (string, error) {
	return s.Put(ctx, folder, u.Filename, u.Body, u.Size, u.ContentType)
}

// Owned reports whether ref is a key this service stored under folder, as
// opposed to an external URL supplied by a client.
func Owned(ref, folder string) bool {
	return strings.HasPrefix(ref, folder+"/") && ValidKey(ref)
}

// Managed reports whether a client-supplied ref points into a folder this
// service writes uploads to. Such refs are rejected so a record can only hold
// a stored key that its own upload produced.
func Managed(ref string) bool {
	ref = strings.ToLower(strings.TrimLeft(strings.TrimSpace(ref), "/"))
	for _, folder := range []string{FolderImages, FolderSongs} {
		if strings.HasPrefix(ref, folder+"/") {
			return true
		}
	}
	return false
}

// ValidKey rejects keys that could escape the store's namespace.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
