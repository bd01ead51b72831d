// Package artists derives an artist index from the public album catalogue.
package artists

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"musicshare/internal/store"
)

// Artist groups the public albums credited to one artist name.
type Artist struct {
	Name   string      `json:"name"`
	Albums []uuid.UUID `json:"albums"`
}

// Filter narrows the index to names containing Name, case-insensitively.
type Filter struct {
	Name string
}

// AlbumLister exposes the album query the index is built from.
type AlbumLister interface {
	PublicAlbums(ctx context.Context) ([]store.Album, error)
}

// Service provides artist-centric reads.
type Service interface {
	List(ctx context.Context, filter Filter) ([]Artist, error)
}

type service struct {
	albums AlbumLister
}

// New constructs an artist Service backed by the supplied album lister.
func New(albums AlbumLister) Service {
	return &service{albums: albums}
}

// List merges names that differ only in case or surrounding space; the first
// spelling seen is kept.
func (s *service) List(ctx context.Context, filter Filter) ([]Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	albums, err := s.albums.PublicAlbums(ctx)
	if err != nil {
		return nil, err
	}

	var (
		index  = make(map[string]int)
		out    = []Artist{}
		target = strings.ToLower(strings.TrimSpace(filter.Name))
	)
	for _, album := range albums {
		name := strings.TrimSpace(album.Artist)
		key := strings.ToLower(name)
		if name == "" || (target != "" && !strings.Contains(key, target)) {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Artist{Name: name, Albums: []uuid.UUID{}})
		}
		out[i].Albums = append(out[i].Albums, album.ID)
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
