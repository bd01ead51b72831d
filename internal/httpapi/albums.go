package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"musicshare/internal/app/albums"
	"musicshare/internal/app/artists"
	"musicshare/internal/store"
)

type albumPatchRequest struct {
	Title    *string `json:"title"`
	Artist   *string `json:"artist"`
	IsPublic *bool   `json:"isPublic"`
}

func (s *Server) handleListMyAlbums(w http.ResponseWriter, r *http.Request) {
	list, err := s.albums.ListMine(r.Context(), caller(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListPublicAlbums(w http.ResponseWriter, r *http.Request) {
	list, err := s.albums.ListPublic(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListFavoriteAlbums(w http.ResponseWriter, r *http.Request) {
	list, err := s.albums.ListFavorites(r.Context(), caller(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrAlbumNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.albums.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleGetAlbumByTitle(w http.ResponseWriter, r *http.Request) {
	detail, err := s.albums.GetByTitle(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleCreateAlbum accepts multipart fields title, artist, isPublic and the
// cover image as "image".
func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	f, err := parseForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.cleanup()

	isPublic, err := f.bool("isPublic")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cover, closeCover, err := f.file("image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closeCover()

	album, err := s.albums.Create(r.Context(), caller(r).ID, albums.CreateInput{
		Title:    f.value("title"),
		Artist:   f.value("artist"),
		IsPublic: isPublic,
		Cover:    cover,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

// handleUpdateAlbum takes either JSON or multipart; only multipart can carry a
// replacement cover.
func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrAlbumNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input albums.UpdateInput
	if isMultipart(r) {
		f, err := parseForm(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer f.cleanup()

		input.Title = f.optional("title")
		input.Artist = f.optional("artist")
		if f.optional("isPublic") != nil {
			isPublic, err := f.bool("isPublic")
			if err != nil {
				writeError(w, r, err)
				return
			}
			input.IsPublic = &isPublic
		}
		cover, closeCover, err := f.file("image")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeCover()
		input.Cover = cover
	} else {
		var req albumPatchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		input = albums.UpdateInput{Title: req.Title, Artist: req.Artist, IsPublic: req.IsPublic}
	}

	album, err := s.albums.Update(r.Context(), caller(r).ID, id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrAlbumNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	album, err := s.albums.Delete(r.Context(), caller(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleFavoriteAlbum(w http.ResponseWriter, r *http.Request) {
	s.favoriteAction(w, r, s.albums.Favorite)
}

func (s *Server) handleUnfavoriteAlbum(w http.ResponseWriter, r *http.Request) {
	s.favoriteAction(w, r, s.albums.Unfavorite)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	s.favoriteAction(w, r, s.albums.ToggleFavorite)
}

func (s *Server) favoriteAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, user, id uuid.UUID) (store.Album, error)) {
	id, err := pathID(r, "id", store.ErrAlbumNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	album, err := action(r.Context(), caller(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	list, err := s.artists.List(r.Context(), artists.Filter{Name: r.URL.Query().Get("name")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
