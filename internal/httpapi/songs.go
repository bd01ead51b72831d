package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"musicshare/internal/app/songs"
	"musicshare/internal/store"
)

type songRequest struct {
	Title   string `json:"title"`
	AlbumID string `json:"album_id"`
	FileURL string `json:"file_url"`
}

type songPatchRequest struct {
	Title   *string `json:"title"`
	FileURL *string `json:"file_url"`
}

// albumRef parses an album id from a request body. Empty stays uuid.Nil so
// validation can report the field; anything else malformed is a missing album.
func albumRef(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, store.ErrAlbumNotFound
	}
	return id, nil
}

func (s *Server) handleListAlbumSongs(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "albumId", store.ErrAlbumNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.songs.ListByAlbum(r.Context(), albumID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrSongNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	song, err := s.songs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	list, err := s.songs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateSong accepts JSON naming an existing file_url, or multipart
// fields title, album_id and the audio as "file".
func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var (
		req   songRequest
		input songs.CreateInput
	)

	if isMultipart(r) {
		f, err := parseForm(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer f.cleanup()

		upload, closeUpload, err := f.file("file")
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer closeUpload()

		req = songRequest{Title: f.value("title"), AlbumID: f.value("album_id"), FileURL: f.value("file_url")}
		input.File = upload
	} else if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	albumID, err := albumRef(req.AlbumID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	input.Title = req.Title
	input.AlbumID = albumID
	input.FileURL = req.FileURL

	song, err := s.songs.Create(r.Context(), caller(r).ID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrSongNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req songPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	song, err := s.songs.Update(r.Context(), caller(r).ID, id, store.SongPatch{Title: req.Title, FileURL: req.FileURL})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrSongNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	song, err := s.songs.Delete(r.Context(), caller(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}
