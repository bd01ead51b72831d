package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"musicshare/internal/store"
)

type playlistRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type playlistPatchRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Songs       *[]uuid.UUID `json:"songs"`
}

type playlistSongRequest struct {
	SongID uuid.UUID `json:"songId"`
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	list, err := s.playlists.List(r.Context(), caller(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := s.playlists.Create(r.Context(), caller(r).ID, store.PlaylistInput{Title: req.Title, Description: req.Description})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrPlaylistNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.playlists.Get(r.Context(), caller(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrPlaylistNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req playlistPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := store.PlaylistPatch{Title: req.Title, Description: req.Description, Songs: req.Songs}
	playlist, err := s.playlists.Update(r.Context(), caller(r).ID, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrPlaylistNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := s.playlists.Delete(r.Context(), caller(r).ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrPlaylistNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req playlistSongRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := s.playlists.AddSong(r.Context(), caller(r).ID, id, req.SongID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrPlaylistNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	songID, err := pathID(r, "songId", store.ErrSongNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := s.playlists.RemoveSong(r.Context(), caller(r).ID, id, songID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
