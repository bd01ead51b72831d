package httpapi

import (
	"errors"
	"net/http"

	"musicshare/internal/assets"
	"musicshare/internal/logging"
	"musicshare/internal/store"
)

var notFoundErrors = []error{
	store.ErrUserNotFound,
	store.ErrAdminNotFound,
	store.ErrAlbumNotFound,
	store.ErrSongNotFound,
	store.ErrPlaylistNotFound,
	assets.ErrNotFound,
}

// writeError maps service errors onto status codes. Unclassified errors are
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), EmptyFields: verr.EmptyFields})
		return
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, assets.ErrUpload):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, store.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, store.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, store.ErrUserExists), errors.Is(err, store.ErrAlbumSlugTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: target.Error()})
			return
		}
	}

	logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
