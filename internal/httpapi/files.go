package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"musicshare/internal/assets"
	"musicshare/internal/logging"
)

// handleGetFile streams a stored cover or audio file. Keys are immutable, so
// responses may be cached indefinitely.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !assets.ValidKey(key) {
		writeError(w, r, assets.ErrNotFound)
		return
	}

	obj, err := s.files.Get(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		logging.WithContext(r.Context()).Warn().Err(err).Str("key", key).Msg("stream file")
	}
}
