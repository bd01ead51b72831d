package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"musicshare/internal/assets"
	"musicshare/internal/store"
)

const (
	maxJSONBytes   = 1 << 20
	maxUploadBytes = 64 << 20
	// multipart parts beyond this are spooled to temporary files
	multipartMemory = 8 << 20
)

// pathID parses the named path segment. A malformed id is reported as the
// resource's not-found error so clients see a single 404 for both cases.
func pathID(r *http.Request, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &store.ValidationError{Message: "invalid JSON payload"}
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// form wraps a parsed multipart request.
type form struct {
	r *http.Request
}

func parseForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, &store.ValidationError{Message: "invalid multipart payload"}
	}
	return &form{r: r}, nil
}

func (f *form) value(key string) string {
	return f.r.FormValue(key)
}

// optional returns nil when the field was not sent at all.
func (f *form) optional(key string) *string {
	values, ok := f.r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func (f *form) bool(key string) (bool, error) {
	raw := strings.TrimSpace(f.value(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &store.ValidationError{Message: key + " must be true or false"}
	}
	return v, nil
}

// file returns the uploaded part, or nil when none was sent. The caller owns
// closing the returned closer.
func (f *form) file(key string) (*assets.Upload, func(), error) {
	file, header, err := f.r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, &store.ValidationError{Message: "invalid " + key + " upload"}
	}
	upload := &assets.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return upload, func() { _ = file.Close() }, nil
}

func (f *form) cleanup() {
	if f.r.MultipartForm != nil {
		_ = f.r.MultipartForm.RemoveAll()
	}
}
