package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"musicshare/internal/app/albums"
	"musicshare/internal/app/artists"
	"musicshare/internal/app/playlists"
	"musicshare/internal/app/songs"
	"musicshare/internal/app/users"
	"musicshare/internal/assets"
	"musicshare/internal/auth"
	"musicshare/internal/http/middleware"
	"musicshare/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, email, password string) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Get(ctx context.Context, id uuid.UUID) (store.User, error)
	Update(ctx context.Context, caller auth.Identity, id uuid.UUID, update users.Update) (store.User, error)
	Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) (store.User, error)
}

// AdminService covers operator login and user management.
type AdminService interface {
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Create(ctx context.Context, email, password string) (store.Admin, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (store.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role store.Role) (store.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (store.User, error)
}

// AlbumService exposes album-specific workflows.
type AlbumService interface {
	Create(ctx context.Context, owner uuid.UUID, input albums.CreateInput) (store.Album, error)
	Update(ctx context.Context, requester, id uuid.UUID, input albums.UpdateInput) (store.Album, error)
	Delete(ctx context.Context, requester, id uuid.UUID) (store.Album, error)
	ListMine(ctx context.Context, owner uuid.UUID) ([]store.Album, error)
	ListPublic(ctx context.Context) ([]store.Album, error)
	ListFavorites(ctx context.Context, user uuid.UUID) ([]store.Album, error)
	Get(ctx context.Context, id uuid.UUID) (albums.Detail, error)
	GetByTitle(ctx context.Context, slug string) (albums.Detail, error)
	ToggleFavorite(ctx context.Context, user, id uuid.UUID) (store.Album, error)
	Favorite(ctx context.Context, user, id uuid.UUID) (store.Album, error)
	Unfavorite(ctx context.Context, user, id uuid.UUID) (store.Album, error)
}

// ArtistService describes the artist index derived from public albums.
type ArtistService interface {
	List(ctx context.Context, filter artists.Filter) ([]artists.Artist, error)
}

// SongService coordinates track-level operations.
type SongService interface {
	Create(ctx context.Context, requester uuid.UUID, input songs.CreateInput) (store.Song, error)
	Get(ctx context.Context, id uuid.UUID) (store.Song, error)
	List(ctx context.Context) ([]store.Song, error)
	ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]store.Song, error)
	Update(ctx context.Context, requester, id uuid.UUID, patch store.SongPatch) (store.Song, error)
	Delete(ctx context.Context, requester, id uuid.UUID) (store.Song, error)
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	List(ctx context.Context, owner uuid.UUID) ([]store.Playlist, error)
	Get(ctx context.Context, requester, id uuid.UUID) (playlists.Detail, error)
	Create(ctx context.Context, owner uuid.UUID, input store.PlaylistInput) (store.Playlist, error)
	Update(ctx context.Context, requester, id uuid.UUID, patch store.PlaylistPatch) (store.Playlist, error)
	Delete(ctx context.Context, requester, id uuid.UUID) (store.Playlist, error)
	AddSong(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error)
	RemoveSong(ctx context.Context, requester, id, songID uuid.UUID) (store.Playlist, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	admins    AdminService
	albums    AlbumService
	artists   ArtistService
	songs     SongService
	playlists PlaylistService
	files     assets.Store
	gate      *auth.Gate
	limiter   *middleware.RateLimiter
}

// New configures a Server. A nil limiter leaves the credential routes unthrottled.
func New(
	users UserService,
	admins AdminService,
	albums AlbumService,
	artists ArtistService,
	songs SongService,
	playlists PlaylistService,
	files assets.Store,
	gate *auth.Gate,
	limiter *middleware.RateLimiter,
) *Server {
	return &Server{
		users:     users,
		admins:    admins,
		albums:    albums,
		artists:   artists,
		songs:     songs,
		playlists: playlists,
		files:     files,
		gate:      gate,
		limiter:   limiter,
	}
}

// Routes exposes the HTTP handlers for accounts, albums, songs and playlists.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Accounts
	mux.Handle("POST /api/user/signup", s.limited(s.handleSignup))
	mux.Handle("POST /api/user/login", s.limited(s.handleLogin))
	mux.Handle("GET /api/user/me", s.authed(s.handleMe))
	mux.Handle("PATCH /api/user/{id}", s.authed(s.handleUpdateUser))
	mux.Handle("DELETE /api/user/{id}", s.authed(s.handleDeleteUser))

	// Admin
	mux.Handle("POST /api/admin/login", s.limited(s.handleAdminLogin))
	mux.Handle("POST /api/admin", s.adminOnly(s.handleCreateAdmin))
	mux.Handle("GET /api/admin/users", s.adminOnly(s.handleListUsers))
	mux.Handle("GET /api/admin/users/{id}", s.adminOnly(s.handleGetUser))
	mux.Handle("PATCH /api/admin/users/{id}", s.adminOnly(s.handleUpdateUserRole))
	mux.Handle("DELETE /api/admin/users/{id}", s.adminOnly(s.handleAdminDeleteUser))

	// Albums
	mux.Handle("GET /api/album", s.authed(s.handleListMyAlbums))
	mux.HandleFunc("GET /api/album/public", s.handleListPublicAlbums)
	mux.Handle("GET /api/album/favorites", s.authed(s.handleListFavoriteAlbums))
	mux.Handle("GET /api/album/bytitle/{slug}", s.authed(s.handleGetAlbumByTitle))
	mux.Handle("GET /api/album/{id}", s.authed(s.handleGetAlbum))
	mux.Handle("POST /api/album", s.authed(s.handleCreateAlbum))
	mux.Handle("PATCH /api/album/{id}", s.authed(s.handleUpdateAlbum))
	mux.Handle("DELETE /api/album/{id}", s.authed(s.handleDeleteAlbum))
	mux.Handle("POST /api/album/{id}/favorite", s.authed(s.handleFavoriteAlbum))
	mux.Handle("DELETE /api/album/{id}/favorite", s.authed(s.handleUnfavoriteAlbum))
	mux.Handle("POST /api/album/{id}/favorite/toggle", s.authed(s.handleToggleFavorite))

	mux.HandleFunc("GET /api/artists", s.handleListArtists)

	// Songs
	mux.HandleFunc("GET /api/songs/album/{albumId}", s.handleListAlbumSongs)
	mux.HandleFunc("GET /api/songs/{id}", s.handleGetSong)
	mux.Handle("GET /api/songs", s.authed(s.handleListSongs))
	mux.Handle("POST /api/songs", s.authed(s.handleCreateSong))
	mux.Handle("PATCH /api/songs/{id}", s.authed(s.handleUpdateSong))
	mux.Handle("DELETE /api/songs/{id}", s.authed(s.handleDeleteSong))

	// Playlists
	mux.Handle("GET /api/playlist", s.authed(s.handleListPlaylists))
	mux.Handle("POST /api/playlist", s.authed(s.handleCreatePlaylist))
	mux.Handle("GET /api/playlist/{id}", s.authed(s.handleGetPlaylist))
	mux.Handle("PATCH /api/playlist/{id}", s.authed(s.handleUpdatePlaylist))
	mux.Handle("DELETE /api/playlist/{id}", s.authed(s.handleDeletePlaylist))
	mux.Handle("POST /api/playlist/{id}/songs", s.authed(s.handleAddPlaylistSong))
	mux.Handle("DELETE /api/playlist/{id}/songs/{songId}", s.authed(s.handleRemovePlaylistSong))

	// Stored covers and audio
	mux.HandleFunc("GET /api/files/{key...}", s.handleGetFile)

	return mux
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return s.gate.Require(h)
}

func (s *Server) adminOnly(h http.HandlerFunc) http.Handler {
	return s.gate.RequireAdmin(h)
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return h
	}
	return s.limiter.Middleware(h)
}

// caller returns the identity attached by the gate. Only handlers mounted
// behind authed or adminOnly call it.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error       string   `json:"error"`
	EmptyFields []string `json:"emptyFields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
