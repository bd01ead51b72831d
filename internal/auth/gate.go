package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"musicshare/internal/logging"
	"musicshare/internal/store"
)

// Resolver maps a token subject onto a stored account.
type Resolver interface {
	UserByID(ctx context.Context, id uuid.UUID) (store.User, error)
	AdminByID(ctx context.Context, id uuid.UUID) (store.Admin, error)
}

// Gate authenticates bearer tokens before protected handlers run.
type Gate struct {
	tokens   *TokenManager
	resolver Resolver
}

// NewGate builds a Gate.
func NewGate(tokens *TokenManager, resolver Resolver) *Gate {
	return &Gate{tokens: tokens, resolver: resolver}
}

// Authenticate resolves the Authorization header into an Identity. The subject
// is looked up as a user first, then as an admin.
func (g *Gate) Authenticate(ctx context.Context, header string) (Identity, error) {
	raw, err := parseBearerToken(header)
	if err != nil {
		return Identity{}, err
	}

	subject, err := g.tokens.Parse(raw)
	if err != nil {
		return Identity{}, err
	}

	user, err := g.resolver.UserByID(ctx, subject)
	if err == nil {
		return Identity{ID: user.ID, Email: user.Email, Kind: KindUser, Role: user.Role}, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return Identity{}, err
	}

	admin, err := g.resolver.AdminByID(ctx, subject)
	if err == nil {
		return Identity{ID: admin.ID, Email: admin.Email, Kind: KindAdmin, Role: store.RoleAdmin}, nil
	}
	if errors.Is(err, store.ErrAdminNotFound) {
		return Identity{}, errUnknownAccount
	}
	return Identity{}, err
}

// Require rejects the request with 401 unless it carries a valid token for a
// known account.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			g.reject(w, r, err)
			return
		}

		ctx := WithIdentity(r.Context(), id)
		ctx = logging.WithUserID(ctx, id.ID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is Require plus a 403 for callers without admin rights.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromContext(r.Context())
		if !id.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

var (
	errMissingHeader  = errors.New("authorization token required")
	errMalformedToken = errors.New("request is not authorized")
	errUnknownAccount = errors.New("account no longer exists")
)

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errMissingHeader), errors.Is(err, errMalformedToken), errors.Is(err, errUnknownAccount):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrTokenExpired), errors.Is(err, ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "request is not authorized")
	default:
		logging.WithContext(r.Context()).Error().Err(err).Msg("resolve token subject")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseBearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMalformedToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errMalformedToken
	}
	return token, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
