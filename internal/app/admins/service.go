package admins

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"musicshare/internal/app/users"
	"musicshare/internal/auth"
	"musicshare/internal/store"
)

// Store describes the persistence operations required by admin workflows.
type Store interface {
	CreateAdmin(ctx context.Context, email string, passwordHash []byte) (store.Admin, error)
	AdminByEmail(ctx context.Context, email string) (store.Admin, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (store.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update store.UserUpdate) (store.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (store.User, error)
}

// Service covers operator login and user management.
type Service interface {
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Create(ctx context.Context, email, password string) (store.Admin, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (store.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role store.Role) (store.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (store.User, error)
}

type service struct {
	store  Store
	tokens users.Tokens
}

// New constructs a Service backed by the provided Store.
func New(store Store, tokens users.Tokens) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Login(ctx context.Context, email, password string) (auth.Session, error) {
	if err := ctx.Err(); err != nil {
		return auth.Session{}, err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return auth.Session{}, &store.ValidationError{Message: "All fields must be filled"}
	}

	admin, err := s.store.AdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			auth.VerifyPassword(nil, password)
			return auth.Session{}, store.ErrInvalidCredentials
		}
		return auth.Session{}, err
	}
	if !auth.VerifyPassword(admin.PasswordHash, password) {
		return auth.Session{}, store.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID)
	if err != nil {
		return auth.Session{}, err
	}
	return auth.Session{Email: admin.Email, Token: token}, nil
}

// Create registers another admin. Route-level checks make sure only an admin
// reaches it; the command-line bootstrap calls it directly.
func (s *service) Create(ctx context.Context, email, password string) (store.Admin, error) {
	if err := ctx.Err(); err != nil {
		return store.Admin{}, err
	}
	if err := users.ValidateCredentials(email, password); err != nil {
		return store.Admin{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return store.Admin{}, err
	}
	return s.store.CreateAdmin(ctx, email, hash)
}

func (s *service) ListUsers(ctx context.Context) ([]store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UserByID(ctx, id)
}

func (s *service) UpdateUserRole(ctx context.Context, id uuid.UUID, role store.Role) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	role = store.Role(strings.ToUpper(strings.TrimSpace(string(role))))
	if role == "" {
		return store.User{}, &store.ValidationError{EmptyFields: []string{"role"}}
	}
	return s.store.UpdateUser(ctx, id, store.UserUpdate{Role: &role})
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.DeleteUser(ctx, id)
}
