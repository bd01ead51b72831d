package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"musicshare/internal/auth"
	"musicshare/internal/store"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, email string, passwordHash []byte, role store.Role) (store.User, error)
	UserByEmail(ctx context.Context, email string) (store.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (store.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update store.UserUpdate) (store.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (store.User, error)
}

// Tokens issues bearer tokens for authenticated accounts.
type Tokens interface {
	Issue(subject uuid.UUID) (string, error)
}

// Update carries the optional fields a user may change on their account.
type Update struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Service exposes user-related workflows in an extensible manner.
type Service interface {
	Signup(ctx context.Context, email, password string) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Get(ctx context.Context, id uuid.UUID) (store.User, error)
	Update(ctx context.Context, caller auth.Identity, id uuid.UUID, update Update) (store.User, error)
	Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) (store.User, error)
}

type service struct {
	store  Store
	tokens Tokens
}

// New wires a Service backed by the provided Store.
func New(store Store, tokens Tokens) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, email, password string) (auth.Session, error) {
	if err := ctx.Err(); err != nil {
		return auth.Session{}, err
	}
	if err := ValidateCredentials(email, password); err != nil {
		return auth.Session{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return auth.Session{}, err
	}

	user, err := s.store.CreateUser(ctx, email, hash, store.RoleUser)
	if err != nil {
		return auth.Session{}, err
	}
	return s.session(user.ID, user.Email)
}

func (s *service) Login(ctx context.Context, email, password string) (auth.Session, error) {
	if err := ctx.Err(); err != nil {
		return auth.Session{}, err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return auth.Session{}, &store.ValidationError{Message: "All fields must be filled"}
	}

	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			auth.VerifyPassword(nil, password)
			return auth.Session{}, store.ErrInvalidCredentials
		}
		return auth.Session{}, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return auth.Session{}, store.ErrInvalidCredentials
	}
	return s.session(user.ID, user.Email)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UserByID(ctx, id)
}

func (s *service) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, update Update) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	if err := selfOrAdmin(caller, id); err != nil {
		return store.User{}, err
	}

	var patch store.UserUpdate
	if update.Email != nil {
		if err := ValidateEmail(*update.Email); err != nil {
			return store.User{}, err
		}
		patch.Email = update.Email
	}
	if update.Password != nil {
		if err := ValidatePassword(*update.Password); err != nil {
			return store.User{}, err
		}
		hash, err := auth.HashPassword(*update.Password)
		if err != nil {
			return store.User{}, err
		}
		patch.PasswordHash = hash
	}
	return s.store.UpdateUser(ctx, id, patch)
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	if err := selfOrAdmin(caller, id); err != nil {
		return store.User{}, err
	}
	return s.store.DeleteUser(ctx, id)
}

func (s *service) session(id uuid.UUID, email string) (auth.Session, error) {
	token, err := s.tokens.Issue(id)
	if err != nil {
		return auth.Session{}, err
	}
	return auth.Session{Email: email, Token: token}, nil
}

func selfOrAdmin(caller auth.Identity, id uuid.UUID) error {
	if caller.ID == id || caller.IsAdmin() {
		return nil
	}
	return store.ErrForbidden
}

// ValidateCredentials checks a signup email and password.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &store.ValidationError{Message: "All fields must be filled"}
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// ValidateEmail accepts a bare address such as "ann@example.com".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return &store.ValidationError{Message: "Email is not valid"}
	}
	return nil
}

// ValidatePassword requires at least eight characters mixing upper case,
// lower case, digits and symbols.
func ValidatePassword(password string) error {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if len([]rune(password)) < 8 || !upper || !lower || !digit || !symbol {
		return &store.ValidationError{Message: "Password not strong enough"}
	}
	return nil
}
