package auth

import (
	"context"

	"github.com/google/uuid"

	"musicshare/internal/store"
)

// Kind tells which account table an identity was resolved from.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    uuid.UUID
	Email string
	Kind  Kind
	Role  store.Role
}

// IsAdmin is true for admin accounts and for users holding the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Kind == KindAdmin || i.Role == store.RoleAdmin
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by the gate, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
