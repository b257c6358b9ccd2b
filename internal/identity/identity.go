// Package identity carries the caller identity resolved by the API gateway.
// Token verification happens upstream; this service trusts the forwarded
// identity headers and only reasons about role tiers.
package identity

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleBarista  Role = "barista"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
)

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBarista, RoleManager, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// Identity describes the caller of a request. The zero value is an
// unauthenticated guest.
type Identity struct {
	UserID        uuid.UUID
	Name          string
	Role          Role
	Authenticated bool
}

// Anonymous returns a guest identity.
func Anonymous() Identity {
	return Identity{}
}

// IsStaff reports whether the caller may manage order fulfillment.
// Baristas and every role above them count as staff.
func (i Identity) IsStaff() bool {
	if !i.Authenticated {
		return false
	}
	switch i.Role {
	case RoleBarista, RoleManager, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

type contextKey struct{}

// FromContext returns the identity stored by Middleware, or a guest identity
// if none was stored.
func FromContext(ctx context.Context) Identity {
	if ident, ok := ctx.Value(contextKey{}).(Identity); ok {
		return ident
	}
	return Anonymous()
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

// Middleware resolves the caller identity from the X-User-Id, X-User-Name and
// X-User-Role headers set by the gateway. Requests without a parseable user id
// proceed as guests.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := Anonymous()

		if rawID := r.Header.Get("X-User-Id"); rawID != "" {
			userID, err := uuid.FromString(rawID)
			if err == nil {
				role := Role(r.Header.Get("X-User-Role"))
				if !role.Valid() {
					role = RoleCustomer
				}
				ident = Identity{
					UserID:        userID,
					Name:          r.Header.Get("X-User-Name"),
					Role:          role,
					Authenticated: true,
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}
