package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otwjunior/coffee-house/internal/identity"
)

func TestIdentity_IsStaff(t *testing.T) {
	tests := []struct {
		name  string
		ident identity.Identity
		want  bool
	}{
		{
			name:  "guest",
			ident: identity.Anonymous(),
			want:  false,
		},
		{
			name:  "customer",
			ident: identity.Identity{Role: identity.RoleCustomer, Authenticated: true},
			want:  false,
		},
		{
			name:  "barista",
			ident: identity.Identity{Role: identity.RoleBarista, Authenticated: true},
			want:  true,
		},
		{
			name:  "manager",
			ident: identity.Identity{Role: identity.RoleManager, Authenticated: true},
			want:  true,
		},
		{
			name:  "admin",
			ident: identity.Identity{Role: identity.RoleAdmin, Authenticated: true},
			want:  true,
		},
		{
			name:  "owner",
			ident: identity.Identity{Role: identity.RoleOwner, Authenticated: true},
			want:  true,
		},
		{
			name:  "staff_role_without_auth_flag",
			ident: identity.Identity{Role: identity.RoleBarista},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ident.IsStaff())
		})
	}
}

func TestMiddleware(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name    string
		headers map[string]string
		want    identity.Identity
	}{
		{
			name:    "no_headers_is_guest",
			headers: nil,
			want:    identity.Anonymous(),
		},
		{
			name: "authenticated_barista",
			headers: map[string]string{
				"X-User-Id":   userID.String(),
				"X-User-Name": "Alexei",
				"X-User-Role": "barista",
			},
			want: identity.Identity{UserID: userID, Name: "Alexei", Role: identity.RoleBarista, Authenticated: true},
		},
		{
			name: "unknown_role_downgraded_to_customer",
			headers: map[string]string{
				"X-User-Id":   userID.String(),
				"X-User-Role": "superuser",
			},
			want: identity.Identity{UserID: userID, Role: identity.RoleCustomer, Authenticated: true},
		},
		{
			name: "garbage_user_id_is_guest",
			headers: map[string]string{
				"X-User-Id":   "not-a-uuid",
				"X-User-Role": "owner",
			},
			want: identity.Anonymous(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got identity.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = identity.FromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rr := httptest.NewRecorder()
			identity.Middleware(next).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}
