package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront/storefront-backend/pkg/auth"
	"github.com/storefront/storefront-backend/pkg/enums"
)

func TestRequireStoreRole(t *testing.T) {
	store := int64(3)
	other := int64(4)

	tests := []struct {
		name    string
		payload *auth.AccessTokenPayload
		status  int
	}{
		{name: "guest", status: http.StatusUnauthorized},
		{name: "shopper", payload: &auth.AccessTokenPayload{UserID: "u", StoreID: &store, Role: enums.UserRoleShopper}, status: http.StatusForbidden},
		{name: "no role", payload: &auth.AccessTokenPayload{UserID: "u", StoreID: &store}, status: http.StatusForbidden},
		{name: "other store", payload: &auth.AccessTokenPayload{UserID: "u", StoreID: &other, Role: enums.UserRoleStoreAdmin}, status: http.StatusForbidden},
		{name: "unpinned", payload: &auth.AccessTokenPayload{UserID: "u", Role: enums.UserRoleStoreAdmin}, status: http.StatusForbidden},
		{name: "admin", payload: &auth.AccessTokenPayload{UserID: "u", StoreID: &store, Role: enums.UserRoleStoreAdmin}, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var role enums.UserRole
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				role = UserRoleFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			withStore := func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(WithStoreID(r.Context(), store)))
				})
			}
			handler := OptionalAuth(testJWT, nil)(withStore(RequireStoreRole(enums.UserRoleStoreAdmin, nil)(inner)))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
			if tt.payload != nil {
				req.Header.Set("Authorization", "Bearer "+mintTestToken(t, *tt.payload))
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected %d got %d", tt.status, resp.Code)
			}
			if tt.status == http.StatusOK && role != enums.UserRoleStoreAdmin {
				t.Fatalf("expected role in context, got %q", role)
			}
		})
	}
}
