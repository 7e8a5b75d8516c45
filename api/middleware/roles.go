package middleware

import (
	"net/http"

	"github.com/storefront/storefront-backend/api/responses"
	"github.com/storefront/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
)

// RequireStoreRole admits only signed-in users holding role whose token is
// pinned to the store resolved for the request. It must run after
// OptionalAuth and Tenant.
func RequireStoreRole(role enums.UserRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if UserIDFromContext(ctx) == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if UserRoleFromContext(ctx) != role {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			userStore := UserStoreIDFromContext(ctx)
			if userStore == nil || *userStore != StoreIDFromContext(ctx) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
