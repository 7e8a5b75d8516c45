package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/storefront/storefront-backend/api/responses"
	pkgAuth "github.com/storefront/storefront-backend/pkg/auth"
	"github.com/storefront/storefront-backend/pkg/config"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
)

// OptionalAuth seeds the request context with the claims of a bearer token
// when one is sent. Requests without credentials continue as guests; a token
// that is sent but fails validation is rejected.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
			if claims.StoreID != nil && *claims.StoreID > 0 {
				ctx = context.WithValue(ctx, ctxUserStoreID, *claims.StoreID)
			}
			if claims.Role != "" {
				ctx = context.WithValue(ctx, ctxUserRole, claims.Role)
			}
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
