package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/storefront/storefront-backend/api/responses"
	"github.com/storefront/storefront-backend/api/validators"
	"github.com/storefront/storefront-backend/internal/tenant"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
)

const storeQueryParam = "store"

type storeResolver interface {
	ResolveOrDefault(ctx context.Context, req tenant.Request) int64
}

// Tenant resolves the store a request belongs to and stores it in the
// request and log contexts. Unresolvable hosts are served by the default
// store; a malformed store parameter is rejected.
func Tenant(resolver storeResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			param, present, err := validators.ParseQueryInt64(r, storeQueryParam)
			if err == nil && present && param <= 0 {
				err = pkgerrors.New(pkgerrors.CodeValidation, "store must be a positive integer").
					WithDetails(map[string]any{"field": storeQueryParam})
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			req := tenant.Request{
				Host:        requestHost(r),
				UserStoreID: UserStoreIDFromContext(r.Context()),
			}
			if present {
				req.StoreParam = strconv.FormatInt(param, 10)
			}

			storeID := resolver.ResolveOrDefault(r.Context(), req)
			ctx := WithStoreID(r.Context(), storeID)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, storeID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestHost prefers the first X-Forwarded-Host entry set by the edge proxy.
func requestHost(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	return r.Host
}
