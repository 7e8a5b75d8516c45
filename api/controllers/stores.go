package controllers

import (
	"net/http"
	"strings"

	"github.com/storefront/storefront-backend/api/responses"
	"github.com/storefront/storefront-backend/internal/stores"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/types"
)

// ResolveStore answers GET /api/stores/resolve-store?host= in the flat
// {success, storeId, message} shape that storefront resolvers consume.
func ResolveStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		host := strings.TrimSpace(r.URL.Query().Get("host"))
		if host == "" {
			responses.WriteRaw(w, http.StatusBadRequest, types.StoreResolution{Message: "host is required"})
			return
		}

		storeID, err := svc.ResolveHost(r.Context(), host)
		switch {
		case err == nil:
			responses.WriteRaw(w, http.StatusOK, types.StoreResolution{Success: true, StoreID: &storeID})
		case pkgerrors.HasCode(err, pkgerrors.CodeStoreNotFound):
			responses.WriteRaw(w, http.StatusNotFound, types.StoreResolution{Message: "Store not found"})
		case pkgerrors.HasCode(err, pkgerrors.CodeValidation):
			responses.WriteRaw(w, http.StatusBadRequest, types.StoreResolution{Message: pkgerrors.As(err).Message()})
		default:
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}
