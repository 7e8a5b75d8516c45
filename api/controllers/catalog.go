package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/storefront-backend/api/middleware"
	"github.com/storefront/storefront-backend/api/responses"
	"github.com/storefront/storefront-backend/api/validators"
	"github.com/storefront/storefront-backend/internal/catalog"
	"github.com/storefront/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
)

const maxSearchLength = 100

// RawReader loads one proxied resource for a store.
type RawReader func(ctx context.Context, storeID int64) (catalog.Payload[json.RawMessage], error)

// ProductList handles GET /products with optional category and search filters.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, ok := tenantStore(w, r, logg)
		if !ok {
			return
		}
		query := catalog.ProductQuery{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), maxSearchLength),
			Search:   validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLength),
		}
		payload, err := svc.ListProducts(r.Context(), storeID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSourced(w, payload.Source, payload.Data)
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, ok := tenantStore(w, r, logg)
		if !ok {
			return
		}
		payload, err := svc.GetProduct(r.Context(), storeID, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSourced(w, payload.Source, payload.Data)
	}
}

// RawResource serves a proxied resource whose shape the backend owns.
func RawResource(read RawReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, ok := tenantStore(w, r, logg)
		if !ok {
			return
		}
		payload, err := read(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSourced(w, payload.Source, payload.Data)
	}
}

func writeSourced(w http.ResponseWriter, source enums.FetchSource, data any) {
	w.Header().Set(middleware.SourceHeader, source.String())
	responses.WriteSuccess(w, data)
}

func tenantStore(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (int64, bool) {
	storeID := middleware.StoreIDFromContext(r.Context())
	if storeID <= 0 {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store context missing"))
		return 0, false
	}
	return storeID, true
}
