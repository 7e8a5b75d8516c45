package controllers

import (
	"net/http"

	"github.com/storefront/storefront-backend/api/responses"
	"github.com/storefront/storefront-backend/api/validators"
	"github.com/storefront/storefront-backend/internal/checkout"
	"github.com/storefront/storefront-backend/pkg/logger"
)

// OrderPlace turns the session cart into an order.
func OrderPlace(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}

		var payload checkout.CheckoutInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Execute(r.Context(), key, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
