package controllers

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-backend/api/middleware"
	"github.com/storefront/storefront-backend/api/responses"
	"github.com/storefront/storefront-backend/api/validators"
	cartsvc "github.com/storefront/storefront-backend/internal/cart"
	"github.com/storefront/storefront-backend/internal/catalog"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
)

type productLookup interface {
	GetProduct(ctx context.Context, storeID int64, productID string) (catalog.Payload[catalog.Product], error)
}

type couponValidator interface {
	ValidateCoupon(ctx context.Context, storeID int64, code string) (cartsvc.Coupon, error)
}

type addItemRequest struct {
	ProductID     string `json:"productId" validate:"required,max=64"`
	SelectedSize  string `json:"selectedSize" validate:"max=32"`
	SelectedColor string `json:"selectedColor" validate:"max=32"`
	Quantity      int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type shippingRequest struct {
	Cost *float64 `json:"cost" validate:"required,gte=0"`
}

// CartFetch returns the session cart with derived totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		current, err := svc.Get(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartsvc.NewView(current))
	}
}

// CartAddItem adds a product line. Product data is read from the catalog so
// prices never come from the client.
func CartAddItem(svc cartsvc.Service, products productLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := products.GetProduct(r.Context(), key.StoreID, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size := strings.TrimSpace(payload.SelectedSize)
		color := strings.TrimSpace(payload.SelectedColor)
		if err := validateVariant(found.Data, size, color); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity := max(payload.Quantity, 1)
		product := found.Data.ToProduct()
		lineKey := cartsvc.LineKey(product.ID, size, color)
		updated, err := svc.Mutate(r.Context(), key, func(c *cartsvc.Cart) {
			for i := 0; i < quantity && c.Quantity(lineKey) < cartsvc.MaxLineQuantity; i++ {
				c.AddItem(product, size, color)
			}
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartsvc.NewView(updated))
	}
}

// CartRemoveItem removes a line by composite key or bare product id.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		itemKey, err := lineKeyParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mutate(w, r, svc, key, logg, func(c *cartsvc.Cart) { c.RemoveItem(itemKey) })
	}
}

// CartUpdateQuantity sets a line's quantity; values at or below zero drop it
// and values above MaxLineQuantity are rejected.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		itemKey, err := lineKeyParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := *payload.Quantity
		mutate(w, r, svc, key, logg, func(c *cartsvc.Cart) { c.UpdateQuantity(itemKey, quantity) })
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		mutate(w, r, svc, key, logg, func(c *cartsvc.Cart) { c.Clear() })
	}
}

func CartToggle(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		mutate(w, r, svc, key, logg, func(c *cartsvc.Cart) { c.Toggle() })
	}
}

// CartApplyCoupon validates code with the backend before applying it.
func CartApplyCoupon(svc cartsvc.Service, coupons couponValidator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := coupons.ValidateCoupon(r.Context(), key.StoreID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mutate(w, r, svc, key, logg, func(c *cartsvc.Cart) { c.ApplyCoupon(coupon) })
	}
}

func CartRemoveCoupon(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		mutate(w, r, svc, key, logg, func(c *cartsvc.Cart) { c.RemoveCoupon() })
	}
}

func CartSetShipping(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := sessionKey(w, r, logg)
		if !ok {
			return
		}
		var payload shippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cost := decimal.NewFromFloat(*payload.Cost)
		mutate(w, r, svc, key, logg, func(c *cartsvc.Cart) { c.SetShipping(cost) })
	}
}

func mutate(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, key cartsvc.SessionKey, logg *logger.Logger, fn func(*cartsvc.Cart)) {
	updated, err := svc.Mutate(r.Context(), key, fn)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, cartsvc.NewView(updated))
}

func sessionKey(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (cartsvc.SessionKey, bool) {
	storeID := middleware.StoreIDFromContext(r.Context())
	if storeID <= 0 {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store context missing"))
		return cartsvc.SessionKey{}, false
	}
	session := middleware.CartSessionFromContext(r.Context())
	if session == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing"))
		return cartsvc.SessionKey{}, false
	}
	return cartsvc.SessionKey{StoreID: storeID, SessionID: session}, true
}

func lineKeyParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "key")
	itemKey, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(itemKey) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item key").WithDetails(map[string]any{"field": "key"})
	}
	return itemKey, nil
}

func validateVariant(product catalog.Product, size, color string) error {
	details := map[string]any{}
	if len(product.Sizes) > 0 && !slices.Contains(product.Sizes, size) {
		details["selectedSize"] = "must be one of the product sizes"
	}
	if len(product.Colors) > 0 && !slices.Contains(product.Colors, color) {
		details["selectedColor"] = "must be one of the product colors"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unavailable product variant").WithDetails(details)
	}
	return nil
}
