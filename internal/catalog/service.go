package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storefront/storefront-backend/internal/cart"
	"github.com/storefront/storefront-backend/pkg/backend"
	"github.com/storefront/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/metrics"
)

// Product is the catalog representation shared with cart lines.
type Product = cart.ProductRecord

// Payload pairs proxied data with where it came from.
type Payload[T any] struct {
	Data   T
	Source enums.FetchSource
}

// ProductQuery narrows a product listing.
type ProductQuery struct {
	Category string
	Search   string
}

const (
	resourceProducts      = "products"
	resourceProduct       = "product"
	resourceCategories    = "categories"
	resourceCoupons       = "coupons"
	resourceCouponCheck   = "coupon_validate"
	resourceOrders        = "orders"
	resourceOrderCreate   = "order_create"
	resourceClients       = "clients"
	resourceNotifications = "notifications"
	resourceAppearance    = "appearance"
)

// Service proxies per-store catalog resources to the backend.
type Service interface {
	ListProducts(ctx context.Context, storeID int64, query ProductQuery) (Payload[[]Product], error)
	GetProduct(ctx context.Context, storeID int64, productID string) (Payload[Product], error)
	ListCategories(ctx context.Context, storeID int64) (Payload[json.RawMessage], error)
	ListCoupons(ctx context.Context, storeID int64) (Payload[json.RawMessage], error)
	ListOrders(ctx context.Context, storeID int64) (Payload[json.RawMessage], error)
	ListClients(ctx context.Context, storeID int64) (Payload[json.RawMessage], error)
	ListNotifications(ctx context.Context, storeID int64) (Payload[json.RawMessage], error)
	GetAppearance(ctx context.Context, storeID int64) (Payload[json.RawMessage], error)
	ValidateCoupon(ctx context.Context, storeID int64, code string) (cart.Coupon, error)
	CreateOrder(ctx context.Context, storeID int64, order Order) (json.RawMessage, error)
}

type service struct {
	client   *backend.Client
	fallback bool
	metrics  *metrics.ProxyMetrics
	logg     *logger.Logger
}

// Option configures optional service behavior.
type Option func(*service)

// WithFallback toggles serving static payloads when the backend is unreachable.
func WithFallback(enabled bool) Option {
	return func(s *service) {
		s.fallback = enabled
	}
}

func WithMetrics(m *metrics.ProxyMetrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *service) {
		s.logg = logg
	}
}

// NewService builds a catalog service. Fallback is enabled unless turned off.
func NewService(client *backend.Client, opts ...Option) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("backend client required")
	}
	s := &service{client: client, fallback: true}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *service) ListProducts(ctx context.Context, storeID int64, query ProductQuery) (Payload[[]Product], error) {
	q := storeQuery(storeID)
	if v := strings.TrimSpace(query.Category); v != "" {
		q.Set("category", v)
	}
	if v := strings.TrimSpace(query.Search); v != "" {
		q.Set("search", v)
	}
	return read(ctx, s, resourceProducts, "/api/products", q, filterProducts(fallbackProducts(), query))
}

func (s *service) GetProduct(ctx context.Context, storeID int64, productID string) (Payload[Product], error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Payload[Product]{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	path := "/api/products/" + url.PathEscape(productID)
	result := fetch(ctx, s, resourceProduct, func(ctx context.Context) backend.Result[Product] {
		return backend.Fetch[Product](ctx, s.client, path, storeQuery(storeID))
	})
	if s.fallback && backend.IsKind(result.Err(), backend.KindUnreachable) {
		mock, ok := findFallbackProduct(productID)
		if !ok {
			return Payload[Product]{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		result = result.OrElseUnreachable(mock)
	}
	return payload(ctx, s, resourceProduct, result)
}

func (s *service) ListCategories(ctx context.Context, storeID int64) (Payload[json.RawMessage], error) {
	return read(ctx, s, resourceCategories, "/api/categories", storeQuery(storeID), fallbackCategories)
}

func (s *service) ListCoupons(ctx context.Context, storeID int64) (Payload[json.RawMessage], error) {
	return read(ctx, s, resourceCoupons, "/api/coupons", storeQuery(storeID), fallbackCoupons)
}

func (s *service) ListOrders(ctx context.Context, storeID int64) (Payload[json.RawMessage], error) {
	return read(ctx, s, resourceOrders, "/api/orders", storeQuery(storeID), fallbackOrders)
}

func (s *service) ListClients(ctx context.Context, storeID int64) (Payload[json.RawMessage], error) {
	return read(ctx, s, resourceClients, "/api/clients", storeQuery(storeID), fallbackClients)
}

func (s *service) ListNotifications(ctx context.Context, storeID int64) (Payload[json.RawMessage], error) {
	return read(ctx, s, resourceNotifications, "/api/notifications", storeQuery(storeID), fallbackNotifications)
}

func (s *service) GetAppearance(ctx context.Context, storeID int64) (Payload[json.RawMessage], error) {
	return read(ctx, s, resourceAppearance, "/api/appearance", storeQuery(storeID), fallbackAppearance)
}

type couponValidation struct {
	Valid   bool               `json:"valid"`
	Coupon  *cart.CouponRecord `json:"coupon,omitempty"`
	Message string             `json:"message,omitempty"`
}

// ValidateCoupon asks the backend whether code is redeemable for the store.
// There is no fallback: an unreachable backend never grants a discount.
func (s *service) ValidateCoupon(ctx context.Context, storeID int64, code string) (cart.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return cart.Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	q := storeQuery(storeID)
	q.Set("code", code)
	result := fetch(ctx, s, resourceCouponCheck, func(ctx context.Context) backend.Result[couponValidation] {
		return backend.Fetch[couponValidation](ctx, s.client, "/api/coupons/validate", q)
	})
	resp, err := result.Unwrap()
	if err != nil {
		if backend.IsKind(err, backend.KindNotFound) {
			return cart.Coupon{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "coupon not found")
		}
		return cart.Coupon{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "coupon validation unavailable")
	}
	if !resp.Valid || resp.Coupon == nil {
		msg := resp.Message
		if msg == "" {
			msg = "coupon is not valid"
		}
		return cart.Coupon{}, pkgerrors.New(pkgerrors.CodeValidation, msg)
	}
	coupon, ok := resp.Coupon.ToCoupon()
	if !ok {
		return cart.Coupon{}, pkgerrors.New(pkgerrors.CodeDependency, "backend returned an unsupported coupon type")
	}
	return coupon, nil
}

// CreateOrder forwards order to the backend. Writes are never faked.
func (s *service) CreateOrder(ctx context.Context, storeID int64, order Order) (json.RawMessage, error) {
	start := time.Now()
	var created json.RawMessage
	err := s.client.Post(ctx, "/api/orders", storeQuery(storeID), order, &created)
	s.metrics.ObserveDuration(resourceOrderCreate, time.Since(start))
	if err != nil {
		fe := backend.AsFetchError(err)
		if fe != nil {
			s.metrics.IncFailure(resourceOrderCreate, string(fe.Kind))
		}
		if fe != nil && fe.Status >= http.StatusBadRequest && fe.Status < http.StatusInternalServerError {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order rejected")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order could not be placed")
	}
	return created, nil
}

func read[T any](ctx context.Context, s *service, resource, path string, query url.Values, def T) (Payload[T], error) {
	result := fetch(ctx, s, resource, func(ctx context.Context) backend.Result[T] {
		return backend.Fetch[T](ctx, s.client, path, query)
	})
	if s.fallback {
		result = result.OrElseUnreachable(def)
	}
	return payload(ctx, s, resource, result)
}

func fetch[T any](ctx context.Context, s *service, resource string, call func(context.Context) backend.Result[T]) backend.Result[T] {
	start := time.Now()
	result := call(ctx)
	s.metrics.ObserveDuration(resource, time.Since(start))
	if fe := backend.AsFetchError(result.Err()); fe != nil {
		s.metrics.IncFailure(resource, string(fe.Kind))
	}
	return result
}

// payload unwraps result for a read, mapping backend failures onto coded
// errors. A backend not-found stays a not-found.
func payload[T any](ctx context.Context, s *service, resource string, result backend.Result[T]) (Payload[T], error) {
	value, err := result.Unwrap()
	if err != nil {
		if backend.IsKind(err, backend.KindNotFound) {
			return Payload[T]{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, resource+" not found")
		}
		return Payload[T]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, resource+" unavailable")
	}
	if !result.Fallback() {
		return Payload[T]{Data: value, Source: enums.FetchSourceBackend}, nil
	}

	s.metrics.IncFallback(resource)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"resource": resource})
		s.logg.Warn(logCtx, "catalog.fallback")
	}
	return Payload[T]{Data: value, Source: enums.FetchSourceFallback}, nil
}

func storeQuery(storeID int64) url.Values {
	return url.Values{"storeId": {strconv.FormatInt(storeID, 10)}}
}
