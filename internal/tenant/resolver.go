package tenant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/metrics"
)

// DefaultStoreID is served when no tenant can be determined.
const DefaultStoreID int64 = 1

// ErrStoreNotFound signals that no store is bound to the requested host.
var ErrStoreNotFound = errors.New("store not found")

// Request carries the inputs a store id can be derived from.
type Request struct {
	Host        string
	StoreParam  string
	UserStoreID *int64
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, host string) (int64, error)

func (f LookupFunc) Resolve(ctx context.Context, host string) (int64, error) {
	return f(ctx, host)
}

// Resolver derives the store id of a request: explicit store parameter first,
// then the signed-in user's store, then the host binding.
type Resolver struct {
	cache     *Cache
	lookup    Lookup
	group     singleflight.Group
	defaultID int64
	metrics   *metrics.TenantMetrics
	logg      *logger.Logger
}

// Option configures optional resolver behavior.
type Option func(*Resolver)

func WithDefaultStoreID(id int64) Option {
	return func(r *Resolver) {
		if id > 0 {
			r.defaultID = id
		}
	}
}

func WithMetrics(m *metrics.TenantMetrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(r *Resolver) {
		r.logg = logg
	}
}

func NewResolver(cache *Cache, lookup Lookup, opts ...Option) (*Resolver, error) {
	if cache == nil {
		return nil, fmt.Errorf("tenant cache required")
	}
	if lookup == nil {
		return nil, fmt.Errorf("tenant lookup required")
	}
	r := &Resolver{cache: cache, lookup: lookup, defaultID: DefaultStoreID}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// ResolveStoreID returns the store id for req. Failures to bind the host
// wrap ErrStoreNotFound.
func (r *Resolver) ResolveStoreID(ctx context.Context, req Request) (int64, error) {
	if param := strings.TrimSpace(req.StoreParam); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil || id <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "store must be a positive integer")
		}
		r.metrics.Inc(metrics.TenantQueryParam)
		return id, nil
	}

	if req.UserStoreID != nil && *req.UserStoreID > 0 {
		r.metrics.Inc(metrics.TenantUser)
		return *req.UserStoreID, nil
	}

	host := NormalizeHost(req.Host)
	if host == "" {
		r.metrics.Inc(metrics.TenantNotFound)
		return 0, notFound(host, errors.New("host is empty"))
	}

	if id, ok := r.cache.Get(host); ok {
		r.metrics.Inc(metrics.TenantCacheHit)
		return id, nil
	}

	// Shared by every caller waiting on host; one caller going away must not
	// fail the others.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(host, func() (any, error) {
		if id, ok := r.cache.Get(host); ok {
			return id, nil
		}
		id, err := r.lookup.Resolve(lookupCtx, host)
		if err != nil {
			return int64(0), err
		}
		r.cache.Set(host, id)
		return id, nil
	})
	if err != nil {
		r.metrics.Inc(metrics.TenantNotFound)
		return 0, notFound(host, err)
	}
	r.metrics.Inc(metrics.TenantLookup)
	return v.(int64), nil
}

// ResolveOrDefault resolves req and serves the default store on any failure.
func (r *Resolver) ResolveOrDefault(ctx context.Context, req Request) int64 {
	id, err := r.ResolveStoreID(ctx, req)
	if err == nil {
		return id
	}
	r.metrics.Inc(metrics.TenantDefault)
	if r.logg != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"host":             req.Host,
			"default_store_id": r.defaultID,
			"reason":           err.Error(),
		})
		r.logg.Warn(logCtx, "tenant.resolve.default")
	}
	return r.defaultID
}

// DefaultID returns the store id served when resolution fails.
func (r *Resolver) DefaultID() int64 {
	return r.defaultID
}

// NormalizeHost lowercases host and strips any port.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

func notFound(host string, cause error) error {
	return pkgerrors.Wrap(
		pkgerrors.CodeStoreNotFound,
		fmt.Errorf("%w: %w", ErrStoreNotFound, cause),
		fmt.Sprintf("no store for host %q", host),
	)
}
