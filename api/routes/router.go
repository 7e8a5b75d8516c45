package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/storefront-backend/api/controllers"
	"github.com/storefront/storefront-backend/api/middleware"
	"github.com/storefront/storefront-backend/internal/cart"
	"github.com/storefront/storefront-backend/internal/catalog"
	checkoutsvc "github.com/storefront/storefront-backend/internal/checkout"
	"github.com/storefront/storefront-backend/internal/stores"
	"github.com/storefront/storefront-backend/internal/tenant"
	"github.com/storefront/storefront-backend/pkg/config"
	"github.com/storefront/storefront-backend/pkg/db"
	"github.com/storefront/storefront-backend/pkg/enums"
	"github.com/storefront/storefront-backend/pkg/logger"
	pkgredis "github.com/storefront/storefront-backend/pkg/redis"
)

// cacheStore is the redis surface the HTTP layer depends on directly.
type cacheStore interface {
	pkgredis.Pinger
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type tenantResolver interface {
	ResolveOrDefault(ctx context.Context, req tenant.Request) int64
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient cacheStore,
	metricsHandler http.Handler,
	resolver tenantResolver,
	storeService stores.Service,
	cartService cart.Service,
	catalogService catalog.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	couponPolicy := middleware.NewRateLimitPolicy(
		"coupon",
		cfg.RateLimit.CouponWindow,
		cfg.RateLimit.CouponLimit,
		middleware.TrustForwardedFor(cfg.RateLimit.TrustForwardedFor),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Get("/api/stores/resolve-store", controllers.ResolveStore(storeService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.Tenant(resolver, logg))
		r.Use(middleware.CartSession(cfg.Cart.TTL, cfg.App.IsProd(), logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, catalogService, logg))
			r.Delete("/items/{key}", controllers.CartRemoveItem(cartService, logg))
			r.Patch("/items/{key}", controllers.CartUpdateQuantity(cartService, logg))
			r.Post("/toggle", controllers.CartToggle(cartService, logg))
			r.With(middleware.RateLimit(couponPolicy, redisClient, logg)).
				Post("/coupon", controllers.CartApplyCoupon(cartService, catalogService, logg))
			r.Delete("/coupon", controllers.CartRemoveCoupon(cartService, logg))
			r.Put("/shipping", controllers.CartSetShipping(cartService, logg))
		})

		r.Get("/products", controllers.ProductList(catalogService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(catalogService, logg))
		r.Get("/categories", controllers.RawResource(catalogService.ListCategories, logg))
		r.Get("/coupons", controllers.RawResource(catalogService.ListCoupons, logg))
		r.Get("/appearance", controllers.RawResource(catalogService.GetAppearance, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStoreRole(enums.UserRoleStoreAdmin, logg))
			r.Get("/clients", controllers.RawResource(catalogService.ListClients, logg))
			r.Get("/notifications", controllers.RawResource(catalogService.ListNotifications, logg))
			r.Get("/orders", controllers.RawResource(catalogService.ListOrders, logg))
		})
		r.With(middleware.Idempotency(redisClient, middleware.DefaultIdempotencyTTL, logg)).
			Post("/orders", controllers.OrderPlace(checkoutService, logg))
	})

	return r
}

