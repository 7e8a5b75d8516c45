package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Backend      BackendConfig
	Tenant       TenantConfig
	Cart         CartConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Cart.Threshold(); err != nil {
		return nil, err
	}
	if err := cfg.Tenant.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STOREFRONT_DB_DSN"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BackendConfig points at the external service the catalog and tenant
// lookups are proxied to.
type BackendConfig struct {
	BaseURL  string        `envconfig:"STOREFRONT_BACKEND_URL" required:"true"`
	Timeout  time.Duration `envconfig:"STOREFRONT_BACKEND_TIMEOUT" default:"10s"`
	Fallback bool          `envconfig:"STOREFRONT_BACKEND_FALLBACK" default:"true"`
}

// TenantConfig controls store resolution. Lookup selects where unknown hosts
// are resolved: "backend" asks the backend resolution endpoint, "local" reads
// the stores table directly.
type TenantConfig struct {
	DefaultStoreID int64         `envconfig:"STOREFRONT_DEFAULT_STORE_ID" default:"1"`
	CacheTTL       time.Duration `envconfig:"STOREFRONT_TENANT_CACHE_TTL" default:"10m"`
	Lookup         string        `envconfig:"STOREFRONT_TENANT_LOOKUP" default:"backend"`
}

func (t TenantConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(t.Lookup)) {
	case TenantLookupBackend, TenantLookupLocal:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvTenantLookup, TenantLookupBackend, TenantLookupLocal)
	}
	if t.DefaultStoreID <= 0 {
		return fmt.Errorf("%s must be positive", EnvDefaultStoreID)
	}
	return nil
}

// UsesLocalLookup reports whether hosts resolve against the stores table.
func (t TenantConfig) UsesLocalLookup() bool {
	return strings.EqualFold(strings.TrimSpace(t.Lookup), TenantLookupLocal)
}

type CartConfig struct {
	FreeShippingThreshold string        `envconfig:"STOREFRONT_FREE_SHIPPING_THRESHOLD" default:"199.00"`
	TTL                   time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"720h"`
}

// Threshold parses the configured free-shipping threshold.
func (c CartConfig) Threshold() (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(c.FreeShippingThreshold))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", EnvFreeShippingThreshold, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must be non-negative", EnvFreeShippingThreshold)
	}
	return value, nil
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// RateLimitConfig throttles coupon attempts per client IP. A zero window or
// limit disables the check. TrustForwardedFor keys clients by the last
// X-Forwarded-For hop and must only be set behind a proxy.
type RateLimitConfig struct {
	CouponWindow      time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_COUPON_WINDOW" default:"1m"`
	CouponLimit       int           `envconfig:"STOREFRONT_RATE_LIMIT_COUPON_LIMIT" default:"20"`
	TrustForwardedFor bool          `envconfig:"STOREFRONT_RATE_LIMIT_TRUST_FORWARDED_FOR" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	discreteValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discreteValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
