package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	TenantLookupBackend = "backend"
	TenantLookupLocal   = "local"

	EnvAppEnv                = "STOREFRONT_APP_ENV"
	EnvPort                  = "STOREFRONT_APP_PORT"
	EnvDBDSN                 = "STOREFRONT_DB_DSN"
	EnvDBHost                = "STOREFRONT_DB_HOST"
	EnvDBUser                = "STOREFRONT_DB_USER"
	EnvDBName                = "STOREFRONT_DB_NAME"
	EnvRedisURL              = "STOREFRONT_REDIS_URL"
	EnvBackendURL            = "STOREFRONT_BACKEND_URL"
	EnvDefaultStoreID        = "STOREFRONT_DEFAULT_STORE_ID"
	EnvTenantLookup          = "STOREFRONT_TENANT_LOOKUP"
	EnvFreeShippingThreshold = "STOREFRONT_FREE_SHIPPING_THRESHOLD"
	EnvJWTSecret             = "STOREFRONT_JWT_SECRET"
	EnvCORSAllowedOrigins    = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
