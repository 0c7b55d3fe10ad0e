package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	StoreDriverRedis  = "redis"
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

const (
	EnvAppEnv      = "STOREFRONT_APP_ENV"
	EnvLogLevel    = "STOREFRONT_LOG_LEVEL"
	EnvStoreDriver = "STOREFRONT_STORE_DRIVER"
	EnvSQLitePath  = "STOREFRONT_SQLITE_PATH"
	EnvRedisURL    = "STOREFRONT_REDIS_URL"
	EnvRedisAddr   = "STOREFRONT_REDIS_ADDR"
	EnvPageDoc     = "STOREFRONT_PAGE_DOCUMENT"
)
