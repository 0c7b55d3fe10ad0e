package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App   AppConfig
	Store StoreConfig
	Page  PageConfig
	UI    UIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects and configures the persisted key/value driver. The
// redis driver is the only one that can deliver change events across
// processes; sqlite keeps everything on the local device.
type StoreConfig struct {
	Driver     string `envconfig:"STOREFRONT_STORE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"STOREFRONT_SQLITE_PATH" default:"storefront.db"`
	Redis      RedisConfig
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

type PageConfig struct {
	DocumentPath string `envconfig:"STOREFRONT_PAGE_DOCUMENT" default:"index.html"`
}

// UIConfig carries the fixed interaction delays. Defaults mirror the page
// behaviour: 1s add-button cooldown, 2s notification lifetime with a 300ms
// fade, and a 1.5s pause before the unauthenticated login redirect.
type UIConfig struct {
	ButtonCooldown       time.Duration `envconfig:"STOREFRONT_UI_BUTTON_COOLDOWN" default:"1s"`
	NotificationLifetime time.Duration `envconfig:"STOREFRONT_UI_NOTIFICATION_LIFETIME" default:"2s"`
	NotificationFade     time.Duration `envconfig:"STOREFRONT_UI_NOTIFICATION_FADE" default:"300ms"`
	LoginRedirectDelay   time.Duration `envconfig:"STOREFRONT_UI_LOGIN_REDIRECT_DELAY" default:"1500ms"`
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StoreDriverRedis:
		if s.Redis.URL == "" && s.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis driver", EnvRedisURL, EnvRedisAddr)
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvSQLitePath)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", s.Driver)
	}
	return nil
}
