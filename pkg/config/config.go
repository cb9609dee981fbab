package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "MINISHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Cart     CartConfig
	DB       DBConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Payments PaymentsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := multierr.Combine(cfg.Cart.validate(), cfg.DB.validate()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MINISHOP_APP_ENV" default:"dev"`
	Port         string `envconfig:"MINISHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MINISHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MINISHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points the storefront engine at its API collaborator.
type BackendConfig struct {
	BaseURL string        `envconfig:"MINISHOP_BACKEND_BASE_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"MINISHOP_BACKEND_TIMEOUT" default:"10s"`
}

// CartConfig selects where the cart is persisted between sessions.
type CartConfig struct {
	StorageDriver string `envconfig:"MINISHOP_CART_STORAGE_DRIVER" default:"file"`
	StorageKey    string `envconfig:"MINISHOP_CART_STORAGE_KEY" default:"cart"`
	FilePath      string `envconfig:"MINISHOP_CART_FILE_PATH" default:".minishop-cart.json"`
}

const (
	CartStorageFile   = "file"
	CartStorageRedis  = "redis"
	CartStorageMemory = "memory"
)

func (c CartConfig) validate() error {
	switch c.StorageDriver {
	case CartStorageFile, CartStorageRedis, CartStorageMemory:
		return nil
	}
	return fmt.Errorf("unknown cart storage driver %q", c.StorageDriver)
}

type DBConfig struct {
	Driver string `envconfig:"MINISHOP_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"MINISHOP_DB_DSN" default:"file::memory:?cache=shared"`

	MaxOpenConns    int           `envconfig:"MINISHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MINISHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MINISHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MINISHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

func (d DBConfig) validate() error {
	switch d.Driver {
	case DBDriverSQLite, DBDriverPostgres:
		return nil
	}
	return fmt.Errorf("unknown database driver %q", d.Driver)
}

type RedisConfig struct {
	URL          string        `envconfig:"MINISHOP_REDIS_URL"`
	Address      string        `envconfig:"MINISHOP_REDIS_ADDR"`
	Password     string        `envconfig:"MINISHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MINISHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MINISHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MINISHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MINISHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MINISHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MINISHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TelegramConfig carries the bot credentials used to verify WebApp init data.
type TelegramConfig struct {
	BotToken    string        `envconfig:"MINISHOP_TELEGRAM_BOT_TOKEN"`
	InitDataTTL time.Duration `envconfig:"MINISHOP_TELEGRAM_INIT_DATA_TTL" default:"24h"`
}

// PaymentsConfig shapes the payment URL the mock checkout returns.
type PaymentsConfig struct {
	BaseURL string `envconfig:"MINISHOP_PAYMENTS_BASE_URL" default:"https://pay.example.com/session"`
}
