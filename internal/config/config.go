package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. STOREFRONT_HTTP_PORT.
// Nested groups add their own segment: STOREFRONT_STORAGE_BACKEND,
// STOREFRONT_KAFKA_BROKERS, STOREFRONT_CHECKOUT_HUB_CODE.
const Prefix = "storefront"

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	ServiceName     string        `envconfig:"SERVICE_NAME" default:"storefront"`
	HTTPPort        int           `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort        int           `envconfig:"GRPC_PORT" default:"50051"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`

	Storage  StorageConfig  `envconfig:"STORAGE"`
	Kafka    KafkaConfig    `envconfig:"KAFKA"`
	Checkout CheckoutConfig `envconfig:"CHECKOUT"`
}

type StorageConfig struct {
	Backend string `envconfig:"BACKEND" default:"memory"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string        `envconfig:"REDIS_PREFIX" default:"storefront"`
	RedisTTL      time.Duration `envconfig:"REDIS_TTL" default:"0s"`

	MongoURI            string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase       string        `envconfig:"MONGO_DATABASE" default:"storefront"`
	MongoMaxPoolSize    uint64        `envconfig:"MONGO_MAX_POOL_SIZE" default:"50"`
	MongoMinPoolSize    uint64        `envconfig:"MONGO_MIN_POOL_SIZE" default:"2"`
	MongoConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:"storefront.db"`

	// PostgresDSN wins over the discrete POSTGRES_* fields when set.
	PostgresDSN      string `envconfig:"POSTGRES_DSN"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"storefront"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"true"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"BROKERS"`
	Topic   string   `envconfig:"TOPIC" default:"storefront-notices"`
}

type CheckoutConfig struct {
	FreeShippingThreshold int64         `envconfig:"FREE_SHIPPING_THRESHOLD" default:"5000"`
	HubCode               int           `envconfig:"HUB_CODE" default:"110001"`
	CouponCatalogPath     string        `envconfig:"COUPON_CATALOG"`
	PaymentDelay          time.Duration `envconfig:"PAYMENT_DELAY" default:"0s"`
}

// Load reads an optional .env file and then the STOREFRONT_* environment.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendMongo, BackendSQLite, BackendPostgres:
	default:
		problems = append(problems, fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format %q", c.LogFormat))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		problems = append(problems, "http port out of range")
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		problems = append(problems, "grpc port out of range")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, "shutdown timeout must be positive")
	}
	if c.Storage.MongoMinPoolSize > c.Storage.MongoMaxPoolSize && c.Storage.MongoMaxPoolSize != 0 {
		problems = append(problems, "mongo min pool size exceeds max pool size")
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresDSN == "" &&
		(c.Storage.PostgresPort <= 0 || c.Storage.PostgresPort > 65535) {
		problems = append(problems, "postgres port out of range")
	}
	if c.Checkout.FreeShippingThreshold < 0 {
		problems = append(problems, "free shipping threshold must not be negative")
	}
	if c.Checkout.HubCode < 100000 || c.Checkout.HubCode > 999999 {
		problems = append(problems, "hub code must be a 6 digit postal code")
	}
	if c.Checkout.PaymentDelay < 0 {
		problems = append(problems, "payment delay must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// KafkaEnabled reports whether notices should also be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Topic != ""
}
