package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TAILORBOOKS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Reports      ReportsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("TAILORBOOKS_DB_DSN is required")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TAILORBOOKS_APP_ENV" required:"true"`
	Port         string `envconfig:"TAILORBOOKS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TAILORBOOKS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TAILORBOOKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TAILORBOOKS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"TAILORBOOKS_DB_DSN"`

	MaxOpenConns    int           `envconfig:"TAILORBOOKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TAILORBOOKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TAILORBOOKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TAILORBOOKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL      string `envconfig:"TAILORBOOKS_REDIS_URL"`
	Address  string `envconfig:"TAILORBOOKS_REDIS_ADDRESS"`
	Password string `envconfig:"TAILORBOOKS_REDIS_PASSWORD"`
	DB       int    `envconfig:"TAILORBOOKS_REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"TAILORBOOKS_REDIS_POOL_SIZE" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TAILORBOOKS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"TAILORBOOKS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"TAILORBOOKS_PUBSUB_DOMAIN_TOPIC" default:"tailorbooks-domain-events"`
	DomainSubscription string `envconfig:"TAILORBOOKS_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TAILORBOOKS_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TAILORBOOKS_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TAILORBOOKS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type ReportsConfig struct {
	RankingCacheTTL time.Duration `envconfig:"TAILORBOOKS_REPORTS_RANKING_CACHE_TTL" default:"5m"`
}
