package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "OMEX"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "OMEX_APP_ENV"
	EnvDBDSN  = "OMEX_DB_DSN"
	EnvDBHost = "OMEX_DB_HOST"
	EnvDBUser = "OMEX_DB_USER"
	EnvDBName = "OMEX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Relay        RelayConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OMEX_APP_ENV" required:"true"`
	Port         string `envconfig:"OMEX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OMEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OMEX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"OMEX_DB_DSN"`
	Driver string `envconfig:"OMEX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OMEX_DB_HOST"`
	LegacyPort     int    `envconfig:"OMEX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OMEX_DB_USER"`
	LegacyPassword string `envconfig:"OMEX_DB_PASSWORD"`
	LegacyName     string `envconfig:"OMEX_DB_NAME"`
	LegacySSLMode  string `envconfig:"OMEX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OMEX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OMEX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OMEX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OMEX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OMEX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"OMEX_REDIS_ADDR"`
	Password     string        `envconfig:"OMEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"OMEX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OMEX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OMEX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OMEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OMEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OMEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AuthConfig struct {
	Secret            string `envconfig:"OMEX_AUTH_SECRET" required:"true"`
	Issuer            string `envconfig:"OMEX_AUTH_ISSUER" default:"omex-admin"`
	ExpirationMinutes int    `envconfig:"OMEX_AUTH_EXPIRATION_MINUTES" default:"480"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OMEX_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"OMEX_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"OMEX_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"OMEX_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"OMEX_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"OMEX_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"OMEX_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RelayConfig struct {
	// SendTimeout bounds every call against a supplier's commerce API.
	SendTimeout    time.Duration `envconfig:"OMEX_RELAY_SEND_TIMEOUT" default:"10s"`
	IdempotencyTTL time.Duration `envconfig:"OMEX_RELAY_IDEMPOTENCY_TTL" default:"720h"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"OMEX_CRON_INTERVAL" default:"15m"`
	OutboxRetentionDays int           `envconfig:"OMEX_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	StatusSyncBatchSize int           `envconfig:"OMEX_CRON_STATUS_SYNC_BATCH" default:"50"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
