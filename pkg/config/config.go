package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Production    ProductionConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.SQLitePath == "" {
			return nil, fmt.Errorf("%s is required when %s is set", EnvDBSQLitePath, EnvUseSQLite)
		}
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRODUCTION_APP_ENV" required:"true"`
	Port         string `envconfig:"PRODUCTION_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PRODUCTION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRODUCTION_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"PRODUCTION_CORS_ORIGINS"`
	// MetricsAddr exposes /metrics from the background workers when set.
	MetricsAddr string `envconfig:"PRODUCTION_METRICS_ADDR"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PRODUCTION_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"PRODUCTION_DB_DSN"`
	SQLitePath string `envconfig:"PRODUCTION_DB_SQLITE_PATH" default:"production.db"`

	Host     string `envconfig:"PRODUCTION_DB_HOST"`
	Port     int    `envconfig:"PRODUCTION_DB_PORT" default:"5432"`
	User     string `envconfig:"PRODUCTION_DB_USER"`
	Password string `envconfig:"PRODUCTION_DB_PASSWORD"`
	Name     string `envconfig:"PRODUCTION_DB_NAME"`
	SSLMode  string `envconfig:"PRODUCTION_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRODUCTION_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRODUCTION_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRODUCTION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRODUCTION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRODUCTION_REDIS_URL"`
	Address      string        `envconfig:"PRODUCTION_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"PRODUCTION_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRODUCTION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRODUCTION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRODUCTION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRODUCTION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRODUCTION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRODUCTION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRODUCTION_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRODUCTION_JWT_ISSUER" default:"production-backend"`
	ExpirationMinutes int    `envconfig:"PRODUCTION_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TTL returns the portal token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AdminConfig struct {
	APIKey string `envconfig:"PRODUCTION_ADMIN_API_KEY" required:"true"`
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"PRODUCTION_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit   int           `envconfig:"PRODUCTION_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
	LoginCodeLimit int           `envconfig:"PRODUCTION_AUTH_RATE_LIMIT_LOGIN_CODE_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRODUCTION_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRODUCTION_AUTO_MIGRATE" default:"false"`
	AllowCORS   bool `envconfig:"PRODUCTION_FEATURE_ALLOW_CORS" default:"true"`
}

type ProductionConfig struct {
	RequireCutBeforeSew  bool `envconfig:"PRODUCTION_REQUIRE_CUT_BEFORE_SEW" default:"false"`
	CompletedTasksLimit  int  `envconfig:"PRODUCTION_COMPLETED_TASKS_LIMIT" default:"10"`
	NotificationsHistory int  `envconfig:"PRODUCTION_NOTIFICATIONS_HISTORY" default:"20"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PRODUCTION_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"PRODUCTION_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string        `envconfig:"PRODUCTION_PUBSUB_NOTIFICATION_TOPIC" default:"production-notifications"`
	NotificationSubscription string        `envconfig:"PRODUCTION_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"production-notifications-delivery"`
	IdempotencyTTL           time.Duration `envconfig:"PRODUCTION_PUBSUB_IDEMPOTENCY_TTL" default:"168h"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"PRODUCTION_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"PRODUCTION_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"PRODUCTION_OUTBOX_MAX_ATTEMPTS" default:"10"`
	BaseBackoff    time.Duration `envconfig:"PRODUCTION_OUTBOX_BASE_BACKOFF" default:"2s"`
	MaxBackoff     time.Duration `envconfig:"PRODUCTION_OUTBOX_MAX_BACKOFF" default:"5m"`
}

// PollInterval converts the configured milliseconds into a duration.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

type CronConfig struct {
	Interval      time.Duration `envconfig:"PRODUCTION_CRON_INTERVAL" default:"1h"`
	LockTTL       time.Duration `envconfig:"PRODUCTION_CRON_LOCK_TTL" default:"10m"`
	ReminderAfter time.Duration `envconfig:"PRODUCTION_CRON_REMINDER_AFTER" default:"48h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
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
