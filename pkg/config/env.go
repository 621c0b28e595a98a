package config

const EnvPrefix = "PRODUCTION"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "PRODUCTION_APP_ENV"
	EnvPort         = "PRODUCTION_APP_PORT"
	EnvLogLevel     = "PRODUCTION_LOG_LEVEL"
	EnvDBDSN        = "PRODUCTION_DB_DSN"
	EnvDBSQLitePath = "PRODUCTION_DB_SQLITE_PATH"
	EnvDBHost       = "PRODUCTION_DB_HOST"
	EnvDBUser       = "PRODUCTION_DB_USER"
	EnvDBName       = "PRODUCTION_DB_NAME"
	EnvUseSQLite    = "PRODUCTION_USE_SQLITE"
	EnvRedisURL     = "PRODUCTION_REDIS_URL"
	EnvJWTSecret    = "PRODUCTION_JWT_SECRET"
	EnvAdminAPIKey  = "PRODUCTION_ADMIN_API_KEY"

	EnvRequireCutBeforeSew = "PRODUCTION_REQUIRE_CUT_BEFORE_SEW"
	EnvCronReminderAfter   = "PRODUCTION_CRON_REMINDER_AFTER"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
