package config

// EnvPrefix is the envconfig prefix for all service variables.
const EnvPrefix = "SORT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env variable names referenced outside envconfig tags (tests, error messages).
const (
	EnvAppEnv    = "SORT_APP_ENV"
	EnvPort      = "SORT_APP_PORT"
	EnvDBDSN     = "SORT_DB_DSN"
	EnvDBHost    = "SORT_DB_HOST"
	EnvDBUser    = "SORT_DB_USER"
	EnvDBName    = "SORT_DB_NAME"
	EnvRedisURL  = "SORT_REDIS_URL"
	EnvJWTSecret = "SORT_JWT_SECRET"
	EnvJWTIssuer = "SORT_JWT_ISSUER"
	EnvJWTExp    = "SORT_JWT_EXPIRATION_MINUTES"

	EnvAdminPasswordHash = "SORT_ADMIN_PASSWORD_HASH"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
