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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Admin         AdminConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Idempotency   IdempotencyConfig
	FeatureFlags  FeatureFlagsConfig
	Machine       MachineConfig
	Cron          CronConfig
	Activity      ActivityConfig
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
	Env          string `envconfig:"SORT_APP_ENV" required:"true"`
	Port         string `envconfig:"SORT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SORT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SORT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SORT_DB_DSN"`
	Driver string `envconfig:"SORT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SORT_DB_HOST"`
	LegacyPort     int    `envconfig:"SORT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SORT_DB_USER"`
	LegacyPassword string `envconfig:"SORT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SORT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SORT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SORT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SORT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SORT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SORT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SORT_REDIS_URL" required:"true"`
	Password     string        `envconfig:"SORT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SORT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SORT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SORT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SORT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SORT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SORT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SORT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SORT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SORT_JWT_EXPIRATION_MINUTES" required:"true"`
}

func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AdminConfig holds the single operator account. The kiosk backend has one
// back-office login, so credentials live in the environment rather than a table.
type AdminConfig struct {
	Username     string `envconfig:"SORT_ADMIN_USERNAME" default:"admin"`
	PasswordHash string `envconfig:"SORT_ADMIN_PASSWORD_HASH" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SORT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SORT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SORT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SORT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SORT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SORT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"SORT_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SORT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	DepositTTL    time.Duration `envconfig:"SORT_IDEMPOTENCY_DEPOSIT_TTL" default:"24h"`
	WithdrawalTTL time.Duration `envconfig:"SORT_IDEMPOTENCY_WITHDRAWAL_TTL" default:"168h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SORT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SORT_AUTO_MIGRATE" default:"false"`
}

// MachineConfig identifies the deposit kiosk this backend fronts.
type MachineConfig struct {
	ID               string        `envconfig:"SORT_MACHINE_ID" default:"main"`
	OfflineThreshold time.Duration `envconfig:"SORT_MACHINE_OFFLINE_THRESHOLD" default:"5m"`
}

type CronConfig struct {
	OfflineWatchInterval      time.Duration `envconfig:"SORT_CRON_OFFLINE_WATCH_INTERVAL" default:"1m"`
	ActivityRetentionInterval time.Duration `envconfig:"SORT_CRON_ACTIVITY_RETENTION_INTERVAL" default:"24h"`
	TelemetryInterval         time.Duration `envconfig:"SORT_CRON_TELEMETRY_INTERVAL" default:"5m"`
	MetricsPort               string        `envconfig:"SORT_CRON_METRICS_PORT" default:"9090"`
}

type ActivityConfig struct {
	RetentionDays int `envconfig:"SORT_ACTIVITY_RETENTION_DAYS" default:"90"`
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
