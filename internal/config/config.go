package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	SLA          SLAConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSOrigins           string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis and the
// service falls back to in-process alert state.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AllowSelfRegistration bool
	BootstrapAdminEmail   string
	BootstrapAdminPass    string
}

// SLAConfig tunes the alert evaluator and its schedule.
type SLAConfig struct {
	EvaluationIntervalSeconds int
	WarningFraction           float64
	WarningMinHours           float64
	SnapshotTTLSeconds        int
	NotifyDedupeHours         int
}

// NotificationConfig holds outbound notification settings.
type NotificationConfig struct {
	EmailFrom      string
	AlertRecipient string
	WebhookURL     string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	warningFraction, err := strconv.ParseFloat(getEnv("SLA_WARNING_FRACTION", "0.2"), 64)
	if err != nil || warningFraction < 0 || warningFraction > 1 {
		return nil, fmt.Errorf("invalid SLA_WARNING_FRACTION: must be within [0,1]")
	}
	warningMinHours, err := strconv.ParseFloat(getEnv("SLA_WARNING_MIN_HOURS", "2"), 64)
	if err != nil || warningMinHours < 0 {
		return nil, fmt.Errorf("invalid SLA_WARNING_MIN_HOURS: must be a non-negative number")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "itsm-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSOrigins:           getEnv("CORS_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 7*24*60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AllowSelfRegistration: getEnvAsBool("AUTH_ALLOW_SELF_REGISTRATION", true),
			BootstrapAdminEmail:   os.Getenv("AUTH_BOOTSTRAP_ADMIN_EMAIL"),
			BootstrapAdminPass:    os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		SLA: SLAConfig{
			EvaluationIntervalSeconds: getEnvAsInt("SLA_EVALUATION_INTERVAL_SECONDS", 300),
			WarningFraction:           warningFraction,
			WarningMinHours:           warningMinHours,
			SnapshotTTLSeconds:        getEnvAsInt("SLA_SNAPSHOT_TTL_SECONDS", 3600),
			NotifyDedupeHours:         getEnvAsInt("SLA_NOTIFY_DEDUPE_HOURS", 24),
		},
		Notification: NotificationConfig{
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			AlertRecipient: os.Getenv("NOTIFY_ALERT_RECIPIENT"),
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:       os.Getenv("SMTP_USER"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AllowedOrigins returns the CORS origins as fiber expects them.
func (a AppConfig) AllowedOrigins() string {
	parts := strings.Split(a.CORSOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

// Interval returns how often the SLA scheduler runs.
func (s SLAConfig) Interval() time.Duration {
	if s.EvaluationIntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.EvaluationIntervalSeconds) * time.Second
}

// SnapshotTTL returns how long a stored alert snapshot stays readable.
func (s SLAConfig) SnapshotTTL() time.Duration {
	if s.SnapshotTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.SnapshotTTLSeconds) * time.Second
}

// NotifyDedupeWindow returns how long a notified alert is suppressed.
func (s SLAConfig) NotifyDedupeWindow() time.Duration {
	if s.NotifyDedupeHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.NotifyDedupeHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
