// Package config loads service settings from environment variables.
// envconfig maps the variables onto the Config fields.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds ALL application settings.
type Config struct {
	// --- HTTP ---
	HTTPPort           string `envconfig:"HTTP_PORT" default:"8080"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:19006"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Asia/Seoul"`

	// --- Storage ---
	// postgres or memory. The memory store keeps nothing across restarts.
	StorageDriver   string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	StoreMaxRetries int    `envconfig:"STORE_MAX_RETRIES" default:"3"`

	// --- Database ---
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"meetup"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"meetup"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Identity ---
	AuthJWTSecret string `envconfig:"AUTH_JWT_SECRET" required:"true"`
	// Trust the X-User-ID header instead of a bearer token. Local use only.
	AuthAllowDevHeader bool `envconfig:"AUTH_ALLOW_DEV_HEADER" default:"false"`

	// --- Check-in ---
	CheckInTokenSecret  string        `envconfig:"CHECKIN_TOKEN_SECRET" required:"true"`
	CheckInTokenTTL     time.Duration `envconfig:"CHECKIN_TOKEN_TTL" default:"10m"`
	CheckInRadiusMeters float64       `envconfig:"CHECKIN_RADIUS_METERS" default:"100"`
	CheckInWindowBefore time.Duration `envconfig:"CHECKIN_WINDOW_BEFORE" default:"30m"`
	CheckInWindowAfter  time.Duration `envconfig:"CHECKIN_WINDOW_AFTER" default:"2h"`

	// --- Reputation ---
	// Optional YAML file overriding the default score weights.
	ReputationPolicyFile string `envconfig:"REPUTATION_POLICY_FILE"`

	// --- Notifications ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
	NotifyQueueSize  int    `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Jobs ---
	// Cron spec for the sweep that completes confirmed meetups.
	JobsCompletionSpec string `envconfig:"JOBS_COMPLETION_SPEC" default:"*/5 * * * *"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StoreMaxRetries <= 0 {
		return fmt.Errorf("STORE_MAX_RETRIES must be > 0")
	}
	if len(c.CheckInTokenSecret) < 16 {
		return fmt.Errorf("CHECKIN_TOKEN_SECRET must be at least 16 bytes")
	}
	if c.CheckInTokenTTL <= 0 {
		return fmt.Errorf("CHECKIN_TOKEN_TTL must be > 0")
	}
	if c.CheckInRadiusMeters <= 0 {
		return fmt.Errorf("CHECKIN_RADIUS_METERS must be > 0")
	}
	if c.CheckInWindowBefore < 0 || c.CheckInWindowAfter < 0 {
		return fmt.Errorf("check-in window durations must not be negative")
	}
	if c.NotifyQueueSize <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// Load reads environment variables into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
