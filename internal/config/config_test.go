package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "jwt-secret")
	t.Setenv("CHECKIN_TOKEN_SECRET", "0123456789abcdef0123")
	t.Setenv("STORAGE_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CheckInRadiusMeters != 100 {
		t.Fatalf("expected default radius 100, got %v", cfg.CheckInRadiusMeters)
	}
	if cfg.CheckInTokenTTL != 10*time.Minute {
		t.Fatalf("expected default ttl 10m, got %v", cfg.CheckInTokenTTL)
	}
	if cfg.StoreMaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.StoreMaxRetries)
	}
	if cfg.TelegramEnabled() {
		t.Fatalf("telegram must be disabled without a token")
	}
	if cfg.AuthAllowDevHeader {
		t.Fatalf("dev user header must be off by default")
	}
	if got := cfg.AllowedOrigins(); len(got) != 2 {
		t.Fatalf("expected 2 origins, got %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECKIN_RADIUS_METERS", "250")
	t.Setenv("CHECKIN_TOKEN_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CheckInRadiusMeters != 250 {
		t.Fatalf("expected radius 250, got %v", cfg.CheckInRadiusMeters)
	}
	if cfg.CheckInTokenTTL != 90*time.Second {
		t.Fatalf("expected ttl 90s, got %v", cfg.CheckInTokenTTL)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("CHECKIN_TOKEN_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing secrets to fail")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StorageDriver:       "memory",
			StoreMaxRetries:     3,
			CheckInTokenSecret:  "0123456789abcdef",
			CheckInTokenTTL:     time.Minute,
			CheckInRadiusMeters: 100,
			NotifyQueueSize:     8,
			RateLimitRequests:   10,
			RateLimitWindow:     time.Minute,
		}
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(c *Config){
		"unknown driver":      func(c *Config) { c.StorageDriver = "mongo" },
		"postgres without pw": func(c *Config) { c.StorageDriver = "postgres"; c.DBMaxConns = 5 },
		"short secret":        func(c *Config) { c.CheckInTokenSecret = "short" },
		"zero radius":         func(c *Config) { c.CheckInRadiusMeters = 0 },
		"zero retries":        func(c *Config) { c.StoreMaxRetries = 0 },
		"telegram half set":   func(c *Config) { c.TelegramBotToken = "123:abc" },
		"negative window":     func(c *Config) { c.CheckInWindowBefore = -time.Minute },
	}
	for name, mutate := range cases {
		c := base()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
