package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("Load() without DATABASE_URL should fail")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/quakewatch")
	for _, key := range []string{"API_PORT", "PORT", "ENVIRONMENT", "POLL_INTERVAL_SECONDS", "RATE_LIMIT_ENABLED", "FEED_MIN_MAGNITUDE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIPort != 8000 {
		t.Errorf("APIPort = %d, want 8000", cfg.APIPort)
	}
	if cfg.FeedMinMagnitude != DefaultFeedMinMagnitude {
		t.Errorf("FeedMinMagnitude = %g, want %g", cfg.FeedMinMagnitude, DefaultFeedMinMagnitude)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if !cfg.RateLimitEnabled {
		t.Error("rate limiting should default on")
	}
	if cfg.IsProduction() {
		t.Error("default environment should not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/quakewatch")
	t.Setenv("API_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("POLL_INTERVAL_SECONDS", "10")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FEED_MIN_MAGNITUDE", "2.5")
	t.Setenv("CLEANUP_INTERVAL_MINUTES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() should be true")
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowOrigins = %v", cfg.CORSAllowOrigins)
	}
	if cfg.FeedMinMagnitude != 2.5 {
		t.Errorf("FeedMinMagnitude = %g, want 2.5", cfg.FeedMinMagnitude)
	}
	if cfg.CleanupInterval != 0 {
		t.Errorf("CleanupInterval = %v, want 0 (disabled)", cfg.CleanupInterval)
	}
}

func TestEnvHelpersIgnoreMalformedValues(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	if got := envInt("SOME_INT", 7); got != 7 {
		t.Errorf("envInt fallback = %d, want 7", got)
	}

	t.Setenv("SOME_BOOL", "definitely")
	if got := envBool("SOME_BOOL", true); got != true {
		t.Errorf("envBool fallback = %v, want true", got)
	}

	t.Setenv("SOME_FLOAT", "x")
	if got := envFloat("SOME_FLOAT", 1.5); got != 1.5 {
		t.Errorf("envFloat fallback = %g, want 1.5", got)
	}
}
