// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/monitor.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Engine defaults — threshold defaults shared by monitor and fan-out
// --------------------------------------------------------------------------

const (
	// DefaultMinMagnitude applies when a recipient never configured a
	// magnitude gate.
	DefaultMinMagnitude = 4.0

	// DefaultRadiusKm applies when a recipient never configured an alert
	// radius.
	DefaultRadiusKm = 5.0

	// DefaultFeedMinMagnitude is the floor applied to upstream feed queries.
	DefaultFeedMinMagnitude = 3.0
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Upstream event feed (USGS fdsnws)
	USGSBaseURL      string
	FeedMinMagnitude float64
	FeedWindowDays   int

	// Monitor (client context)
	EngineFeedURL string // base URL of the engine API the monitor polls
	PollInterval  time.Duration
	FetchTimeout  time.Duration
	LedgerPath    string

	// SMS delivery channel
	SMSAPIURL       string
	SMSAPIUsername  string
	SMSAPIPassword  string
	SMSSimNumber    int
	DeliveryTimeout time.Duration

	// Maintenance
	CleanupInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		USGSBaseURL:      envOr("USGS_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1/query"),
		FeedMinMagnitude: envFloat("FEED_MIN_MAGNITUDE", DefaultFeedMinMagnitude),
		FeedWindowDays:   envInt("FEED_WINDOW_DAYS", 30),

		EngineFeedURL: envOr("ENGINE_FEED_URL", "http://localhost:8000"),
		PollInterval:  time.Duration(envInt("POLL_INTERVAL_SECONDS", 30)) * time.Second,
		FetchTimeout:  time.Duration(envInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		LedgerPath:    envOr("LEDGER_PATH", "quakewatch-ledger.json"),

		SMSAPIURL:       envOr("SMS_API_URL", "https://api.sms-gate.app/3rdparty/v1/message"),
		SMSAPIUsername:  envOr("SMS_API_USERNAME", ""),
		SMSAPIPassword:  envOr("SMS_API_PASSWORD", ""),
		SMSSimNumber:    envInt("SMS_SIM_NUMBER", 1),
		DeliveryTimeout: time.Duration(envInt("DELIVERY_TIMEOUT_SECONDS", 20)) * time.Second,

		CleanupInterval: time.Duration(envInt("CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
