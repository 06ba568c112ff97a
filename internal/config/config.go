// Package config loads the flat key-value environment (spec.md §6
// "Configuration") the rest of the server depends on: rate-limit
// parameters, session timeouts, tier starting cash, cron cadence,
// moderation endpoint, email sender identity.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration sourced from the environment.
type Config struct {
	Port   int
	GoEnv  string
	DBURL  string
	RedisURL string // optional; empty means fall back to the in-process limiter

	JWTSecret          string
	WebSessionTTL      time.Duration
	MobileSessionTTL   time.Duration
	MagicLinkTTL       time.Duration
	InvitationTTL      time.Duration

	TickCadence  string        // cron expression, default "@every 10m"
	TickInterval time.Duration // must agree with TickCadence; used to derive the tick instant boundary

	AuthRateLimitPerMinute int
	AuthenticatedRateLimitPerMinute int
	AnonymousRateLimitPerMinute     int

	ModerationEndpoint string
	ModerationTimeout  time.Duration

	EmailSenderName    string
	EmailSenderAddress string
	EmailTimeout       time.Duration

	LogLevel string
}

// Load reads configuration from environment variables, falling back to
// sane development defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnvAsInt("PORT", 8080),
		GoEnv: getEnv("GO_ENV", "development"),
		DBURL: getEnv("DATABASE_URL", "postgres://localhost:5432/citytycoon?sslmode=disable"),
		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		WebSessionTTL:    getEnvAsDuration("WEB_SESSION_TTL", 24*time.Hour),
		MobileSessionTTL: getEnvAsDuration("MOBILE_SESSION_TTL", 90*24*time.Hour),
		MagicLinkTTL:     getEnvAsDuration("MAGIC_LINK_TTL", 15*time.Minute),
		InvitationTTL:    getEnvAsDuration("INVITATION_TTL", 72*time.Hour),

		TickCadence:  getEnv("TICK_CADENCE", "@every 10m"),
		TickInterval: getEnvAsDuration("TICK_INTERVAL", 10*time.Minute),

		AuthRateLimitPerMinute:          getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		AuthenticatedRateLimitPerMinute: getEnvAsInt("AUTHENTICATED_RATE_LIMIT_PER_MINUTE", 100),
		AnonymousRateLimitPerMinute:     getEnvAsInt("ANONYMOUS_RATE_LIMIT_PER_MINUTE", 20),

		ModerationEndpoint: getEnv("MODERATION_ENDPOINT", ""),
		ModerationTimeout:  getEnvAsDuration("MODERATION_TIMEOUT", 3*time.Second),

		EmailSenderName:    getEnv("EMAIL_SENDER_NAME", "CityTycoon"),
		EmailSenderAddress: getEnv("EMAIL_SENDER_ADDRESS", "no-reply@citytycoon.example"),
		EmailTimeout:       getEnvAsDuration("EMAIL_TIMEOUT", 5*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required configuration is present.
func (c *Config) Validate() error {
	if c.GoEnv == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.DBURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
