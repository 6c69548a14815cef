package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
)

type Config struct {
	Issuer    string // Optional: issuer claim for access tokens (default: warden)
	JWTSecret string // Required: HS256 signing secret for access tokens

	DatabaseFile string // Optional: path to SQLite database file (default: ./warden.db)
	PepperFile   string // Optional: path to the password-hashing pepper file (default: ./pepper)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	AccessTokenTTL       time.Duration // Access token lifetime (default: 1h)
	SessionTTL           time.Duration // Session lifetime (default: 24h)
	MaxSessionsPerUser   int           // Concurrent session cap per user (default: 5)
	InvitationTTL        time.Duration // Invitation lifetime (default: 72h)
	HousekeepingInterval time.Duration // Expiry sweep interval (default: 15m)

	LockoutMaxAttempts   int           // Failed logins before lockout (default: 5)
	LockoutDuration      time.Duration // Lockout length once tripped (default: 15m)
	LockoutAttemptWindow time.Duration // Window over which failures count (default: 30m)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Issuer:    getEnvOrDefault("WARDEN_ISSUER", "warden"),
		JWTSecret: os.Getenv("WARDEN_JWT_SECRET"),

		DatabaseFile: getEnvOrDefault("WARDEN_DATABASE_FILE", "warden.db"),
		PepperFile:   getEnvOrDefault("WARDEN_PEPPER_FILE", "pepper"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		AccessTokenTTL:       getEnvDurationOrDefault("WARDEN_ACCESS_TOKEN_TTL", time.Hour),
		SessionTTL:           getEnvDurationOrDefault("WARDEN_SESSION_TTL", 24*time.Hour),
		MaxSessionsPerUser:   getEnvIntOrDefault("WARDEN_MAX_SESSIONS_PER_USER", 5),
		InvitationTTL:        getEnvDurationOrDefault("WARDEN_INVITATION_TTL", domain.DefaultInvitationTTL),
		HousekeepingInterval: getEnvDurationOrDefault("WARDEN_HOUSEKEEPING_INTERVAL", 15*time.Minute),

		LockoutMaxAttempts:   getEnvIntOrDefault("WARDEN_LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDuration:      getEnvDurationOrDefault("WARDEN_LOCKOUT_DURATION", 15*time.Minute),
		LockoutAttemptWindow: getEnvDurationOrDefault("WARDEN_LOCKOUT_ATTEMPT_WINDOW", 30*time.Minute),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("WARDEN_JWT_SECRET must be set")
	}
	if len(cfg.JWTSecret) < 32 {
		return Config{}, errors.New("WARDEN_JWT_SECRET must be at least 32 bytes")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
