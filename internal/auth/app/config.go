package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer string // Required: issuer claim for tokens

	Algorithm         string        // Optional: JWT signing algorithm (HS256 only for now) (default: HS256)
	SigningSecret     string        // Optional: shared HMAC secret; ephemeral one generated when empty
	SigningSecretFile string        // Optional: path to a file containing the secret (takes precedence)
	TokenTTL          time.Duration // Optional: access token lifetime (default: 30m)

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Argon2MemoryKiB   int // Optional: Argon2id memory cost in KiB (0 keeps the default)
	Argon2Iterations  int // Optional: Argon2id time cost (0 keeps the default)
	Argon2Parallelism int // Optional: Argon2id lanes (0 keeps the default)

	CORSAllowedOrigins []string // Optional: origins allowed by CORS ("*" for all; empty disables CORS)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:            os.Getenv("AUTH_ISSUER"),
		Algorithm:         getEnvOrDefault("AUTH_ALGORITHM", "HS256"),
		SigningSecret:     os.Getenv("AUTH_SIGNING_SECRET"),
		SigningSecretFile: os.Getenv("AUTH_SIGNING_SECRET_FILE"),
		TokenTTL:          getEnvDurationOrDefault("AUTH_TOKEN_TTL", 30*time.Minute),
		DatabaseFile:      getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:        getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Argon2MemoryKiB:   getEnvIntOrDefault("AUTH_ARGON2_MEMORY_KIB", 0),
		Argon2Iterations:  getEnvIntOrDefault("AUTH_ARGON2_ITERATIONS", 0),
		Argon2Parallelism: getEnvIntOrDefault("AUTH_ARGON2_PARALLELISM", 0),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "quarterdeck-auth"
	}

	return cfg
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
