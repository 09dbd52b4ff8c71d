package config

import (
	"fmt"
	"os"
	"time"
)

// Config is the full process configuration, loaded from the environment.
// A .env file, when present, is loaded by the entrypoint before this runs.
type Config struct {
	Port string

	// AuthMode is "jwt" (production) or "dev" (X-Debug-Advisor header).
	AuthMode   string
	DevAdvisor string

	JWTIssuer    string
	JWTAudience  string
	JWTSecret    string
	JWTTokenTTL  time.Duration
	JWTClockSkew time.Duration

	// StorageBackend is "memory" or "postgres".
	StorageBackend string
	DatabaseURL    string
}

func Load() (Config, error) {
	cfg := Config{
		Port:           getenv("PORT", "8080"),
		AuthMode:       getenv("AUTH_MODE", "jwt"),
		DevAdvisor:     getenv("DEV_ADVISOR", "dev|local"),
		JWTIssuer:      getenv("JWT_ISSUER", "itinerary-api"),
		JWTAudience:    getenv("JWT_AUDIENCE", "advisors"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTokenTTL:    24 * time.Hour,
		JWTClockSkew:   30 * time.Second,
		StorageBackend: getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	if cfg.AuthMode == "jwt" && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}

	if v := os.Getenv("JWT_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("JWT_TOKEN_TTL must be a duration (e.g. 24h): %w", err)
		}
		cfg.JWTTokenTTL = d
	}
	if v := os.Getenv("JWT_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("JWT_CLOCK_SKEW must be a duration (e.g. 30s): %w", err)
		}
		cfg.JWTClockSkew = d
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
