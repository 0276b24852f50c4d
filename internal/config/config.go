package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from TALLY_* environment variables.
type Config struct {
	Port         string
	DBDriver     string
	DBDSN        string
	LogLevel     string
	LogFormat    string
	Timezone     string
	APITokenHash string
	CORSOrigins  []string
	RateLimit    int
	// TrustedProxies lists the proxy addresses or CIDR ranges whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string
}

// Load reads envFile (if it exists) into the environment without overriding
// variables that are already set, then builds a Config from the environment.
// An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:           getEnv("TALLY_PORT", "8080"),
		DBDriver:       getEnv("TALLY_DB_DRIVER", "sqlite"),
		DBDSN:          getEnv("TALLY_DB_DSN", "tally.db"),
		LogLevel:       getEnv("TALLY_LOG_LEVEL", "info"),
		LogFormat:      getEnv("TALLY_LOG_FORMAT", "text"),
		Timezone:       getEnv("TALLY_TIMEZONE", "Local"),
		APITokenHash:   os.Getenv("TALLY_API_TOKEN_HASH"),
		CORSOrigins:    splitList(os.Getenv("TALLY_CORS_ORIGINS")),
		TrustedProxies: splitList(os.Getenv("TALLY_TRUSTED_PROXIES")),
	}

	limit := getEnv("TALLY_RATE_LIMIT", "120")
	n, err := strconv.Atoi(limit)
	if err != nil {
		return nil, fmt.Errorf("TALLY_RATE_LIMIT: %q is not a number", limit)
	}
	cfg.RateLimit = n

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("TALLY_DB_DRIVER: unsupported driver %q (want sqlite or postgres)", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("TALLY_DB_DSN is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("TALLY_PORT: %q is not a port number", c.Port)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("TALLY_RATE_LIMIT must be >= 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, which the weekly score window is anchored in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TALLY_TIMEZONE: %w", err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
