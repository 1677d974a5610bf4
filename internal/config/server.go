// Package config provides configuration management for the flow catalog.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// Defaults applied when the matching environment variable is unset or invalid.
const (
	DefaultListenAddr      = ":8080"
	DefaultPageSize        = 10
	DefaultMaxPageSize     = 1000
	DefaultRateLimit       = 100
	DefaultRateLimitPeriod = time.Minute
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment     Environment
	DatabaseURL     string
	ListenAddr      string
	CORSOrigins     []string
	RateLimit       int64         // requests per period, 0 disables limiting
	RateLimitPeriod time.Duration // window for RateLimit (default: 1m)
	RateLimitRedis  string        // redis URL for a shared limiter store, empty for in-memory
	DefaultPageSize int
	MaxPageSize     int
	AutoMigrate     bool // apply pending migrations on startup (default: true)
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			listenAddr = ":" + port
		} else {
			listenAddr = DefaultListenAddr
		}
	}

	rateLimit := getEnvInt("RATE_LIMIT_REQUESTS", DefaultRateLimit)
	if rateLimit < 0 {
		rateLimit = DefaultRateLimit
	}

	period := getEnvDuration("RATE_LIMIT_PERIOD", DefaultRateLimitPeriod)
	if period <= 0 {
		period = DefaultRateLimitPeriod
	}

	pageSize := getEnvInt("DEFAULT_PAGE_SIZE", DefaultPageSize)
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	maxPageSize := getEnvInt("MAX_PAGE_SIZE", DefaultMaxPageSize)
	if maxPageSize < pageSize {
		maxPageSize = max(pageSize, DefaultMaxPageSize)
	}

	return ServerConfig{
		Environment:     env,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ListenAddr:      listenAddr,
		CORSOrigins:     getEnvList("CORS_ORIGINS"),
		RateLimit:       int64(rateLimit),
		RateLimitPeriod: period,
		RateLimitRedis:  strings.TrimSpace(os.Getenv("RATE_LIMIT_REDIS_URL")),
		DefaultPageSize: pageSize,
		MaxPageSize:     maxPageSize,
		AutoMigrate:     getEnvBool("AUTO_MIGRATE", true),
	}
}

// IsProduction reports whether the server runs in production.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// getEnvBool reads a boolean from an environment variable, returning the default if unset or invalid.
func getEnvBool(key string, defaultVal bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultVal
	}
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvDuration accepts a Go duration ("30s") or a bare number of seconds.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

// getEnvList splits a comma separated environment variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
