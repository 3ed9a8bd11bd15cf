// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps OS environment variables into a strongly-typed [Config].

It leverages 'caarlos0/env' for parsing and defaults, then runs a consistency
pass ([Config.Validate]) so that a misconfigured process fails at boot instead
of on the first request.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to constructors explicitly.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backends of the session and remember-me stores.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the greeter API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis). Only needed when a store selects the redis backend.
	RedisURL string `env:"REDIS_URL"`

	// Session cookie signing and revocation records
	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionStore  string        `env:"SESSION_STORE" envDefault:"postgres"`

	// Remember-me persistent login
	RememberMeKey             string `env:"REMEMBER_ME_KEY,required,notEmpty"`
	RememberMeValiditySeconds int    `env:"REMEMBER_ME_VALIDITY_SECONDS" envDefault:"604800"`
	RememberMeStore           string `env:"REMEMBER_ME_STORE" envDefault:"postgres"`
	RememberMeAlways          bool   `env:"REMEMBER_ME_ALWAYS" envDefault:"false"`

	// Rate limiting
	RateLimitCapacity   int           `env:"RATE_LIMIT_CAPACITY" envDefault:"100"`
	RateLimitPathPrefix string        `env:"RATE_LIMIT_PATH_PREFIX" envDefault:"/api/"`
	RateLimitIdleTTL    time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"0s"`
	TrustProxyHeaders   bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.RateLimitCapacity <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_CAPACITY must be positive, got %d", c.RateLimitCapacity))
	}

	if c.RememberMeValiditySeconds <= 0 {
		errs = append(errs, fmt.Errorf("REMEMBER_ME_VALIDITY_SECONDS must be positive, got %d", c.RememberMeValiditySeconds))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	if c.RateLimitIdleTTL < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_IDLE_TTL must not be negative"))
	}

	errs = append(errs, c.validateStore("REMEMBER_ME_STORE", c.RememberMeStore)...)
	errs = append(errs, c.validateStore("SESSION_STORE", c.SessionStore)...)

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) validateStore(variable, backend string) []error {
	switch backend {
	case StorePostgres, StoreMemory:
		return nil
	case StoreRedis:
		if c.RedisURL == "" {
			return []error{fmt.Errorf("REDIS_URL is required when %s=redis", variable)}
		}
		return nil
	default:
		return []error{fmt.Errorf("%s must be one of postgres, redis, memory, got %q", variable, backend)}
	}
}

// UsesRedis reports whether any store selects the redis backend.
func (c *Config) UsesRedis() bool {
	return c.RememberMeStore == StoreRedis || c.SessionStore == StoreRedis
}

// RememberMeValidity returns the remember-me inactivity window as a duration.
func (c *Config) RememberMeValidity() time.Duration {
	return time.Duration(c.RememberMeValiditySeconds) * time.Second
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
