// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package config

import (
	"fmt"
	"time"

	"github.com/goodwatch/goodwatch/internal/catalog"
	"github.com/goodwatch/goodwatch/internal/engine"
	"github.com/goodwatch/goodwatch/internal/logging"
	"github.com/goodwatch/goodwatch/internal/moodremote"
	"github.com/goodwatch/goodwatch/internal/store"
)

// Config is the application configuration tree.
type Config struct {
	// Server holds the HTTP listener settings.
	Server ServerConfig `koanf:"server"`

	// Engine holds the decision core tunables.
	Engine engine.Config `koanf:"engine"`

	// Logging holds log level and format.
	Logging logging.Config `koanf:"logging"`

	// Store holds the Badger event store settings.
	Store store.Config `koanf:"store"`

	// Catalog holds the DuckDB catalog settings.
	Catalog catalog.Config `koanf:"catalog"`

	// Moods holds the remote mood mapping-table client settings.
	Moods moodremote.Config `koanf:"moods"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// ReadTimeout bounds reading a request including the body.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful drain on stop.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed cross-origin hosts.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests is the per-client request budget per window.
	// Zero disables rate limiting.
	RateLimitRequests int `koanf:"rate_limit_requests"`

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// defaultConfig returns the built-in defaults applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8099,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Engine:  *engine.DefaultConfig(),
		Logging: logging.DefaultConfig(),
		Store:   store.DefaultConfig(),
		Catalog: catalog.DefaultConfig(),
		Moods:   moodremote.DefaultConfig(),
	}
}

// Validate checks the configuration tree.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("server.rate_limit_requests must be non-negative, got %d", c.Server.RateLimitRequests)
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is on, got %v",
			c.Server.RateLimitWindow)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
