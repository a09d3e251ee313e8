// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/goodwatch/config.yaml",
	"/etc/goodwatch/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file
// and environment variables, then validates it. Precedence is
// ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are paths whose env values arrive as comma-separated
// strings but unmarshal into slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"engine.maturity.gated_tags",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names to config paths. Unmapped
// variables are ignored so unrelated environment never pollutes config.
var envMappings = map[string]string{
	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Event store
	"store_path":        "store.path",
	"store_sync_writes": "store.sync_writes",
	"store_gc_interval": "store.gc_interval",

	// Catalog
	"catalog_path":       "catalog.path",
	"catalog_threads":    "catalog.threads",
	"catalog_max_memory": "catalog.max_memory",

	// Mood mapping table
	"mood_table_url":       "moods.base_url",
	"mood_table_timeout":   "moods.timeout",
	"mood_table_rps":       "moods.requests_per_second",
	"mood_table_burst":     "moods.burst",
	"mood_table_cache_ttl": "moods.cache_ttl",

	// Engine
	"engine_seed":                  "engine.seed",
	"engine_pool_size":             "engine.sampling.pool_size",
	"engine_temperature":           "engine.sampling.temperature",
	"engine_reject_penalty":        "engine.sampling.reject_penalty_factor",
	"engine_max_candidates":        "engine.limits.max_candidates",
	"engine_score_workers":         "engine.limits.score_workers",
	"engine_session_ttl":           "engine.limits.session_ttl",
	"engine_hard_window":           "engine.exclusion.hard_window",
	"engine_soft_window":           "engine.exclusion.soft_window",
	"engine_global_floor":          "engine.floors.global",
	"engine_maturity_gated_tags":   "engine.maturity.gated_tags",
	"engine_maturity_min_watches":  "engine.maturity.min_watch_now",
	"engine_maturity_quality_bar":  "engine.maturity.adult_animation_quality_bar",
	"engine_taste_max_weight":      "engine.taste_graph.max_weight",
	"engine_weight_tag_alignment":  "engine.weights.tag_alignment",
	"engine_weight_regret_safety":  "engine.weights.regret_safety",
	"engine_weight_platform_bias":  "engine.weights.platform_bias",
	"engine_weight_dimensional":    "engine.weights.dimensional_fit",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
