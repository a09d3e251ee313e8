// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package config loads application configuration with Koanf v2.
//
// Configuration is layered, later layers overriding earlier ones:
//
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or the default search paths)
//  3. Environment variables
//
// Environment variables map to config paths through an explicit table,
// e.g. HTTP_PORT -> server.port and LOG_LEVEL -> logging.level, so
// unrelated variables never leak into the configuration.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    // invalid configuration; the error names the offending field
//	}
package config
