// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package logging provides centralized zerolog-based logging for GoodWatch.
//
// The global logger is initialized once at startup and components derive
// child loggers from it:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	engineLog := logging.With().Str("component", "engine").Logger()
//
// Request-scoped loggers travel through context.Context; middleware stores
// a logger carrying the request ID and handlers retrieve it with
// logging.FromContext.
//
// A slog.Handler adapter is provided for libraries that speak log/slog
// (the supervision tree's sutureslog handler in particular), so the whole
// process emits through one zerolog pipeline.
package logging
