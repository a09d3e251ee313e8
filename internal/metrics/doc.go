// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package metrics provides Prometheus instrumentation for the decision
// core and its surrounding services.
//
// Collectors are registered on the default registry via promauto and
// exposed through promhttp on /metrics. The package covers:
//
//   - selection passes (latency, outcome, pick tier, pool sizes)
//   - eligibility rejections by reason
//   - interaction flow transitions
//   - feedback events and tag weight updates
//   - mood mapping-table fallbacks
//   - catalog query latency (DuckDB)
//   - HTTP API throughput and latency
//   - session registry occupancy
//
// EngineObserver adapts the collectors to the decision core's observer
// hooks so the engine package stays free of Prometheus imports.
package metrics
