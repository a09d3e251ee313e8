// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package catalog provides the read-only title catalog behind the
// engine's CatalogProvider boundary.
//
// Two implementations exist:
//
//   - DB: a DuckDB-backed catalog for production, where the titles table
//     is maintained by an external ingestion pipeline. The decision core
//     only ever reads it.
//   - Memory: an in-process catalog for tests and development seeds.
//
// Both apply the coarse query narrowing (language, content type, limit);
// fine-grained gating belongs to the engine's eligibility filter.
package catalog
