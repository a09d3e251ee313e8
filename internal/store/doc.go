// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package store persists per-user interaction state in BadgerDB.
//
// Three stores share one database:
//
//   - History: the append-only interaction event log, keyed by user and
//     timestamp so recency scans are prefix iterations.
//   - Weights: the per-user learned tag weights, one record per user.
//   - Points: the monotonic interaction points counter per user.
//
// All values are JSON. The database is opened once at startup and handed
// to each store; a periodic value-log GC runs under the supervision tree.
package store
