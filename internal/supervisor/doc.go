// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package supervisor runs the process tree under Suture supervision.
//
// The tree has three layers with independent failure isolation:
//
//   - data: BadgerDB value-log GC
//   - background: mood table refresher, session sweeper
//   - api: HTTP server
//
// A crash in the background layer restarts only that layer's services;
// the API keeps serving with the mood fallback tables.
package supervisor
