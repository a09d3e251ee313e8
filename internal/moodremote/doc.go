// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package moodremote fetches the versioned mood-to-target mapping table
// from its remote owner.
//
// The client wraps the HTTP fetch in a circuit breaker and a rate
// limiter, and caches the last good row per mood. The decision core's
// contract is that a selection pass never fails because this table is
// unreachable: on any error the engine substitutes its hardcoded
// fallback, so the client surfaces errors honestly and lets the caller
// degrade.
package moodremote
