// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package api provides the HTTP surface of the decision engine using the
// Chi router.
//
// Routes:
//
//	POST   /api/v1/sessions                   start a session
//	GET    /api/v1/sessions/{id}              session snapshot
//	POST   /api/v1/sessions/{id}/events       apply a flow event
//	POST   /api/v1/sessions/{id}/picks       run one selection pass
//	POST   /api/v1/interactions               record an interaction event
//	GET    /api/v1/health/live                liveness probe
//	GET    /api/v1/health/ready               readiness probe
//	GET    /metrics                           Prometheus exposition
//
// All endpoints respond with the APIResponse envelope. Request payloads
// are validated with the validation package before they reach the
// decision core; flow violations surface as 409 CONFLICT with the
// offending state and event named in the error details.
package api
