// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator backs ValidateStruct. Beyond the
// built-in tags it registers domain tags for API request payloads:
//
//   - mood: one of the five session moods
//   - contenttype: "movie" or "series"
//   - eventkind: a recordable interaction event name
//   - flowevent: an interaction flow event name
//
// Failures translate to human-readable messages and convert to the API
// error envelope via ToAPIError.
//
//	type StartSessionRequest struct {
//	    UserID string `validate:"required,min=1,max=128"`
//	    Mood   string `validate:"required,mood"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr
//	}
package validation
