// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID is unknown to the registry.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownEventKind is returned when an interaction event carries a kind
// outside the closed set.
var ErrUnknownEventKind = errors.New("unknown interaction event kind")

// ErrCatalogUnavailable is returned when the catalog collaborator fails.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// IllegalTransitionError reports an event that is not in the allow-list
// for the session's current state. It indicates a caller bug and is never
// silently absorbed.
type IllegalTransitionError struct {
	// From is the state the session was in.
	From State

	// Event is the rejected flow event.
	Event FlowEvent
}

// Error implements the error interface.
func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: event %q not allowed in state %q", e.Event, e.From)
}

// IsIllegalTransition reports whether err is an IllegalTransitionError.
func IsIllegalTransition(err error) bool {
	var ite *IllegalTransitionError
	return errors.As(err, &ite)
}
