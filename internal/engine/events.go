// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import "time"

// EventKind classifies a user interaction with a surfaced title.
// The set is closed; the feedback applier matches it exhaustively so a new
// kind is a compile-time-checked change.
type EventKind int

const (
	// EventShown records that a pick was surfaced to the user.
	EventShown EventKind = iota
	// EventWatchNow records acceptance of a pick.
	EventWatchNow
	// EventNotTonight records a soft rejection.
	EventNotTonight
	// EventAlreadySeen records that the user had already watched the title.
	EventAlreadySeen
	// EventShowAnother records a request for a replacement pick.
	EventShowAnother
	// EventFeedbackCompleted records post-watch feedback that the title landed.
	EventFeedbackCompleted
	// EventFeedbackAbandoned records that the user bailed on the title.
	EventFeedbackAbandoned
	// EventImplicitSkip records a pick that was ignored without comment.
	EventImplicitSkip
)

// eventKindNames maps kinds to their wire names.
var eventKindNames = map[EventKind]string{
	EventShown:             "shown",
	EventWatchNow:          "watch_now",
	EventNotTonight:        "not_tonight",
	EventAlreadySeen:       "already_seen",
	EventShowAnother:       "show_another",
	EventFeedbackCompleted: "feedback_completed",
	EventFeedbackAbandoned: "feedback_abandoned",
	EventImplicitSkip:      "implicit_skip",
}

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseEventKind resolves a wire name to an EventKind.
func ParseEventKind(s string) (EventKind, bool) {
	for k, name := range eventKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Valid reports whether the kind is a member of the closed set.
func (k EventKind) Valid() bool {
	_, ok := eventKindNames[k]
	return ok
}

// IsRejection reports whether the kind counts against the soft-rejection
// cooldown window rather than the hard exclusion window.
func (k EventKind) IsRejection() bool {
	switch k {
	case EventNotTonight, EventShowAnother, EventImplicitSkip:
		return true
	case EventShown, EventWatchNow, EventAlreadySeen,
		EventFeedbackCompleted, EventFeedbackAbandoned:
		return false
	default:
		return false
	}
}

// Event is one append-only interaction log entry. Events are never mutated
// or deleted; the eligibility filter reads them for recency exclusion.
type Event struct {
	// UserID identifies the user the event belongs to.
	UserID string `json:"user_id"`

	// SessionID groups events within one decision session.
	SessionID string `json:"session_id,omitempty"`

	// Kind is the interaction kind.
	Kind EventKind `json:"kind"`

	// TitleID references the title the interaction concerns.
	TitleID string `json:"title_id"`

	// TitleTags snapshots the title's tags at interaction time so the
	// feedback applier does not need a catalog round trip.
	TitleTags []string `json:"title_tags,omitempty"`

	// Timestamp is when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`
}
