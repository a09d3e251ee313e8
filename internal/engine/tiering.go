// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

// PickCount maps accumulated interaction points to the number of
// candidates surfaced at once. The step function is monotone
// non-increasing, and points only ever grow, so a session never climbs
// back to a wider tier.
func PickCount(points int) int {
	switch {
	case points >= 160:
		return 1
	case points >= 100:
		return 2
	case points >= 50:
		return 3
	case points >= 20:
		return 4
	default:
		return 5
	}
}

// PointsFor returns the fixed point value an interaction kind accrues.
// Higher-commitment actions are worth more; every value is non-negative
// so the counter never decreases.
func PointsFor(kind EventKind) int {
	switch kind {
	case EventFeedbackCompleted:
		return 15
	case EventWatchNow:
		return 12
	case EventAlreadySeen:
		return 3
	case EventNotTonight:
		return 3
	case EventShowAnother:
		return 2
	case EventImplicitSkip:
		return 1
	case EventShown:
		return 1
	case EventFeedbackAbandoned:
		return 0
	default:
		return 0
	}
}
