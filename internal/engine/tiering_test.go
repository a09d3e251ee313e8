// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import "testing"

// --- Test: PickCount ---

func TestPickCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		points int
		want   int
	}{
		{0, 5},
		{19, 5},
		{20, 4},
		{49, 4},
		{50, 3},
		{99, 3},
		{100, 2},
		{159, 2},
		{160, 1},
		{1000, 1},
	}

	for _, tt := range tests {
		if got := PickCount(tt.points); got != tt.want {
			t.Errorf("PickCount(%d) = %d, want %d", tt.points, got, tt.want)
		}
	}
}

func TestPickCount_MonotoneNonIncreasing(t *testing.T) {
	t.Parallel()

	prev := PickCount(0)
	for points := 1; points <= 200; points++ {
		cur := PickCount(points)
		if cur > prev {
			t.Fatalf("PickCount(%d) = %d exceeds PickCount(%d) = %d", points, cur, points-1, prev)
		}
		prev = cur
	}
}

// --- Test: PointsFor ---

func TestPointsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind EventKind
		want int
	}{
		{EventFeedbackCompleted, 15},
		{EventWatchNow, 12},
		{EventAlreadySeen, 3},
		{EventNotTonight, 3},
		{EventShowAnother, 2},
		{EventImplicitSkip, 1},
		{EventShown, 1},
		{EventFeedbackAbandoned, 0},
	}

	for _, tt := range tests {
		if got := PointsFor(tt.kind); got != tt.want {
			t.Errorf("PointsFor(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

// Every interaction kind accrues non-negative points so the tier only
// ever narrows, even for negative-affinity interactions.
func TestPointsFor_NeverNegative(t *testing.T) {
	t.Parallel()

	for kind := range eventKindNames {
		if PointsFor(kind) < 0 {
			t.Errorf("PointsFor(%s) is negative", kind)
		}
	}
}
