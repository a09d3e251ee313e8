// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import "context"

// MoodTargets maps a mood to its intent tag set and dimensional targets.
// Rows come from a remote, versioned mapping table; Version 0 marks an
// empty or unusable row.
type MoodTargets struct {
	// Mood is the mood the row applies to.
	Mood Mood `json:"mood"`

	// Version is the row version. Zero means the row is unusable and the
	// hardcoded fallback must be applied.
	Version int `json:"version"`

	// IntentTags is the tag set a candidate must intersect. Empty waives
	// the overlap gate.
	IntentTags []string `json:"intent_tags"`

	// Dimensions are normalized per-dimension targets in [0,1] used by the
	// dimensional fit term.
	Dimensions map[string]float64 `json:"dimensions"`
}

// MoodSource resolves mood targets. Implementations must not block
// indefinitely; the engine substitutes FallbackTargets on any failure, so
// a source error never fails a selection pass.
type MoodSource interface {
	// Targets returns the active row for the mood.
	Targets(ctx context.Context, mood Mood) (MoodTargets, error)
}

// fallbackIntentTags is the hardcoded tag-intersection scheme used when
// the remote mapping table is unreachable or returns an empty row.
var fallbackIntentTags = map[Mood][]string{
	MoodTired:       {"light", "comfort", "low_energy", "feel_good"},
	MoodUpbeat:      {"fun", "energetic", "feel_good", "comedy"},
	MoodFocused:     {"cerebral", "heavy", "thoughtful", "slow_burn"},
	MoodAdventurous: {"risky", "bold", "dark", "intense"},
	MoodSurprise:    nil, // anything goes
}

// fallbackDimensions approximates the remote dimensional targets per mood.
var fallbackDimensions = map[Mood]map[string]float64{
	MoodTired:       {"weight": 0.2, "energy": 0.2, "risk": 0.1},
	MoodUpbeat:      {"weight": 0.3, "energy": 0.8, "risk": 0.3},
	MoodFocused:     {"weight": 0.8, "energy": 0.4, "risk": 0.4},
	MoodAdventurous: {"weight": 0.6, "energy": 0.7, "risk": 0.9},
	MoodSurprise:    {"weight": 0.5, "energy": 0.5, "risk": 0.5},
}

// FallbackTargets returns the hardcoded targets for a mood. It is total
// over the five named moods and safe for any input.
func FallbackTargets(mood Mood) MoodTargets {
	return MoodTargets{
		Mood:       mood,
		Version:    1,
		IntentTags: fallbackIntentTags[mood],
		Dimensions: fallbackDimensions[mood],
	}
}

// resolveTargets fetches mood targets, substituting the fallback on error
// or on an unusable (version 0 / empty) row. It never returns an error.
func resolveTargets(ctx context.Context, src MoodSource, mood Mood) (MoodTargets, bool) {
	if src == nil {
		return FallbackTargets(mood), true
	}
	t, err := src.Targets(ctx, mood)
	if err != nil || t.Version == 0 {
		return FallbackTargets(mood), true
	}
	return t, false
}
