// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

// defaultTagWeight is the affinity every tag starts at.
const defaultTagWeight = 1.0

// TagWeights is a per-user mapping from tag to learned affinity in [0,1].
// Unlisted tags are at the default. Weights are owned by exactly one user
// and mutated only through ApplyFeedback; they are never shared.
type TagWeights map[string]float64

// NewTagWeights returns an empty weight map (all tags at default).
func NewTagWeights() TagWeights {
	return make(TagWeights)
}

// Get returns the weight for a tag, defaulting to 1.0.
func (w TagWeights) Get(tag string) float64 {
	if v, ok := w[tag]; ok {
		return v
	}
	return defaultTagWeight
}

// Learned returns the weight and whether the tag has deviated from the
// default.
func (w TagWeights) Learned(tag string) (float64, bool) {
	v, ok := w[tag]
	if !ok || v == defaultTagWeight {
		return defaultTagWeight, false
	}
	return v, true
}

// DeviatedCount counts tags that have moved off the default weight.
func (w TagWeights) DeviatedCount() int {
	n := 0
	for _, v := range w {
		if v != defaultTagWeight {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (w TagWeights) Clone() TagWeights {
	c := make(TagWeights, len(w))
	for k, v := range w {
		c[k] = v
	}
	return c
}

// FeedbackDelta returns the exact weight delta for an interaction kind.
// Magnitudes are ordered: completed > watch_now > skip/show_another
// (equal) > not_tonight > abandoned. Neutral kinds return 0.
func FeedbackDelta(kind EventKind) float64 {
	switch kind {
	case EventFeedbackCompleted:
		return 0.15
	case EventWatchNow:
		return 0.10
	case EventImplicitSkip:
		return -0.05
	case EventShowAnother:
		return -0.05
	case EventNotTonight:
		return -0.08
	case EventFeedbackAbandoned:
		return -0.12
	case EventShown, EventAlreadySeen:
		return 0
	default:
		return 0
	}
}

// ApplyFeedback applies the kind's delta to every tag the title carries
// and clamps each result to [0,1]. The mutation is synchronous: the very
// next scoring pass in the same session sees the updated weights.
func (w TagWeights) ApplyFeedback(kind EventKind, tags []string) {
	delta := FeedbackDelta(kind)
	if delta == 0 {
		return
	}
	for _, tag := range tags {
		w[tag] = clamp01(w.Get(tag) + delta)
	}
}

// ApplyDelta applies an explicit delta to the given tags with clamping.
// Used for manual corrections; delta application is linear and the clamp
// is idempotent.
func (w TagWeights) ApplyDelta(delta float64, tags []string) {
	for _, tag := range tags {
		w[tag] = clamp01(w.Get(tag) + delta)
	}
}

// IsFeedback reports whether the kind counts toward the taste-graph
// feedback accumulator.
func IsFeedback(kind EventKind) bool {
	switch kind {
	case EventFeedbackCompleted, EventFeedbackAbandoned, EventWatchNow, EventNotTonight:
		return true
	case EventShown, EventAlreadySeen, EventShowAnother, EventImplicitSkip:
		return false
	default:
		return false
	}
}
