// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import "time"

// ExclusionSet holds the title IDs a selection pass must not resurface.
// It is derived from the session seen-set and the interaction history
// cooldown windows before filtering starts, so the filter itself stays a
// pure function of its inputs.
type ExclusionSet struct {
	ids map[string]struct{}
}

// NewExclusionSet builds an exclusion set from the session seen-set and
// recent history events. Hard interactions exclude within hardWindow,
// rejections within softWindow, both measured against now.
func NewExclusionSet(seen map[string]struct{}, events []Event, now time.Time, hardWindow, softWindow time.Duration) ExclusionSet {
	ids := make(map[string]struct{}, len(seen)+len(events))
	for id := range seen {
		ids[id] = struct{}{}
	}
	for _, ev := range events {
		window := hardWindow
		if ev.Kind.IsRejection() {
			window = softWindow
		}
		if now.Sub(ev.Timestamp) <= window {
			ids[ev.TitleID] = struct{}{}
		}
	}
	return ExclusionSet{ids: ids}
}

// Contains reports whether the title ID is excluded.
func (s ExclusionSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of excluded title IDs.
func (s ExclusionSet) Len() int {
	return len(s.ids)
}

// FilterInput carries the per-pass inputs the eligibility gates need
// beyond the title itself.
type FilterInput struct {
	// User is the session context.
	User UserContext

	// Exclusions is the precomputed recency exclusion set.
	Exclusions ExclusionSet

	// IntentTags is the mood's intent tag set. Empty waives the overlap
	// gate, as does the surprise mood.
	IntentTags []string

	// WatchNowCount is the user's lifetime watch_now count, for the
	// maturity gate.
	WatchNowCount int

	// QualityFloor is the effective floor for this pass (mood, hour and
	// reject count already applied).
	QualityFloor float64
}

// Filter applies the hard eligibility gates. It is a pure predicate: the
// same inputs always produce the same reason, and nothing is mutated.
type Filter struct {
	cfg *Config
}

// NewFilter creates a Filter with the given configuration.
func NewFilter(cfg *Config) *Filter {
	return &Filter{cfg: cfg}
}

// Check runs the gates in a fixed cheap-first order and returns the first
// failure. RejectNone means the title passed every gate.
func (f *Filter) Check(title *Title, in *FilterInput) RejectReason {
	if !f.available(title, in.User.Platforms) {
		return RejectUnavailable
	}
	if !contains(in.User.Languages, title.Language) {
		return RejectLanguage
	}
	if title.ContentType != in.User.ContentType {
		return RejectContentType
	}
	if !f.runtimeInWindow(title, &in.User) {
		return RejectRuntime
	}
	if in.Exclusions.Contains(title.ID) {
		return RejectRecentlySeen
	}
	if f.maturityGated(title, in) {
		return RejectMaturityGated
	}
	if DeriveQuality(title) < in.QualityFloor {
		return RejectQualityFloor
	}
	if !f.intentOverlap(title, in) {
		return RejectNoTagOverlap
	}
	return RejectNone
}

// available requires the title to be watchable and to share at least one
// platform with the user. Zero subscribed platforms fails everything:
// no platform means no watchable title.
func (f *Filter) available(title *Title, platforms []string) bool {
	if !title.Available || len(platforms) == 0 {
		return false
	}
	for _, p := range title.Platforms {
		if contains(platforms, p) {
			return true
		}
	}
	return false
}

// runtimeInWindow checks the inclusive runtime window. Series runtime is
// already per-episode in the catalog model.
func (f *Filter) runtimeInWindow(title *Title, u *UserContext) bool {
	return title.RuntimeMinutes >= u.MinRuntimeMinutes && title.RuntimeMinutes <= u.MaxRuntimeMinutes
}

// maturityGated applies the animation/kids/family gate. The gate lifts
// once the user has enough committed watches, when the context explicitly
// unlocks mature content, or for adult-oriented animation meeting the
// quality bar.
func (f *Filter) maturityGated(title *Title, in *FilterInput) bool {
	gated := false
	for _, tag := range f.cfg.Maturity.GatedTags {
		if title.HasTag(tag) {
			gated = true
			break
		}
	}
	if !gated {
		return false
	}
	if in.User.MatureUnlocked || in.WatchNowCount >= f.cfg.Maturity.MinWatchNow {
		return false
	}
	if title.HasTag(f.cfg.Maturity.AdultAnimationTag) &&
		DeriveQuality(title) >= f.cfg.Maturity.AdultAnimationQualityBar {
		return false
	}
	return true
}

// intentOverlap requires at least one tag in the mood's intent set.
// The surprise mood and an empty intent set waive the gate.
func (f *Filter) intentOverlap(title *Title, in *FilterInput) bool {
	if in.User.Mood == MoodSurprise || len(in.IntentTags) == 0 {
		return true
	}
	for _, tag := range title.Tags {
		if contains(in.IntentTags, tag) {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
