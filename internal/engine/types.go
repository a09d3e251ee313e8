// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"time"
)

// ContentType distinguishes movies from series.
type ContentType string

const (
	// ContentMovie is a single feature-length title.
	ContentMovie ContentType = "movie"
	// ContentSeries is an episodic title; runtime is per-episode.
	ContentSeries ContentType = "series"
)

// Mood is one of the five named user moods collected during calibration.
type Mood string

const (
	// MoodTired selects low-effort comfort content with a high quality floor.
	MoodTired Mood = "tired"
	// MoodUpbeat selects energetic feel-good content.
	MoodUpbeat Mood = "upbeat"
	// MoodFocused selects cerebral, demanding content.
	MoodFocused Mood = "focused"
	// MoodAdventurous selects bold, risky content with a relaxed floor.
	MoodAdventurous Mood = "adventurous"
	// MoodSurprise waives intent tag matching entirely.
	MoodSurprise Mood = "surprise_me"
)

// Moods lists all recognized moods.
var Moods = []Mood{MoodTired, MoodUpbeat, MoodFocused, MoodAdventurous, MoodSurprise}

// Valid reports whether the mood is one of the five named moods.
func (m Mood) Valid() bool {
	switch m {
	case MoodTired, MoodUpbeat, MoodFocused, MoodAdventurous, MoodSurprise:
		return true
	default:
		return false
	}
}

// Title is a catalog entity. Titles are immutable from the core's
// perspective; the catalog collaborator owns them.
type Title struct {
	// ID is the catalog identifier.
	ID string `json:"id"`

	// Name is the display title.
	Name string `json:"name"`

	// Language is the primary audio language (BCP 47 tag, e.g. "en").
	Language string `json:"language"`

	// RuntimeMinutes is the feature runtime, or per-episode runtime for series.
	RuntimeMinutes int `json:"runtime_minutes"`

	// VoteCount is the number of votes behind VoteAverage.
	VoteCount int `json:"vote_count"`

	// VoteAverage is the critic rating source (0-10, 0 = absent).
	VoteAverage float64 `json:"vote_average"`

	// AudienceAverage is the audience rating source (0-10, 0 = absent).
	AudienceAverage float64 `json:"audience_average"`

	// CompositeScore is the pre-aggregated multi-source quality score
	// (0-10, 0 = absent). A large fraction of the catalog lacks it.
	CompositeScore float64 `json:"composite_score"`

	// ContentType is movie or series.
	ContentType ContentType `json:"content_type"`

	// Tags spans the five categories: weight, mood, energy,
	// rewatchability, risk.
	Tags []string `json:"tags"`

	// Platforms lists streaming platforms the title is available on.
	Platforms []string `json:"platforms"`

	// Available reports whether the title is currently watchable anywhere.
	Available bool `json:"available"`

	// AvailabilityCheckedAt is when Platforms was last verified.
	AvailabilityCheckedAt time.Time `json:"availability_checked_at"`
}

// HasTag reports whether the title carries the given tag.
func (t *Title) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// UserContext is a per-session snapshot built by the onboarding
// collaborator. The core reads it, never mutates it.
type UserContext struct {
	// UserID identifies the user across sessions.
	UserID string `json:"user_id"`

	// Mood is the selected mood.
	Mood Mood `json:"mood"`

	// Platforms are the user's subscribed streaming platforms.
	// Zero platforms means no title is watchable (strict mode).
	Platforms []string `json:"platforms"`

	// Languages are the allowed title languages.
	Languages []string `json:"languages"`

	// MinRuntimeMinutes and MaxRuntimeMinutes bound the runtime window.
	// Both bounds are inclusive.
	MinRuntimeMinutes int `json:"min_runtime_minutes"`
	MaxRuntimeMinutes int `json:"max_runtime_minutes"`

	// ContentType is the required content type.
	ContentType ContentType `json:"content_type"`

	// MatureUnlocked permits maturity-gated content regardless of the
	// watch-count heuristic.
	MatureUnlocked bool `json:"mature_unlocked"`

	// FirstTime marks a user without saved calibration context.
	FirstTime bool `json:"first_time"`

	// Now is the session wall-clock time used for time-of-day floors.
	// Zero means time.Now at evaluation.
	Now time.Time `json:"-"`
}

// RejectReason explains why a candidate failed a hard eligibility gate.
// Reasons are mutually exclusive; gates are checked in declaration order
// so the cheapest checks prune first.
type RejectReason int

const (
	// RejectNone means the candidate passed every gate.
	RejectNone RejectReason = iota
	// RejectUnavailable means the title is not watchable on the user's platforms.
	RejectUnavailable
	// RejectLanguage means the title language is not in the allowed set.
	RejectLanguage
	// RejectContentType means the content type does not match.
	RejectContentType
	// RejectRuntime means the runtime falls outside the inclusive window.
	RejectRuntime
	// RejectRecentlySeen means the title was interacted with too recently.
	RejectRecentlySeen
	// RejectMaturityGated means the animation/kids gate applies.
	RejectMaturityGated
	// RejectQualityFloor means the derived quality is below the floor.
	RejectQualityFloor
	// RejectNoTagOverlap means no tag intersects the mood's intent set.
	RejectNoTagOverlap
)

// String returns the wire name of the reject reason.
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "ok"
	case RejectUnavailable:
		return "unavailable"
	case RejectLanguage:
		return "language_mismatch"
	case RejectContentType:
		return "content_type_mismatch"
	case RejectRuntime:
		return "runtime_out_of_window"
	case RejectRecentlySeen:
		return "recently_seen"
	case RejectMaturityGated:
		return "maturity_gated"
	case RejectQualityFloor:
		return "quality_below_floor"
	case RejectNoTagOverlap:
		return "no_tag_overlap"
	default:
		return "unknown"
	}
}

// Candidate pairs a title with its score and eligibility outcome for one
// selection pass. Candidates are transient and never persisted.
type Candidate struct {
	Title  Title        `json:"title"`
	Score  float64      `json:"score"`
	Reason RejectReason `json:"reason"`
}

// Outcome distinguishes a pick set from the no-matches case. Callers must
// never conflate "no matches" with a short pick list.
type Outcome int

const (
	// OutcomePicks means Picks holds between one and five titles.
	OutcomePicks Outcome = iota
	// OutcomeNoMatches means the eligible pool was empty.
	OutcomeNoMatches
)

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	if o == OutcomeNoMatches {
		return "no_matches"
	}
	return "picks"
}

// Result is the outcome of one selection pass.
type Result struct {
	// Outcome distinguishes picks from no-matches.
	Outcome Outcome `json:"outcome"`

	// Picks holds the surfaced titles, highest score first.
	Picks []Candidate `json:"picks"`

	// PickCount is the tier the progressive pick policy selected.
	PickCount int `json:"pick_count"`

	// TotalCandidates is the size of the catalog slice considered.
	TotalCandidates int `json:"total_candidates"`

	// Rejections counts filtered candidates by reason.
	Rejections map[string]int `json:"rejections,omitempty"`
}

// NoMatches reports whether the pass produced no eligible candidates.
func (r *Result) NoMatches() bool {
	return r.Outcome == OutcomeNoMatches
}
