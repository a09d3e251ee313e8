// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"testing"
	"time"
)

// eligibleTitle returns a title that passes every gate for eligibleUser.
func eligibleTitle(id string) Title {
	return Title{
		ID:             id,
		Name:           "Title " + id,
		Language:       "en",
		RuntimeMinutes: 100,
		CompositeScore: 8.0,
		ContentType:    ContentMovie,
		Tags:           []string{"light", "comfort"},
		Platforms:      []string{"netflix"},
		Available:      true,
	}
}

// eligibleUser returns a tired-mood movie watcher at 8pm.
func eligibleUser() UserContext {
	return UserContext{
		UserID:            "u1",
		Mood:              MoodTired,
		Platforms:         []string{"netflix"},
		Languages:         []string{"en"},
		MinRuntimeMinutes: 60,
		MaxRuntimeMinutes: 180,
		ContentType:       ContentMovie,
		Now:               time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
}

func baseFilterInput() FilterInput {
	return FilterInput{
		User:         eligibleUser(),
		IntentTags:   []string{"light", "comfort", "low_energy", "feel_good"},
		QualityFloor: 7.0,
	}
}

// --- Test: Filter.Check ---

func TestFilter_Check(t *testing.T) {
	t.Parallel()

	f := NewFilter(DefaultConfig())

	tests := []struct {
		name  string
		title func(*Title)
		input func(*FilterInput)
		want  RejectReason
	}{
		{
			name: "eligible title passes",
			want: RejectNone,
		},
		{
			name:  "unavailable title",
			title: func(ti *Title) { ti.Available = false },
			want:  RejectUnavailable,
		},
		{
			name:  "no shared platform",
			title: func(ti *Title) { ti.Platforms = []string{"hulu"} },
			want:  RejectUnavailable,
		},
		{
			name:  "zero user platforms fails everything",
			input: func(in *FilterInput) { in.User.Platforms = nil },
			want:  RejectUnavailable,
		},
		{
			name:  "language mismatch",
			title: func(ti *Title) { ti.Language = "fr" },
			want:  RejectLanguage,
		},
		{
			name:  "content type mismatch",
			title: func(ti *Title) { ti.ContentType = ContentSeries },
			want:  RejectContentType,
		},
		{
			name:  "runtime below window",
			title: func(ti *Title) { ti.RuntimeMinutes = 59 },
			want:  RejectRuntime,
		},
		{
			name:  "runtime above window",
			title: func(ti *Title) { ti.RuntimeMinutes = 181 },
			want:  RejectRuntime,
		},
		{
			name:  "runtime at lower bound is inclusive",
			title: func(ti *Title) { ti.RuntimeMinutes = 60 },
			want:  RejectNone,
		},
		{
			name:  "runtime at upper bound is inclusive",
			title: func(ti *Title) { ti.RuntimeMinutes = 180 },
			want:  RejectNone,
		},
		{
			name:  "quality below floor",
			title: func(ti *Title) { ti.CompositeScore = 6.9 },
			want:  RejectQualityFloor,
		},
		{
			name:  "quality at floor passes",
			title: func(ti *Title) { ti.CompositeScore = 7.0 },
			want:  RejectNone,
		},
		{
			name:  "no intent tag overlap",
			title: func(ti *Title) { ti.Tags = []string{"dark", "intense"} },
			want:  RejectNoTagOverlap,
		},
		{
			name:  "surprise mood waives overlap gate",
			title: func(ti *Title) { ti.Tags = []string{"dark", "intense"} },
			input: func(in *FilterInput) { in.User.Mood = MoodSurprise },
			want:  RejectNone,
		},
		{
			name:  "empty intent set waives overlap gate",
			title: func(ti *Title) { ti.Tags = []string{"dark", "intense"} },
			input: func(in *FilterInput) { in.IntentTags = nil },
			want:  RejectNone,
		},
		{
			name:  "animation gated for new user",
			title: func(ti *Title) { ti.Tags = []string{"animation", "light", "comfort"} },
			want:  RejectMaturityGated,
		},
		{
			name:  "kids tag gated for new user",
			title: func(ti *Title) { ti.Tags = []string{"kids", "light"} },
			want:  RejectMaturityGated,
		},
		{
			name:  "gate lifts after enough committed watches",
			title: func(ti *Title) { ti.Tags = []string{"animation", "light", "comfort"} },
			input: func(in *FilterInput) { in.WatchNowCount = 5 },
			want:  RejectNone,
		},
		{
			name:  "gate lifts with explicit unlock",
			title: func(ti *Title) { ti.Tags = []string{"family", "light", "comfort"} },
			input: func(in *FilterInput) { in.User.MatureUnlocked = true },
			want:  RejectNone,
		},
		{
			name: "adult animation carve-out at high quality",
			title: func(ti *Title) {
				ti.Tags = []string{"animation", "adult_animation", "light", "comfort"}
				ti.CompositeScore = 8.5
			},
			want: RejectNone,
		},
		{
			name: "adult animation below quality bar stays gated",
			title: func(ti *Title) {
				ti.Tags = []string{"animation", "adult_animation", "light", "comfort"}
				ti.CompositeScore = 7.4
			},
			want: RejectMaturityGated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			title := eligibleTitle("t1")
			if tt.title != nil {
				tt.title(&title)
			}
			in := baseFilterInput()
			if tt.input != nil {
				tt.input(&in)
			}
			if got := f.Check(&title, &in); got != tt.want {
				t.Errorf("Check = %s, want %s", got, tt.want)
			}
		})
	}
}

// The filter is a pure predicate: repeated evaluation of the same inputs
// yields the same reason and mutates nothing.
func TestFilter_Check_Pure(t *testing.T) {
	t.Parallel()

	f := NewFilter(DefaultConfig())
	title := eligibleTitle("t1")
	in := baseFilterInput()

	first := f.Check(&title, &in)
	for i := 0; i < 10; i++ {
		if got := f.Check(&title, &in); got != first {
			t.Fatalf("iteration %d: reason changed from %s to %s", i, first, got)
		}
	}
}

// --- Test: ExclusionSet ---

func TestNewExclusionSet(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	hard := 30 * 24 * time.Hour
	soft := 7 * 24 * time.Hour

	events := []Event{
		// Committed interaction 29 days ago: inside the hard window.
		{TitleID: "watched-29d", Kind: EventWatchNow, Timestamp: now.Add(-29 * 24 * time.Hour)},
		// Committed interaction 31 days ago: expired.
		{TitleID: "watched-31d", Kind: EventWatchNow, Timestamp: now.Add(-31 * 24 * time.Hour)},
		// Rejection 6 days ago: inside the soft window.
		{TitleID: "rejected-6d", Kind: EventNotTonight, Timestamp: now.Add(-6 * 24 * time.Hour)},
		// Rejection 8 days ago: expired despite being inside the hard window.
		{TitleID: "rejected-8d", Kind: EventShowAnother, Timestamp: now.Add(-8 * 24 * time.Hour)},
		// Implicit skip yesterday: rejection kind, soft window applies.
		{TitleID: "skipped-1d", Kind: EventImplicitSkip, Timestamp: now.Add(-24 * time.Hour)},
	}
	seen := map[string]struct{}{"session-seen": {}}

	set := NewExclusionSet(seen, events, now, hard, soft)

	excluded := []string{"session-seen", "watched-29d", "rejected-6d", "skipped-1d"}
	for _, id := range excluded {
		if !set.Contains(id) {
			t.Errorf("expected %q to be excluded", id)
		}
	}
	included := []string{"watched-31d", "rejected-8d", "never-seen"}
	for _, id := range included {
		if set.Contains(id) {
			t.Errorf("expected %q to be eligible", id)
		}
	}
	if set.Len() != len(excluded) {
		t.Errorf("Len = %d, want %d", set.Len(), len(excluded))
	}
}

func TestFilter_Check_RecentlySeen(t *testing.T) {
	t.Parallel()

	f := NewFilter(DefaultConfig())
	title := eligibleTitle("t1")
	in := baseFilterInput()
	in.Exclusions = NewExclusionSet(map[string]struct{}{"t1": {}}, nil, time.Now(), time.Hour, time.Hour)

	if got := f.Check(&title, &in); got != RejectRecentlySeen {
		t.Errorf("Check = %s, want %s", got, RejectRecentlySeen)
	}
}
