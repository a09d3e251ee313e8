// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"context"
	"testing"
)

func TestMood_Valid(t *testing.T) {
	t.Parallel()

	for _, m := range Moods {
		if !m.Valid() {
			t.Errorf("Valid(%s) = false", m)
		}
	}
	if Mood("angry").Valid() {
		t.Error("unknown mood reported valid")
	}
}

func TestEventKind_RoundTrip(t *testing.T) {
	t.Parallel()

	for kind, name := range eventKindNames {
		parsed, ok := ParseEventKind(name)
		if !ok || parsed != kind {
			t.Errorf("ParseEventKind(%q) = %v, %v", name, parsed, ok)
		}
		if !kind.Valid() {
			t.Errorf("Valid(%s) = false", name)
		}
	}
	if _, ok := ParseEventKind("nope"); ok {
		t.Error("unknown wire name parsed")
	}
	if EventKind(99).Valid() {
		t.Error("out-of-range kind reported valid")
	}
	if EventKind(99).String() != "unknown" {
		t.Errorf("out-of-range kind name = %q", EventKind(99).String())
	}
}

func TestEventKind_IsRejection(t *testing.T) {
	t.Parallel()

	rejections := map[EventKind]bool{
		EventNotTonight:        true,
		EventShowAnother:       true,
		EventImplicitSkip:      true,
		EventShown:             false,
		EventWatchNow:          false,
		EventAlreadySeen:       false,
		EventFeedbackCompleted: false,
		EventFeedbackAbandoned: false,
	}
	for kind, want := range rejections {
		if got := kind.IsRejection(); got != want {
			t.Errorf("IsRejection(%s) = %v, want %v", kind, got, want)
		}
	}
}

func TestRejectReason_String(t *testing.T) {
	t.Parallel()

	reasons := []RejectReason{
		RejectNone, RejectUnavailable, RejectLanguage, RejectContentType,
		RejectRuntime, RejectRecentlySeen, RejectMaturityGated,
		RejectQualityFloor, RejectNoTagOverlap,
	}
	seen := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		name := r.String()
		if name == "unknown" {
			t.Errorf("reason %d has no wire name", r)
		}
		if _, dup := seen[name]; dup {
			t.Errorf("duplicate wire name %q", name)
		}
		seen[name] = struct{}{}
	}
	if RejectReason(99).String() != "unknown" {
		t.Error("out-of-range reason should name itself unknown")
	}
}

func TestTitle_HasTag(t *testing.T) {
	t.Parallel()

	title := Title{Tags: []string{"light", "comfort"}}
	if !title.HasTag("light") || title.HasTag("dark") {
		t.Error("HasTag misbehaving")
	}
}

// --- Test: mood fallback ---

type staticMoodSource struct {
	targets MoodTargets
	err     error
}

func (s *staticMoodSource) Targets(ctx context.Context, mood Mood) (MoodTargets, error) {
	return s.targets, s.err
}

func TestResolveTargets(t *testing.T) {
	t.Parallel()

	remote := MoodTargets{Mood: MoodTired, Version: 3, IntentTags: []string{"cozy"}}

	tests := []struct {
		name         string
		src          MoodSource
		wantFallback bool
		wantTags     []string
	}{
		{
			name:         "nil source falls back",
			src:          nil,
			wantFallback: true,
			wantTags:     fallbackIntentTags[MoodTired],
		},
		{
			name:         "source error falls back",
			src:          &staticMoodSource{err: context.DeadlineExceeded},
			wantFallback: true,
			wantTags:     fallbackIntentTags[MoodTired],
		},
		{
			name:         "zero version falls back",
			src:          &staticMoodSource{targets: MoodTargets{Mood: MoodTired}},
			wantFallback: true,
			wantTags:     fallbackIntentTags[MoodTired],
		},
		{
			name:     "healthy source wins",
			src:      &staticMoodSource{targets: remote},
			wantTags: []string{"cozy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, fellBack := resolveTargets(context.Background(), tt.src, MoodTired)
			if fellBack != tt.wantFallback {
				t.Errorf("fellBack = %v, want %v", fellBack, tt.wantFallback)
			}
			if len(got.IntentTags) != len(tt.wantTags) {
				t.Fatalf("intent tags = %v, want %v", got.IntentTags, tt.wantTags)
			}
			for i := range tt.wantTags {
				if got.IntentTags[i] != tt.wantTags[i] {
					t.Errorf("intent tags = %v, want %v", got.IntentTags, tt.wantTags)
				}
			}
		})
	}
}

func TestFallbackTargets_TotalOverMoods(t *testing.T) {
	t.Parallel()

	for _, m := range Moods {
		ft := FallbackTargets(m)
		if ft.Version == 0 {
			t.Errorf("fallback for %s has zero version", m)
		}
		if m != MoodSurprise && len(ft.IntentTags) == 0 {
			t.Errorf("fallback for %s has no intent tags", m)
		}
	}
	if tags := FallbackTargets(MoodSurprise).IntentTags; len(tags) != 0 {
		t.Errorf("surprise fallback should waive intent tags, got %v", tags)
	}
}
