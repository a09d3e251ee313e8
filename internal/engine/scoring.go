// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import "sync"

// criticSourceWeight and audienceSourceWeight blend the two independent
// rating sources when no pre-aggregated composite exists.
const (
	criticSourceWeight   = 0.6
	audienceSourceWeight = 0.4
)

// DeriveQuality resolves a title's quality score (0-10) via the fallback
// chain: pre-aggregated composite if present, else a fixed-weight blend of
// the two rating sources, else whichever single source exists. The chain
// exists because a large fraction of the catalog lacks the richest source;
// incomplete data never blocks a pick.
func DeriveQuality(title *Title) float64 {
	if title.CompositeScore > 0 {
		return title.CompositeScore
	}
	switch {
	case title.VoteAverage > 0 && title.AudienceAverage > 0:
		return criticSourceWeight*title.VoteAverage + audienceSourceWeight*title.AudienceAverage
	case title.VoteAverage > 0:
		return title.VoteAverage
	case title.AudienceAverage > 0:
		return title.AudienceAverage
	default:
		return 0
	}
}

// FitFunc computes the dimensional fit term in [0,1] for a title against
// the mood's dimensional targets. The exact shape of this term is still
// settling, so it is pluggable; DefaultFit is the tag-based stand-in.
type FitFunc func(title *Title, targets MoodTargets) float64

// DefaultFit approximates dimensional fit by Jaccard similarity between
// the title's tags and the mood's intent tags. With no intent tags the
// term is neutral.
func DefaultFit(title *Title, targets MoodTargets) float64 {
	if len(targets.IntentTags) == 0 || len(title.Tags) == 0 {
		return 0.5
	}
	overlap := 0
	for _, tag := range title.Tags {
		if contains(targets.IntentTags, tag) {
			overlap++
		}
	}
	union := len(title.Tags) + len(targets.IntentTags) - overlap
	if union == 0 {
		return 0.5
	}
	return float64(overlap) / float64(union)
}

// ScoreInput carries the per-pass inputs the scorer needs beyond the title.
type ScoreInput struct {
	// User is the session context.
	User UserContext

	// Weights is the user's learned tag affinity.
	Weights TagWeights

	// Targets is the resolved mood row.
	Targets MoodTargets

	// FeedbackCount is the user's lifetime feedback event count, which
	// gates the taste-graph term.
	FeedbackCount int
}

// Scorer computes the weighted composite score. Scoring is pure and order
// independent, so the candidate pass parallelizes without changing results.
type Scorer struct {
	cfg *Config
	fit FitFunc
}

// NewScorer creates a Scorer. A nil fit function selects DefaultFit.
func NewScorer(cfg *Config, fit FitFunc) *Scorer {
	if fit == nil {
		fit = DefaultFit
	}
	return &Scorer{cfg: cfg, fit: fit}
}

// Score returns the composite score in [0,1] for one title.
//
// The four base terms are individually normalized to [0,1], weighted by
// the normalized term weights, and summed. Once the user has accumulated
// enough feedback the taste-graph term takes its stepped share and the
// base shares shrink proportionally so the total weight stays 1.0.
func (s *Scorer) Score(title *Title, in *ScoreInput) float64 {
	w := s.cfg.Weights.Normalize()

	alignment := s.tagAlignment(title, in.Weights)
	safety := clamp01(DeriveQuality(title) / 10.0)
	platform := platformBias(title, in.User.Platforms)
	fit := clamp01(s.fit(title, in.Targets))

	base := w.TagAlignment*alignment + w.RegretSafety*safety +
		w.PlatformBias*platform + w.DimensionalFit*fit

	taste := s.cfg.TasteGraph.BlendWeight(in.FeedbackCount)
	if taste <= 0 {
		return clamp01(base)
	}
	affinity := tasteAffinity(title, in.Weights)
	return clamp01((1-taste)*base + taste*affinity)
}

// confidenceBonusThreshold is the number of tags that must deviate from
// the default weight before the alignment bonus applies.
const confidenceBonusThreshold = 10

// confidenceBonus is the cap of the alignment bonus, +5% of the term.
const confidenceBonus = 0.05

// tagAlignment averages the learned weight over the title's tags. Once
// enough tags have deviated from the default the estimate has earned a
// small confidence bonus, capped and clamped.
func (s *Scorer) tagAlignment(title *Title, weights TagWeights) float64 {
	if len(title.Tags) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, tag := range title.Tags {
		sum += weights.Get(tag)
	}
	alignment := sum / float64(len(title.Tags))
	if weights.DeviatedCount() >= confidenceBonusThreshold {
		alignment *= 1 + confidenceBonus
	}
	return clamp01(alignment)
}

// platformBias rewards titles covered by more of the user's platforms.
func platformBias(title *Title, platforms []string) float64 {
	if len(platforms) == 0 {
		return 0
	}
	covered := 0
	for _, p := range platforms {
		if contains(title.Platforms, p) {
			covered++
		}
	}
	return float64(covered) / float64(len(platforms))
}

// tasteAffinity is the long-term affinity term: the mean learned weight
// over only the title tags the user has actually expressed an opinion on.
// With no opinionated tags the term is neutral.
func tasteAffinity(title *Title, weights TagWeights) float64 {
	sum, n := 0.0, 0
	for _, tag := range title.Tags {
		if w, deviated := weights.Learned(tag); deviated {
			sum += w
			n++
		}
	}
	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}

// ScoreAll scores eligible candidates in place. The pass fans out over a
// bounded worker pool; scoring is pure so the parallel result is identical
// to the sequential one.
func (s *Scorer) ScoreAll(candidates []Candidate, in *ScoreInput, workers int) {
	if workers < 1 {
		workers = 1
	}
	if workers == 1 || len(candidates) < workers*2 {
		for i := range candidates {
			candidates[i].Score = s.Score(&candidates[i].Title, in)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (len(candidates) + workers - 1) / workers
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		wg.Add(1)
		go func(part []Candidate) {
			defer wg.Done()
			for i := range part {
				part[i].Score = s.Score(&part[i].Title, in)
			}
		}(candidates[start:end])
	}
	wg.Wait()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
