// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// Selector draws the final picks from the scored eligible pool.
//
// Candidates are sorted by score descending, the top PoolSize form the
// sampling pool, and picks are drawn by softmax-weighted sampling without
// replacement at a fixed low temperature. Low temperature favors quality;
// sampling avoids pure determinism. The RNG is seeded so tests can assert
// exact draws.
type Selector struct {
	cfg SamplingConfig

	// rng is protected by rngMu for concurrent selection passes.
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewSelector creates a Selector with a seeded random source.
func NewSelector(cfg SamplingConfig, seed int64) *Selector {
	if seed == 0 {
		seed = 42
	}
	return &Selector{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for pick sampling
	}
}

// Select returns exactly pickCount titles drawn from the top-PoolSize
// pool, or fewer only when the eligible pool itself is smaller. The input
// slice is reordered in place by score.
func (s *Selector) Select(eligible []Candidate, pickCount int) []Candidate {
	if len(eligible) == 0 || pickCount <= 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	pool := eligible
	if len(pool) > s.cfg.PoolSize {
		pool = pool[:s.cfg.PoolSize]
	}
	if pickCount > len(pool) {
		pickCount = len(pool)
	}

	weights := softmax(pool, s.cfg.Temperature)
	picked := make([]Candidate, 0, pickCount)
	taken := make([]bool, len(pool))

	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	for len(picked) < pickCount {
		idx := s.drawLocked(weights, taken)
		if idx < 0 {
			break
		}
		taken[idx] = true
		picked = append(picked, pool[idx])
	}

	// Present highest score first regardless of draw order.
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Score > picked[j].Score
	})
	return picked
}

// drawLocked draws one index by weight, skipping taken entries.
// Must be called with rngMu held.
func (s *Selector) drawLocked(weights []float64, taken []bool) int {
	total := 0.0
	for i, w := range weights {
		if !taken[i] {
			total += w
		}
	}
	if total <= 0 {
		for i := range taken {
			if !taken[i] {
				return i
			}
		}
		return -1
	}

	r := s.rng.Float64() * total
	acc := 0.0
	last := -1
	for i, w := range weights {
		if taken[i] {
			continue
		}
		acc += w
		last = i
		if r < acc {
			return i
		}
	}
	// Floating point slack lands on the last untaken entry.
	return last
}

// softmax converts scores into sampling weights: exp(score/temperature),
// shifted by the pool maximum for numeric stability.
func softmax(pool []Candidate, temperature float64) []float64 {
	maxScore := pool[0].Score
	for _, c := range pool {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	weights := make([]float64, len(pool))
	for i, c := range pool {
		weights[i] = math.Exp((c.Score - maxScore) / temperature)
	}
	return weights
}

// ApplyRejectionPenalty penalizes candidates proportionally to their tag
// overlap with the rejected title: overlap/total * factor. The immediate
// next pick is thereby diversified away from the rejected title's
// character. Scores are clamped at zero.
func ApplyRejectionPenalty(candidates []Candidate, rejectedTags []string, factor float64) {
	if len(rejectedTags) == 0 || factor <= 0 {
		return
	}
	for i := range candidates {
		tags := candidates[i].Title.Tags
		if len(tags) == 0 {
			continue
		}
		overlap := 0
		for _, tag := range tags {
			if contains(rejectedTags, tag) {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		penalty := float64(overlap) / float64(len(tags)) * factor
		candidates[i].Score = math.Max(0, candidates[i].Score-penalty)
	}
}
