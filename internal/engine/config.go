// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"fmt"
	"time"
)

// Config contains all tunables for the decision core.
type Config struct {
	// Weights defines the relative contribution of each base scoring term.
	// Weights are normalized at runtime, so they don't need to sum to 1.0.
	Weights TermWeights `json:"weights" koanf:"weights"`

	// TasteGraph controls how the long-term affinity term is blended in.
	TasteGraph TasteGraphConfig `json:"taste_graph" koanf:"taste_graph"`

	// Floors contains quality floor parameters.
	Floors FloorConfig `json:"floors" koanf:"floors"`

	// Exclusion contains recency cooldown windows.
	Exclusion ExclusionConfig `json:"exclusion" koanf:"exclusion"`

	// Maturity contains the animation/kids gating parameters.
	Maturity MaturityConfig `json:"maturity" koanf:"maturity"`

	// Sampling contains selector parameters.
	Sampling SamplingConfig `json:"sampling" koanf:"sampling"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Seed is the random seed for deterministic sampling.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed" koanf:"seed"`
}

// TermWeights defines the relative contribution of each base scoring term.
type TermWeights struct {
	// TagAlignment is the weight of the learned tag affinity term.
	TagAlignment float64 `json:"tag_alignment" koanf:"tag_alignment"`

	// RegretSafety is the weight of the derived quality term.
	RegretSafety float64 `json:"regret_safety" koanf:"regret_safety"`

	// PlatformBias is the weight of the platform coverage term.
	PlatformBias float64 `json:"platform_bias" koanf:"platform_bias"`

	// DimensionalFit is the weight of the mood-target distance term.
	DimensionalFit float64 `json:"dimensional_fit" koanf:"dimensional_fit"`
}

// Normalize returns a copy with weights scaled to sum to 1.0.
func (w TermWeights) Normalize() TermWeights {
	sum := w.TagAlignment + w.RegretSafety + w.PlatformBias + w.DimensionalFit
	if sum == 0 {
		const equal = 0.25
		return TermWeights{TagAlignment: equal, RegretSafety: equal, PlatformBias: equal, DimensionalFit: equal}
	}
	return TermWeights{
		TagAlignment:   w.TagAlignment / sum,
		RegretSafety:   w.RegretSafety / sum,
		PlatformBias:   w.PlatformBias / sum,
		DimensionalFit: w.DimensionalFit / sum,
	}
}

// TasteGraphConfig controls blending of the long-term affinity term.
// The term's weight steps up with accumulated feedback events and the base
// term weights are rescaled proportionally so the total stays 1.0.
type TasteGraphConfig struct {
	// MinFeedback is the feedback count below which the term is off.
	MinFeedback int `json:"min_feedback" koanf:"min_feedback"`

	// LowWeight applies from MinFeedback up to MidFeedback.
	LowWeight float64 `json:"low_weight" koanf:"low_weight"`

	// MidFeedback is the count at which MidWeight applies.
	MidFeedback int `json:"mid_feedback" koanf:"mid_feedback"`

	// MidWeight applies from MidFeedback up to FullFeedback.
	MidWeight float64 `json:"mid_weight" koanf:"mid_weight"`

	// FullFeedback is the count at which MaxWeight applies.
	FullFeedback int `json:"full_feedback" koanf:"full_feedback"`

	// MaxWeight is the ceiling for the term's share.
	MaxWeight float64 `json:"max_weight" koanf:"max_weight"`
}

// BlendWeight returns the taste-graph share for the given feedback count.
func (c TasteGraphConfig) BlendWeight(feedbackCount int) float64 {
	switch {
	case feedbackCount >= c.FullFeedback:
		return c.MaxWeight
	case feedbackCount >= c.MidFeedback:
		return c.MidWeight
	case feedbackCount >= c.MinFeedback:
		return c.LowWeight
	default:
		return 0
	}
}

// FloorConfig contains quality floor parameters.
type FloorConfig struct {
	// Global is the hard minimum below which no title is ever eligible.
	Global float64 `json:"global" koanf:"global"`

	// ByMood maps each mood to its quality floor.
	ByMood map[Mood]float64 `json:"by_mood" koanf:"by_mood"`

	// LateNightBump is added to the floor between LateNightStartHour and
	// LateNightEndHour, when restraint matters most.
	LateNightBump      float64 `json:"late_night_bump" koanf:"late_night_bump"`
	LateNightStartHour int     `json:"late_night_start_hour" koanf:"late_night_start_hour"`
	LateNightEndHour   int     `json:"late_night_end_hour" koanf:"late_night_end_hour"`

	// RejectBump raises the floor per soft rejection in the session,
	// capped at MaxRejectBump.
	RejectBump    float64 `json:"reject_bump" koanf:"reject_bump"`
	MaxRejectBump float64 `json:"max_reject_bump" koanf:"max_reject_bump"`
}

// FloorFor returns the effective quality floor for a mood, hour and
// session reject count. The result never drops below Global.
func (f FloorConfig) FloorFor(mood Mood, hour, rejectCount int) float64 {
	floor, ok := f.ByMood[mood]
	if !ok {
		floor = f.Global
	}
	if f.lateNight(hour) {
		floor += f.LateNightBump
	}
	bump := f.RejectBump * float64(rejectCount)
	if bump > f.MaxRejectBump {
		bump = f.MaxRejectBump
	}
	floor += bump
	if floor < f.Global {
		floor = f.Global
	}
	return floor
}

// lateNight reports whether hour falls inside the bump window. The
// window may wrap midnight (23 to 5) or sit within one day (0 to 6);
// equal start and end hours disable the bump.
func (f FloorConfig) lateNight(hour int) bool {
	switch {
	case f.LateNightStartHour == f.LateNightEndHour:
		return false
	case f.LateNightStartHour < f.LateNightEndHour:
		return hour >= f.LateNightStartHour && hour < f.LateNightEndHour
	default:
		return hour >= f.LateNightStartHour || hour < f.LateNightEndHour
	}
}

// ExclusionConfig contains the recency cooldown windows.
type ExclusionConfig struct {
	// HardWindow excludes titles with committed interactions (watch_now,
	// already_seen, feedback) within the window.
	HardWindow time.Duration `json:"hard_window" koanf:"hard_window"`

	// SoftWindow excludes titles with rejection interactions within the
	// window.
	SoftWindow time.Duration `json:"soft_window" koanf:"soft_window"`
}

// MaturityConfig contains the animation/kids gating parameters.
type MaturityConfig struct {
	// GatedTags are tag values that trigger the gate.
	GatedTags []string `json:"gated_tags" koanf:"gated_tags"`

	// MinWatchNow is the number of prior watch_now events that lifts the gate.
	MinWatchNow int `json:"min_watch_now" koanf:"min_watch_now"`

	// AdultAnimationTag carves adult-oriented animation out of the gate.
	AdultAnimationTag string `json:"adult_animation_tag" koanf:"adult_animation_tag"`

	// AdultAnimationQualityBar is the derived quality an adult-animation
	// title must meet to use the carve-out.
	AdultAnimationQualityBar float64 `json:"adult_animation_quality_bar" koanf:"adult_animation_quality_bar"`
}

// SamplingConfig contains selector parameters.
type SamplingConfig struct {
	// PoolSize is the size of the top-scored sampling pool.
	PoolSize int `json:"pool_size" koanf:"pool_size"`

	// Temperature is the softmax temperature. Low values favor quality
	// while keeping the draw non-deterministic.
	Temperature float64 `json:"temperature" koanf:"temperature"`

	// RejectPenaltyFactor scales the tag-overlap penalty applied after a
	// rejection: overlap/total * factor.
	RejectPenaltyFactor float64 `json:"reject_penalty_factor" koanf:"reject_penalty_factor"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates caps the catalog slice considered per pass.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// ScoreWorkers bounds the parallel scoring fanout. 1 disables
	// parallelism; results are identical either way.
	ScoreWorkers int `json:"score_workers" koanf:"score_workers"`

	// SessionTTL is how long an idle session survives in the registry.
	SessionTTL time.Duration `json:"session_ttl" koanf:"session_ttl"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: TermWeights{
			TagAlignment:   0.50,
			RegretSafety:   0.25,
			PlatformBias:   0.15,
			DimensionalFit: 0.10,
		},
		TasteGraph: TasteGraphConfig{
			MinFeedback:  3,
			LowWeight:    0.075,
			MidFeedback:  10,
			MidWeight:    0.12,
			FullFeedback: 20,
			MaxWeight:    0.15,
		},
		Floors: FloorConfig{
			Global: 5.0,
			ByMood: map[Mood]float64{
				MoodTired:       7.0,
				MoodFocused:     6.5,
				MoodUpbeat:      6.0,
				MoodAdventurous: 5.5,
				MoodSurprise:    5.5,
			},
			LateNightBump:      0.5,
			LateNightStartHour: 23,
			LateNightEndHour:   5,
			RejectBump:         0.2,
			MaxRejectBump:      0.6,
		},
		Exclusion: ExclusionConfig{
			HardWindow: 30 * 24 * time.Hour,
			SoftWindow: 7 * 24 * time.Hour,
		},
		Maturity: MaturityConfig{
			GatedTags:                []string{"animation", "kids", "family"},
			MinWatchNow:              5,
			AdultAnimationTag:        "adult_animation",
			AdultAnimationQualityBar: 7.5,
		},
		Sampling: SamplingConfig{
			PoolSize:            10,
			Temperature:         0.1,
			RejectPenaltyFactor: 0.3,
		},
		Limits: LimitsConfig{
			MaxCandidates: 1000,
			ScoreWorkers:  8,
			SessionTTL:    2 * time.Hour,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Weights.TagAlignment < 0 || c.Weights.RegretSafety < 0 ||
		c.Weights.PlatformBias < 0 || c.Weights.DimensionalFit < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", c.Weights)
	}
	if c.TasteGraph.MaxWeight < 0 || c.TasteGraph.MaxWeight >= 1 {
		return fmt.Errorf("taste_graph.max_weight must be in [0, 1), got %f", c.TasteGraph.MaxWeight)
	}
	if c.TasteGraph.MinFeedback > c.TasteGraph.MidFeedback || c.TasteGraph.MidFeedback > c.TasteGraph.FullFeedback {
		return fmt.Errorf("taste_graph feedback thresholds must be non-decreasing, got %d/%d/%d",
			c.TasteGraph.MinFeedback, c.TasteGraph.MidFeedback, c.TasteGraph.FullFeedback)
	}
	if c.Floors.Global < 0 || c.Floors.Global > 10 {
		return fmt.Errorf("floors.global must be in [0, 10], got %f", c.Floors.Global)
	}
	for mood, floor := range c.Floors.ByMood {
		if floor < c.Floors.Global {
			return fmt.Errorf("floors.by_mood[%s] below global floor: %f < %f", mood, floor, c.Floors.Global)
		}
	}
	if c.Floors.LateNightStartHour < 0 || c.Floors.LateNightStartHour > 23 ||
		c.Floors.LateNightEndHour < 0 || c.Floors.LateNightEndHour > 23 {
		return fmt.Errorf("floors late-night hours must be in [0, 23], got start=%d end=%d",
			c.Floors.LateNightStartHour, c.Floors.LateNightEndHour)
	}
	if c.Exclusion.HardWindow <= 0 || c.Exclusion.SoftWindow <= 0 {
		return fmt.Errorf("exclusion windows must be positive, got hard=%v soft=%v",
			c.Exclusion.HardWindow, c.Exclusion.SoftWindow)
	}
	if c.Exclusion.SoftWindow > c.Exclusion.HardWindow {
		return fmt.Errorf("exclusion.soft_window must not exceed hard_window, got %v > %v",
			c.Exclusion.SoftWindow, c.Exclusion.HardWindow)
	}
	if c.Sampling.PoolSize < 1 {
		return fmt.Errorf("sampling.pool_size must be positive, got %d", c.Sampling.PoolSize)
	}
	if c.Sampling.Temperature <= 0 {
		return fmt.Errorf("sampling.temperature must be positive, got %f", c.Sampling.Temperature)
	}
	if c.Sampling.RejectPenaltyFactor < 0 || c.Sampling.RejectPenaltyFactor > 1 {
		return fmt.Errorf("sampling.reject_penalty_factor must be in [0, 1], got %f", c.Sampling.RejectPenaltyFactor)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.ScoreWorkers < 1 {
		return fmt.Errorf("limits.score_workers must be positive, got %d", c.Limits.ScoreWorkers)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Floors.ByMood = make(map[Mood]float64, len(c.Floors.ByMood))
	for k, v := range c.Floors.ByMood {
		clone.Floors.ByMood[k] = v
	}
	clone.Maturity.GatedTags = append([]string(nil), c.Maturity.GatedTags...)
	return &clone
}
