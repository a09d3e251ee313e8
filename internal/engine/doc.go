// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package engine implements the decision core that narrows a large, noisy
// catalog down to one watchable title.
//
// # Architecture
//
// The core is a sequential pipeline driven by a strict interaction-flow
// state machine:
//
//   - Eligibility Filter: hard constraint gates with ordered reject reasons
//   - Scoring Engine: weighted composite of tag alignment, regret safety,
//     platform bias, and dimensional fit, with a taste-graph term blended
//     in as feedback accumulates
//   - Tag Weights + Feedback Applier: per-user online learning loop
//   - Progressive Pick Policy: interaction points narrow the pick count
//   - Selector: softmax-weighted sampling without replacement over the
//     top-scored pool
//   - Flow Machine: allow-listed session state transitions
//
// # Design Principles
//
//   - Deterministic: sampling uses a seeded RNG so tests can assert outcomes
//   - Pure where possible: filtering and scoring are side-effect free and
//     order independent; the scoring pass is parallelized without changing
//     results
//   - Fail fast: illegal state transitions surface a structured error and
//     are never silently absorbed
//   - Degrade gracefully: remote mood targets fall back to a hardcoded
//     tag-intersection scheme; missing quality sources fall back through a
//     documented chain
//
// # Usage
//
//	eng, err := engine.New(cfg, engine.Deps{
//	    Catalog: catalog,
//	    History: history,
//	    Weights: weights,
//	    Points:  points,
//	    Moods:   moods,
//	}, logger)
//
//	res, err := eng.SelectPicks(ctx, sessionID)
//	if res.NoMatches() { ... }
//
// # Thread Safety
//
// One session drives one sequential pipeline. The session registry
// serializes transitions per session; the engine itself is safe for
// concurrent use across sessions.
package engine
