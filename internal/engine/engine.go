// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Note: this package has no dependencies on other internal packages. The
// collaborator interfaces below let the store, catalog and remote-config
// layers integrate without circular imports.

// CatalogQuery carries the coarse filters the catalog collaborator
// understands. Fine-grained gating happens in the eligibility filter.
type CatalogQuery struct {
	// Languages narrows by title language.
	Languages []string

	// ContentType narrows by movie/series.
	ContentType ContentType

	// Limit caps the returned slice.
	Limit int
}

// CatalogProvider is the read-only catalog collaborator boundary.
type CatalogProvider interface {
	// Titles returns catalog titles matching the coarse query.
	Titles(ctx context.Context, q CatalogQuery) ([]Title, error)
}

// HistoryStore is the append-only interaction log collaborator.
type HistoryStore interface {
	// Append records one interaction event. Events are never mutated or
	// deleted.
	Append(ctx context.Context, ev Event) error

	// Recent returns the user's events newer than since, any order.
	Recent(ctx context.Context, userID string, since time.Time) ([]Event, error)

	// CountKind returns the user's lifetime count of one event kind.
	CountKind(ctx context.Context, userID string, kind EventKind) (int, error)
}

// WeightsStore is the per-user tag weights collaborator. Updates must be
// serialized per user; last-writer-wins merges are not acceptable.
type WeightsStore interface {
	// Load returns the user's weights, empty if none saved yet.
	Load(ctx context.Context, userID string) (TagWeights, error)

	// Apply atomically loads the user's weights, runs mutate on them and
	// persists the result, returning the updated weights. Concurrent
	// calls for the same user must not lose updates.
	Apply(ctx context.Context, userID string, mutate func(TagWeights)) (TagWeights, error)
}

// PointsStore is the monotonic interaction points collaborator. The
// counter never decreases, even under concurrent writers: implementations
// must merge monotonically.
type PointsStore interface {
	// Add increments the user's points by a non-negative delta and
	// returns the new total.
	Add(ctx context.Context, userID string, delta int) (int, error)

	// Get returns the user's current points.
	Get(ctx context.Context, userID string) (int, error)
}

// Deps bundles the collaborator implementations the engine needs.
type Deps struct {
	Catalog CatalogProvider
	History HistoryStore
	Weights WeightsStore
	Points  PointsStore

	// Moods may be nil; the hardcoded fallback then always applies.
	Moods MoodSource

	// Fit may be nil; DefaultFit then applies.
	Fit FitFunc
}

// Observer receives selection and feedback outcomes for instrumentation.
// All methods may be called concurrently and must not block.
type Observer interface {
	SelectionDone(outcome Outcome, latency time.Duration)
	CandidateRejected(reason RejectReason, n int)
	TransitionTaken(from State, event FlowEvent, to State)
	MoodFallback(mood Mood)
	FeedbackApplied(kind EventKind)
}

// nopObserver is used when no observer is wired.
type nopObserver struct{}

func (nopObserver) SelectionDone(Outcome, time.Duration)    {}
func (nopObserver) CandidateRejected(RejectReason, int)     {}
func (nopObserver) TransitionTaken(State, FlowEvent, State) {}
func (nopObserver) MoodFallback(Mood)                       {}
func (nopObserver) FeedbackApplied(EventKind)               {}

// Engine is the decision core entry point. It is safe for concurrent use
// across sessions; work within one session is serialized by the registry.
type Engine struct {
	cfg      *Config
	logger   zerolog.Logger
	deps     Deps
	observer Observer

	filter   *Filter
	scorer   *Scorer
	selector *Selector
	sessions *Registry

	now func() time.Time
}

// New creates an Engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *Config, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog provider not set")
	}
	if deps.History == nil || deps.Weights == nil || deps.Points == nil {
		return nil, fmt.Errorf("history, weights and points stores must be set")
	}

	return &Engine{
		cfg:      cfg,
		logger:   logger.With().Str("component", "engine").Logger(),
		deps:     deps,
		observer: nopObserver{},
		filter:   NewFilter(cfg),
		scorer:   NewScorer(cfg, deps.Fit),
		selector: NewSelector(cfg.Sampling, cfg.Seed),
		sessions: NewRegistry(cfg.Limits.SessionTTL),
		now:      time.Now,
	}, nil
}

// SetObserver wires an instrumentation sink. Call before serving.
func (e *Engine) SetObserver(o Observer) {
	if o != nil {
		e.observer = o
	}
}

// Sessions exposes the session registry to the transport layer.
func (e *Engine) Sessions() *Registry {
	return e.sessions
}

// StartSession creates a session and drives it through entry, routing
// first-time users into calibration and returning users straight to
// decision-ready.
func (e *Engine) StartSession(user UserContext) (*Session, error) {
	s := e.sessions.Create(user)
	err := e.sessions.withLock(s, func() error {
		if err := e.transitionLocked(s, FlowStart, nil); err != nil {
			return err
		}
		routing := FlowResume
		if user.FirstTime {
			routing = FlowCalibrate
		}
		return e.transitionLocked(s, routing, nil)
	})
	if err != nil {
		e.sessions.Remove(s.ID)
		return nil, err
	}
	e.logger.Debug().
		Str("session_id", s.ID).
		Str("user_id", user.UserID).
		Str("state", string(s.State)).
		Msg("session started")
	return s, nil
}

// EvaluateTransition applies a flow event to a session. Illegal events
// surface an *IllegalTransitionError; they are never absorbed.
func (e *Engine) EvaluateTransition(sessionID string, event FlowEvent, patch *ContextPatch) (State, error) {
	s, err := e.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	err = e.sessions.withLock(s, func() error {
		return e.transitionLocked(s, event, patch)
	})
	if err != nil {
		return s.State, err
	}
	if s.State == StateExit {
		e.sessions.Remove(s.ID)
	}
	return s.State, nil
}

// transitionLocked evaluates one edge. Must be called with the session
// lock held.
func (e *Engine) transitionLocked(s *Session, event FlowEvent, patch *ContextPatch) error {
	from := s.State
	next, err := EvaluateTransition(from, event, &s.Flow, patch)
	if err != nil {
		e.logger.Error().
			Str("session_id", s.ID).
			Str("state", string(from)).
			Str("event", string(event)).
			Msg("illegal transition")
		return err
	}
	s.State = next
	e.observer.TransitionTaken(from, event, next)
	return nil
}

// pickEventFor maps a session state to the flow event that enters
// ShowPick from it. Selection may only run on these edges.
func pickEventFor(state State) (FlowEvent, bool) {
	switch state {
	case StateDecisionReady:
		return FlowShowPick, true
	case StateRejectedSoft:
		return FlowRetry, true
	case StateSeenFlagged:
		return FlowReplace, true
	default:
		return "", false
	}
}

// SelectPicks runs one selection pass for the session. Selection runs
// only on an edge that enters ShowPick (initial show, retry after a soft
// rejection, or replacement after an already-seen flag), and the state
// advances only when picks are produced. An empty eligible pool yields
// the distinct NoMatches outcome and leaves the state untouched.
func (e *Engine) SelectPicks(ctx context.Context, sessionID string) (*Result, error) {
	s, err := e.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var res *Result
	err = e.sessions.withLock(s, func() error {
		event, ok := pickEventFor(s.State)
		if !ok {
			return &IllegalTransitionError{From: s.State, Event: FlowShowPick}
		}
		// Validate the edge before doing any work.
		fc := s.Flow
		if _, terr := EvaluateTransition(s.State, event, &fc, nil); terr != nil {
			return terr
		}

		start := e.now()
		r, serr := e.selectLocked(ctx, s)
		if serr != nil {
			return serr
		}

		if r.Outcome == OutcomePicks {
			if terr := e.transitionLocked(s, event, nil); terr != nil {
				return terr
			}
			ids := make([]string, 0, len(r.Picks))
			for i := range r.Picks {
				ids = append(ids, r.Picks[i].Title.ID)
			}
			s.MarkSeen(ids...)
		}

		e.observer.SelectionDone(r.Outcome, e.now().Sub(start))
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// selectLocked runs the filter → score → sample pipeline. Must be called
// with the session lock held.
func (e *Engine) selectLocked(ctx context.Context, s *Session) (*Result, error) {
	user := s.User
	now := user.Now
	if now.IsZero() {
		now = e.now()
	}

	targets, fellBack := resolveTargets(ctx, e.deps.Moods, user.Mood)
	if fellBack {
		e.observer.MoodFallback(user.Mood)
		e.logger.Debug().Str("mood", string(user.Mood)).Msg("mood targets fell back to builtin table")
	}

	weights, err := e.deps.Weights.Load(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	watchNow, err := e.deps.History.CountKind(ctx, user.UserID, EventWatchNow)
	if err != nil {
		return nil, fmt.Errorf("count watch_now: %w", err)
	}
	feedback, err := e.countFeedback(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	points, err := e.deps.Points.Get(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("get points: %w", err)
	}

	since := now.Add(-e.cfg.Exclusion.HardWindow)
	recent, err := e.deps.History.Recent(ctx, user.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	exclusions := NewExclusionSet(s.Seen, recent, now, e.cfg.Exclusion.HardWindow, e.cfg.Exclusion.SoftWindow)

	titles, err := e.deps.Catalog.Titles(ctx, CatalogQuery{
		Languages:   user.Languages,
		ContentType: user.ContentType,
		Limit:       e.cfg.Limits.MaxCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	fin := FilterInput{
		User:          user,
		Exclusions:    exclusions,
		IntentTags:    targets.IntentTags,
		WatchNowCount: watchNow,
		QualityFloor:  e.cfg.Floors.FloorFor(user.Mood, now.Hour(), s.Flow.RejectCount),
	}

	eligible := make([]Candidate, 0, len(titles))
	rejections := make(map[string]int)
	for i := range titles {
		reason := e.filter.Check(&titles[i], &fin)
		if reason == RejectNone {
			eligible = append(eligible, Candidate{Title: titles[i]})
			continue
		}
		rejections[reason.String()]++
		e.observer.CandidateRejected(reason, 1)
	}

	if len(eligible) == 0 {
		e.logger.Info().
			Str("session_id", s.ID).
			Int("candidates", len(titles)).
			Msg("no eligible candidates")
		return &Result{
			Outcome:         OutcomeNoMatches,
			TotalCandidates: len(titles),
			Rejections:      rejections,
		}, nil
	}

	sin := ScoreInput{
		User:          user,
		Weights:       weights,
		Targets:       targets,
		FeedbackCount: feedback,
	}
	e.scorer.ScoreAll(eligible, &sin, e.cfg.Limits.ScoreWorkers)

	// Diversify away from the character of the last rejection. The tags
	// steer only the pass immediately after the rejection, so consume
	// them here.
	ApplyRejectionPenalty(eligible, s.LastRejectedTags, e.cfg.Sampling.RejectPenaltyFactor)
	s.LastRejectedTags = nil

	k := PickCount(points)
	picks := e.selector.Select(eligible, k)

	e.logger.Debug().
		Str("session_id", s.ID).
		Int("candidates", len(titles)).
		Int("eligible", len(eligible)).
		Int("pick_count", k).
		Int("returned", len(picks)).
		Msg("selection complete")

	return &Result{
		Outcome:         OutcomePicks,
		Picks:           picks,
		PickCount:       k,
		TotalCandidates: len(titles),
		Rejections:      rejections,
	}, nil
}

// RecordInteraction appends the event, applies the tag-weight delta and
// accrues interaction points. The updated weights are saved before
// returning, so the very next scoring pass sees them.
func (e *Engine) RecordInteraction(ctx context.Context, ev Event) (TagWeights, int, error) {
	if !ev.Kind.Valid() {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownEventKind, ev.Kind)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now()
	}

	if err := e.deps.History.Append(ctx, ev); err != nil {
		return nil, 0, fmt.Errorf("append event: %w", err)
	}

	weights, err := e.deps.Weights.Apply(ctx, ev.UserID, func(w TagWeights) {
		w.ApplyFeedback(ev.Kind, ev.TitleTags)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("apply weights: %w", err)
	}

	points, err := e.deps.Points.Add(ctx, ev.UserID, PointsFor(ev.Kind))
	if err != nil {
		return nil, 0, fmt.Errorf("add points: %w", err)
	}

	// Remember the rejected character for next-pass diversification.
	if ev.SessionID != "" && ev.Kind.IsRejection() {
		if s, serr := e.sessions.Get(ev.SessionID); serr == nil {
			_ = e.sessions.withLock(s, func() error {
				s.LastRejectedTags = append([]string(nil), ev.TitleTags...)
				return nil
			})
		}
	}

	e.observer.FeedbackApplied(ev.Kind)
	e.logger.Debug().
		Str("user_id", ev.UserID).
		Str("title_id", ev.TitleID).
		Str("kind", ev.Kind.String()).
		Int("points", points).
		Msg("interaction recorded")

	return weights, points, nil
}

// countFeedback counts the events that feed the taste-graph blend.
func (e *Engine) countFeedback(ctx context.Context, userID string) (int, error) {
	total := 0
	for _, kind := range []EventKind{EventFeedbackCompleted, EventFeedbackAbandoned, EventWatchNow, EventNotTonight} {
		n, err := e.deps.History.CountKind(ctx, userID, kind)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", kind, err)
		}
		total += n
	}
	return total, nil
}
