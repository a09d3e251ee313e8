// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodwatch/goodwatch/internal/engine"
	"github.com/goodwatch/goodwatch/internal/metrics"
)

// defaultSweepInterval is how often idle sessions are collected.
const defaultSweepInterval = 5 * time.Minute

// Sweeper periodically removes idle sessions from the registry and
// keeps the session gauges current.
type Sweeper struct {
	registry *engine.Registry
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper creates a session sweeper.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSweeper(registry *engine.Registry, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   logger.With().Str("component", "sweeper").Logger(),
	}
}

// Serve implements suture.Service. It sweeps on each tick until the
// context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	metrics.SetActiveSessions(s.registry.Len())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed := s.registry.Sweep()
			metrics.RecordSweep(removed)
			metrics.SetActiveSessions(s.registry.Len())
			if removed > 0 {
				s.logger.Debug().
					Int("removed", removed).
					Int("remaining", s.registry.Len()).
					Msg("Swept idle sessions")
			}
		}
	}
}

// String implements fmt.Stringer for suture's event log.
func (s *Sweeper) String() string {
	return "session-sweeper"
}
