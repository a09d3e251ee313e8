// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Config holds database configuration.
type Config struct {
	// Path is the database directory. Empty opens an in-memory database,
	// used in tests and ephemeral deployments.
	Path string `koanf:"path"`

	// SyncWrites forces fsync on every write. Durable but slower.
	SyncWrites bool `koanf:"sync_writes"`

	// GCInterval is how often the value-log GC runs.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCRatio is the value-log rewrite threshold passed to the GC.
	GCRatio float64 `koanf:"gc_ratio"`
}

// DefaultConfig returns production database defaults.
func DefaultConfig() Config {
	return Config{
		Path:       "data/goodwatch",
		SyncWrites: false,
		GCInterval: 10 * time.Minute,
		GCRatio:    0.5,
	}
}

// Store wraps the shared BadgerDB handle.
type Store struct {
	db     *badger.DB
	cfg    Config
	logger zerolog.Logger
}

// Open opens the database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.GCRatio <= 0 {
		cfg.GCRatio = 0.5
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	// Badger's own logger is noisy at INFO.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	return &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// DB exposes the raw handle to the individual stores.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// History returns the interaction event log store.
func (s *Store) History() *HistoryStore {
	return &HistoryStore{db: s.db}
}

// Weights returns the tag weights store.
func (s *Store) Weights() *WeightsStore {
	return &WeightsStore{db: s.db}
}

// Points returns the interaction points store.
func (s *Store) Points() *PointsStore {
	return &PointsStore{db: s.db}
}

// RunGC performs one value-log GC pass, looping until Badger reports
// nothing left to rewrite.
func (s *Store) RunGC() {
	if s.db.Opts().InMemory {
		return
	}
	for {
		err := s.db.RunValueLogGC(s.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("value log GC failed")
			return
		}
	}
}

// Serve runs the periodic GC loop until the context is canceled. It
// implements suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	interval := s.cfg.GCInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunGC()
		}
	}
}

// String names the store service in supervision logs.
func (s *Store) String() string {
	return "store-gc"
}
