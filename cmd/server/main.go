// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

// Package main is the entry point for the GoodWatch decision server.
//
// GoodWatch answers one question: "what should we watch tonight?" It
// surfaces a single pick (widening to a small set for new users) from
// the streaming catalog, filtered by hard eligibility gates, scored
// against the user's mood and learned tag weights, and sampled with a
// low-temperature softmax so repeat sessions do not feel scripted.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and config file (Koanf v2)
//  2. Store: BadgerDB for interaction history, tag weights, and points
//  3. Catalog: DuckDB title catalog
//  4. Mood table client: remote mood mapping with builtin fallback
//  5. Engine: the decision core, wired to the stores and catalog
//  6. Supervisor tree: database GC, mood refresher, session sweeper,
//     and the HTTP server under Suture supervision
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, STORE_PATH, MOOD_TABLE_URL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Catalog Seeding
//
// Set CATALOG_SEED_FILE to a JSON file containing an array of titles to
// upsert into the catalog at startup. Seeding is idempotent.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server stops accepting connections, in-flight requests get the
// configured shutdown timeout, and the stores are closed last.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/goodwatch/goodwatch/internal/api"
	"github.com/goodwatch/goodwatch/internal/catalog"
	"github.com/goodwatch/goodwatch/internal/config"
	"github.com/goodwatch/goodwatch/internal/engine"
	"github.com/goodwatch/goodwatch/internal/logging"
	"github.com/goodwatch/goodwatch/internal/metrics"
	"github.com/goodwatch/goodwatch/internal/moodremote"
	"github.com/goodwatch/goodwatch/internal/store"
	"github.com/goodwatch/goodwatch/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("store_path", cfg.Store.Path).
		Str("catalog_path", cfg.Catalog.Path).
		Bool("mood_table_enabled", cfg.Moods.BaseURL != "").
		Msg("Starting GoodWatch")

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	cat, err := catalog.OpenDB(cfg.Catalog, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog")
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
	}()

	if seedFile := os.Getenv("CATALOG_SEED_FILE"); seedFile != "" {
		if err := seedCatalog(context.Background(), cat, seedFile); err != nil {
			logging.Fatal().Err(err).Str("file", seedFile).Msg("Failed to seed catalog")
		}
		logging.Info().Str("file", seedFile).Msg("Catalog seeded")
	}

	moodClient := moodremote.New(cfg.Moods, logger)

	eng, err := engine.New(&cfg.Engine, engine.Deps{
		Catalog: cat,
		History: st.History(),
		Weights: st.Weights(),
		Points:  st.Points(),
		Moods:   moodClient,
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create engine")
	}
	eng.SetObserver(metrics.NewEngineObserver())

	handler := api.NewHandler(eng,
		api.ReadinessCheck{Name: "catalog", Check: cat.Ping},
		api.ReadinessCheck{Name: "store", Check: func(context.Context) error {
			if st.DB().IsClosed() {
				return errors.New("store closed")
			}
			return nil
		}},
	)

	router := api.NewRouter(handler, api.MiddlewareConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(st)
	if cfg.Moods.BaseURL != "" {
		tree.AddBackgroundService(moodremote.NewRefresher(moodClient, cfg.Moods.CacheTTL))
	}
	tree.AddBackgroundService(supervisor.NewSweeper(eng.Sessions(), 0, logger))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Stopped gracefully")
}

// seedCatalog upserts titles from a JSON file into the catalog.
func seedCatalog(ctx context.Context, cat *catalog.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var titles []engine.Title
	if err := json.Unmarshal(data, &titles); err != nil {
		return err
	}
	return cat.Seed(ctx, titles)
}
