// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package moodremote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/goodwatch/goodwatch/internal/engine"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	return New(cfg, zerolog.Nop())
}

func TestClient_Targets(t *testing.T) {
	t.Parallel()

	row := engine.MoodTargets{
		Mood:       engine.MoodTired,
		Version:    7,
		IntentTags: []string{"cozy", "gentle"},
		Dimensions: map[string]float64{"energy": 0.2},
	}
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/moods/tired" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(row)
	})

	c := newTestClient(srv.URL)
	got, err := c.Targets(context.Background(), engine.MoodTired)
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	if got.Version != 7 || len(got.IntentTags) != 2 || got.IntentTags[0] != "cozy" {
		t.Errorf("targets = %+v", got)
	}
}

func TestClient_Targets_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(engine.MoodTargets{Mood: engine.MoodUpbeat, Version: 1})
	})

	c := newTestClient(srv.URL)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := c.Targets(ctx, engine.MoodUpbeat); err != nil {
			t.Fatalf("Targets: %v", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server called %d times, want 1 (cache miss only)", n)
	}
}

func TestClient_Targets_ServesStaleOnFailure(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(engine.MoodTargets{Mood: engine.MoodFocused, Version: 2})
	})

	c := newTestClient(srv.URL)
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	ctx := context.Background()
	if _, err := c.Targets(ctx, engine.MoodFocused); err != nil {
		t.Fatalf("warm fetch: %v", err)
	}

	// Expire the cache, then break the server.
	c.now = func() time.Time { return base.Add(time.Hour) }
	fail.Store(true)

	got, err := c.Targets(ctx, engine.MoodFocused)
	if err != nil {
		t.Fatalf("stale serve: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("stale row version = %d, want 2", got.Version)
	}
}

func TestClient_Targets_ErrorWithoutCache(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	c := newTestClient(srv.URL)
	if _, err := c.Targets(context.Background(), engine.MoodTired); err == nil {
		t.Fatal("expected error with no cached row")
	}
}

func TestClient_Targets_DisabledWithoutBaseURL(t *testing.T) {
	t.Parallel()

	c := New(DefaultConfig(), zerolog.Nop())
	if _, err := c.Targets(context.Background(), engine.MoodTired); err == nil {
		t.Fatal("disabled client should error so the engine falls back")
	}
}

func TestClient_Targets_BreakerOpensDuringOutage(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusBadGateway)
	})

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	cfg.CacheTTL = time.Nanosecond // never serve from cache
	c := New(cfg, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		_, _ = c.Targets(ctx, engine.MoodTired)
	}
	// Five consecutive failures trip the breaker; later calls are
	// rejected without touching the server.
	if n := atomic.LoadInt32(&calls); n > 6 {
		t.Errorf("server called %d times during outage, breaker did not open", n)
	}
}

func TestClient_RateLimited(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(engine.MoodTargets{Version: 1})
	})

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	cfg.CacheTTL = time.Nanosecond
	c := New(cfg, zerolog.Nop())

	ctx := context.Background()
	if _, err := c.Targets(ctx, engine.MoodTired); err != nil {
		t.Fatalf("first fetch should pass the limiter: %v", err)
	}
	if _, err := c.fetch(ctx, engine.MoodUpbeat); err == nil {
		t.Fatal("second immediate fetch should be rate limited")
	}
}
