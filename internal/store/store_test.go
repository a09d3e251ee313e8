// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodwatch/goodwatch/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	s, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

// --- Test: HistoryStore ---

func TestHistoryStore_AppendAndRecent(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	h := s.History()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	events := []engine.Event{
		{UserID: "u1", Kind: engine.EventWatchNow, TitleID: "old", Timestamp: now.Add(-40 * 24 * time.Hour)},
		{UserID: "u1", Kind: engine.EventNotTonight, TitleID: "recent", TitleTags: []string{"dark"}, Timestamp: now.Add(-time.Hour)},
		{UserID: "u1", Kind: engine.EventShown, TitleID: "newest", Timestamp: now},
		{UserID: "u2", Kind: engine.EventWatchNow, TitleID: "other-user", Timestamp: now},
	}
	for _, ev := range events {
		if err := h.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := h.Recent(ctx, "u1", now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent returned %d events, want 2", len(got))
	}
	// Prefix keys keep events in timestamp order.
	if got[0].TitleID != "recent" || got[1].TitleID != "newest" {
		t.Errorf("events out of order: %q, %q", got[0].TitleID, got[1].TitleID)
	}
	if len(got[0].TitleTags) != 1 || got[0].TitleTags[0] != "dark" {
		t.Errorf("tags not round-tripped: %v", got[0].TitleTags)
	}
}

func TestHistoryStore_CountKind(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	h := s.History()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		ev := engine.Event{UserID: "u1", Kind: engine.EventWatchNow, TitleID: "t", Timestamp: now.Add(time.Duration(i) * time.Second)}
		if err := h.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := h.Append(ctx, engine.Event{UserID: "u1", Kind: engine.EventShown, TitleID: "t", Timestamp: now}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := h.Append(ctx, engine.Event{UserID: "u2", Kind: engine.EventWatchNow, TitleID: "t", Timestamp: now}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	n, err := h.CountKind(ctx, "u1", engine.EventWatchNow)
	if err != nil {
		t.Fatalf("CountKind: %v", err)
	}
	if n != 3 {
		t.Errorf("CountKind = %d, want 3", n)
	}

	n, err = h.CountKind(ctx, "unknown", engine.EventWatchNow)
	if err != nil {
		t.Fatalf("CountKind: %v", err)
	}
	if n != 0 {
		t.Errorf("CountKind for unknown user = %d, want 0", n)
	}
}

func TestHistoryStore_SameNanosecondNoCollision(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	h := s.History()
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ev := engine.Event{UserID: "u1", Kind: engine.EventShown, TitleID: "t", Timestamp: ts}
		if err := h.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := h.Recent(ctx, "u1", ts.Add(-time.Second))
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("identical timestamps collapsed: got %d events, want 5", len(got))
	}
}

// --- Test: WeightsStore ---

func TestWeightsStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	w := s.Weights()
	ctx := context.Background()

	// A user without saved weights gets an empty map, not an error.
	empty, err := w.Load(ctx, "fresh")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if empty.DeviatedCount() != 0 {
		t.Errorf("fresh user weights not empty: %v", empty)
	}

	_, err = w.Apply(ctx, "u1", func(tw engine.TagWeights) {
		tw["dark"] = 0.3
		tw["light"] = 0.95
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, err := w.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Get("dark") != 0.3 || got.Get("light") != 0.95 {
		t.Errorf("weights = %v, want saved values", got)
	}
	if got.Get("unlisted") != 1.0 {
		t.Errorf("unlisted tag = %f, want default 1.0", got.Get("unlisted"))
	}
}

func TestWeightsStore_PerUserIsolation(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	w := s.Weights()
	ctx := context.Background()

	_, err := w.Apply(ctx, "u1", func(tw engine.TagWeights) {
		tw["horror"] = 0.1
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	other, err := w.Load(ctx, "u2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if other.Get("horror") != 1.0 {
		t.Error("weights leaked across users")
	}
}

func TestWeightsStore_ConcurrentApplySerializes(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	w := s.Weights()
	ctx := context.Background()

	// Each writer nudges the same tag down by the not_tonight delta.
	// Losing even one update would leave the weight above the serial
	// result of 1.0 - 8*0.08.
	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Apply(ctx, "u1", func(tw engine.TagWeights) {
				tw.ApplyDelta(-0.08, []string{"slow_burn"})
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	got, err := w.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := 1.0 - writers*0.08
	if diff := got.Get("slow_burn") - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("slow_burn weight = %f, want %f", got.Get("slow_burn"), want)
	}
}

// --- Test: PointsStore ---

func TestPointsStore_AddAndGet(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	p := s.Points()
	ctx := context.Background()

	if n, err := p.Get(ctx, "u1"); err != nil || n != 0 {
		t.Fatalf("fresh Get = %d, %v", n, err)
	}

	total, err := p.Add(ctx, "u1", 12)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}
	total, err = p.Add(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if total != 15 {
		t.Errorf("total = %d, want 15", total)
	}

	// Negative deltas never decrease the counter.
	total, err = p.Add(ctx, "u1", -100)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if total != 15 {
		t.Errorf("total after negative delta = %d, want 15", total)
	}
}

func TestPointsStore_ConcurrentAddsAreAdditive(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	p := s.Points()
	ctx := context.Background()

	var wg sync.WaitGroup
	const writers = 20
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Add(ctx, "u1", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Add: %v", err)
	}

	total, err := p.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if total != writers {
		t.Errorf("total = %d, want %d (lost increments)", total, writers)
	}
}

// --- Test: Store lifecycle ---

func TestStore_OpenInMemory(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Path = ""
	s, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open in-memory: %v", err)
	}
	defer s.Close()

	if _, err := s.Points().Add(context.Background(), "u1", 5); err != nil {
		t.Errorf("in-memory Add: %v", err)
	}
	// GC is a no-op in memory.
	s.RunGC()
}

func TestStore_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop on cancel")
	}
}
