// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodwatch/goodwatch/internal/engine"
)

func sampleTitles() []engine.Title {
	return []engine.Title{
		{
			ID: "m-en", Name: "English Movie", Language: "en", RuntimeMinutes: 110,
			CompositeScore: 7.8, ContentType: engine.ContentMovie,
			Tags: []string{"light", "comfort"}, Platforms: []string{"netflix"},
			Available: true, AvailabilityCheckedAt: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "m-fr", Name: "French Movie", Language: "fr", RuntimeMinutes: 95,
			VoteAverage: 7.0, ContentType: engine.ContentMovie,
			Tags: []string{"cerebral"}, Platforms: []string{"max"}, Available: true,
		},
		{
			ID: "s-en", Name: "English Series", Language: "en", RuntimeMinutes: 45,
			AudienceAverage: 8.1, ContentType: engine.ContentSeries,
			Tags: []string{"fun"}, Platforms: []string{"netflix", "hulu"}, Available: true,
		},
	}
}

// --- Test: Memory ---

func TestMemory_Titles(t *testing.T) {
	t.Parallel()

	m := NewMemory(sampleTitles())
	ctx := context.Background()

	tests := []struct {
		name    string
		query   engine.CatalogQuery
		wantIDs []string
	}{
		{
			name:    "no narrowing returns everything",
			query:   engine.CatalogQuery{},
			wantIDs: []string{"m-en", "m-fr", "s-en"},
		},
		{
			name:    "language narrowing",
			query:   engine.CatalogQuery{Languages: []string{"en"}},
			wantIDs: []string{"m-en", "s-en"},
		},
		{
			name:    "content type narrowing",
			query:   engine.CatalogQuery{ContentType: engine.ContentMovie},
			wantIDs: []string{"m-en", "m-fr"},
		},
		{
			name:    "combined narrowing",
			query:   engine.CatalogQuery{Languages: []string{"en"}, ContentType: engine.ContentSeries},
			wantIDs: []string{"s-en"},
		},
		{
			name:    "limit caps the slice",
			query:   engine.CatalogQuery{Limit: 1},
			wantIDs: []string{"m-en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Titles(ctx, tt.query)
			if err != nil {
				t.Fatalf("Titles: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d titles, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("title %d = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestMemory_Replace(t *testing.T) {
	t.Parallel()

	m := NewMemory(sampleTitles())
	m.Replace([]engine.Title{{ID: "only", Language: "en", ContentType: engine.ContentMovie}})

	got, err := m.Titles(context.Background(), engine.CatalogQuery{})
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	if len(got) != 1 || got[0].ID != "only" {
		t.Errorf("Replace did not swap the title set: %+v", got)
	}
}

// --- Test: DB ---

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = "" // in-memory DuckDB
	db, err := OpenDB(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func TestDB_SeedAndQuery(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Seed(ctx, sampleTitles()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	got, err := db.Titles(ctx, engine.CatalogQuery{Languages: []string{"en"}, ContentType: engine.ContentMovie})
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d titles, want 1", len(got))
	}
	title := got[0]
	if title.ID != "m-en" || title.Name != "English Movie" {
		t.Errorf("title = %+v", title)
	}
	if len(title.Tags) != 2 || title.Tags[0] != "light" {
		t.Errorf("tags not round-tripped: %v", title.Tags)
	}
	if len(title.Platforms) != 1 || title.Platforms[0] != "netflix" {
		t.Errorf("platforms not round-tripped: %v", title.Platforms)
	}
	if !title.Available {
		t.Error("availability lost")
	}
	if title.AvailabilityCheckedAt.IsZero() {
		t.Error("availability timestamp lost")
	}
	if title.CompositeScore != 7.8 {
		t.Errorf("composite score = %f, want 7.8", title.CompositeScore)
	}
}

func TestDB_SeedReplacesExisting(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	titles := sampleTitles()
	if err := db.Seed(ctx, titles); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	titles[0].Name = "Renamed"
	if err := db.Seed(ctx, titles[:1]); err != nil {
		t.Fatalf("re-Seed: %v", err)
	}

	got, err := db.Titles(ctx, engine.CatalogQuery{Languages: []string{"en"}, ContentType: engine.ContentMovie})
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Renamed" {
		t.Errorf("upsert failed: %+v", got)
	}
}

func TestDB_Limit(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	if err := db.Seed(ctx, sampleTitles()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	got, err := db.Titles(ctx, engine.CatalogQuery{Limit: 2})
	if err != nil {
		t.Fatalf("Titles: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit ignored: got %d titles", len(got))
	}
}
