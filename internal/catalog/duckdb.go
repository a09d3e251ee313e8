// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/goodwatch/goodwatch/internal/engine"
	"github.com/goodwatch/goodwatch/internal/metrics"
)

// Config holds DuckDB catalog configuration.
type Config struct {
	// Path is the database file. Empty opens an in-memory database.
	Path string `koanf:"path"`

	// Threads bounds DuckDB's internal parallelism. Zero means NumCPU.
	Threads int `koanf:"threads"`

	// MaxMemory is DuckDB's memory budget, e.g. "512MB".
	MaxMemory string `koanf:"max_memory"`
}

// DefaultConfig returns production catalog defaults.
func DefaultConfig() Config {
	return Config{
		Path:      "data/catalog.duckdb",
		MaxMemory: "512MB",
	}
}

// DB is the DuckDB-backed catalog. It satisfies engine.CatalogProvider.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// OpenDB opens the catalog database read-write so Seed can run; the
// decision core itself only reads.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenDB(cfg Config, logger zerolog.Logger) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s", cfg.Path, threads, maxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping catalog database: %w", err)
	}

	db := &DB{
		conn:   conn,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
	if err := db.ensureSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Ping verifies the database connection. Used by the readiness probe.
func (d *DB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS titles (
	id                      VARCHAR PRIMARY KEY,
	name                    VARCHAR NOT NULL,
	language                VARCHAR NOT NULL,
	runtime_minutes         INTEGER NOT NULL,
	vote_count              INTEGER NOT NULL DEFAULT 0,
	vote_average            DOUBLE  NOT NULL DEFAULT 0,
	audience_average        DOUBLE  NOT NULL DEFAULT 0,
	composite_score         DOUBLE  NOT NULL DEFAULT 0,
	content_type            VARCHAR NOT NULL,
	tags                    VARCHAR NOT NULL DEFAULT '[]',
	platforms               VARCHAR NOT NULL DEFAULT '[]',
	available               BOOLEAN NOT NULL DEFAULT true,
	availability_checked_at TIMESTAMP
)`

func (d *DB) ensureSchema(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create titles table: %w", err)
	}
	return nil
}

// Titles returns catalog titles matching the coarse query.
func (d *DB) Titles(ctx context.Context, q engine.CatalogQuery) (titles []engine.Title, err error) {
	start := time.Now()
	defer func() { metrics.RecordCatalogQuery("titles", time.Since(start), err) }()

	var (
		where []string
		args  []any
	)
	if len(q.Languages) > 0 {
		placeholders := make([]string, len(q.Languages))
		for i, lang := range q.Languages {
			placeholders[i] = "?"
			args = append(args, lang)
		}
		where = append(where, fmt.Sprintf("language IN (%s)", strings.Join(placeholders, ", ")))
	}
	if q.ContentType != "" {
		where = append(where, "content_type = ?")
		args = append(args, string(q.ContentType))
	}

	query := `SELECT id, name, language, runtime_minutes, vote_count, vote_average,
		audience_average, composite_score, content_type, tags, platforms,
		available, availability_checked_at FROM titles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	var out []engine.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return out, nil
}

func scanTitle(rows *sql.Rows) (engine.Title, error) {
	var (
		t         engine.Title
		tags      string
		platforms string
		checkedAt sql.NullTime
	)
	err := rows.Scan(&t.ID, &t.Name, &t.Language, &t.RuntimeMinutes, &t.VoteCount,
		&t.VoteAverage, &t.AudienceAverage, &t.CompositeScore, &t.ContentType,
		&tags, &platforms, &t.Available, &checkedAt)
	if err != nil {
		return t, fmt.Errorf("scan title: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return t, fmt.Errorf("decode tags for %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(platforms), &t.Platforms); err != nil {
		return t, fmt.Errorf("decode platforms for %s: %w", t.ID, err)
	}
	if checkedAt.Valid {
		t.AvailabilityCheckedAt = checkedAt.Time
	}
	return t, nil
}

// Seed inserts or replaces titles. Intended for development and tests;
// production ingestion writes the table out of band.
func (d *DB) Seed(ctx context.Context, titles []engine.Title) (err error) {
	start := time.Now()
	defer func() { metrics.RecordCatalogQuery("seed", time.Since(start), err) }()

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const insertSQL = `INSERT OR REPLACE INTO titles
		(id, name, language, runtime_minutes, vote_count, vote_average,
		 audience_average, composite_score, content_type, tags, platforms,
		 available, availability_checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i := range titles {
		t := &titles[i]
		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("encode tags for %s: %w", t.ID, err)
		}
		platforms, err := json.Marshal(t.Platforms)
		if err != nil {
			return fmt.Errorf("encode platforms for %s: %w", t.ID, err)
		}
		var checkedAt any
		if !t.AvailabilityCheckedAt.IsZero() {
			checkedAt = t.AvailabilityCheckedAt
		}
		_, err = tx.ExecContext(ctx, insertSQL,
			t.ID, t.Name, t.Language, t.RuntimeMinutes, t.VoteCount,
			t.VoteAverage, t.AudienceAverage, t.CompositeScore, string(t.ContentType),
			string(tags), string(platforms), t.Available, checkedAt)
		if err != nil {
			return fmt.Errorf("insert title %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	d.logger.Info().Int("titles", len(titles)).Msg("catalog seeded")
	return nil
}
