// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package moodremote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/goodwatch/goodwatch/internal/engine"
)

// Config holds mood table client configuration.
type Config struct {
	// BaseURL is the mapping table service root, e.g.
	// "https://moods.internal". Empty disables the client entirely; the
	// engine then always uses its builtin fallback.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds one fetch.
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond throttles fetches toward the remote.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Burst is the rate limiter burst size.
	Burst int `koanf:"burst"`

	// CacheTTL is how long a fetched row is served from cache before a
	// refresh is attempted.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// DefaultConfig returns production client defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:           2 * time.Second,
		RequestsPerSecond: 5,
		Burst:             5,
		CacheTTL:          5 * time.Minute,
	}
}

type cachedTargets struct {
	targets   engine.MoodTargets
	fetchedAt time.Time
}

// Client fetches mood targets over HTTP. It satisfies engine.MoodSource.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[engine.MoodTargets]
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu    sync.RWMutex
	cache map[engine.Mood]cachedTargets

	now func() time.Time
}

// New creates a Client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	log := logger.With().Str("component", "moodremote").Logger()
	breaker := gobreaker.NewCircuitBreaker[engine.MoodTargets](gobreaker.Settings{
		Name:        "mood-table",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  log,
		cache:   make(map[engine.Mood]cachedTargets),
		now:     time.Now,
	}
}

// Targets returns the active row for the mood. A fresh cached row is
// served directly; otherwise one fetch is attempted through the breaker
// and limiter. When the fetch fails but a stale row exists, the stale
// row is served rather than an error.
func (c *Client) Targets(ctx context.Context, mood engine.Mood) (engine.MoodTargets, error) {
	if c.cfg.BaseURL == "" {
		return engine.MoodTargets{}, fmt.Errorf("mood table client disabled")
	}

	c.mu.RLock()
	cached, ok := c.cache[mood]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.fetchedAt) < c.cfg.CacheTTL {
		return cached.targets, nil
	}

	targets, err := c.fetch(ctx, mood)
	if err != nil {
		if ok {
			// Stale beats absent: the engine only falls back when we
			// have nothing at all.
			c.logger.Debug().Err(err).Str("mood", string(mood)).Msg("serving stale mood targets")
			return cached.targets, nil
		}
		return engine.MoodTargets{}, err
	}

	c.mu.Lock()
	c.cache[mood] = cachedTargets{targets: targets, fetchedAt: c.now()}
	c.mu.Unlock()
	return targets, nil
}

func (c *Client) fetch(ctx context.Context, mood engine.Mood) (engine.MoodTargets, error) {
	if !c.limiter.Allow() {
		return engine.MoodTargets{}, fmt.Errorf("mood table fetch rate limited")
	}

	return c.breaker.Execute(func() (engine.MoodTargets, error) {
		endpoint, err := url.JoinPath(c.cfg.BaseURL, "v1", "moods", string(mood))
		if err != nil {
			return engine.MoodTargets{}, fmt.Errorf("build mood URL: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return engine.MoodTargets{}, fmt.Errorf("build mood request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return engine.MoodTargets{}, fmt.Errorf("fetch mood targets: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return engine.MoodTargets{}, fmt.Errorf("mood table returned %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return engine.MoodTargets{}, fmt.Errorf("read mood response: %w", err)
		}

		var targets engine.MoodTargets
		if err := json.Unmarshal(body, &targets); err != nil {
			return engine.MoodTargets{}, fmt.Errorf("decode mood targets: %w", err)
		}
		return targets, nil
	})
}

// Refresher periodically warms the cache for all moods so selection
// passes rarely pay fetch latency. It implements suture.Service.
type Refresher struct {
	client   *Client
	interval time.Duration
}

// NewRefresher creates a Refresher around the client.
func NewRefresher(client *Client, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{client: client, interval: interval}
}

// Serve refreshes all mood rows until the context is canceled.
func (r *Refresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if r.client.cfg.BaseURL == "" {
		return
	}
	for _, mood := range engine.Moods {
		if _, err := r.client.Targets(ctx, mood); err != nil {
			r.client.logger.Debug().Err(err).Str("mood", string(mood)).Msg("mood refresh failed")
		}
	}
}

// String names the refresher in supervision logs.
func (r *Refresher) String() string {
	return "mood-refresher"
}
