// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/goodwatch/goodwatch/internal/logging"
	"github.com/goodwatch/goodwatch/internal/metrics"
)

// MiddlewareConfig controls the HTTP middleware chain.
type MiddlewareConfig struct {
	// CORSOrigins lists allowed origins. ["*"] allows all.
	CORSOrigins []string

	// RateLimitRequests is the number of requests allowed per window
	// per client IP. Zero disables rate limiting.
	RateLimitRequests int

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration
}

// CORS returns the CORS middleware for the configured origins.
func (c MiddlewareConfig) CORS() func(http.Handler) http.Handler {
	origins := c.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RateLimit returns the per-IP rate limit middleware, or a no-op when
// rate limiting is disabled.
func (c MiddlewareConfig) RateLimit() func(http.Handler) http.Handler {
	if c.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := c.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.LimitByIP(c.RateLimitRequests, window)
}

// RequestID assigns each request a unique ID, honouring an inbound
// X-Request-ID header, and hangs a request-scoped logger off the
// context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.NewRequestID()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		reqLogger := logging.Logger().With().Str("request_id", requestID).Logger()
		ctx = logging.WithLogger(ctx, reqLogger)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityHeaders sets baseline security headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// RequestMetrics records request counts, latency, and in-flight gauge
// using the chi route pattern as the endpoint label.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.APIActiveRequests.Inc()
		defer metrics.APIActiveRequests.Dec()

		sw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sw, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		metrics.RecordAPIRequest(r.Method, endpoint, sw.statusCode, time.Since(start))
	})
}

// RequestLogging logs each request with its outcome at debug level,
// bumping to warn for server errors.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sw, r)

		logger := logging.FromContext(r.Context())
		evt := logger.Debug()
		if sw.statusCode >= http.StatusInternalServerError {
			evt = logger.Warn()
		}
		evt.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// statusResponseWriter captures the response status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
