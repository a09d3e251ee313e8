// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := slog.New(NewSlogHandlerWithLogger(zl))

	logger.Info("started", "port", int64(8080), "tls", false)

	out := buf.String()
	for _, want := range []string{`"port":8080`, `"tls":false`, `"message":"started"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := slog.New(NewSlogHandlerWithLogger(zl)).
		With("service", "picker").
		WithGroup("http")

	logger.Warn("slow request", "latency_ms", int64(950))

	out := buf.String()
	if !strings.Contains(out, `"service":"picker"`) {
		t.Errorf("pre-set attr missing: %s", out)
	}
	if !strings.Contains(out, `"http.latency_ms":950`) {
		t.Errorf("grouped attr missing: %s", out)
	}
}

func TestSlogHandler_LevelMapping(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.WarnLevel)
	h := NewSlogHandlerWithLogger(zl)

	if h.Enabled(nil, slog.LevelDebug) { //nolint:staticcheck // nil context is fine here
		t.Error("debug enabled on a warn-level logger")
	}
	if !h.Enabled(nil, slog.LevelError) { //nolint:staticcheck // nil context is fine here
		t.Error("error disabled on a warn-level logger")
	}
}
