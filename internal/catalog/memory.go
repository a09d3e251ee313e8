// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package catalog

import (
	"context"
	"sync"

	"github.com/goodwatch/goodwatch/internal/engine"
)

// Memory is an in-process catalog for tests and development.
type Memory struct {
	mu     sync.RWMutex
	titles []engine.Title
}

// NewMemory creates a Memory catalog holding the given titles.
func NewMemory(titles []engine.Title) *Memory {
	return &Memory{titles: append([]engine.Title(nil), titles...)}
}

// Replace swaps the full title set.
func (m *Memory) Replace(titles []engine.Title) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles = append([]engine.Title(nil), titles...)
}

// Titles returns titles matching the coarse query.
func (m *Memory) Titles(ctx context.Context, q engine.CatalogQuery) ([]engine.Title, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.Title
	for _, t := range m.titles {
		if q.ContentType != "" && t.ContentType != q.ContentType {
			continue
		}
		if len(q.Languages) > 0 && !containsString(q.Languages, t.Language) {
			continue
		}
		out = append(out, t)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
