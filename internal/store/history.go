// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/goodwatch/goodwatch/internal/engine"
)

const historyKeyPrefix = "hist:"

// HistoryStore is the append-only interaction event log. Keys embed the
// user and a nanosecond timestamp so per-user scans are ordered prefix
// iterations; events are never mutated or deleted.
type HistoryStore struct {
	db *badger.DB
}

// historyKey builds "hist:<user>:<unixnano-padded>:<uuid>". The UUID
// suffix keeps two events in the same nanosecond from colliding.
func historyKey(userID string, ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", historyKeyPrefix, userID, ts.UnixNano(), uuid.NewString()))
}

// Append records one interaction event.
func (h *HistoryStore) Append(ctx context.Context, ev engine.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(ev.UserID, ev.Timestamp), data)
	})
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Recent returns the user's events newer than since.
func (h *HistoryStore) Recent(ctx context.Context, userID string, since time.Time) ([]engine.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []engine.Event
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(historyKeyPrefix + userID + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek directly to the first key at or after the cutoff.
		seek := []byte(fmt.Sprintf("%s%s:%020d:", historyKeyPrefix, userID, since.UnixNano()))
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var ev engine.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			if ev.Timestamp.After(since) {
				out = append(out, ev)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountKind returns the user's lifetime count of one event kind.
func (h *HistoryStore) CountKind(ctx context.Context, userID string, kind engine.EventKind) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count := 0
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(historyKeyPrefix + userID + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ev engine.Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			if ev.Kind == kind {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
