// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const pointsKeyPrefix = "points:"

// maxAddRetries bounds the optimistic-concurrency retry loop.
const maxAddRetries = 10

// PointsStore persists the monotonic per-user interaction points counter.
// Increments go through a read-modify-write transaction; Badger's
// conflict detection plus retry makes concurrent increments additive, so
// the counter never loses a write and never decreases.
type PointsStore struct {
	db *badger.DB
}

func pointsKey(userID string) []byte {
	return []byte(pointsKeyPrefix + userID)
}

// Add increments the user's points by a non-negative delta and returns
// the new total. Negative deltas are ignored to preserve monotonicity.
func (p *PointsStore) Add(ctx context.Context, userID string, delta int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if delta < 0 {
		delta = 0
	}

	var total int
	var err error
	for attempt := 0; attempt < maxAddRetries; attempt++ {
		err = p.db.Update(func(txn *badger.Txn) error {
			current, rerr := readPoints(txn, userID)
			if rerr != nil {
				return rerr
			}
			total = current + delta
			return txn.Set(pointsKey(userID), []byte(strconv.Itoa(total)))
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Get returns the user's current points.
func (p *PointsStore) Get(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var total int
	err := p.db.View(func(txn *badger.Txn) error {
		var rerr error
		total, rerr = readPoints(txn, userID)
		return rerr
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func readPoints(txn *badger.Txn, userID string) (int, error) {
	item, err := txn.Get(pointsKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var total int
	err = item.Value(func(val []byte) error {
		n, perr := strconv.Atoi(string(val))
		if perr != nil {
			return perr
		}
		total = n
		return nil
	})
	return total, err
}
