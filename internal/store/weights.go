// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/goodwatch/goodwatch/internal/engine"
)

const (
	weightsKeyPrefix = "weights:"

	// Badger aborts conflicting read-write transactions instead of
	// blocking, so Apply retries a bounded number of times.
	maxApplyRetries = 10
)

// WeightsStore persists per-user tag weights, one record per user.
// Updates go through Apply, which runs the read-modify-write inside a
// single transaction so concurrent writers for the same user cannot
// lose each other's deltas.
type WeightsStore struct {
	db *badger.DB
}

// Load returns the user's weights, empty if none saved yet.
func (w *WeightsStore) Load(ctx context.Context, userID string) (engine.TagWeights, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var weights engine.TagWeights
	err := w.db.View(func(txn *badger.Txn) error {
		var rerr error
		weights, rerr = readWeights(txn, userID)
		return rerr
	})
	if err != nil {
		return nil, err
	}
	return weights, nil
}

// Apply loads the user's weights, runs mutate on them and persists the
// result inside one transaction, retrying on conflict so concurrent
// writers for the same user serialize instead of clobbering each other.
func (w *WeightsStore) Apply(ctx context.Context, userID string, mutate func(engine.TagWeights)) (engine.TagWeights, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var weights engine.TagWeights
	var err error
	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		err = w.db.Update(func(txn *badger.Txn) error {
			var rerr error
			weights, rerr = readWeights(txn, userID)
			if rerr != nil {
				return rerr
			}
			mutate(weights)
			data, merr := json.Marshal(weights)
			if merr != nil {
				return fmt.Errorf("marshal weights: %w", merr)
			}
			return txn.Set([]byte(weightsKeyPrefix+userID), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("apply weights: %w", err)
	}
	return weights, nil
}

func readWeights(txn *badger.Txn, userID string) (engine.TagWeights, error) {
	weights := engine.NewTagWeights()
	item, err := txn.Get([]byte(weightsKeyPrefix + userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return weights, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weights: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &weights)
	})
	if err != nil {
		return nil, err
	}
	return weights, nil
}
