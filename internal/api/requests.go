// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/goodwatch/goodwatch/internal/engine"
)

// maxRequestBody bounds JSON request bodies at 1 MiB.
const maxRequestBody = 1 << 20

// StartSessionRequest creates a new decision session.
type StartSessionRequest struct {
	UserID            string   `json:"user_id" validate:"required,min=1,max=128"`
	Mood              string   `json:"mood" validate:"required,mood"`
	Platforms         []string `json:"platforms" validate:"omitempty,dive,min=1,max=64"`
	Languages         []string `json:"languages" validate:"omitempty,dive,min=1,max=32"`
	MinRuntimeMinutes int      `json:"min_runtime_minutes" validate:"gte=0,lte=600"`
	MaxRuntimeMinutes int      `json:"max_runtime_minutes" validate:"gte=0,lte=600"`
	ContentType       string   `json:"content_type" validate:"omitempty,contenttype"`
	MatureUnlocked    bool     `json:"mature_unlocked"`
	FirstTime         bool     `json:"first_time"`
}

// UserContext converts the request into the engine's user context.
func (req *StartSessionRequest) UserContext() engine.UserContext {
	return engine.UserContext{
		UserID:            req.UserID,
		Mood:              engine.Mood(req.Mood),
		Platforms:         req.Platforms,
		Languages:         req.Languages,
		MinRuntimeMinutes: req.MinRuntimeMinutes,
		MaxRuntimeMinutes: req.MaxRuntimeMinutes,
		ContentType:       engine.ContentType(req.ContentType),
		MatureUnlocked:    req.MatureUnlocked,
		FirstTime:         req.FirstTime,
	}
}

// TransitionRequest drives the session flow machine.
type TransitionRequest struct {
	Event       string `json:"event" validate:"required,flowevent"`
	ValidInputs *bool  `json:"valid_inputs,omitempty"`
}

// Patch converts the optional input flag into a context patch.
func (req *TransitionRequest) Patch() *engine.ContextPatch {
	if req.ValidInputs == nil {
		return nil
	}
	return &engine.ContextPatch{ValidInputs: req.ValidInputs}
}

// InteractionRequest records a title interaction.
type InteractionRequest struct {
	UserID    string    `json:"user_id" validate:"required,min=1,max=128"`
	SessionID string    `json:"session_id" validate:"omitempty,max=128"`
	Kind      string    `json:"kind" validate:"required,eventkind"`
	TitleID   string    `json:"title_id" validate:"required,min=1,max=128"`
	TitleTags []string  `json:"title_tags" validate:"omitempty,dive,min=1,max=64"`
	Timestamp time.Time `json:"timestamp"`
}

// Event converts the request into an engine event. A zero timestamp
// defaults to the current time.
func (req *InteractionRequest) Event() engine.Event {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	kind, _ := engine.ParseEventKind(req.Kind)
	return engine.Event{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Kind:      kind,
		TitleID:   req.TitleID,
		TitleTags: req.TitleTags,
		Timestamp: ts,
	}
}

// decodeJSON reads a size-capped JSON body into dst, rejecting unknown
// fields and trailing garbage.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
