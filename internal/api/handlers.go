// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goodwatch/goodwatch/internal/engine"
	"github.com/goodwatch/goodwatch/internal/logging"
	"github.com/goodwatch/goodwatch/internal/metrics"
	"github.com/goodwatch/goodwatch/internal/validation"
)

// ReadinessCheck probes one dependency for the readiness endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler serves the decision API on top of the engine.
type Handler struct {
	engine *engine.Engine
	ready  []ReadinessCheck
}

// NewHandler creates the API handler. Readiness checks are probed by
// the ready endpoint in order.
func NewHandler(eng *engine.Engine, ready ...ReadinessCheck) *Handler {
	return &Handler{engine: eng, ready: ready}
}

// StartSession handles POST /api/v1/sessions.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req StartSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if req.MaxRuntimeMinutes > 0 && req.MinRuntimeMinutes > req.MaxRuntimeMinutes {
		rw.BadRequest("min_runtime_minutes must not exceed max_runtime_minutes")
		return
	}

	sess, err := h.engine.StartSession(req.UserContext())
	if err != nil {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("Failed to start session")
		rw.InternalError("failed to start session")
		return
	}
	rw.Created(sess)
}

// GetSession handles GET /api/v1/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sess, err := h.engine.Sessions().Get(chi.URLParam(r, "id"))
	if err != nil {
		rw.NotFound("session not found")
		return
	}
	rw.Success(sess)
}

// ApplyEvent handles POST /api/v1/sessions/{id}/events.
func (h *Handler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sessionID := chi.URLParam(r, "id")

	var req TransitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	state, err := h.engine.EvaluateTransition(sessionID, engine.FlowEvent(req.Event), req.Patch())
	if err != nil {
		h.writeTransitionError(rw, err)
		return
	}
	rw.Success(map[string]any{
		"session_id": sessionID,
		"state":      state,
	})
}

// SelectPicks handles POST /api/v1/sessions/{id}/picks.
func (h *Handler) SelectPicks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sessionID := chi.URLParam(r, "id")

	res, err := h.engine.SelectPicks(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrSessionNotFound):
			rw.NotFound("session not found")
		case engine.IsIllegalTransition(err):
			h.writeTransitionError(rw, err)
		case errors.Is(err, engine.ErrCatalogUnavailable):
			rw.ServiceUnavailable("catalog unavailable")
		default:
			logger := logging.FromContext(r.Context())
			logger.Error().Err(err).
				Str("session_id", sessionID).
				Msg("Selection failed")
			rw.InternalError("selection failed")
		}
		return
	}

	if res.Outcome == engine.OutcomePicks {
		metrics.RecordSelectionResult(res.PickCount, poolSizeOf(res))
	}
	rw.Success(res)
}

// RecordInteraction handles POST /api/v1/interactions.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req InteractionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	weights, points, err := h.engine.RecordInteraction(r.Context(), req.Event())
	if err != nil {
		if errors.Is(err, engine.ErrUnknownEventKind) {
			rw.BadRequest("unknown interaction kind")
			return
		}
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).
			Str("user_id", req.UserID).
			Msg("Failed to record interaction")
		rw.InternalError("failed to record interaction")
		return
	}
	rw.Success(map[string]any{
		"tag_weights":        weights,
		"interaction_points": points,
	})
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}

// HealthReady handles GET /api/v1/health/ready. Each registered
// dependency is probed; any failure turns the response into a 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	checks := make(map[string]string, len(h.ready))
	healthy := true
	for _, rc := range h.ready {
		if err := rc.Check(r.Context()); err != nil {
			checks[rc.Name] = err.Error()
			healthy = false
			continue
		}
		checks[rc.Name] = "ok"
	}

	if !healthy {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"one or more dependencies are not ready", checks)
		return
	}
	rw.Success(map[string]any{"status": "ok", "checks": checks})
}

// poolSizeOf is the number of candidates that cleared every gate.
func poolSizeOf(res *engine.Result) int {
	rejected := 0
	for _, n := range res.Rejections {
		rejected += n
	}
	return res.TotalCandidates - rejected
}

func (h *Handler) writeTransitionError(rw *ResponseWriter, err error) {
	var illegal *engine.IllegalTransitionError
	if errors.As(err, &illegal) {
		metrics.RecordIllegalTransition(illegal.From, illegal.Event)
		rw.Conflict("event not allowed in current state", map[string]any{
			"state": illegal.From,
			"event": illegal.Event,
		})
		return
	}
	if errors.Is(err, engine.ErrSessionNotFound) {
		rw.NotFound("session not found")
		return
	}
	rw.InternalError("transition failed")
}
