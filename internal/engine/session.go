// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one user's live decision session. The transition method on a
// session is not reentrant; the registry hands out the session together
// with its lock so callers are serialized externally.
type Session struct {
	// ID is the registry key.
	ID string `json:"id"`

	// User is the calibrated context snapshot.
	User UserContext `json:"user"`

	// State is the current flow state.
	State State `json:"state"`

	// Flow is the mutable transition context.
	Flow FlowContext `json:"flow"`

	// Seen holds title IDs surfaced in this session; a title is never
	// repeated within one session.
	Seen map[string]struct{} `json:"-"`

	// LastRejectedTags snapshots the tags of the most recently rejected
	// title for the diversification penalty on the next pass.
	LastRejectedTags []string `json:"-"`

	// TouchedAt drives TTL expiry.
	TouchedAt time.Time `json:"touched_at"`

	// mu serializes transitions and selection on this session.
	mu sync.Mutex
}

// MarkSeen records surfaced title IDs in the session seen-set.
func (s *Session) MarkSeen(ids ...string) {
	for _, id := range ids {
		s.Seen[id] = struct{}{}
	}
}

// Registry holds live sessions. Creation assigns a UUID; idle sessions
// expire after the configured TTL.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new idle session for the given user context.
func (r *Registry) Create(user UserContext) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		User:      user,
		State:     StateIdle,
		Seen:      make(map[string]struct{}),
		TouchedAt: r.now(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session or ErrSessionNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove destroys a session at end of life.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle past the TTL and returns how many were
// dropped. Intended to run periodically from a supervised service.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.TouchedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// withLock runs fn with the session lock held and the touch time
// refreshed. Transitions and selection passes on one session are thereby
// serialized.
func (r *Registry) withLock(s *Session, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TouchedAt = r.now()
	return fn()
}
