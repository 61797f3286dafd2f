/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"sync"
	"time"
)

type sessionState struct {
	mu        sync.Mutex
	state     State
	uploading bool
	lastSeen  time.Time
}

// Store keeps one dashboard state per session. Reads of a session that never
// wrote are served from the seed without being tracked; a state is stored
// only once an upload, import or merge writes to it, and lives until pruned.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*sessionState),
		now:      time.Now,
	}
}

func seedState() State {
	return State{Patient: SeedPatient(), Dataset: SeedDataset()}
}

// lookup returns the tracked state for id, if any, and marks it as seen.
func (s *Store) lookup(id string) (*sessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions[id]
	if ok {
		ss.lastSeen = s.now()
	}

	return ss, ok
}

// session returns the tracked state for id, registering a seeded one first
// if needed.
func (s *Store) session(id string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions[id]
	if !ok {
		ss = &sessionState{state: seedState()}
		s.sessions[id] = ss
	}
	ss.lastSeen = s.now()

	return ss
}

// Get returns a copy of the session's state, or the seed state for a session
// that has not written anything yet.
func (s *Store) Get(id string) State {
	ss, ok := s.lookup(id)
	if !ok {
		return seedState()
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.state.Clone()
}

// BeginUpload marks an upload as in flight for the session. The returned
// function clears the mark. A second upload while one is in flight fails
// with ErrUploadInProgress.
func (s *Store) BeginUpload(id string) (func(), error) {
	ss := s.session(id)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.uploading {
		return nil, ErrUploadInProgress
	}
	ss.uploading = true

	return func() {
		ss.mu.Lock()
		ss.uploading = false
		ss.mu.Unlock()
	}, nil
}

// Apply reconciles an extraction into the session's state. The stored state
// is swapped only when the merge succeeds.
func (s *Store) Apply(id string, ext *Extraction) (State, MergeResult, error) {
	ss := s.session(id)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	next, result, err := Reconcile(ss.state, ext, s.now())
	if err != nil {
		return ss.state.Clone(), result, err
	}
	ss.state = next

	return next.Clone(), result, nil
}

// Replace overwrites the session's state, as done by an import.
func (s *Store) Replace(id string, state State) {
	ss := s.session(id)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.state = state.Clone()
}

// Reset restores the seed state for the session. Untracked sessions already
// see the seed and stay untracked.
func (s *Store) Reset(id string) State {
	ss, ok := s.lookup(id)
	if !ok {
		return seedState()
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.state = seedState()

	return ss.state.Clone()
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed. Sessions with an upload in flight are kept.
func (s *Store) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ss := range s.sessions {
		ss.mu.Lock()
		idle := !ss.uploading && ss.lastSeen.Before(cutoff)
		ss.mu.Unlock()

		if idle {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}
