package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"batstats/internal/caching"
	"batstats/internal/filter"
)

// Store hands out the AppState of each session. All operations on one session
// are serialized; different sessions never block each other.
type Store struct {
	sessions caching.SessionStore
	ttl      time.Duration
	strategy filter.Strategy

	mu    sync.Mutex
	locks map[string]*sessionLock
	now   func() time.Time
}

// sessionLock serializes one session. refs counts holders and waiters so an
// idle lock can be dropped without racing a caller about to take it.
type sessionLock struct {
	mu       sync.Mutex
	refs     int
	lastUsed time.Time
}

func NewStore(sessions caching.SessionStore, ttl time.Duration, strategy filter.Strategy) *Store {
	return &Store{
		sessions: sessions,
		ttl:      ttl,
		strategy: strategy,
		locks:    make(map[string]*sessionLock),
		now:      time.Now,
	}
}

// TTL is how long an untouched session is kept
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Strategy is the search strategy the displayed items are derived with
func (s *Store) Strategy() filter.Strategy {
	return s.strategy
}

func (s *Store) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		l.lastUsed = s.now()
		s.mu.Unlock()
	}
}

func (s *Store) load(ctx context.Context, sessionID string) (*AppState, error) {
	data, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return NewAppState(), nil
	}
	var st AppState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &st, nil
}

// Update runs fn against the session's state and saves the result. The state
// is saved even when fn fails, so banners pushed on failure survive. The
// displayed items are re-derived after every update.
func (s *Store) Update(ctx context.Context, sessionID string, fn func(st *AppState) error) error {
	unlock := s.lock(sessionID)
	defer unlock()

	st, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	fnErr := fn(st)
	st.Refilter(s.strategy)

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := s.sessions.Save(ctx, sessionID, data, s.ttl); err != nil {
		return err
	}
	return fnErr
}

// View returns a copy of the session's state without saving anything
func (s *Store) View(ctx context.Context, sessionID string) (*AppState, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	st, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st.Refilter(s.strategy)
	return st, nil
}

// Delete forgets the session
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	err := s.sessions.Delete(ctx, sessionID)
	unlock()

	s.mu.Lock()
	if l, ok := s.locks[sessionID]; ok && l.refs == 0 {
		delete(s.locks, sessionID)
	}
	s.mu.Unlock()
	return err
}

// Sweep drops the locks of sessions idle for longer than the TTL and expires
// their stored state. It returns the ids whose locks were dropped.
func (s *Store) Sweep(ctx context.Context) ([]string, error) {
	cutoff := s.now().Add(-s.ttl)

	var dropped []string
	s.mu.Lock()
	for id, l := range s.locks {
		if l.refs == 0 && l.lastUsed.Before(cutoff) {
			delete(s.locks, id)
			dropped = append(dropped, id)
		}
	}
	s.mu.Unlock()

	removed, err := s.sessions.Sweep(ctx)
	if err != nil {
		return dropped, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	if removed > 0 || len(dropped) > 0 {
		log.Printf("DEBUG: swept %d expired sessions, %d idle locks", removed, len(dropped))
	}
	return dropped, nil
}

// lockCount is the number of sessions holding a lock entry
func (s *Store) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
