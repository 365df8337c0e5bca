package filter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// SearchAction is what the dashboard does with a typed search term
type SearchAction int

const (
	// ReloadAll drops any search result and shows the full inventory
	ReloadAll SearchAction = iota
	// KeepCurrent leaves the displayed list untouched
	KeepCurrent
	// ServerSearch asks the backend for matching items
	ServerSearch
)

func (a SearchAction) String() string {
	switch a {
	case ReloadAll:
		return "reload-all"
	case KeepCurrent:
		return "keep-current"
	case ServerSearch:
		return "server-search"
	default:
		return "unknown"
	}
}

// Decide applies the search policy to a raw term. Terms shorter than
// minLength but not empty leave the list as it is.
func Decide(term string, minLength int) SearchAction {
	trimmed := strings.TrimSpace(term)
	switch {
	case trimmed == "":
		return ReloadAll
	case len([]rune(trimmed)) < minLength:
		return KeepCurrent
	default:
		return ServerSearch
	}
}

// ErrSuperseded is returned when a newer search for the same session was
// started while this one was waiting.
var ErrSuperseded = errors.New("search superseded by a newer request")

// Debouncer coalesces bursts of search requests per session. Every request is
// stamped with a sequence number and only the latest one is allowed through.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	latest map[string]stamp
	now    func() time.Time
}

type stamp struct {
	seq uint64
	at  time.Time
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		latest: make(map[string]stamp),
		now:    time.Now,
	}
}

// Begin stamps a new request for the session and returns its sequence number
func (d *Debouncer) Begin(sessionID string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.latest[sessionID]
	st.seq++
	st.at = d.now()
	d.latest[sessionID] = st
	return st.seq
}

// IsLatest reports whether seq is still the newest request of the session
func (d *Debouncer) IsLatest(sessionID string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest[sessionID].seq == seq
}

// Wait blocks for the debounce delay and fails with ErrSuperseded if another
// request for the session began in the meantime.
func (d *Debouncer) Wait(ctx context.Context, sessionID string, seq uint64) error {
	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if !d.IsLatest(sessionID, seq) {
		return ErrSuperseded
	}
	return nil
}

// Forget drops the session's counter
func (d *Debouncer) Forget(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.latest, sessionID)
}

// ForgetIdle drops the counters of sessions that have not searched within
// maxIdle and returns how many were dropped.
func (d *Debouncer) ForgetIdle(maxIdle time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := d.now().Add(-maxIdle)
	dropped := 0
	for id, st := range d.latest {
		if st.at.Before(cutoff) {
			delete(d.latest, id)
			dropped++
		}
	}
	return dropped
}

// Sessions is the number of sessions with a live counter
func (d *Debouncer) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.latest)
}
