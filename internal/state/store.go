package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/glucobar/internal/glucose"
)

// ErrorMarker replaces the display text when the site cannot be reached.
const ErrorMarker = "API Error"

// Snapshot represents the latest data available to presenters.
type Snapshot struct {
	Text                string
	Reading             glucose.Reading
	HasReading          bool
	Unit                glucose.Unit
	StaleAfter          time.Duration
	LastRefreshed       time.Time
	LastAttempt         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the site has failed several polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// IsStale reports whether the held reading is stale at now. The flag computed
// at refresh time is sticky; the window is re-applied so a reading held
// through an outage ages out.
func (s Snapshot) IsStale(now time.Time) bool {
	if !s.HasReading {
		return false
	}
	if s.Reading.Stale {
		return true
	}
	if s.StaleAfter <= 0 {
		return false
	}
	return glucose.IsStale(s.Reading.Timestamp, now, s.StaleAfter)
}

// Title returns the status text after applying the stale-reading policy.
func (s Snapshot) Title(now time.Time, hideStale bool) string {
	if s.Text == ErrorMarker {
		return s.Text
	}
	if hideStale && s.IsStale(now) {
		return ""
	}
	return s.Text
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[int]chan Snapshot
	nextSub  int
}

// NewStore returns a Store whose snapshots carry the display unit and staleness window.
func NewStore(unit glucose.Unit, staleAfter time.Duration) *Store {
	return &Store{snapshot: Snapshot{Unit: unit, StaleAfter: staleAfter}}
}

// Update records a successful refresh.
func (s *Store) Update(reading glucose.Reading, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot.Text = text
	s.snapshot.Reading = reading
	s.snapshot.HasReading = true
	s.snapshot.LastRefreshed = now
	s.snapshot.LastAttempt = now
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.notifyLocked()
}

// Fail records a failed refresh and keeps the previous text and reading.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failLocked(err)
	s.notifyLocked()
}

// FailWith records a failed refresh and replaces the text.
func (s *Store) FailWith(err error, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failLocked(err)
	s.snapshot.Text = text
	s.notifyLocked()
}

func (s *Store) failLocked(err error) {
	s.snapshot.LastError = err
	s.snapshot.LastAttempt = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyLocked()
}

// Subscribe returns a channel of snapshots sent after each change and a
// function that releases it.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]chan Snapshot)
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.copyLocked()
	for _, ch := range s.subs {
		// Drop the unread value so the reader sees the latest state.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) copyLocked() Snapshot {
	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
