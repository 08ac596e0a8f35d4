// Package registry keeps the in-memory card blocklists consulted before the
// model runs: known-fraudulent cards, stolen-card reports and a suspicion
// counter bumped every time the pipeline flags a card. The store is seeded
// from the card repository at startup and mutated through the HTTP surface.
package registry

import (
	"sync"
	"time"
)

// StolenRecord captures who reported a card and when.
type StolenRecord struct {
	ReportedBy string    `json:"reported_by"`
	Reason     string    `json:"reason,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// Store is a concurrency-safe snapshot of the fraud registries. All methods
// may be called from request handlers and the batch workers simultaneously.
type Store struct {
	mu         sync.RWMutex
	fraudulent map[string]struct{}
	stolen     map[string]StolenRecord
	suspects   map[string]int64
}

func NewStore() *Store {
	return &Store{
		fraudulent: make(map[string]struct{}),
		stolen:     make(map[string]StolenRecord),
		suspects:   make(map[string]int64),
	}
}

// AddFraudulent registers the given card IDs as known-fraudulent and returns
// how many of them were not already present. Empty IDs are ignored.
func (s *Store) AddFraudulent(cardIDs ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, id := range cardIDs {
		if id == "" {
			continue
		}
		if _, exists := s.fraudulent[id]; !exists {
			s.fraudulent[id] = struct{}{}
			added++
		}
	}
	return added
}

func (s *Store) IsFraudulent(cardID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.fraudulent[cardID]
	return ok
}

// MarkStolen records a stolen-card report. It returns false when the card was
// already reported, leaving the original report untouched.
func (s *Store) MarkStolen(cardID, reportedBy, reason string, reportedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stolen[cardID]; exists {
		return false
	}
	s.stolen[cardID] = StolenRecord{
		ReportedBy: reportedBy,
		Reason:     reason,
		ReportedAt: reportedAt,
	}
	return true
}

func (s *Store) IsStolen(cardID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.stolen[cardID]
	return ok
}

// RecordSuspicion increments the suspicion counter for a card and returns the
// new count.
func (s *Store) RecordSuspicion(cardID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suspects[cardID]++
	return s.suspects[cardID]
}

// Suspects returns a copy of the suspicion counters.
func (s *Store) Suspects() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(s.suspects))
	for id, n := range s.suspects {
		out[id] = n
	}
	return out
}

// FraudulentCount returns the number of known-fraudulent cards.
func (s *Store) FraudulentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.fraudulent)
}

// StolenCount returns the number of stolen-card reports.
func (s *Store) StolenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.stolen)
}
