package service

import (
	"sync"

	"github.com/jonboulle/clockwork"

	apperrors "holdagent/internal/errors"
	"holdagent/internal/models"
)

// SelectionSet is the client-only set of seats picked before a hold exists.
// It never talks to the seat authority.
type SelectionSet struct {
	clock    clockwork.Clock
	maxSeats int

	mu      sync.Mutex
	entries []models.SelectionEntry
}

// NewSelectionSet creates an empty set; maxSeats <= 0 means no limit
func NewSelectionSet(maxSeats int, clock clockwork.Clock) *SelectionSet {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SelectionSet{clock: clock, maxSeats: maxSeats}
}

// Toggle adds seat when absent and removes it when present. It reports whether the
// seat is selected afterwards. Adding a seat that is not available, or growing past
// the limit, is rejected and leaves the set unchanged.
func (s *SelectionSet) Toggle(seat models.Seat) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(seat.ID); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		return false, nil
	}

	if !seat.IsAvailable() {
		return false, apperrors.ErrSeatNotAvailable
	}
	if s.maxSeats > 0 && len(s.entries) >= s.maxSeats {
		return false, apperrors.ErrSelectionLimitExceeded
	}

	s.entries = append(s.entries, models.SelectionEntry{
		Seat:       seat,
		SelectedAt: s.clock.Now(),
	})
	return true, nil
}

// Entries returns a copy in selection order
func (s *SelectionSet) Entries() []models.SelectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SelectionEntry{}, s.entries...)
}

func (s *SelectionSet) SeatIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.Seat.ID
	}
	return ids
}

func (s *SelectionSet) Contains(seatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(seatID) >= 0
}

func (s *SelectionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *SelectionSet) MaxSeats() int {
	return s.maxSeats
}

func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Remove drops the given seats and keeps everything else in order
func (s *SelectionSet) Remove(seatIDs ...string) {
	drop := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !drop[e.Seat.ID] {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

func (s *SelectionSet) indexOf(seatID string) int {
	for i, e := range s.entries {
		if e.Seat.ID == seatID {
			return i
		}
	}
	return -1
}
