package holds

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"holdagent/internal/countdown"
	apperrors "holdagent/internal/errors"
	"holdagent/internal/models"
)

// ChangeFunc observes a hold being installed, replaced or cleared. old or next is nil
// when there was no hold on that side of the change.
type ChangeFunc func(old, next *models.ReservationHold)

// Store keeps the current seat hold of one session
type Store struct {
	clock clockwork.Clock

	mu         sync.Mutex
	hold       *models.ReservationHold
	generation uint64
	changes    uint64 // tickets handed out, under mu

	// deliveries run one at a time in ticket order
	turnMu    sync.Mutex
	turn      *sync.Cond
	delivered uint64

	observersMu sync.RWMutex
	observers   []ChangeFunc
}

// NewStore creates an empty store
func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Store{clock: clock}
	s.turn = sync.NewCond(&s.turnMu)
	return s
}

// Clock returns the clock the store measures remaining time with
func (s *Store) Clock() clockwork.Clock {
	return s.clock
}

// OnChange registers an observer called after every install, replace and clear.
// Observers must not change the store themselves.
func (s *Store) OnChange(fn ChangeFunc) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	s.observers = append(s.observers, fn)
}

// StartHold installs hold as the current one, discarding any previous hold.
func (s *Store) StartHold(hold models.ReservationHold) error {
	deliver, err := s.Install(hold)
	if err != nil {
		return err
	}
	deliver()
	return nil
}

// Install is StartHold without running the observers. The returned func runs them
// and must be called exactly once, after the caller has released its own locks.
// Changes reach observers in the order they were made.
func (s *Store) Install(hold models.ReservationHold) (func(), error) {
	if len(hold.SeatIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats", apperrors.ErrInvalidHold)
	}
	if !hold.ExpiresAt.After(s.clock.Now()) {
		return nil, fmt.Errorf("%w: expiry %s is not in the future", apperrors.ErrInvalidHold, hold.ExpiresAt.Format(time.RFC3339))
	}

	next := hold.Clone()

	s.mu.Lock()
	old := s.hold
	s.hold = next
	s.generation++
	deliver := s.record(old, next.Clone())
	s.mu.Unlock()

	slog.Debug("Hold installed",
		"reservation_id", next.ReservationID,
		"session_id", next.SessionID,
		"seats_count", next.SeatsCount,
		"expires_at", next.ExpiresAt)

	return deliver, nil
}

// CurrentHold returns a copy of the current hold, or nil
func (s *Store) CurrentHold() *models.ReservationHold {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hold.Clone()
}

// SecondsRemaining is 0 when there is no hold or it has run out
func (s *Store) SecondsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold == nil {
		return 0
	}
	return countdown.SecondsRemaining(s.hold.ExpiresAt, s.clock.Now())
}

// IsActive reports whether a hold exists with time left on it
func (s *Store) IsActive() bool {
	return s.SecondsRemaining() > 0
}

// Generation changes every time a hold is installed or cleared
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Snapshot returns the current hold together with its generation
func (s *Store) Snapshot() (*models.ReservationHold, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hold.Clone(), s.generation
}

// Clear removes the current hold. Calling it with no hold is a no-op.
func (s *Store) Clear() {
	s.Take()()
}

// Take is Clear without running the observers; see Install.
func (s *Store) Take() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// ClearIf clears the hold only while the store is still at generation.
func (s *Store) ClearIf(generation uint64) bool {
	s.mu.Lock()
	if s.generation != generation || s.hold == nil {
		s.mu.Unlock()
		return false
	}
	deliver := s.clearLocked()
	s.mu.Unlock()

	deliver()
	return true
}

func (s *Store) clearLocked() func() {
	old := s.hold
	if old == nil {
		return func() {}
	}
	s.hold = nil
	s.generation++
	return s.record(old, nil)
}

// record takes the next delivery ticket; s.mu must be held
func (s *Store) record(old, next *models.ReservationHold) func() {
	ticket := s.changes
	s.changes++

	var once sync.Once
	return func() {
		once.Do(func() { s.deliver(ticket, old, next) })
	}
}

func (s *Store) deliver(ticket uint64, old, next *models.ReservationHold) {
	s.turnMu.Lock()
	for s.delivered != ticket {
		s.turn.Wait()
	}
	s.turnMu.Unlock()

	defer func() {
		s.turnMu.Lock()
		s.delivered++
		s.turn.Broadcast()
		s.turnMu.Unlock()
	}()
	s.notify(old, next)
}

func (s *Store) notify(old, next *models.ReservationHold) {
	s.observersMu.RLock()
	observers := append([]ChangeFunc(nil), s.observers...)
	s.observersMu.RUnlock()

	for _, fn := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Hold observer panicked", "panic", r)
				}
			}()
			fn(old.Clone(), next.Clone())
		}()
	}
}
