package warnings

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"holdagent/internal/countdown"
	"holdagent/internal/holds"
	"holdagent/internal/models"
)

// WarningFunc receives every fired threshold, including expired
type WarningFunc func(event models.WarningEvent)

// ExpiredFunc receives the expired event before the store is cleared
type ExpiredFunc func(event models.WarningEvent)

// Config tunes the engine; zero values mean defaults
type Config struct {
	TickInterval time.Duration
	InfoAt       time.Duration
	WarningAt    time.Duration
	CriticalAt   time.Duration
}

// Engine turns a hold's remaining time into one-shot warning events
type Engine struct {
	store      *holds.Store
	clock      clockwork.Clock
	interval   time.Duration
	thresholds []Threshold

	tickMu  sync.Mutex
	mu      sync.Mutex
	tracked uint64
	fired   []bool

	listenersMu sync.RWMutex
	nextID      int
	onWarning   []listener[WarningFunc]
	onExpired   []listener[ExpiredFunc]

	runMu   sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewEngine creates an engine evaluating store on the store's clock
func NewEngine(store *holds.Store, cfg Config) *Engine {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	thresholds := Thresholds(cfg.InfoAt, cfg.WarningAt, cfg.CriticalAt)

	return &Engine{
		store:      store,
		clock:      store.Clock(),
		interval:   interval,
		thresholds: thresholds,
		fired:      make([]bool, len(thresholds)),
	}
}

type listener[F any] struct {
	id int
	fn F
}

// OnWarning registers a listener and returns a function that removes it
func (e *Engine) OnWarning(fn WarningFunc) func() {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	id := e.nextID
	e.nextID++
	e.onWarning = append(e.onWarning, listener[WarningFunc]{id: id, fn: fn})
	return func() {
		e.listenersMu.Lock()
		defer e.listenersMu.Unlock()
		e.onWarning = without(e.onWarning, id)
	}
}

// OnExpired registers a listener and returns a function that removes it
func (e *Engine) OnExpired(fn ExpiredFunc) func() {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	id := e.nextID
	e.nextID++
	e.onExpired = append(e.onExpired, listener[ExpiredFunc]{id: id, fn: fn})
	return func() {
		e.listenersMu.Lock()
		defer e.listenersMu.Unlock()
		e.onExpired = without(e.onExpired, id)
	}
}

func without[F any](listeners []listener[F], id int) []listener[F] {
	out := make([]listener[F], 0, len(listeners))
	for _, l := range listeners {
		if l.id != id {
			out = append(out, l)
		}
	}
	return out
}

// Tick evaluates the current hold once and returns the events it fired.
// Listeners must not call Tick.
func (e *Engine) Tick() []models.WarningEvent {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	hold, generation := e.store.Snapshot()
	now := e.clock.Now()

	e.mu.Lock()
	if generation != e.tracked {
		// a different hold (or none) is current: its warnings start from scratch
		e.tracked = generation
		for i := range e.fired {
			e.fired[i] = false
		}
	}
	if hold == nil {
		e.mu.Unlock()
		return nil
	}

	remaining := countdown.SecondsRemaining(hold.ExpiresAt, now)
	var due []models.WarningEvent
	for i, th := range e.thresholds {
		if e.fired[i] || !th.Reached(remaining) {
			continue
		}
		e.fired[i] = true
		due = append(due, models.WarningEvent{
			Level:            th.Level,
			SecondsRemaining: remaining,
			Hold:             *hold.Clone(),
			FiredAt:          now,
		})
	}
	e.mu.Unlock()

	for _, event := range due {
		slog.Info("Hold warning fired",
			"level", event.Level,
			"reservation_id", event.Hold.ReservationID,
			"seconds_remaining", event.SecondsRemaining)

		e.dispatchWarning(event)
		if event.Level == models.LevelExpired {
			e.dispatchExpired(event)
			if e.store.ClearIf(generation) {
				slog.Info("Expired hold cleared",
					"reservation_id", event.Hold.ReservationID,
					"seats_count", event.Hold.SeatsCount)
			}
		}
	}

	return due
}

// Start runs Tick immediately and then on every interval until Stop or ctx is done
func (e *Engine) Start(ctx context.Context) {
	e.runMu.Lock()
	if e.done != nil {
		e.runMu.Unlock()
		return
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	e.done = done
	e.stopped = stopped
	ticker := e.clock.NewTicker(e.interval)
	e.runMu.Unlock()

	slog.Info("Starting hold warning engine", "tick_interval", e.interval.String())

	e.Tick()

	go func() {
		defer close(stopped)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				e.Tick()
			case <-done:
				slog.Info("Hold warning engine stopped")
				return
			case <-ctx.Done():
				slog.Info("Hold warning engine stopped", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Stop halts the ticker and waits for the loop to exit
func (e *Engine) Stop() {
	e.runMu.Lock()
	done, stopped := e.done, e.stopped
	e.done, e.stopped = nil, nil
	e.runMu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped
}

func (e *Engine) dispatchWarning(event models.WarningEvent) {
	e.listenersMu.RLock()
	listeners := append([]listener[WarningFunc](nil), e.onWarning...)
	e.listenersMu.RUnlock()

	for _, l := range listeners {
		safeCall(event, l.fn)
	}
}

func (e *Engine) dispatchExpired(event models.WarningEvent) {
	e.listenersMu.RLock()
	listeners := append([]listener[ExpiredFunc](nil), e.onExpired...)
	e.listenersMu.RUnlock()

	for _, l := range listeners {
		safeCall(event, l.fn)
	}
}

func safeCall[F ~func(models.WarningEvent)](event models.WarningEvent, fn F) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Hold warning listener panicked",
				"panic", r,
				"level", event.Level,
				"reservation_id", event.Hold.ReservationID)
		}
	}()
	fn(event)
}
