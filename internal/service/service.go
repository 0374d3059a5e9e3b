package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"holdagent/internal/holds"
	"holdagent/internal/messaging"
	"holdagent/internal/metrics"
	"holdagent/internal/models"
	"holdagent/internal/warnings"
)

const snapshotTimeout = 2 * time.Second

// SnapshotStore persists the current hold so a restarted agent can find it again
type SnapshotStore interface {
	SnapshotLoader
	Save(ctx context.Context, hold *models.ReservationHold) error
	Delete(ctx context.Context, sessionID string) error
}

type Config struct {
	Bridge   BridgeConfig
	MaxSeats int
	Warnings warnings.Config
}

// Services is one session's hold lifecycle: selection, store, warnings and the bridge
// to the seat authority
type Services struct {
	Store     *holds.Store
	Selection *SelectionSet
	Engine    *warnings.Engine
	Bridge    *Bridge

	snapshots SnapshotStore
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewServices wires the lifecycle together. snapshots, publisher and m may be nil.
func NewServices(cfg Config, clock clockwork.Clock, authority SeatAuthority, snapshots SnapshotStore, publisher messaging.Publisher, m *metrics.Metrics) *Services {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}

	store := holds.NewStore(clock)
	selection := NewSelectionSet(cfg.MaxSeats, store.Clock())
	engine := warnings.NewEngine(store, cfg.Warnings)

	var loader SnapshotLoader
	if snapshots != nil {
		loader = snapshots
	}
	bridge := NewBridge(cfg.Bridge, store, selection, authority, loader, publisher, m)

	s := &Services{
		Store:     store,
		Selection: selection,
		Engine:    engine,
		Bridge:    bridge,
		snapshots: snapshots,
		publisher: publisher,
		metrics:   m,
		log:       bridge.log,
	}

	store.OnChange(s.onHoldChange)
	engine.OnWarning(s.onWarning)
	engine.OnExpired(s.onExpired)

	return s
}

func (s *Services) onHoldChange(old, next *models.ReservationHold) {
	if next == nil {
		s.metrics.SetSecondsRemaining(0)
		if old != nil {
			s.deleteSnapshot(old.SessionID)
		}
		return
	}

	s.metrics.HoldStarted()
	s.metrics.SetSecondsRemaining(s.Store.SecondsRemaining())

	if old != nil && old.ReservationID != next.ReservationID {
		s.metrics.HoldEnded(models.EventHoldReplaced)
		s.publish(models.EventHoldReplaced, models.HoldEndedEvent{
			ReservationID: old.ReservationID,
			EventID:       old.EventID,
			SessionID:     old.SessionID,
			SeatsCount:    old.SeatsCount,
			Reason:        models.EventHoldReplaced,
			Timestamp:     time.Now(),
		})
	}

	s.publish(models.EventHoldStarted, models.HoldStartedEvent{
		ReservationID: next.ReservationID,
		EventID:       next.EventID,
		SessionID:     next.SessionID,
		SeatIDs:       next.SeatIDs,
		TotalPrice:    next.TotalPrice,
		ExpiresAt:     next.ExpiresAt,
		Timestamp:     time.Now(),
	})
	s.saveSnapshot(next)
}

func (s *Services) onWarning(event models.WarningEvent) {
	s.metrics.WarningFired(string(event.Level))
	s.metrics.SetSecondsRemaining(event.SecondsRemaining)
	if event.Level == models.LevelExpired {
		return
	}

	s.publish(models.EventHoldWarning, models.HoldWarningEvent{
		ReservationID:    event.Hold.ReservationID,
		SessionID:        event.Hold.SessionID,
		Level:            event.Level,
		SecondsRemaining: event.SecondsRemaining,
		Timestamp:        event.FiredAt,
	})
}

func (s *Services) onExpired(event models.WarningEvent) {
	s.metrics.HoldEnded(models.EventHoldExpired)
	s.publish(models.EventHoldExpired, models.HoldEndedEvent{
		ReservationID: event.Hold.ReservationID,
		EventID:       event.Hold.EventID,
		SessionID:     event.Hold.SessionID,
		SeatsCount:    event.Hold.SeatsCount,
		Reason:        models.EventHoldExpired,
		Timestamp:     event.FiredAt,
	})
}

func (s *Services) publish(subject string, event interface{}) {
	if err := s.publisher.Publish(subject, event); err != nil {
		// Log error but don't fail the operation
		s.log.Error("Failed to publish hold event", "error", err, "event_type", subject)
	}
}

func (s *Services) saveSnapshot(hold *models.ReservationHold) {
	if s.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := s.snapshots.Save(ctx, hold); err != nil {
		s.log.Warn("Failed to save hold snapshot", "reservation_id", hold.ReservationID, "error", err)
	}
}

func (s *Services) deleteSnapshot(sessionID string) {
	if s.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := s.snapshots.Delete(ctx, sessionID); err != nil {
		s.log.Warn("Failed to delete hold snapshot", "session_id", sessionID, "error", err)
	}
}

// Start runs the warning engine until ctx is done or Stop is called
func (s *Services) Start(ctx context.Context) {
	s.Engine.Start(ctx)
}

func (s *Services) Stop() {
	s.Engine.Stop()
}
