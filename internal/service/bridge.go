package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "holdagent/internal/errors"
	"holdagent/internal/external"
	"holdagent/internal/holds"
	"holdagent/internal/logger"
	"holdagent/internal/messaging"
	"holdagent/internal/metrics"
	"holdagent/internal/models"
)

// SeatAuthority is the remote service that owns seat locks
type SeatAuthority interface {
	BatchReserve(ctx context.Context, req external.BatchReserveRequest) (*external.BatchReserveResponse, error)
	CheckAvailability(ctx context.Context, req external.AvailabilityRequest) (*external.AvailabilityResponse, error)
	Release(ctx context.Context, req external.ReleaseRequest) (*external.ReleaseResponse, error)
	SessionStatus(ctx context.Context, sessionID string) (*external.SessionStatusResponse, error)
	Confirm(ctx context.Context, req external.ConfirmRequest) (*external.ConfirmResponse, error)
}

// SnapshotLoader reads a previously saved hold for a session
type SnapshotLoader interface {
	Load(ctx context.Context, sessionID string) (*models.ReservationHold, error)
}

type BridgeConfig struct {
	EventID   string
	SessionID string
	UserID    string
}

// Bridge turns a committed selection into a hold and drives release and confirmation
type Bridge struct {
	cfg       BridgeConfig
	store     *holds.Store
	selection *SelectionSet
	authority SeatAuthority
	snapshots SnapshotLoader
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger

	// epoch advances on every user action that makes in-flight responses obsolete
	mu    sync.Mutex
	epoch uint64
}

func NewBridge(cfg BridgeConfig, store *holds.Store, selection *SelectionSet, authority SeatAuthority, snapshots SnapshotLoader, publisher messaging.Publisher, m *metrics.Metrics) *Bridge {
	if cfg.SessionID == "" {
		cfg.SessionID = logger.NewRequestID()
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}

	return &Bridge{
		cfg:       cfg,
		store:     store,
		selection: selection,
		authority: authority,
		snapshots: snapshots,
		publisher: publisher,
		metrics:   m,
		log:       logger.WithSession(cfg.SessionID).With("event_id", cfg.EventID),
	}
}

func (b *Bridge) SessionID() string { return b.cfg.SessionID }

func (b *Bridge) EventID() string { return b.cfg.EventID }

func (b *Bridge) Selection() *SelectionSet { return b.selection }

// ToggleSeat flips seat in the selection without any network call
func (b *Bridge) ToggleSeat(seat models.Seat) (bool, error) {
	selected, err := b.selection.Toggle(seat)
	if err != nil {
		reason := "unavailable"
		if errors.Is(err, apperrors.ErrSelectionLimitExceeded) {
			reason = "limit"
		}
		b.metrics.SelectionRejected(reason)
		b.log.Debug("Seat toggle rejected", "seat_id", seat.ID, "status", seat.Status, "reason", reason)
		return false, err
	}

	b.metrics.SetSelectedSeats(b.selection.Len())
	return selected, nil
}

func (b *Bridge) ClearSelection() {
	b.advance()
	b.selection.Clear()
	b.metrics.SetSelectedSeats(0)
}

func (b *Bridge) advance() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
	return b.epoch
}

// installIf starts hold unless another user action happened since epoch. Store
// observers run after b.mu is released.
func (b *Bridge) installIf(epoch uint64, hold models.ReservationHold) error {
	b.mu.Lock()
	if b.epoch != epoch {
		b.mu.Unlock()
		return apperrors.ErrStaleResponse
	}
	deliver, err := b.store.Install(hold)
	b.mu.Unlock()
	if err != nil {
		return err
	}

	deliver()
	return nil
}

// clearIf drops the hold unless another user action happened since epoch
func (b *Bridge) clearIf(epoch uint64) {
	b.mu.Lock()
	if b.epoch != epoch {
		b.mu.Unlock()
		return
	}
	deliver := b.store.Take()
	b.mu.Unlock()

	deliver()
}

// CheckAvailability asks the seat authority about every selected seat.
// The selection itself is not modified.
func (b *Bridge) CheckAvailability(ctx context.Context) (*models.AvailabilityResult, error) {
	return b.checkAvailability(ctx, b.selection.SeatIDs())
}

func (b *Bridge) checkAvailability(ctx context.Context, seatIDs []string) (*models.AvailabilityResult, error) {
	if len(seatIDs) == 0 {
		return &models.AvailabilityResult{Available: []string{}, Unavailable: []apperrors.UnavailableSeat{}}, nil
	}

	started := time.Now()
	resp, err := b.authority.CheckAvailability(ctx, external.AvailabilityRequest{
		EventID: b.cfg.EventID,
		SeatIDs: seatIDs,
	})
	b.metrics.APICall(apperrors.OpAvailability, started, err)
	if err != nil {
		b.log.Error("Availability check failed", "error", err, "seats_count", len(seatIDs))
		return nil, apperrors.NewNetworkError(apperrors.OpAvailability, err)
	}

	return mergeAvailability(seatIDs, resp), nil
}

// mergeAvailability keeps the caller's seat order. A seat the authority did not
// confirm as available counts as unavailable.
func mergeAvailability(seatIDs []string, resp *external.AvailabilityResponse) *models.AvailabilityResult {
	available := make(map[string]bool, len(resp.AvailableSeatIDs))
	for _, id := range resp.AvailableSeatIDs {
		available[id] = true
	}
	reasons := make(map[string]string, len(resp.UnavailableDetails))
	for _, d := range resp.UnavailableDetails {
		reasons[d.SeatID] = d.Reason
	}
	unavailable := make(map[string]bool, len(resp.UnavailableSeatIDs))
	for _, id := range resp.UnavailableSeatIDs {
		unavailable[id] = true
	}

	result := &models.AvailabilityResult{Available: []string{}, Unavailable: []apperrors.UnavailableSeat{}}
	for _, id := range seatIDs {
		_, detailed := reasons[id]
		if available[id] && !unavailable[id] && !detailed {
			result.Available = append(result.Available, id)
			continue
		}
		reason := reasons[id]
		if reason == "" {
			if unavailable[id] {
				reason = "unavailable"
			} else {
				reason = "not confirmed"
			}
		}
		result.Unavailable = append(result.Unavailable, apperrors.UnavailableSeat{SeatID: id, Reason: reason})
	}
	return result
}

// CommitSelection reserves every selected seat with one batch call and installs the
// result as the current hold. On any failure the selection and the store are left as
// they were.
func (b *Bridge) CommitSelection(ctx context.Context) (*models.ReservationHold, error) {
	entries := b.selection.Entries()
	if len(entries) == 0 {
		return nil, apperrors.ErrEmptySelection
	}
	seatIDs := make([]string, len(entries))
	for i, e := range entries {
		seatIDs[i] = e.Seat.ID
	}

	epoch := b.advance()

	availability, err := b.checkAvailability(ctx, seatIDs)
	if err != nil {
		return nil, err
	}
	if !availability.AllAvailable() {
		b.log.Info("Commit rejected, seats no longer available", "unavailable", availability.Unavailable)
		return nil, &apperrors.SeatsUnavailableError{Seats: availability.Unavailable}
	}

	started := time.Now()
	resp, err := b.authority.BatchReserve(ctx, external.BatchReserveRequest{
		EventID:   b.cfg.EventID,
		SeatIDs:   seatIDs,
		SessionID: b.cfg.SessionID,
		UserID:    b.cfg.UserID,
	})
	b.metrics.APICall(apperrors.OpReserve, started, err)
	if err != nil {
		b.log.Error("Batch reserve failed", "error", err, "seat_ids", seatIDs)
		return nil, apperrors.NewNetworkError(apperrors.OpReserve, err)
	}

	reserved := resp.ReservedSeats
	if len(reserved) == 0 {
		reserved = seatIDs
	}
	hold := models.NewReservationHold(resp.ReservationID, b.cfg.EventID, b.cfg.SessionID, reserved, resp.ExpiresAt, resp.TotalPrice)
	if resp.SeatsCount > 0 {
		hold.SeatsCount = resp.SeatsCount
	}

	if err := b.installIf(epoch, hold); err != nil {
		if errors.Is(err, apperrors.ErrStaleResponse) {
			b.log.Warn("Discarding stale reserve response", "reservation_id", resp.ReservationID)
			b.releaseStale(ctx, resp.ReservationID)
			return nil, err
		}
		// nothing local tracks the reservation, so the seat authority gets it back
		b.log.Error("Reserve response rejected by hold store", "reservation_id", resp.ReservationID, "error", err)
		b.releaseStale(ctx, resp.ReservationID)
		return nil, fmt.Errorf("reserve %d seats: %w", len(seatIDs), err)
	}

	// seats toggled while the reserve call was in flight stay selected
	b.selection.Remove(seatIDs...)
	b.metrics.SetSelectedSeats(b.selection.Len())
	b.log.Info("Selection committed",
		"reservation_id", hold.ReservationID,
		"seats_count", hold.SeatsCount,
		"expires_at", hold.ExpiresAt)

	return b.store.CurrentHold(), nil
}

// releaseStale gives back a reservation nobody is tracking
func (b *Bridge) releaseStale(ctx context.Context, reservationID string) {
	if reservationID == "" {
		return
	}
	started := time.Now()
	_, err := b.authority.Release(ctx, external.ReleaseRequest{
		SessionID:     b.cfg.SessionID,
		ReservationID: reservationID,
	})
	b.metrics.APICall(apperrors.OpRelease, started, err)
	if err != nil {
		b.log.Warn("Failed to release stale reservation", "reservation_id", reservationID, "error", err)
	}
}

// ReleaseHold gives the current hold back. Local state is cleared even when the
// remote call fails; the failure is still returned so the caller can tell the user.
func (b *Bridge) ReleaseHold(ctx context.Context) error {
	hold, generation := b.store.Snapshot()
	if hold == nil {
		return apperrors.ErrNoActiveHold
	}
	b.advance()

	started := time.Now()
	resp, err := b.authority.Release(ctx, external.ReleaseRequest{
		SessionID:     b.cfg.SessionID,
		ReservationID: hold.ReservationID,
	})
	b.metrics.APICall(apperrors.OpRelease, started, err)

	b.store.ClearIf(generation)
	b.publishEnded(hold, models.EventHoldReleased)

	if err != nil {
		b.log.Error("Release failed, local hold cleared anyway", "reservation_id", hold.ReservationID, "error", err)
		return apperrors.NewNetworkError(apperrors.OpRelease, err)
	}

	b.log.Info("Hold released", "reservation_id", hold.ReservationID, "released_seats", resp.ReleasedSeatsCount)
	return nil
}

// ConfirmHold turns the hold into a permanent booking after payment. The hold is
// kept when the call fails so the caller may retry before it expires.
func (b *Bridge) ConfirmHold(ctx context.Context, paymentReference, buyerEmail string) (string, error) {
	hold, generation := b.store.Snapshot()
	if hold == nil {
		return "", apperrors.ErrNoActiveHold
	}
	if hold.ReservationID == "" {
		return "", fmt.Errorf("%w: hold has no reservation id", apperrors.ErrInvalidHold)
	}

	started := time.Now()
	resp, err := b.authority.Confirm(ctx, external.ConfirmRequest{
		ReservationID:    hold.ReservationID,
		SessionID:        b.cfg.SessionID,
		PaymentReference: paymentReference,
		BuyerEmail:       buyerEmail,
	})
	b.metrics.APICall(apperrors.OpConfirm, started, err)
	if err != nil {
		b.log.Error("Confirm failed", "reservation_id", hold.ReservationID, "error", err)
		return "", apperrors.NewNetworkError(apperrors.OpConfirm, err)
	}

	if !b.store.ClearIf(generation) {
		b.log.Warn("Hold changed while confirming", "reservation_id", hold.ReservationID)
	}
	b.publishEnded(hold, models.EventHoldConfirmed)
	b.log.Info("Hold confirmed", "reservation_id", hold.ReservationID, "booking_id", resp.BookingID)

	return resp.BookingID, nil
}

// Rehydrate restores the session's hold after a restart. The seat authority is asked
// first; the Redis snapshot is only used when it cannot be reached. A nil hold with a
// nil error means the session holds nothing.
func (b *Bridge) Rehydrate(ctx context.Context) (*models.ReservationHold, error) {
	epoch := b.advance()

	started := time.Now()
	resp, err := b.authority.SessionStatus(ctx, b.cfg.SessionID)
	b.metrics.APICall(apperrors.OpStatus, started, err)
	if err != nil {
		netErr := apperrors.NewNetworkError(apperrors.OpStatus, err)
		hold, snapErr := b.loadSnapshot(ctx)
		if snapErr != nil || hold == nil {
			b.log.Error("Rehydrate failed", "error", err, "snapshot_error", snapErr)
			return nil, netErr
		}
		if err := b.installIf(epoch, *hold); err != nil {
			b.log.Warn("Snapshot hold discarded", "reservation_id", hold.ReservationID, "error", err)
			return nil, netErr
		}
		b.log.Info("Hold restored from snapshot", "reservation_id", hold.ReservationID)
		return b.store.CurrentHold(), nil
	}

	if !resp.Active || resp.Reservation == nil {
		b.clearIf(epoch)
		return nil, nil
	}

	r := resp.Reservation
	eventID := r.EventID
	if eventID == "" {
		eventID = b.cfg.EventID
	}
	hold := models.NewReservationHold(r.ReservationID, eventID, b.cfg.SessionID, r.SeatIDs, r.ExpiresAt, r.TotalPrice)
	if r.SeatsCount > 0 {
		hold.SeatsCount = r.SeatsCount
	}
	if err := b.installIf(epoch, hold); err != nil {
		if errors.Is(err, apperrors.ErrStaleResponse) {
			b.log.Warn("Discarding stale status response", "reservation_id", r.ReservationID)
		}
		return nil, err
	}

	b.log.Info("Hold restored from seat authority", "reservation_id", hold.ReservationID)
	return b.store.CurrentHold(), nil
}

func (b *Bridge) loadSnapshot(ctx context.Context) (*models.ReservationHold, error) {
	if b.snapshots == nil {
		return nil, nil
	}
	return b.snapshots.Load(ctx, b.cfg.SessionID)
}

func (b *Bridge) publishEnded(hold *models.ReservationHold, reason string) {
	b.metrics.HoldEnded(reason)
	event := models.HoldEndedEvent{
		ReservationID: hold.ReservationID,
		EventID:       hold.EventID,
		SessionID:     hold.SessionID,
		SeatsCount:    hold.SeatsCount,
		Reason:        reason,
		Timestamp:     time.Now(),
	}
	if err := b.publisher.Publish(reason, event); err != nil {
		// Log error but don't fail the operation
		b.log.Error("Failed to publish hold event", "error", err, "event_type", reason)
	}
}
