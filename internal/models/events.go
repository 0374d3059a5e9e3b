package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NATS Event Types
const (
	EventHoldStarted   = "hold.started"
	EventHoldWarning   = "hold.warning"
	EventHoldExpired   = "hold.expired"
	EventHoldReleased  = "hold.released"
	EventHoldConfirmed = "hold.confirmed"
	EventHoldReplaced  = "hold.replaced"
)

// HoldStartedEvent represents a hold installed in the store
type HoldStartedEvent struct {
	ReservationID string          `json:"reservation_id"`
	EventID       string          `json:"event_id"`
	SessionID     string          `json:"session_id"`
	SeatIDs       []string        `json:"seat_ids"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	ExpiresAt     time.Time       `json:"expires_at"`
	Timestamp     time.Time       `json:"timestamp"`
}

// HoldWarningEvent represents a threshold crossing
type HoldWarningEvent struct {
	ReservationID    string       `json:"reservation_id"`
	SessionID        string       `json:"session_id"`
	Level            WarningLevel `json:"level"`
	SecondsRemaining int          `json:"seconds_remaining"`
	Timestamp        time.Time    `json:"timestamp"`
}

// HoldEndedEvent represents a hold leaving the store; Reason is one of the
// hold.* event types.
type HoldEndedEvent struct {
	ReservationID string    `json:"reservation_id"`
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	SeatsCount    int       `json:"seats_count"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}
