package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seat statuses as last reported to the caller
const (
	SeatStatusAvailable = "available"
	SeatStatusReserved  = "reserved"
	SeatStatusSold      = "sold"
	SeatStatusBlocked   = "blocked"
)

// TicketType describes the ticket category a seat is sold under
type TicketType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Seat represents a seat as the UI last saw it
type Seat struct {
	ID         string          `json:"id" binding:"required"`
	Row        int             `json:"row"`
	Number     int             `json:"number"`
	Status     string          `json:"status" binding:"required"`
	Price      decimal.Decimal `json:"price"`
	TicketType TicketType      `json:"ticketType"`
}

// IsAvailable reports whether the seat may be added to a selection
func (s Seat) IsAvailable() bool {
	return s.Status == SeatStatusAvailable
}

// SelectionEntry is a seat captured at selection time. Price and ticket type are
// not re-fetched afterwards.
type SelectionEntry struct {
	Seat       Seat      `json:"seat"`
	SelectedAt time.Time `json:"selectedAt"`
}

// ReservationHold is the single active hold of a session
type ReservationHold struct {
	ReservationID string          `json:"reservationId,omitempty"`
	EventID       string          `json:"eventId"`
	SessionID     string          `json:"sessionId"`
	SeatIDs       []string        `json:"seatIds"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	SeatsCount    int             `json:"seatsCount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// NewReservationHold builds a hold and collapses duplicate seat ids, keeping first-seen order.
func NewReservationHold(reservationID, eventID, sessionID string, seatIDs []string, expiresAt time.Time, totalPrice decimal.Decimal) ReservationHold {
	seen := make(map[string]struct{}, len(seatIDs))
	ids := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ReservationHold{
		ReservationID: reservationID,
		EventID:       eventID,
		SessionID:     sessionID,
		SeatIDs:       ids,
		ExpiresAt:     expiresAt,
		SeatsCount:    len(ids),
		TotalPrice:    totalPrice,
	}
}

// Clone returns a deep copy of the hold
func (h *ReservationHold) Clone() *ReservationHold {
	if h == nil {
		return nil
	}
	c := *h
	c.SeatIDs = append([]string(nil), h.SeatIDs...)
	return &c
}
