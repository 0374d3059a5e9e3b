// Package presenter turns hold state and warning events into what a UI shows.
package presenter

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"holdagent/internal/countdown"
	apperrors "holdagent/internal/errors"
	"holdagent/internal/models"
	"holdagent/internal/warnings"
)

// TimerView is the countdown widget's state
type TimerView struct {
	Active           bool                `json:"active"`
	ReservationID    string              `json:"reservationId,omitempty"`
	SecondsRemaining int                 `json:"secondsRemaining"`
	Display          string              `json:"display"`
	Level            models.WarningLevel `json:"level,omitempty"`
	SeatIDs          []string            `json:"seatIds,omitempty"`
	SeatsCount       int                 `json:"seatsCount"`
	TotalPrice       decimal.Decimal     `json:"totalPrice"`
	ExpiresAt        *time.Time          `json:"expiresAt,omitempty"`
	Message          string              `json:"message,omitempty"`
}

// Presenter renders views against one set of thresholds
type Presenter struct {
	thresholds []warnings.Threshold
}

func New(cfg warnings.Config) *Presenter {
	return &Presenter{thresholds: warnings.Thresholds(cfg.InfoAt, cfg.WarningAt, cfg.CriticalAt)}
}

// TimerView describes hold at now. A nil hold gives an inactive view.
func (p *Presenter) TimerView(hold *models.ReservationHold, now time.Time) TimerView {
	if hold == nil {
		return TimerView{Display: countdown.Format(0), TotalPrice: decimal.Zero}
	}

	remaining := countdown.SecondsRemaining(hold.ExpiresAt, now)
	expiresAt := hold.ExpiresAt
	view := TimerView{
		Active:           remaining > 0,
		ReservationID:    hold.ReservationID,
		SecondsRemaining: remaining,
		Display:          countdown.Format(remaining),
		Level:            p.level(remaining),
		SeatIDs:          append([]string(nil), hold.SeatIDs...),
		SeatsCount:       hold.SeatsCount,
		TotalPrice:       hold.TotalPrice,
		ExpiresAt:        &expiresAt,
	}
	if view.Level != "" {
		view.Message = Message(models.WarningEvent{
			Level:            view.Level,
			SecondsRemaining: remaining,
			Hold:             *hold,
			FiredAt:          now,
		})
	}
	return view
}

// level is the most severe threshold reached, or empty when none is
func (p *Presenter) level(remaining int) models.WarningLevel {
	var level models.WarningLevel
	for _, th := range p.thresholds {
		if th.Reached(remaining) && th.Level.Severity() > level.Severity() {
			level = th.Level
		}
	}
	return level
}

// Message renders a warning event for the user
func Message(event models.WarningEvent) string {
	seats := seatsPhrase(event.Hold.SeatsCount)
	price := event.Hold.TotalPrice.StringFixed(2)
	left := countdown.Format(event.SecondsRemaining)

	switch event.Level {
	case models.LevelInfo:
		return fmt.Sprintf("Your %s (total %s) are held for %s. Complete your purchase to keep them.", seats, price, left)
	case models.LevelWarning:
		return fmt.Sprintf("Only %s left to complete your purchase of %s (total %s).", left, seats, price)
	case models.LevelCritical:
		return fmt.Sprintf("Hurry! Your hold on %s (total %s) ends in %s.", seats, price, left)
	case models.LevelExpired:
		return fmt.Sprintf("Your hold on %s (total %s) has expired and the seats were released.", seats, price)
	default:
		return ""
	}
}

// ActionMessage renders an error from a user action. Stale responses are not shown.
func ActionMessage(err error) string {
	if err == nil || errors.Is(err, apperrors.ErrStaleResponse) {
		return ""
	}

	var netErr *apperrors.NetworkError
	if errors.As(err, &netErr) {
		if netErr.Op == apperrors.OpRelease {
			return "We could not reach the ticketing service to release your seats. They were cleared here and will be freed when the hold runs out."
		}
		return fmt.Sprintf("We could not %s because the ticketing service did not respond. Please try again.", actionPhrase(netErr.Op))
	}

	var unavailable *apperrors.SeatsUnavailableError
	if errors.As(err, &unavailable) {
		return fmt.Sprintf("Some seats are no longer available: %v. Please choose different seats.", unavailable.SeatIDs())
	}

	switch {
	case errors.Is(err, apperrors.ErrSelectionLimitExceeded):
		return "You have reached the maximum number of seats for one order."
	case errors.Is(err, apperrors.ErrSeatNotAvailable):
		return "This seat cannot be selected."
	case errors.Is(err, apperrors.ErrEmptySelection):
		return "Select at least one seat first."
	case errors.Is(err, apperrors.ErrNoActiveHold):
		return "You have no seats on hold."
	default:
		return "Something went wrong. Please try again."
	}
}

func actionPhrase(op string) string {
	switch op {
	case apperrors.OpReserve:
		return "reserve your seats"
	case apperrors.OpAvailability:
		return "check seat availability"
	case apperrors.OpConfirm:
		return "confirm your booking"
	case apperrors.OpStatus:
		return "restore your hold"
	default:
		return op
	}
}

func seatsPhrase(n int) string {
	if n == 1 {
		return "1 seat"
	}
	return fmt.Sprintf("%d seats", n)
}
