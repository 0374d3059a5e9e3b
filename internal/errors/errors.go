package errors

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidHold = errors.New("invalid hold")
var ErrSeatUnavailable = errors.New("seats are no longer available")
var ErrSeatNotAvailable = errors.New("seat is not available for selection")
var ErrSelectionLimitExceeded = errors.New("selection limit exceeded")
var ErrEmptySelection = errors.New("selection is empty")
var ErrNoActiveHold = errors.New("no active hold")
var ErrNetworkFailure = errors.New("network failure")

// ErrStaleResponse marks a response that arrived for a hold or session that is no
// longer current. It is logged and dropped, never shown to the user.
var ErrStaleResponse = errors.New("stale response discarded")

// UnavailableSeat names one seat the seat authority reported as gone.
type UnavailableSeat struct {
	SeatID string `json:"seatId"`
	Reason string `json:"reason,omitempty"`
}

// SeatsUnavailableError lists the seats that failed the availability pre-flight.
type SeatsUnavailableError struct {
	Seats []UnavailableSeat
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatUnavailable.Error(), strings.Join(e.SeatIDs(), ", "))
}

func (e *SeatsUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

// SeatIDs returns the identifiers of the unavailable seats.
func (e *SeatsUnavailableError) SeatIDs() []string {
	ids := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		ids[i] = s.SeatID
	}
	return ids
}

// Operation names used in NetworkError.
const (
	OpReserve      = "reserve"
	OpAvailability = "check availability"
	OpRelease      = "release"
	OpStatus       = "status"
	OpConfirm      = "confirm"
)

// NetworkError is returned when a call to the seat authority does not complete.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// NewNetworkError wraps err with the operation that produced it.
func NewNetworkError(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}
