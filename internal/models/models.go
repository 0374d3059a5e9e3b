package models

import (
	"time"

	apperrors "holdagent/internal/errors"
)

// WarningLevel - уровень предупреждения об истечении брони
type WarningLevel string

const (
	LevelInfo     WarningLevel = "info"
	LevelWarning  WarningLevel = "warning"
	LevelCritical WarningLevel = "critical"
	LevelExpired  WarningLevel = "expired"
)

// Severity orders levels from informational to expired
func (l WarningLevel) Severity() int {
	switch l {
	case LevelInfo:
		return 1
	case LevelWarning:
		return 2
	case LevelCritical:
		return 3
	case LevelExpired:
		return 4
	default:
		return 0
	}
}

// WarningEvent - одноразовое уведомление, порожденное оставшимся временем брони
type WarningEvent struct {
	Level            WarningLevel    `json:"level"`
	SecondsRemaining int             `json:"secondsRemaining"`
	Hold             ReservationHold `json:"hold"`
	FiredAt          time.Time       `json:"firedAt"`
}

// AvailabilityResult - результат пакетной проверки доступности выбранных мест
type AvailabilityResult struct {
	Available   []string                    `json:"available"`
	Unavailable []apperrors.UnavailableSeat `json:"unavailable"`
}

// AllAvailable reports whether no seat came back unavailable
func (r *AvailabilityResult) AllAvailable() bool {
	return len(r.Unavailable) == 0
}

// ToggleSeatRequest - модель для выбора/снятия выбора места
type ToggleSeatRequest struct {
	Seat Seat `json:"seat"`
}

// ToggleSeatResponse - ответ на переключение места
type ToggleSeatResponse struct {
	SeatID    string           `json:"seatId"`
	Selected  bool             `json:"selected"`
	Selection []SelectionEntry `json:"selection"`
}

// SelectionResponse - текущий набор выбранных мест
type SelectionResponse struct {
	EventID   string           `json:"eventId"`
	SessionID string           `json:"sessionId"`
	MaxSeats  int              `json:"maxSeats"`
	Selection []SelectionEntry `json:"selection"`
}

// ConfirmHoldRequest - модель для подтверждения брони после оплаты
type ConfirmHoldRequest struct {
	PaymentReference string `json:"paymentReference" binding:"required"`
	BuyerEmail       string `json:"buyerEmail" binding:"required,email"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	SeatIDs []string `json:"seatIds,omitempty"`
}
