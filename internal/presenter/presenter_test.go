package presenter

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "holdagent/internal/errors"
	"holdagent/internal/models"
	"holdagent/internal/warnings"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func hold(expiresIn time.Duration) *models.ReservationHold {
	h := models.NewReservationHold("res-1", "event-1", "session-1", []string{"101", "102"}, now.Add(expiresIn), decimal.RequireFromString("150"))
	return &h
}

func TestTimerViewWithoutHold(t *testing.T) {
	view := New(warnings.Config{}).TimerView(nil, now)

	assert.False(t, view.Active)
	assert.Equal(t, "Expired", view.Display)
	assert.Empty(t, view.Message)
	assert.Nil(t, view.ExpiresAt)
}

func TestTimerViewLevels(t *testing.T) {
	p := New(warnings.Config{})

	cases := []struct {
		left    time.Duration
		level   models.WarningLevel
		display string
	}{
		{10 * time.Minute, "", "10:00"},
		{301 * time.Second, "", "05:01"},
		{300 * time.Second, models.LevelInfo, "05:00"},
		{121 * time.Second, models.LevelInfo, "02:01"},
		{120 * time.Second, models.LevelWarning, "02:00"},
		{30 * time.Second, models.LevelCritical, "00:30"},
		{1500 * time.Millisecond, models.LevelCritical, "00:01"},
		{0, models.LevelExpired, "Expired"},
	}

	for _, tc := range cases {
		t.Run(tc.display, func(t *testing.T) {
			view := p.TimerView(hold(tc.left), now)
			assert.Equal(t, tc.level, view.Level)
			assert.Equal(t, tc.display, view.Display)
			assert.Equal(t, 2, view.SeatsCount)
			assert.Equal(t, tc.left >= time.Second, view.Active)
		})
	}
}

func TestMessagesAreDistinctPerLevel(t *testing.T) {
	levels := []models.WarningLevel{models.LevelInfo, models.LevelWarning, models.LevelCritical, models.LevelExpired}
	seen := map[string]bool{}

	for _, level := range levels {
		msg := Message(models.WarningEvent{Level: level, SecondsRemaining: 30, Hold: *hold(30 * time.Second)})
		assert.Contains(t, msg, "2 seats")
		assert.Contains(t, msg, "150.00")
		assert.False(t, seen[msg], "duplicate message for %s", level)
		seen[msg] = true
	}
}

func TestActionMessage(t *testing.T) {
	assert.Empty(t, ActionMessage(nil))
	assert.Empty(t, ActionMessage(apperrors.ErrStaleResponse))

	reserve := ActionMessage(apperrors.NewNetworkError(apperrors.OpReserve, errors.New("timeout")))
	assert.Contains(t, reserve, "reserve")

	release := ActionMessage(apperrors.NewNetworkError(apperrors.OpRelease, errors.New("timeout")))
	assert.Contains(t, release, "release")

	unavailable := ActionMessage(&apperrors.SeatsUnavailableError{Seats: []apperrors.UnavailableSeat{{SeatID: "102", Reason: "sold"}}})
	assert.Contains(t, unavailable, "102")

	limit := ActionMessage(fmt.Errorf("toggle: %w", apperrors.ErrSelectionLimitExceeded))
	assert.Contains(t, limit, "maximum")
}
