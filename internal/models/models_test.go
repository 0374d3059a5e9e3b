package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservationHoldCollapsesDuplicates(t *testing.T) {
	expires := time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC)
	hold := NewReservationHold("res-1", "event-1", "session-1", []string{"102", "101", "102", "103", "101"}, expires, decimal.NewFromInt(150))

	assert.Equal(t, []string{"102", "101", "103"}, hold.SeatIDs)
	assert.Equal(t, 3, hold.SeatsCount)
}

func TestCloneIsDeep(t *testing.T) {
	var nilHold *ReservationHold
	assert.Nil(t, nilHold.Clone())

	hold := NewReservationHold("res-1", "event-1", "session-1", []string{"101"}, time.Now(), decimal.Zero)
	clone := hold.Clone()
	clone.SeatIDs[0] = "999"

	assert.Equal(t, "101", hold.SeatIDs[0])
}

func TestWarningLevelSeverity(t *testing.T) {
	assert.Less(t, LevelInfo.Severity(), LevelWarning.Severity())
	assert.Less(t, LevelWarning.Severity(), LevelCritical.Severity())
	assert.Less(t, LevelCritical.Severity(), LevelExpired.Severity())
	assert.Equal(t, 0, WarningLevel("").Severity())
}

func TestSeatAvailability(t *testing.T) {
	assert.True(t, Seat{ID: "1", Status: SeatStatusAvailable}.IsAvailable())
	assert.False(t, Seat{ID: "1", Status: SeatStatusReserved}.IsAvailable())
}

func TestHoldJSONUsesCamelCase(t *testing.T) {
	hold := NewReservationHold("res-1", "event-1", "session-1", []string{"101"}, time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC), decimal.RequireFromString("49.90"))

	raw, err := json.Marshal(hold)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"reservationId":"res-1"`)
	assert.Contains(t, string(raw), `"expiresAt":"2025-03-01T12:05:00Z"`)
	assert.Contains(t, string(raw), `"totalPrice":"49.9"`)
}
