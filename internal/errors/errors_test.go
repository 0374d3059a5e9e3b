package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatsUnavailableError(t *testing.T) {
	err := fmt.Errorf("commit: %w", &SeatsUnavailableError{Seats: []UnavailableSeat{
		{SeatID: "102", Reason: "sold"},
		{SeatID: "105"},
	}})

	assert.True(t, errors.Is(err, ErrSeatUnavailable))
	assert.False(t, errors.Is(err, ErrNetworkFailure))
	assert.Contains(t, err.Error(), "102, 105")

	var target *SeatsUnavailableError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, []string{"102", "105"}, target.SeatIDs())
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError(OpRelease, cause)

	assert.True(t, errors.Is(err, ErrNetworkFailure))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "release failed: connection refused", err.Error())

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, OpRelease, netErr.Op)
}
