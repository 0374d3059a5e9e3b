package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecondsRemaining(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 301, SecondsRemaining(now.Add(301*time.Second), now))
	assert.Equal(t, 0, SecondsRemaining(now.Add(999*time.Millisecond), now))
	assert.Equal(t, 1, SecondsRemaining(now.Add(1999*time.Millisecond), now))
	assert.Equal(t, 0, SecondsRemaining(now, now))
	assert.Equal(t, 0, SecondsRemaining(now.Add(-time.Hour), now))
}

func TestSecondsRemainingMonotonic(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := start.Add(10 * time.Second)

	prev := SecondsRemaining(expiresAt, start)
	for step := 0; step < 60; step++ {
		now := start.Add(time.Duration(step) * 250 * time.Millisecond)
		cur := SecondsRemaining(expiresAt, now)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
	assert.Equal(t, 0, prev)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 301, want: "05:01"},
		{seconds: 59, want: "00:59"},
		{seconds: 1, want: "00:01"},
		{seconds: 4500, want: "75:00"},
		{seconds: 0, want: ExpiredLabel},
		{seconds: -5, want: ExpiredLabel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestDisplayAndIsExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "02:00", Display(now.Add(2*time.Minute), now))
	assert.False(t, IsExpired(now.Add(2*time.Minute), now))
	assert.Equal(t, ExpiredLabel, Display(now.Add(-time.Second), now))
	assert.True(t, IsExpired(now.Add(-time.Second), now))
}
