// Package countdown holds the time arithmetic behind a hold's visible timer.
// Everything here is a pure function of an absolute expiry and a reference time.
package countdown

import (
	"fmt"
	"time"
)

// ExpiredLabel is shown instead of a timer once nothing is left.
const ExpiredLabel = "Expired"

// SecondsRemaining returns the whole seconds left until expiresAt, never negative.
func SecondsRemaining(expiresAt, now time.Time) int {
	left := expiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// IsExpired reports whether no whole second remains.
func IsExpired(expiresAt, now time.Time) bool {
	return SecondsRemaining(expiresAt, now) == 0
}

// Format renders seconds as MM:SS. Minutes are not folded into hours.
func Format(seconds int) string {
	if seconds <= 0 {
		return ExpiredLabel
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Display is Format applied to the time left until expiresAt.
func Display(expiresAt, now time.Time) string {
	return Format(SecondsRemaining(expiresAt, now))
}
