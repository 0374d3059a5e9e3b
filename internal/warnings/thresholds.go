package warnings

import (
	"log/slog"
	"time"

	"holdagent/internal/models"
)

const (
	DefaultInfoAt       = 5 * time.Minute
	DefaultWarningAt    = 2 * time.Minute
	DefaultCriticalAt   = 30 * time.Second
	DefaultTickInterval = time.Second
)

// Threshold is a remaining-time boundary that fires one warning per hold
type Threshold struct {
	Level    models.WarningLevel
	Boundary time.Duration
}

// Reached reports whether a hold with remaining whole seconds has crossed the boundary.
// The expired threshold is reached only at zero.
func (t Threshold) Reached(remaining int) bool {
	if t.Level == models.LevelExpired {
		return remaining == 0
	}
	return remaining <= int(t.Boundary/time.Second)
}

// Thresholds builds the ordered list info, warning, critical, expired.
// Zero durations fall back to the defaults. Boundaries must not grow with severity;
// when they do, all three defaults are used instead.
func Thresholds(info, warning, critical time.Duration) []Threshold {
	if info <= 0 {
		info = DefaultInfoAt
	}
	if warning <= 0 {
		warning = DefaultWarningAt
	}
	if critical <= 0 {
		critical = DefaultCriticalAt
	}
	if info < warning || warning < critical {
		slog.Warn("Warning thresholds out of order, using defaults",
			"info", info, "warning", warning, "critical", critical)
		info, warning, critical = DefaultInfoAt, DefaultWarningAt, DefaultCriticalAt
	}

	return []Threshold{
		{Level: models.LevelInfo, Boundary: info},
		{Level: models.LevelWarning, Boundary: warning},
		{Level: models.LevelCritical, Boundary: critical},
		{Level: models.LevelExpired, Boundary: 0},
	}
}
