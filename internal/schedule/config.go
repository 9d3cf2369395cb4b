// internal/schedule/config.go
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPlan marks configuration errors: bad or missing planning inputs
// rejected before any planning work begins. Distinct from legality
// rejections, which are Violations.
var ErrInvalidPlan = errors.New("invalid planning configuration")

// PlanConfig is the ephemeral input to one planning run. It is supplied per
// request and never persisted.
type PlanConfig struct {
	Date         time.Time
	WindowStart  time.Time
	WindowEnd    time.Time
	GameDuration time.Duration
	MinRest      time.Duration
}

func (c PlanConfig) Validate() error {
	if c.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidPlan)
	}
	if c.WindowStart.IsZero() || c.WindowEnd.IsZero() {
		return fmt.Errorf("%w: window start and end are required", ErrInvalidPlan)
	}
	if !c.WindowEnd.After(c.WindowStart) {
		return fmt.Errorf("%w: window end must be after window start", ErrInvalidPlan)
	}
	if c.GameDuration <= 0 {
		return fmt.Errorf("%w: game duration must be positive", ErrInvalidPlan)
	}
	if c.MinRest < 0 {
		return fmt.Errorf("%w: minimum rest must be 0 or greater", ErrInvalidPlan)
	}
	if c.GameDuration > c.WindowEnd.Sub(c.WindowStart) {
		return fmt.Errorf("%w: game duration exceeds the window length", ErrInvalidPlan)
	}
	return nil
}

// timeOfDayOn anchors an HH:MM clock time onto the given date.
func timeOfDayOn(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be in HH:MM format: %w", err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
