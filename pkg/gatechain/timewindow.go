package gatechain

import (
	"fmt"
	"net/http"
	"time"
)

// TimeWindowGate rejects requests outside a configured wall-clock window.
// It is stateless and compares only the time of day, never the date, so the
// same window applies every day. Both boundaries are inclusive: a request at
// exactly the start or end second passes.
type TimeWindowGate struct {
	startSec int // seconds since midnight
	endSec   int
	now      func() time.Time
}

// NewTimeWindowGate creates a gate allowing requests between start and end,
// both given as "HH:MM" clock strings.
func NewTimeWindowGate(start, end string) (*TimeWindowGate, error) {
	startSec, err := parseClock(start)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q: %v", ErrInvalidConfig, start, err)
	}
	endSec, err := parseClock(end)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q: %v", ErrInvalidConfig, end, err)
	}
	if endSec < startSec {
		return nil, fmt.Errorf("%w: window end %q is before start %q", ErrInvalidConfig, end, start)
	}
	return &TimeWindowGate{startSec: startSec, endSec: endSec, now: time.Now}, nil
}

// Name implements Gate.
func (g *TimeWindowGate) Name() string { return "time_window" }

// Check implements Gate.
func (g *TimeWindowGate) Check(r *http.Request) Decision {
	t := g.now()
	sec := t.Hour()*3600 + t.Minute()*60 + t.Second()

	if sec < g.startSec || sec > g.endSec {
		return RejectText(http.StatusForbidden, "Access denied")
	}
	return Allow()
}

// parseClock converts "HH:MM" to seconds since midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, ErrInvalidClockTime
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrInvalidClockTime
	}
	return h*3600 + m*60, nil
}
