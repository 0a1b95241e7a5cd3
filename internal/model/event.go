package model

import (
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// MaxCost is the upper bound the events table accepts for per-person cost.
const MaxCost = 999.99

// EventRow is the persistable event record the planner produces. This exact
// shape is the boundary contract with storage and the frontend feed: the
// datetime carries an explicit UTC offset and the cost has at most two
// fraction digits.
type EventRow struct {
	Name         string  `json:"name"`
	Datetime     string  `json:"datetime"`
	Description  string  `json:"description"`
	Cost         float64 `json:"cost"`
	NumAttendees int     `json:"numAttendees"`
}

// Validate checks the row against the storage contract. A violation here is
// fatal for the planning run that produced the row.
func (r *EventRow) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return eris.New("event: name is required")
	}
	if _, err := time.Parse(time.RFC3339, r.Datetime); err != nil {
		return eris.Wrapf(err, "event: datetime %q is not RFC 3339", r.Datetime)
	}
	if r.Cost < 0 || r.Cost > MaxCost {
		return eris.Errorf("event: cost %.4f outside [0, %.2f]", r.Cost, MaxCost)
	}
	if math.Round(r.Cost*100)/100 != r.Cost {
		return eris.Errorf("event: cost %v has more than two fraction digits", r.Cost)
	}
	if r.NumAttendees < 0 {
		return eris.Errorf("event: numAttendees %d is negative", r.NumAttendees)
	}
	return nil
}

// Start parses the row's datetime. Validate must have passed for this to be
// error-free.
func (r *EventRow) Start() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, r.Datetime)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "event: parse datetime")
	}
	return t, nil
}

// ExistingEvent is the shape callers supply for conflict and dedup checks.
// Either Datetime alone (2-hour duration assumed) or an explicit Start/End
// pair may be set.
type ExistingEvent struct {
	Name     string `json:"name"`
	Datetime string `json:"datetime,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// OccupiedInterval returns the half-open interval this event is treated as
// occupying: [start, max(end, start)+2h). The padding makes every event
// block out at least a 2-hour window even when no end is given. ok is false
// when no timestamp parses.
func (e ExistingEvent) OccupiedInterval() (start, end time.Time, ok bool) {
	raw := e.Datetime
	if raw == "" {
		raw = e.Start
	}
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	end = start
	if e.End != "" {
		if parsed, err := time.Parse(time.RFC3339, e.End); err == nil && parsed.After(end) {
			end = parsed
		}
	}
	return start, end.Add(2 * time.Hour), true
}
