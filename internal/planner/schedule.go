package planner

import (
	"time"

	"go.uber.org/zap"

	"github.com/campusmeet/planner-cli/internal/model"
)

// slotDuration is how long a planned event is assumed to occupy when
// checking conflicts against the existing calendar.
const slotDuration = 2 * time.Hour

// patternSlot pins a preferred weekday and start time for new events.
type patternSlot struct {
	day  time.Weekday
	hour int
	min  int
}

// goodSlots are the social prime times, tried in calendar order as the
// window is scanned day by day.
var goodSlots = []patternSlot{
	{time.Thursday, 19, 0},
	{time.Friday, 19, 0},
	{time.Saturday, 11, 0},
	{time.Saturday, 14, 0},
	{time.Sunday, 13, 0},
}

// PickSlot chooses a start time for a new event that avoids the occupied
// intervals of existing events. It scans windowDays forward from now,
// preferring the pattern slots, then any day at 19:00, and as a last
// resort returns now+3d at 19:00 without a conflict check so planning
// always produces a date.
func PickSlot(now time.Time, existing []model.ExistingEvent, loc *time.Location, windowDays int) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if windowDays <= 0 {
		windowDays = 21
	}
	now = now.In(loc)

	occupied := occupiedIntervals(existing)

	// Offset 0 keeps today's still-future slots in play; the After guard
	// below drops the ones already past.
	for offset := 0; offset <= windowDays; offset++ {
		day := now.AddDate(0, 0, offset)
		for _, slot := range goodSlots {
			if day.Weekday() != slot.day {
				continue
			}
			candidate := time.Date(day.Year(), day.Month(), day.Day(), slot.hour, slot.min, 0, 0, loc)
			if candidate.After(now) && !conflicts(candidate, occupied) {
				return candidate
			}
		}
	}

	// No pattern slot was free; take any evening in the window.
	for offset := 0; offset <= windowDays; offset++ {
		day := now.AddDate(0, 0, offset)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), 19, 0, 0, 0, loc)
		if candidate.After(now) && !conflicts(candidate, occupied) {
			return candidate
		}
	}

	// Fully booked window. Double-book rather than fail to plan.
	last := now.AddDate(0, 0, 3)
	fallback := time.Date(last.Year(), last.Month(), last.Day(), 19, 0, 0, 0, loc)
	zap.L().Warn("planner: calendar window fully booked, double-booking",
		zap.Time("slot", fallback),
		zap.Int("existing_events", len(existing)),
	)
	return fallback
}

type interval struct {
	start time.Time
	end   time.Time
}

func occupiedIntervals(existing []model.ExistingEvent) []interval {
	out := make([]interval, 0, len(existing))
	for _, ev := range existing {
		start, end, ok := ev.OccupiedInterval()
		if !ok {
			continue
		}
		out = append(out, interval{start: start, end: end})
	}
	return out
}

// conflicts reports whether a new event starting at candidate overlaps
// any occupied interval. Overlap is half-open: back-to-back events on
// shared boundaries do not conflict.
func conflicts(candidate time.Time, occupied []interval) bool {
	end := candidate.Add(slotDuration)
	for _, iv := range occupied {
		if candidate.Before(iv.end) && iv.start.Before(end) {
			return true
		}
	}
	return false
}
