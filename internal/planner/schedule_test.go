package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmeet/planner-cli/internal/model"
)

func mustLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

// Monday morning, so the first pattern slot ahead is Thursday evening.
func monday(loc *time.Location) time.Time {
	return time.Date(2026, 3, 2, 10, 0, 0, 0, loc)
}

func TestPickSlotPrefersPatternSlots(t *testing.T) {
	loc := mustLoc(t)
	slot := PickSlot(monday(loc), nil, loc, 21)

	assert.Equal(t, time.Thursday, slot.Weekday())
	assert.Equal(t, 19, slot.Hour())
	assert.Equal(t, time.Date(2026, 3, 5, 19, 0, 0, 0, loc), slot)
}

func TestPickSlotConsidersTodaysRemainingSlots(t *testing.T) {
	loc := mustLoc(t)
	saturdayMorning := time.Date(2026, 3, 7, 8, 0, 0, 0, loc)

	slot := PickSlot(saturdayMorning, nil, loc, 21)
	assert.Equal(t, time.Date(2026, 3, 7, 11, 0, 0, 0, loc), slot)
}

func TestPickSlotExcludesTodaysPastSlots(t *testing.T) {
	loc := mustLoc(t)
	// 11:00 has gone by; the 14:00 slot is the first still ahead.
	saturdayNoon := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)

	slot := PickSlot(saturdayNoon, nil, loc, 21)
	assert.Equal(t, time.Date(2026, 3, 7, 14, 0, 0, 0, loc), slot)
}

func TestPickSlotSkipsConflicts(t *testing.T) {
	loc := mustLoc(t)
	existing := []model.ExistingEvent{
		{Name: "Trivia Night", Datetime: time.Date(2026, 3, 5, 19, 0, 0, 0, loc).Format(time.RFC3339)},
	}

	slot := PickSlot(monday(loc), existing, loc, 21)
	assert.Equal(t, time.Date(2026, 3, 6, 19, 0, 0, 0, loc), slot)
}

func TestPickSlotBackToBackIsNotAConflict(t *testing.T) {
	loc := mustLoc(t)
	// Occupies 17:00-19:00; the 19:00 slot starts exactly at its end.
	existing := []model.ExistingEvent{
		{Name: "Study Session", Datetime: time.Date(2026, 3, 5, 17, 0, 0, 0, loc).Format(time.RFC3339)},
	}

	slot := PickSlot(monday(loc), existing, loc, 21)
	assert.Equal(t, time.Date(2026, 3, 5, 19, 0, 0, 0, loc), slot)
}

func TestPickSlotFallsBackToAnyEvening(t *testing.T) {
	loc := mustLoc(t)
	now := monday(loc)

	// Book every pattern slot in the window.
	var existing []model.ExistingEvent
	for offset := 0; offset <= 7; offset++ {
		day := now.AddDate(0, 0, offset)
		for _, slot := range goodSlots {
			if day.Weekday() != slot.day {
				continue
			}
			existing = append(existing, model.ExistingEvent{
				Name:     "Booked",
				Datetime: time.Date(day.Year(), day.Month(), day.Day(), slot.hour, slot.min, 0, 0, loc).Format(time.RFC3339),
			})
		}
	}

	slot := PickSlot(now, existing, loc, 7)
	// Monday 19:00 tonight is the first free evening.
	assert.Equal(t, time.Date(2026, 3, 2, 19, 0, 0, 0, loc), slot)
}

func TestPickSlotDoubleBooksWhenWindowIsFull(t *testing.T) {
	loc := mustLoc(t)
	now := monday(loc)

	// Book 19:00 every day in a short window, plus the final-resort day.
	var existing []model.ExistingEvent
	for offset := 0; offset <= 3; offset++ {
		day := now.AddDate(0, 0, offset)
		existing = append(existing, model.ExistingEvent{
			Name:     "Booked",
			Datetime: time.Date(day.Year(), day.Month(), day.Day(), 19, 0, 0, 0, loc).Format(time.RFC3339),
		})
	}

	slot := PickSlot(now, existing, loc, 2)
	// now+3d at 19:00, even though that evening is occupied.
	assert.Equal(t, time.Date(2026, 3, 5, 19, 0, 0, 0, loc), slot)
}

func TestPickSlotIgnoresUnparseableEvents(t *testing.T) {
	loc := mustLoc(t)
	existing := []model.ExistingEvent{
		{Name: "Bad Row", Datetime: "next thursday-ish"},
	}

	slot := PickSlot(monday(loc), existing, loc, 21)
	assert.Equal(t, time.Date(2026, 3, 5, 19, 0, 0, 0, loc), slot)
}

func TestPickSlotRespectsExplicitEnd(t *testing.T) {
	loc := mustLoc(t)
	// Explicit end 18:00 pads to 20:00, so Thursday 19:00 conflicts.
	existing := []model.ExistingEvent{
		{
			Name:  "Long Workshop",
			Start: time.Date(2026, 3, 5, 15, 0, 0, 0, loc).Format(time.RFC3339),
			End:   time.Date(2026, 3, 5, 18, 0, 0, 0, loc).Format(time.RFC3339),
		},
	}

	slot := PickSlot(monday(loc), existing, loc, 21)
	assert.Equal(t, time.Date(2026, 3, 6, 19, 0, 0, 0, loc), slot)
}
