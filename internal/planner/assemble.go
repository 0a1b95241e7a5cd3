package planner

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/campusmeet/planner-cli/internal/model"
)

// assemble builds the final event row from the winning option and slot.
// The row must validate; a row that fails its own schema is a planner
// bug and aborts the run.
func assemble(opt model.CandidateOption, slot time.Time) (model.EventRow, error) {
	cost := normalizeCost(opt.PerPersonCost)
	row := model.EventRow{
		Name:         opt.EventName(),
		Datetime:     slot.Format(time.RFC3339),
		Description:  describeOption(opt, cost),
		Cost:         cost,
		NumAttendees: 0,
	}

	if err := row.Validate(); err != nil {
		return model.EventRow{}, eris.Wrap(err, "planner: assembled event failed validation")
	}
	return row, nil
}

func describeOption(opt model.CandidateOption, cost float64) string {
	parts := []string{fmt.Sprintf("%s at %s", opt.IdeaTitle, opt.VenueName)}
	if opt.Address != "" {
		parts = append(parts, opt.Address)
	}
	if opt.Website != "" {
		parts = append(parts, opt.Website)
	}
	if opt.MapsURL != "" {
		parts = append(parts, opt.MapsURL)
	}
	parts = append(parts, fmt.Sprintf("Expect about $%.2f per person", cost))
	return strings.Join(parts, ". ")
}

// normalizeCost rounds to cents and clamps into the storable range.
func normalizeCost(cost float64) float64 {
	if cost < 0 {
		return 0
	}
	if cost > model.MaxCost {
		return model.MaxCost
	}
	return math.Round(cost*100) / 100
}
