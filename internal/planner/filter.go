package planner

import (
	"go.uber.org/zap"

	"github.com/campusmeet/planner-cli/internal/match"
	"github.com/campusmeet/planner-cli/internal/model"
)

// filterDuplicates drops options whose prospective event name is too
// similar to an event the interest already has on the calendar.
func (p *Planner) filterDuplicates(options []model.CandidateOption, existing []model.ExistingEvent) []model.CandidateOption {
	if len(existing) == 0 {
		return options
	}

	kept := options[:0]
	for _, opt := range options {
		name := opt.EventName()
		dup := false
		for _, ev := range existing {
			if match.Similarity(name, ev.Name) >= p.threshold {
				dup = true
				zap.L().Debug("planner: dropped near-duplicate option",
					zap.String("candidate", name),
					zap.String("existing", ev.Name),
				)
				break
			}
		}
		if !dup {
			kept = append(kept, opt)
		}
	}
	return kept
}

// fallbackOption is the venue of last resort when research yields nothing
// or every candidate is a duplicate. Atlantic Station always has room for
// a generic meetup.
func (p *Planner) fallbackOption(interest string) model.CandidateOption {
	return model.CandidateOption{
		IdeaTitle:     "Casual " + interest + " meetup",
		VenueName:     p.rules.FallbackVenue,
		Address:       p.rules.FallbackAddress,
		PerPersonCost: p.rules.EstimateCost(interest),
		Popularity:    0.6,
		Proximity:     0.7,
		Availability:  0.7,
	}
}
