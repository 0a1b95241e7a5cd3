package planner

import "github.com/campusmeet/planner-cli/internal/model"

// ScoreOption computes the weighted blend of an option's four signals.
// Every signal is clamped to [0, 1] here so hand-built or deserialized
// options cannot push the score out of range. Cost contributes
// inversely: a free option scores 1, anything at or above the ceiling
// scores 0.
func (r *Rules) ScoreOption(opt model.CandidateOption) float64 {
	costScore := clamp01(1 - opt.PerPersonCost/r.CostCeiling)
	return r.Weights.Proximity*clamp01(opt.Proximity) +
		r.Weights.Popularity*clamp01(opt.Popularity) +
		r.Weights.Availability*clamp01(opt.Availability) +
		r.Weights.Cost*costScore
}

// SelectBest returns the index of the highest-scoring option. Ties keep
// the earliest candidate so repeated runs over the same input pick the
// same winner. Returns -1 for an empty slice.
func (r *Rules) SelectBest(opts []model.CandidateOption) int {
	best := -1
	bestScore := 0.0
	for i, opt := range opts {
		score := r.ScoreOption(opt)
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}
