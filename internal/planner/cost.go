package planner

import "strings"

// EstimateCost returns the estimated per-person cost for a venue category
// or, when the category is unknown, the idea text describing the outing.
// The first cost rule with any keyword appearing as a substring wins;
// unmatched text gets the default cost.
func (r *Rules) EstimateCost(categoryOrText string) float64 {
	text := strings.ToLower(categoryOrText)
	for _, rule := range r.CostRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Cost
			}
		}
	}
	return r.DefaultCost
}
