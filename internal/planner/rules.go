// Package planner turns a single interest into a concrete, schedulable
// event row. It runs a fixed sequence of phases: ideate, research, filter
// duplicates, select, place the date, assemble. Each phase degrades rather
// than fails where a fallback exists; only an invalid assembled row aborts
// the run.
package planner

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// CostRule maps category or name keywords to an estimated per-person cost.
// Rules are evaluated in order and the first match wins.
type CostRule struct {
	Keywords []string `yaml:"keywords"`
	Cost     float64  `yaml:"cost"`
}

// Weights controls how the four option signals blend into a final score.
type Weights struct {
	Proximity    float64 `yaml:"proximity"`
	Popularity   float64 `yaml:"popularity"`
	Availability float64 `yaml:"availability"`
	Cost         float64 `yaml:"cost"`
}

// Rules bundles the tunable heuristics the planner scores with. A rules
// file overrides the defaults wholesale per section, not per entry.
type Rules struct {
	CostRules       []CostRule `yaml:"cost_rules"`
	DefaultCost     float64    `yaml:"default_cost"`
	NearbyKeywords  []string   `yaml:"nearby_keywords"`
	Weights         Weights    `yaml:"weights"`
	CostCeiling     float64    `yaml:"cost_ceiling"`
	IdeaTemplates   []string   `yaml:"idea_templates"`
	FallbackVenue   string     `yaml:"fallback_venue"`
	FallbackAddress string     `yaml:"fallback_address"`
}

// DefaultRules returns the built-in heuristics tuned for the Georgia Tech
// area. Order matters in CostRules: "board" must precede "game" so board
// game venues do not price like sporting events.
func DefaultRules() *Rules {
	return &Rules{
		CostRules: []CostRule{
			{Keywords: []string{"hike", "park"}, Cost: 0},
			{Keywords: []string{"board"}, Cost: 10},
			{Keywords: []string{"mini"}, Cost: 15},
			{Keywords: []string{"arcade"}, Cost: 20},
			{Keywords: []string{"bowling"}, Cost: 18},
			{Keywords: []string{"museum"}, Cost: 15},
			{Keywords: []string{"sports", "game"}, Cost: 35},
			{Keywords: []string{"movie"}, Cost: 16},
		},
		DefaultCost: 12,
		NearbyKeywords: []string{
			"midtown",
			"atlantic station",
			"westside",
			"howell mill",
			"centennial",
			"tech square",
			"home park",
			"ponce",
			"old fourth ward",
			"ansley",
			"grant park",
		},
		Weights: Weights{
			Proximity:    0.3,
			Popularity:   0.3,
			Availability: 0.2,
			Cost:         0.2,
		},
		CostCeiling: 40,
		IdeaTemplates: []string{
			"Casual %s meetup",
			"%s + food near campus",
			"%s at Atlantic Station",
			"%s at Piedmont Park",
			"%s at The Battery",
		},
		FallbackVenue:   "Atlantic Station",
		FallbackAddress: "1380 Atlantic Dr NW, Atlanta, GA 30363",
	}
}

// LoadRules reads a YAML rules file and overlays it on the defaults.
// Sections absent from the file keep their default values.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "planner: read rules file %s", path)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, eris.Wrapf(err, "planner: parse rules file %s", path)
	}

	if rules.DefaultCost < 0 {
		return nil, eris.New("planner: default_cost must be non-negative")
	}
	if rules.CostCeiling <= 0 {
		return nil, eris.New("planner: cost_ceiling must be positive")
	}

	return rules, nil
}
