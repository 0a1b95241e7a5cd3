package planner

import (
	"math"
	"strings"

	"github.com/campusmeet/planner-cli/internal/model"
)

// PopularityScore blends a venue's rating and review volume into [0, 1].
// Missing either signal yields the neutral 0.5: an unrated venue is
// unknown, not bad.
func PopularityScore(rating float64, reviewCount int) float64 {
	if rating <= 0 || reviewCount <= 0 {
		return model.NeutralScore
	}
	ratingPart := clamp01((rating - 3) / 2)
	volumePart := clamp01(math.Log10(float64(reviewCount)+1) / 3)
	return clamp01(0.6*ratingPart + 0.4*volumePart)
}

// ProximityScore checks the venue address against the nearby-neighborhood
// keyword list. A hit scores 0.8; anything else, including a missing
// address, gets the neutral 0.5.
func (r *Rules) ProximityScore(address string) float64 {
	if strings.TrimSpace(address) == "" {
		return model.NeutralScore
	}
	lower := strings.ToLower(address)
	for _, kw := range r.NearbyKeywords {
		if strings.Contains(lower, kw) {
			return 0.8
		}
	}
	return model.NeutralScore
}

// AvailabilityScore rewards venues that publish opening hours. Published
// hours are a weak signal the venue is operating and bookable.
func AvailabilityScore(hours []string) float64 {
	if len(hours) > 0 {
		return 0.7
	}
	return model.NeutralScore
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
