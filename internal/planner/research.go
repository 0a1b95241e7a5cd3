package planner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campusmeet/planner-cli/internal/model"
	"github.com/campusmeet/planner-cli/pkg/ideas"
)

// research looks up real venues for each idea and annotates every
// idea/venue pairing with its scoring signals. A failed lookup drops
// that idea only; an empty result set is left for the caller to handle.
func (p *Planner) research(ctx context.Context, ideaList []ideas.Idea) []model.CandidateOption {
	var options []model.CandidateOption
	seen := make(map[string]struct{})

	for _, idea := range ideaList {
		if err := p.limiter.Wait(ctx); err != nil {
			zap.L().Warn("planner: rate limiter interrupted", zap.Error(err))
			break
		}

		query := fmt.Sprintf("%s near %s", idea.Query, p.campus)
		venues, err := p.places.TextSearch(ctx, query, p.maxVenuesPerIdea)
		if err != nil {
			zap.L().Warn("planner: venue lookup failed",
				zap.String("idea", idea.Title),
				zap.Error(err),
			)
			continue
		}

		for _, venue := range venues {
			if venue.Name == "" {
				continue
			}
			key := strings.ToLower(idea.Title) + "|" + strings.ToLower(venue.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			// Price on the venue category when Places reports one, else on
			// the idea text. The venue name never participates: "Park
			// Tavern" is not a free park.
			costText := venue.Category
			if costText == "" {
				costText = idea.Title
			}

			options = append(options, model.CandidateOption{
				IdeaTitle:     idea.Title,
				VenueName:     venue.Name,
				Address:       venue.Address,
				Website:       venue.Website,
				MapsURL:       venue.MapsURL,
				Category:      venue.Category,
				PerPersonCost: p.rules.EstimateCost(costText),
				Popularity:    PopularityScore(venue.Rating, venue.ReviewCount),
				Proximity:     p.rules.ProximityScore(venue.Address),
				Availability:  AvailabilityScore(venue.Hours),
			})
		}
	}

	return options
}
