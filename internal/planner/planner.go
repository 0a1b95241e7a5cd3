package planner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/campusmeet/planner-cli/internal/match"
	"github.com/campusmeet/planner-cli/internal/model"
	"github.com/campusmeet/planner-cli/pkg/ideas"
	"github.com/campusmeet/planner-cli/pkg/places"
)

// Request carries everything a single planning run needs: the interest
// to plan for and the interest's existing calendar, both for duplicate
// filtering and for finding a free slot.
type Request struct {
	Interest string
	Existing []model.ExistingEvent
}

// Planner orchestrates the phases that turn an interest into an event.
type Planner struct {
	ideas   ideas.Client
	places  places.Client
	limiter *rate.Limiter
	rules   *Rules

	city             string
	campus           string
	loc              *time.Location
	windowDays       int
	maxVenuesPerIdea int
	threshold        float64

	now func() time.Time
}

// Options configures a Planner beyond its required clients.
type Options struct {
	Rules            *Rules
	City             string
	Campus           string
	Location         *time.Location
	WindowDays       int
	MaxVenuesPerIdea int
	Threshold        float64
	RateLimit        rate.Limit
	Now              func() time.Time
}

// New creates a Planner. Zero-valued options fall back to sane defaults;
// the ideas and places clients are required.
func New(ideasClient ideas.Client, placesClient places.Client, opts Options) *Planner {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = 21
	}
	maxVenues := opts.MaxVenuesPerIdea
	if maxVenues <= 0 {
		maxVenues = 5
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = match.DefaultThreshold
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Planner{
		ideas:            ideasClient,
		places:           placesClient,
		limiter:          rate.NewLimiter(limit, 1),
		rules:            rules,
		city:             opts.City,
		campus:           opts.Campus,
		loc:              loc,
		windowDays:       windowDays,
		maxVenuesPerIdea: maxVenues,
		threshold:        threshold,
		now:              now,
	}
}

// Plan runs the full phase sequence for one interest. It always returns
// a result unless the assembled row fails validation: missing ideas,
// missing venues, and an all-duplicate candidate pool each degrade to a
// fallback instead of erroring.
func (p *Planner) Plan(ctx context.Context, req Request) (*model.PlanResult, error) {
	log := zap.L().With(zap.String("interest", req.Interest))

	ideaList, usedFallbackIdeas := p.ideate(ctx, req.Interest)
	log.Info("planner: ideation complete",
		zap.Int("ideas", len(ideaList)),
		zap.Bool("fallback", usedFallbackIdeas),
	)

	options := p.research(ctx, ideaList)
	log.Info("planner: research complete", zap.Int("candidates", len(options)))

	candidatesConsidered := len(options)
	options = p.filterDuplicates(options, req.Existing)

	usedFallbackVenue := false
	if len(options) == 0 {
		log.Warn("planner: no viable candidates, using fallback venue")
		options = []model.CandidateOption{p.fallbackOption(req.Interest)}
		usedFallbackVenue = true
	}

	winner := options[p.rules.SelectBest(options)]
	log.Info("planner: option selected",
		zap.String("event", winner.EventName()),
		zap.Float64("score", p.rules.ScoreOption(winner)),
	)

	slot := PickSlot(p.now(), req.Existing, p.loc, p.windowDays)

	row, err := assemble(winner, slot)
	if err != nil {
		return nil, err
	}

	log.Info("planner: event assembled",
		zap.String("name", row.Name),
		zap.String("datetime", row.Datetime),
		zap.Float64("cost", row.Cost),
	)

	return &model.PlanResult{
		Row:                  row,
		Winner:               winner,
		IdeasGenerated:       len(ideaList),
		CandidatesConsidered: candidatesConsidered,
		UsedFallbackIdeas:    usedFallbackIdeas,
		UsedFallbackVenue:    usedFallbackVenue,
	}, nil
}
