package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmeet/planner-cli/internal/match"
	"github.com/campusmeet/planner-cli/internal/model"
)

func testPlanner() *Planner {
	return New(&mockIdeasClient{}, &mockPlacesClient{}, Options{
		Threshold: match.DefaultThreshold,
	})
}

func TestFilterDuplicates(t *testing.T) {
	p := testPlanner()

	options := []model.CandidateOption{
		{IdeaTitle: "Board Game Night", VenueName: "Meeple Madness"},
		{IdeaTitle: "Chess in the Park", VenueName: "Piedmont Park"},
	}

	t.Run("no existing events keeps everything", func(t *testing.T) {
		kept := p.filterDuplicates(options, nil)
		assert.Len(t, kept, 2)
	})

	t.Run("near-identical name is dropped", func(t *testing.T) {
		existing := []model.ExistingEvent{
			{Name: "Board Game Night @ Meeple Madness"},
		}
		kept := p.filterDuplicates(options, existing)
		require.Len(t, kept, 1)
		assert.Equal(t, "Chess in the Park", kept[0].IdeaTitle)
	})

	t.Run("dissimilar names survive", func(t *testing.T) {
		existing := []model.ExistingEvent{
			{Name: "Intramural Soccer Finals"},
		}
		kept := p.filterDuplicates(options, existing)
		assert.Len(t, kept, 2)
	})

	t.Run("everything can be filtered out", func(t *testing.T) {
		existing := []model.ExistingEvent{
			{Name: "Board Game Night @ Meeple Madness"},
			{Name: "Chess in the Park @ Piedmont Park"},
		}
		kept := p.filterDuplicates(options, existing)
		assert.Empty(t, kept)
	})
}

func TestFallbackOption(t *testing.T) {
	p := testPlanner()

	opt := p.fallbackOption("climbing")
	assert.Equal(t, "Casual climbing meetup", opt.IdeaTitle)
	assert.Equal(t, "Atlantic Station", opt.VenueName)
	assert.Equal(t, "1380 Atlantic Dr NW, Atlanta, GA 30363", opt.Address)
	assert.Equal(t, 12.0, opt.PerPersonCost)
	assert.Equal(t, 0.6, opt.Popularity)
	assert.Equal(t, 0.7, opt.Proximity)
	assert.Equal(t, 0.7, opt.Availability)
	assert.Equal(t, "Casual climbing meetup @ Atlantic Station", opt.EventName())
}

func TestFallbackOptionPricesTheInterest(t *testing.T) {
	p := testPlanner()

	// The cost estimator runs on the interest text, so a free-by-nature
	// interest gives a free fallback.
	assert.Equal(t, 0.0, p.fallbackOption("hiking").PerPersonCost)
	assert.Equal(t, 10.0, p.fallbackOption("board games").PerPersonCost)
}
