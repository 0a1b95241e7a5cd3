package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmeet/planner-cli/internal/model"
)

func TestAssemble(t *testing.T) {
	slot := time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC)
	opt := model.CandidateOption{
		IdeaTitle:     "Board Game Night",
		VenueName:     "Meeple Madness",
		Address:       "845 Spring St NW, Atlanta, GA 30308",
		Website:       "https://meeplemadness.example",
		MapsURL:       "https://maps.google.com/?cid=1",
		PerPersonCost: 10,
	}

	row, err := assemble(opt, slot)
	require.NoError(t, err)

	assert.Equal(t, "Board Game Night @ Meeple Madness", row.Name)
	assert.Equal(t, "2026-03-05T19:00:00Z", row.Datetime)
	assert.Equal(t, 10.0, row.Cost)
	assert.Zero(t, row.NumAttendees)
	assert.Contains(t, row.Description, "845 Spring St NW")
	assert.Contains(t, row.Description, "https://meeplemadness.example")
	assert.Contains(t, row.Description, "Expect about $10.00 per person")
}

func TestAssembleDescriptionCostMatchesRow(t *testing.T) {
	slot := time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC)

	// The description quotes the normalized cost, not the raw estimate.
	row, err := assemble(model.CandidateOption{
		IdeaTitle: "A", VenueName: "B", PerPersonCost: 12.345,
	}, slot)
	require.NoError(t, err)
	assert.Equal(t, 12.35, row.Cost)
	assert.Contains(t, row.Description, "Expect about $12.35 per person")
}

func TestAssembleNormalizesCost(t *testing.T) {
	slot := time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC)

	t.Run("rounds to cents", func(t *testing.T) {
		row, err := assemble(model.CandidateOption{
			IdeaTitle: "A", VenueName: "B", PerPersonCost: 12.345,
		}, slot)
		require.NoError(t, err)
		assert.Equal(t, 12.35, row.Cost)
	})

	t.Run("clamps negative to free", func(t *testing.T) {
		row, err := assemble(model.CandidateOption{
			IdeaTitle: "A", VenueName: "B", PerPersonCost: -3,
		}, slot)
		require.NoError(t, err)
		assert.Zero(t, row.Cost)
	})

	t.Run("clamps to ceiling", func(t *testing.T) {
		row, err := assemble(model.CandidateOption{
			IdeaTitle: "A", VenueName: "B", PerPersonCost: 5000,
		}, slot)
		require.NoError(t, err)
		assert.Equal(t, model.MaxCost, row.Cost)
	})
}
