// Package demand estimates how many events an interest is short of by
// comparing expected attendance against the events already scheduled.
package demand

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/campusmeet/planner-cli/internal/model"
)

// coldStartScore is the acceptance rate assumed for users with too little
// feed history to measure.
const coldStartScore = 0.2

// coldStartMinSeen is how many feed impressions a user needs before their
// own acceptance rate is trusted over the cold-start prior.
const coldStartMinSeen = 10

// Source provides the per-interest facts the estimator aggregates. The
// store satisfies this for both drivers.
type Source interface {
	UserStatsForInterest(ctx context.Context, iid int64) ([]model.UserStats, error)
	CountFutureEvents(ctx context.Context, iid int64) (int, error)
}

// InterestDemand is the estimator's verdict for one interest.
type InterestDemand struct {
	Interest           model.Interest
	ExpectedAttendance float64
	FutureEvents       int
	Gap                int
}

// UserScore estimates the probability a user joins an event for an
// interest they follow. Sparse history falls back to the cold-start prior.
func UserScore(stats model.UserStats) float64 {
	if stats.TotalSeen < coldStartMinSeen {
		return coldStartScore
	}
	return float64(stats.TotalAccepted) / float64(stats.TotalSeen)
}

// ExpectedAttendance sums the per-user join probabilities.
func ExpectedAttendance(users []model.UserStats) float64 {
	var total float64
	for _, u := range users {
		total += UserScore(u)
	}
	return total
}

// Gap converts expected attendance into a number of missing events:
// how many events of minAttendees each the expected crowd could fill,
// minus what is already on the calendar. Zero or negative means the
// interest is covered.
func Gap(expected float64, minAttendees, futureEvents int) int {
	if minAttendees <= 0 {
		minAttendees = 1
	}
	return int(math.Floor(expected/float64(minAttendees))) - futureEvents
}

// Estimator computes demand from a Source.
type Estimator struct {
	source Source
}

// NewEstimator creates an Estimator reading from source.
func NewEstimator(source Source) *Estimator {
	return &Estimator{source: source}
}

// Estimate computes the demand gap for one interest.
func (e *Estimator) Estimate(ctx context.Context, interest model.Interest) (*InterestDemand, error) {
	stats, err := e.source.UserStatsForInterest(ctx, interest.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "demand: user stats for interest %d", interest.ID)
	}

	future, err := e.source.CountFutureEvents(ctx, interest.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "demand: future events for interest %d", interest.ID)
	}

	expected := ExpectedAttendance(stats)
	gap := Gap(expected, interest.MinAttendees, future)

	zap.L().Debug("demand: estimated",
		zap.String("interest", interest.Name),
		zap.Int("followers", len(stats)),
		zap.Float64("expected_attendance", expected),
		zap.Int("future_events", future),
		zap.Int("gap", gap),
	)

	return &InterestDemand{
		Interest:           interest,
		ExpectedAttendance: expected,
		FutureEvents:       future,
		Gap:                gap,
	}, nil
}
