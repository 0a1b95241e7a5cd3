// Package sweep runs the daily planning pass: estimate demand for every
// interest and create one event for each interest that is short. One
// failed interest never aborts the others.
package sweep

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campusmeet/planner-cli/internal/demand"
	"github.com/campusmeet/planner-cli/internal/model"
	"github.com/campusmeet/planner-cli/internal/planner"
)

// Storage is the slice of the store the sweeper needs.
type Storage interface {
	ListInterests(ctx context.Context) ([]model.Interest, error)
	ListFutureEvents(ctx context.Context, iid int64) ([]model.ExistingEvent, error)
	InsertPlannedEvent(ctx context.Context, iid int64, row model.EventRow) (string, error)
}

// Demand estimates the event gap for one interest.
type Demand interface {
	Estimate(ctx context.Context, interest model.Interest) (*demand.InterestDemand, error)
}

// EventPlanner produces one event for one interest.
type EventPlanner interface {
	Plan(ctx context.Context, req planner.Request) (*model.PlanResult, error)
}

// PlannedEvent records one event the sweep created.
type PlannedEvent struct {
	Interest string
	EID      string
	Name     string
	Datetime string
	Gap      int
	DryRun   bool
}

// Result summarizes a sweep.
type Result struct {
	InterestsScanned int
	InterestsShort   int
	Planned          []PlannedEvent
	Failed           int
}

// Options tunes a sweep run.
type Options struct {
	// Concurrency bounds how many interests are processed at once.
	Concurrency int
	// Limit caps how many events one sweep may create. Zero means no cap.
	Limit int
	// DryRun plans without persisting.
	DryRun bool
}

// Sweeper wires the demand estimator and planner over storage.
type Sweeper struct {
	store   Storage
	demand  Demand
	planner EventPlanner
}

// New creates a Sweeper.
func New(store Storage, demand Demand, eventPlanner EventPlanner) *Sweeper {
	return &Sweeper{store: store, demand: demand, planner: eventPlanner}
}

// Run sweeps every interest. Per-interest failures are counted and
// logged, not returned; only listing the interests can fail the sweep.
func (s *Sweeper) Run(ctx context.Context, opts Options) (*Result, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	interests, err := s.store.ListInterests(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		planned []PlannedEvent
		short   atomic.Int64
		failed  atomic.Int64
		created atomic.Int64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, interest := range interests {
		g.Go(func() error {
			log := zap.L().With(zap.String("interest", interest.Name))

			d, err := s.demand.Estimate(ctx, interest)
			if err != nil {
				failed.Add(1)
				log.Error("sweep: demand estimation failed", zap.Error(err))
				return nil
			}
			if d.Gap <= 0 {
				log.Debug("sweep: interest covered", zap.Int("gap", d.Gap))
				return nil
			}
			short.Add(1)

			if opts.Limit > 0 && created.Load() >= int64(opts.Limit) {
				log.Info("sweep: event limit reached, skipping", zap.Int("limit", opts.Limit))
				return nil
			}

			existing, err := s.store.ListFutureEvents(ctx, interest.ID)
			if err != nil {
				failed.Add(1)
				log.Error("sweep: listing calendar failed", zap.Error(err))
				return nil
			}

			result, err := s.planner.Plan(ctx, planner.Request{
				Interest: interest.Name,
				Existing: existing,
			})
			if err != nil {
				failed.Add(1)
				log.Error("sweep: planning failed", zap.Error(err))
				return nil
			}

			event := PlannedEvent{
				Interest: interest.Name,
				Name:     result.Row.Name,
				Datetime: result.Row.Datetime,
				Gap:      d.Gap,
				DryRun:   opts.DryRun,
			}

			if !opts.DryRun {
				eid, err := s.store.InsertPlannedEvent(ctx, interest.ID, result.Row)
				if err != nil {
					failed.Add(1)
					log.Error("sweep: persisting event failed", zap.Error(err))
					return nil
				}
				event.EID = eid
			}
			created.Add(1)

			mu.Lock()
			planned = append(planned, event)
			mu.Unlock()

			log.Info("sweep: event planned",
				zap.String("event", event.Name),
				zap.String("datetime", event.Datetime),
				zap.Int("gap", d.Gap),
				zap.Bool("dry_run", opts.DryRun),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		InterestsScanned: len(interests),
		InterestsShort:   int(short.Load()),
		Planned:          planned,
		Failed:           int(failed.Load()),
	}

	zap.L().Info("sweep: complete",
		zap.Int("interests", result.InterestsScanned),
		zap.Int("short", result.InterestsShort),
		zap.Int("planned", len(result.Planned)),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
