package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/campusmeet/planner-cli/internal/demand"
	"github.com/campusmeet/planner-cli/internal/planner"
	"github.com/campusmeet/planner-cli/internal/store"
	"github.com/campusmeet/planner-cli/internal/sweep"
	"github.com/campusmeet/planner-cli/pkg/ideas"
	"github.com/campusmeet/planner-cli/pkg/places"
)

// env bundles the wired subsystems a command runs against.
type env struct {
	Store   store.Store
	Demand  *demand.Estimator
	Planner *planner.Planner
	Sweeper *sweep.Sweeper
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "planner.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initPlanner() (*planner.Planner, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (PLANNER_ANTHROPIC_KEY)")
	}
	if cfg.Places.Key == "" {
		return nil, eris.New("places API key is required (PLANNER_PLACES_KEY)")
	}

	rules := planner.DefaultRules()
	if cfg.Planner.RulesFile != "" {
		loaded, err := planner.LoadRules(cfg.Planner.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	loc, err := time.LoadLocation(cfg.Planner.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "load timezone %s", cfg.Planner.Timezone)
	}

	ideasClient := ideas.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	placesClient := places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))

	return planner.New(ideasClient, placesClient, planner.Options{
		Rules:            rules,
		City:             cfg.Planner.City,
		Campus:           cfg.Planner.Campus,
		Location:         loc,
		WindowDays:       cfg.Planner.WindowDays,
		MaxVenuesPerIdea: cfg.Planner.MaxVenuesPerIdea,
		Threshold:        cfg.Planner.SimilarityThreshold,
		RateLimit:        rate.Limit(cfg.Places.RateLimit),
	}), nil
}

// initEnv wires the full stack and runs migrations.
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	pl, err := initPlanner()
	if err != nil {
		st.Close()
		return nil, err
	}

	est := demand.NewEstimator(st)
	return &env{
		Store:   st,
		Demand:  est,
		Planner: pl,
		Sweeper: sweep.New(st, est, pl),
	}, nil
}
