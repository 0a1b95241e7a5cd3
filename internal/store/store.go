// Package store persists interests, users, and events. Two drivers
// implement the same interface: Postgres for deployments and SQLite for
// local runs and tests.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/campusmeet/planner-cli/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the event planner.
type Store interface {
	// Interests
	ListInterests(ctx context.Context) ([]model.Interest, error)
	GetInterestByName(ctx context.Context, name string) (*model.Interest, error)
	EnsureInterest(ctx context.Context, name string, minAttendees int) (int64, error)

	// Demand signals
	UserStatsForInterest(ctx context.Context, iid int64) ([]model.UserStats, error)
	CountFutureEvents(ctx context.Context, iid int64) (int, error)

	// Events
	ListFutureEvents(ctx context.Context, iid int64) ([]model.ExistingEvent, error)
	InsertPlannedEvent(ctx context.Context, iid int64, row model.EventRow) (string, error)
	ListEvents(ctx context.Context, limit int) ([]model.FeedEvent, error)
	GetEvent(ctx context.Context, eid string) (*model.FeedEvent, error)
	ListEventsForUser(ctx context.Context, uid int64) ([]model.FeedEvent, error)
	SeedEvents(ctx context.Context, iid int64, rows []model.EventRow) (int, error)

	// Users
	CreateUser(ctx context.Context, user model.User) (int64, error)
	ReplaceUserInterests(ctx context.Context, uid int64, iids []int64) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
