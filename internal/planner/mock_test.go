package planner

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/campusmeet/planner-cli/pkg/ideas"
	"github.com/campusmeet/planner-cli/pkg/places"
)

type mockIdeasClient struct {
	mock.Mock
}

func (m *mockIdeasClient) Generate(ctx context.Context, req ideas.Request) ([]ideas.Idea, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ideas.Idea), args.Error(1)
}

type mockPlacesClient struct {
	mock.Mock
}

func (m *mockPlacesClient) TextSearch(ctx context.Context, query string, limit int) ([]places.Place, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]places.Place), args.Error(1)
}
