package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmeet/planner-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func TestPostgresStore_GetInterestByName(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT iid, interest, min_attendees FROM interests WHERE interest = \$1`).
		WithArgs("board games").
		WillReturnRows(pgxmock.NewRows([]string{"iid", "interest", "min_attendees"}).
			AddRow(int64(3), "board games", 5))

	in, err := s.GetInterestByName(context.Background(), "board games")
	require.NoError(t, err)
	assert.Equal(t, int64(3), in.ID)
	assert.Equal(t, 5, in.MinAttendees)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInterestByName_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT iid, interest, min_attendees FROM interests`).
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetInterestByName(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureInterest(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO interests \(interest, min_attendees\)`).
		WithArgs("climbing", 5).
		WillReturnRows(pgxmock.NewRows([]string{"iid"}).AddRow(int64(9)))

	// Non-positive minAttendees falls back to the default of five.
	iid, err := s.EnsureInterest(context.Background(), "climbing", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), iid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UserStatsForInterest(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT u.total_seen, u.total_accepted FROM users u`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"total_seen", "total_accepted"}).
			AddRow(100, 50).
			AddRow(4, 1))

	stats, err := s.UserStatsForInterest(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 50, stats[0].TotalAccepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountFutureEvents(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM events e`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := s.CountFutureEvents(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertPlannedEvent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	row := model.EventRow{
		Name:     "Board Game Night @ Meeple Madness",
		Datetime: "2026-03-05T19:00:00-05:00",
		Cost:     10,
	}
	start, err := row.Start()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO events`).
		WithArgs(pgxmock.AnyArg(), row.Name, start, "", 10.0, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO interestevents`).
		WithArgs(int64(3), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	eid, err := s.InsertPlannedEvent(context.Background(), 3, row)
	require.NoError(t, err)
	assert.NotEmpty(t, eid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertPlannedEvent_RejectsInvalidRow(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	_, err := s.InsertPlannedEvent(context.Background(), 3, model.EventRow{
		Name:     "Bad",
		Datetime: "tomorrow-ish",
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFutureEvents(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	when := time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT e.name, e.datetime FROM events e`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"name", "datetime"}).
			AddRow("Trivia Night", when))

	events, err := s.ListFutureEvents(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Trivia Night", events[0].Name)
	assert.Equal(t, when.Format(time.RFC3339), events[0].Datetime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceUserInterests(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM userinterests WHERE uid = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO userinterests`).
		WithArgs(int64(7), int64(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO userinterests`).
		WithArgs(int64(7), int64(4)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.ReplaceUserInterests(context.Background(), 7, []int64{1, 4})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedEvents(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := []model.EventRow{
		{Name: "A", Datetime: "2026-03-05T19:00:00Z", Cost: 10},
		{Name: "B", Datetime: "2026-03-06T19:00:00Z", Cost: 0},
	}

	mock.ExpectCopyFrom(pgx.Identifier{"events"},
		[]string{"eid", "name", "datetime", "description", "cost", "num_attendees"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO interestevents`).
		WithArgs(int64(3), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO interestevents`).
		WithArgs(int64(3), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.SeedEvents(context.Background(), 3, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS interests`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
