package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/campusmeet/planner-cli/internal/db"
	"github.com/campusmeet/planner-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot paths of the sweep loop.
var preparedStatements = map[string]string{
	"list_interests":      `SELECT i.iid, i.interest, i.min_attendees, count(DISTINCT ui.uid), count(DISTINCT ie.eid) FROM interests i LEFT JOIN userinterests ui ON ui.iid = i.iid LEFT JOIN interestevents ie ON ie.iid = i.iid GROUP BY i.iid ORDER BY i.iid`,
	"user_stats":          `SELECT u.total_seen, u.total_accepted FROM users u JOIN userinterests ui ON ui.uid = u.uid WHERE ui.iid = $1`,
	"count_future_events": `SELECT count(*) FROM events e JOIN interestevents ie ON ie.eid = e.eid WHERE ie.iid = $1 AND e.datetime > now()`,
	"list_future_events":  `SELECT e.name, e.datetime FROM events e JOIN interestevents ie ON ie.eid = e.eid WHERE ie.iid = $1 AND e.datetime > now() ORDER BY e.datetime`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS interests (
	iid           BIGSERIAL PRIMARY KEY,
	interest      TEXT NOT NULL UNIQUE,
	min_attendees INTEGER NOT NULL DEFAULT 5 CHECK (min_attendees > 0)
);

CREATE TABLE IF NOT EXISTS users (
	uid            BIGSERIAL PRIMARY KEY,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL,
	email          TEXT NOT NULL UNIQUE,
	password       TEXT NOT NULL,
	total_seen     INTEGER NOT NULL DEFAULT 0 CHECK (total_seen >= 0),
	total_accepted INTEGER NOT NULL DEFAULT 0 CHECK (total_accepted >= 0 AND total_accepted <= total_seen)
);

CREATE TABLE IF NOT EXISTS userinterests (
	uid BIGINT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	iid BIGINT NOT NULL REFERENCES interests(iid) ON DELETE CASCADE,
	PRIMARY KEY (uid, iid)
);

CREATE TABLE IF NOT EXISTS events (
	eid           TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	datetime      TIMESTAMPTZ NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	cost          NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (cost >= 0),
	num_attendees INTEGER NOT NULL DEFAULT 0 CHECK (num_attendees >= 0)
);

CREATE TABLE IF NOT EXISTS interestevents (
	iid BIGINT NOT NULL REFERENCES interests(iid) ON DELETE CASCADE,
	eid TEXT NOT NULL REFERENCES events(eid) ON DELETE CASCADE,
	PRIMARY KEY (iid, eid)
);

CREATE INDEX IF NOT EXISTS idx_events_datetime ON events(datetime);
CREATE INDEX IF NOT EXISTS idx_userinterests_iid ON userinterests(iid);
CREATE INDEX IF NOT EXISTS idx_interestevents_eid ON interestevents(eid);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListInterests(ctx context.Context) ([]model.Interest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT i.iid, i.interest, i.min_attendees, count(DISTINCT ui.uid), count(DISTINCT ie.eid) FROM interests i LEFT JOIN userinterests ui ON ui.iid = i.iid LEFT JOIN interestevents ie ON ie.iid = i.iid GROUP BY i.iid ORDER BY i.iid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list interests")
	}
	defer rows.Close()

	var interests []model.Interest
	for rows.Next() {
		var in model.Interest
		if err := rows.Scan(&in.ID, &in.Name, &in.MinAttendees, &in.UserCount, &in.EventCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan interest")
		}
		interests = append(interests, in)
	}
	return interests, eris.Wrap(rows.Err(), "postgres: iterate interests")
}

func (s *PostgresStore) GetInterestByName(ctx context.Context, name string) (*model.Interest, error) {
	var in model.Interest
	err := s.pool.QueryRow(ctx,
		`SELECT iid, interest, min_attendees FROM interests WHERE interest = $1`,
		name,
	).Scan(&in.ID, &in.Name, &in.MinAttendees)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get interest %s", name)
	}
	return &in, nil
}

func (s *PostgresStore) EnsureInterest(ctx context.Context, name string, minAttendees int) (int64, error) {
	if minAttendees <= 0 {
		minAttendees = 5
	}
	var iid int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO interests (interest, min_attendees) VALUES ($1, $2) ON CONFLICT (interest) DO UPDATE SET min_attendees = EXCLUDED.min_attendees RETURNING iid`,
		name, minAttendees,
	).Scan(&iid)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: ensure interest %s", name)
	}
	return iid, nil
}

func (s *PostgresStore) UserStatsForInterest(ctx context.Context, iid int64) ([]model.UserStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.total_seen, u.total_accepted FROM users u JOIN userinterests ui ON ui.uid = u.uid WHERE ui.iid = $1`,
		iid,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: user stats for interest %d", iid)
	}
	defer rows.Close()

	var stats []model.UserStats
	for rows.Next() {
		var st model.UserStats
		if err := rows.Scan(&st.TotalSeen, &st.TotalAccepted); err != nil {
			return nil, eris.Wrap(err, "postgres: scan user stats")
		}
		stats = append(stats, st)
	}
	return stats, eris.Wrap(rows.Err(), "postgres: iterate user stats")
}

func (s *PostgresStore) CountFutureEvents(ctx context.Context, iid int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM events e JOIN interestevents ie ON ie.eid = e.eid WHERE ie.iid = $1 AND e.datetime > now()`,
		iid,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: count future events for interest %d", iid)
	}
	return n, nil
}

func (s *PostgresStore) ListFutureEvents(ctx context.Context, iid int64) ([]model.ExistingEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.name, e.datetime FROM events e JOIN interestevents ie ON ie.eid = e.eid WHERE ie.iid = $1 AND e.datetime > now() ORDER BY e.datetime`,
		iid,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list future events for interest %d", iid)
	}
	defer rows.Close()

	var events []model.ExistingEvent
	for rows.Next() {
		var name string
		var dt time.Time
		if err := rows.Scan(&name, &dt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan future event")
		}
		events = append(events, model.ExistingEvent{
			Name:     name,
			Datetime: dt.Format(time.RFC3339),
		})
	}
	return events, eris.Wrap(rows.Err(), "postgres: iterate future events")
}

// InsertPlannedEvent stores the event and its interest link in one
// transaction so a crash never leaves an orphaned event.
func (s *PostgresStore) InsertPlannedEvent(ctx context.Context, iid int64, row model.EventRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", eris.Wrap(err, "postgres: insert planned event")
	}
	start, err := row.Start()
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert planned event")
	}

	eid := uuid.New().String()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "postgres: begin insert planned event")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO events (eid, name, datetime, description, cost, num_attendees) VALUES ($1, $2, $3, $4, $5, $6)`,
		eid, row.Name, start, row.Description, row.Cost, row.NumAttendees,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert event")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO interestevents (iid, eid) VALUES ($1, $2)`,
		iid, eid,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: link event to interest")
	}

	if err := tx.Commit(ctx); err != nil {
		return "", eris.Wrap(err, "postgres: commit planned event")
	}
	return eid, nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, limit int) ([]model.FeedEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT e.eid, coalesce(ie.iid, 0), e.name, e.datetime, e.description, e.cost, e.num_attendees FROM events e LEFT JOIN interestevents ie ON ie.eid = e.eid ORDER BY e.datetime LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list events")
	}
	defer rows.Close()
	return scanFeedEvents(rows)
}

func (s *PostgresStore) GetEvent(ctx context.Context, eid string) (*model.FeedEvent, error) {
	var ev model.FeedEvent
	err := s.pool.QueryRow(ctx,
		`SELECT e.eid, coalesce(ie.iid, 0), e.name, e.datetime, e.description, e.cost, e.num_attendees FROM events e LEFT JOIN interestevents ie ON ie.eid = e.eid WHERE e.eid = $1`,
		eid,
	).Scan(&ev.EID, &ev.InterestID, &ev.Name, &ev.Datetime, &ev.Description, &ev.Cost, &ev.NumAttendees)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get event %s", eid)
	}
	return &ev, nil
}

func (s *PostgresStore) ListEventsForUser(ctx context.Context, uid int64) ([]model.FeedEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT e.eid, ie.iid, e.name, e.datetime, e.description, e.cost, e.num_attendees FROM events e JOIN interestevents ie ON ie.eid = e.eid JOIN userinterests ui ON ui.iid = ie.iid WHERE ui.uid = $1 AND e.datetime > now() ORDER BY e.datetime`,
		uid,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list events for user %d", uid)
	}
	defer rows.Close()
	return scanFeedEvents(rows)
}

// SeedEvents bulk-loads validated rows for one interest using COPY, then
// links them in a single multi-row insert.
func (s *PostgresStore) SeedEvents(ctx context.Context, iid int64, eventRows []model.EventRow) (int, error) {
	if len(eventRows) == 0 {
		return 0, nil
	}

	copyRows := make([][]any, 0, len(eventRows))
	eids := make([]string, 0, len(eventRows))
	for i, row := range eventRows {
		if err := row.Validate(); err != nil {
			return 0, eris.Wrapf(err, "postgres: seed row %d", i)
		}
		start, err := row.Start()
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: seed row %d", i)
		}
		eid := uuid.New().String()
		eids = append(eids, eid)
		copyRows = append(copyRows, []any{eid, row.Name, start, row.Description, row.Cost, row.NumAttendees})
	}

	n, err := db.CopyFrom(ctx, s.pool, "events",
		[]string{"eid", "name", "datetime", "description", "cost", "num_attendees"},
		copyRows,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: seed events")
	}

	for _, eid := range eids {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO interestevents (iid, eid) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			iid, eid,
		); err != nil {
			return 0, eris.Wrap(err, "postgres: link seeded event")
		}
	}
	return int(n), nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user model.User) (int64, error) {
	var uid int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, password, total_seen, total_accepted) VALUES ($1, $2, $3, $4, $5, $6) RETURNING uid`,
		user.FirstName, user.LastName, user.Email, user.Password, user.TotalSeen, user.TotalAccepted,
	).Scan(&uid)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: create user %s", user.Email)
	}
	return uid, nil
}

// ReplaceUserInterests swaps a user's interest set atomically: the old
// links and the new ones never coexist with a partial state.
func (s *PostgresStore) ReplaceUserInterests(ctx context.Context, uid int64, iids []int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace interests")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM userinterests WHERE uid = $1`, uid); err != nil {
		return eris.Wrapf(err, "postgres: clear interests for user %d", uid)
	}

	for _, iid := range iids {
		if _, err := tx.Exec(ctx,
			`INSERT INTO userinterests (uid, iid) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			uid, iid,
		); err != nil {
			return eris.Wrapf(err, "postgres: add interest %d for user %d", iid, uid)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace interests")
}

func scanFeedEvents(rows pgx.Rows) ([]model.FeedEvent, error) {
	var events []model.FeedEvent
	for rows.Next() {
		var ev model.FeedEvent
		if err := rows.Scan(&ev.EID, &ev.InterestID, &ev.Name, &ev.Datetime, &ev.Description, &ev.Cost, &ev.NumAttendees); err != nil {
			return nil, eris.Wrap(err, "postgres: scan event")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "postgres: iterate events")
}
