package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/campusmeet/planner-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Datetimes are
// stored as RFC 3339 UTC strings so range comparisons work textually.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS interests (
	iid           INTEGER PRIMARY KEY AUTOINCREMENT,
	interest      TEXT NOT NULL UNIQUE,
	min_attendees INTEGER NOT NULL DEFAULT 5 CHECK (min_attendees > 0)
);

CREATE TABLE IF NOT EXISTS users (
	uid            INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL,
	email          TEXT NOT NULL UNIQUE,
	password       TEXT NOT NULL,
	total_seen     INTEGER NOT NULL DEFAULT 0 CHECK (total_seen >= 0),
	total_accepted INTEGER NOT NULL DEFAULT 0 CHECK (total_accepted >= 0 AND total_accepted <= total_seen)
);

CREATE TABLE IF NOT EXISTS userinterests (
	uid INTEGER NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	iid INTEGER NOT NULL REFERENCES interests(iid) ON DELETE CASCADE,
	PRIMARY KEY (uid, iid)
);

CREATE TABLE IF NOT EXISTS events (
	eid           TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	datetime      TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	cost          REAL NOT NULL DEFAULT 0 CHECK (cost >= 0),
	num_attendees INTEGER NOT NULL DEFAULT 0 CHECK (num_attendees >= 0)
);

CREATE TABLE IF NOT EXISTS interestevents (
	iid INTEGER NOT NULL REFERENCES interests(iid) ON DELETE CASCADE,
	eid TEXT NOT NULL REFERENCES events(eid) ON DELETE CASCADE,
	PRIMARY KEY (iid, eid)
);

CREATE INDEX IF NOT EXISTS idx_events_datetime ON events(datetime);
CREATE INDEX IF NOT EXISTS idx_userinterests_iid ON userinterests(iid);
CREATE INDEX IF NOT EXISTS idx_interestevents_eid ON interestevents(eid);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *SQLiteStore) ListInterests(ctx context.Context) ([]model.Interest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.iid, i.interest, i.min_attendees,
			(SELECT count(*) FROM userinterests ui WHERE ui.iid = i.iid),
			(SELECT count(*) FROM interestevents ie WHERE ie.iid = i.iid)
		 FROM interests i ORDER BY i.iid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list interests")
	}
	defer rows.Close()

	var interests []model.Interest
	for rows.Next() {
		var in model.Interest
		if err := rows.Scan(&in.ID, &in.Name, &in.MinAttendees, &in.UserCount, &in.EventCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan interest")
		}
		interests = append(interests, in)
	}
	return interests, eris.Wrap(rows.Err(), "sqlite: iterate interests")
}

func (s *SQLiteStore) GetInterestByName(ctx context.Context, name string) (*model.Interest, error) {
	var in model.Interest
	err := s.db.QueryRowContext(ctx,
		`SELECT iid, interest, min_attendees FROM interests WHERE interest = ?`,
		name,
	).Scan(&in.ID, &in.Name, &in.MinAttendees)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get interest %s", name)
	}
	return &in, nil
}

func (s *SQLiteStore) EnsureInterest(ctx context.Context, name string, minAttendees int) (int64, error) {
	if minAttendees <= 0 {
		minAttendees = 5
	}
	var iid int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO interests (interest, min_attendees) VALUES (?, ?) ON CONFLICT (interest) DO UPDATE SET min_attendees = excluded.min_attendees RETURNING iid`,
		name, minAttendees,
	).Scan(&iid)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: ensure interest %s", name)
	}
	return iid, nil
}

func (s *SQLiteStore) UserStatsForInterest(ctx context.Context, iid int64) ([]model.UserStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.total_seen, u.total_accepted FROM users u JOIN userinterests ui ON ui.uid = u.uid WHERE ui.iid = ?`,
		iid,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: user stats for interest %d", iid)
	}
	defer rows.Close()

	var stats []model.UserStats
	for rows.Next() {
		var st model.UserStats
		if err := rows.Scan(&st.TotalSeen, &st.TotalAccepted); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan user stats")
		}
		stats = append(stats, st)
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: iterate user stats")
}

func (s *SQLiteStore) CountFutureEvents(ctx context.Context, iid int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM events e JOIN interestevents ie ON ie.eid = e.eid WHERE ie.iid = ? AND e.datetime > ?`,
		iid, nowUTC(),
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: count future events for interest %d", iid)
	}
	return n, nil
}

func (s *SQLiteStore) ListFutureEvents(ctx context.Context, iid int64) ([]model.ExistingEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.name, e.datetime FROM events e JOIN interestevents ie ON ie.eid = e.eid WHERE ie.iid = ? AND e.datetime > ? ORDER BY e.datetime`,
		iid, nowUTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list future events for interest %d", iid)
	}
	defer rows.Close()

	var events []model.ExistingEvent
	for rows.Next() {
		var ev model.ExistingEvent
		if err := rows.Scan(&ev.Name, &ev.Datetime); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan future event")
		}
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: iterate future events")
}

func (s *SQLiteStore) InsertPlannedEvent(ctx context.Context, iid int64, row model.EventRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", eris.Wrap(err, "sqlite: insert planned event")
	}
	start, err := row.Start()
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert planned event")
	}

	eid := uuid.New().String()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin insert planned event")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (eid, name, datetime, description, cost, num_attendees) VALUES (?, ?, ?, ?, ?, ?)`,
		eid, row.Name, start.UTC().Format(time.RFC3339), row.Description, row.Cost, row.NumAttendees,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert event")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO interestevents (iid, eid) VALUES (?, ?)`,
		iid, eid,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: link event to interest")
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit planned event")
	}
	return eid, nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context, limit int) ([]model.FeedEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.eid, coalesce(ie.iid, 0), e.name, e.datetime, e.description, e.cost, e.num_attendees FROM events e LEFT JOIN interestevents ie ON ie.eid = e.eid ORDER BY e.datetime LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list events")
	}
	defer rows.Close()
	return scanSQLiteFeedEvents(rows)
}

func (s *SQLiteStore) GetEvent(ctx context.Context, eid string) (*model.FeedEvent, error) {
	var ev model.FeedEvent
	var dt string
	err := s.db.QueryRowContext(ctx,
		`SELECT e.eid, coalesce(ie.iid, 0), e.name, e.datetime, e.description, e.cost, e.num_attendees FROM events e LEFT JOIN interestevents ie ON ie.eid = e.eid WHERE e.eid = ?`,
		eid,
	).Scan(&ev.EID, &ev.InterestID, &ev.Name, &dt, &ev.Description, &ev.Cost, &ev.NumAttendees)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get event %s", eid)
	}
	if ev.Datetime, err = time.Parse(time.RFC3339, dt); err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse datetime for event %s", eid)
	}
	return &ev, nil
}

func (s *SQLiteStore) ListEventsForUser(ctx context.Context, uid int64) ([]model.FeedEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.eid, ie.iid, e.name, e.datetime, e.description, e.cost, e.num_attendees FROM events e JOIN interestevents ie ON ie.eid = e.eid JOIN userinterests ui ON ui.iid = ie.iid WHERE ui.uid = ? AND e.datetime > ? ORDER BY e.datetime`,
		uid, nowUTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list events for user %d", uid)
	}
	defer rows.Close()
	return scanSQLiteFeedEvents(rows)
}

// SeedEvents loads rows in a single transaction. SQLite has no COPY
// protocol; batched inserts inside one transaction are the equivalent.
func (s *SQLiteStore) SeedEvents(ctx context.Context, iid int64, eventRows []model.EventRow) (int, error) {
	if len(eventRows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin seed")
	}
	defer tx.Rollback() //nolint:errcheck

	for i, row := range eventRows {
		if err := row.Validate(); err != nil {
			return 0, eris.Wrapf(err, "sqlite: seed row %d", i)
		}
		start, err := row.Start()
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: seed row %d", i)
		}
		eid := uuid.New().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (eid, name, datetime, description, cost, num_attendees) VALUES (?, ?, ?, ?, ?, ?)`,
			eid, row.Name, start.UTC().Format(time.RFC3339), row.Description, row.Cost, row.NumAttendees,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: seed row %d", i)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO interestevents (iid, eid) VALUES (?, ?)`,
			iid, eid,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: link seed row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit seed")
	}
	return len(eventRows), nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user model.User) (int64, error) {
	var uid int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password, total_seen, total_accepted) VALUES (?, ?, ?, ?, ?, ?) RETURNING uid`,
		user.FirstName, user.LastName, user.Email, user.Password, user.TotalSeen, user.TotalAccepted,
	).Scan(&uid)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: create user %s", user.Email)
	}
	return uid, nil
}

func (s *SQLiteStore) ReplaceUserInterests(ctx context.Context, uid int64, iids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace interests")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM userinterests WHERE uid = ?`, uid); err != nil {
		return eris.Wrapf(err, "sqlite: clear interests for user %d", uid)
	}

	for _, iid := range iids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO userinterests (uid, iid) VALUES (?, ?)`,
			uid, iid,
		); err != nil {
			return eris.Wrapf(err, "sqlite: add interest %d for user %d", iid, uid)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace interests")
}

func scanSQLiteFeedEvents(rows *sql.Rows) ([]model.FeedEvent, error) {
	var events []model.FeedEvent
	for rows.Next() {
		var ev model.FeedEvent
		var dt string
		if err := rows.Scan(&ev.EID, &ev.InterestID, &ev.Name, &dt, &ev.Description, &ev.Cost, &ev.NumAttendees); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		parsed, err := time.Parse(time.RFC3339, dt)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse datetime for event %s", ev.EID)
		}
		ev.Datetime = parsed
		events = append(events, ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: iterate events")
}
