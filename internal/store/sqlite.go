package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geofencer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS regions (
	id         TEXT PRIMARY KEY,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	radius_m   REAL NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	region_id   TEXT NOT NULL,
	latitude    REAL NOT NULL,
	longitude   REAL NOT NULL,
	radius_m    REAL NOT NULL,
	speed       REAL NOT NULL DEFAULT -1,
	course      REAL NOT NULL DEFAULT -1,
	error       TEXT,
	occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_region_id ON events(region_id);
CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRegion upserts a region by id.
func (s *SQLiteStore) SaveRegion(ctx context.Context, r model.Region) error {
	if err := r.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO regions (id, latitude, longitude, radius_m, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   latitude = excluded.latitude,
		   longitude = excluded.longitude,
		   radius_m = excluded.radius_m,
		   updated_at = excluded.updated_at`,
		r.ID, r.Center.Latitude, r.Center.Longitude, r.Radius, now, now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save region %s", r.ID)
	}
	return nil
}

func (s *SQLiteStore) ListRegions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, latitude, longitude, radius_m FROM regions ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list regions")
	}
	defer rows.Close()

	var regions []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Center.Latitude, &r.Center.Longitude, &r.Radius); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan region")
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate regions")
	}
	return regions, nil
}

func (s *SQLiteStore) DeleteRegion(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, id)
	return eris.Wrapf(err, "sqlite: delete region %s", id)
}

func (s *SQLiteStore) DeleteAllRegions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM regions`)
	return eris.Wrap(err, "sqlite: delete all regions")
}

func (s *SQLiteStore) InsertEvent(ctx context.Context, ev model.Event) error {
	var errText sql.NullString
	if ev.Error != "" {
		errText = sql.NullString{String: ev.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, type, region_id, latitude, longitude, radius_m, speed, course, error, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Type), ev.Region.ID,
		ev.Region.Center.Latitude, ev.Region.Center.Longitude, ev.Region.Radius,
		ev.Speed, ev.Course, errText, ev.OccurredAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert event %s", ev.ID)
}

func (s *SQLiteStore) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	query := `SELECT id, type, region_id, latitude, longitude, radius_m, speed, course, error, occurred_at
		FROM events WHERE 1=1`
	var args []any

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.RegionID != "" {
		query += ` AND region_id = ?`
		args = append(args, filter.RegionID)
	}
	query += ` ORDER BY occurred_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate events")
	}
	return events, nil
}

// rowScanner covers both *sql.Rows and pgx.Rows for event scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var ev model.Event
	var typ string
	var errText sql.NullString
	if err := row.Scan(
		&ev.ID, &typ, &ev.Region.ID,
		&ev.Region.Center.Latitude, &ev.Region.Center.Longitude, &ev.Region.Radius,
		&ev.Speed, &ev.Course, &errText, &ev.OccurredAt,
	); err != nil {
		return model.Event{}, eris.Wrap(err, "store: scan event")
	}
	ev.Type = model.EventType(typ)
	if errText.Valid {
		ev.Error = errText.String
	}
	return ev, nil
}
