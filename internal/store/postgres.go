package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geofencer/internal/db"
	"github.com/sells-group/geofencer/internal/model"
)

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to the database at connString.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS regions (
	id         TEXT PRIMARY KEY,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	radius_m   DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	region_id   TEXT NOT NULL,
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	radius_m    DOUBLE PRECISION NOT NULL,
	speed       DOUBLE PRECISION NOT NULL DEFAULT -1,
	course      DOUBLE PRECISION NOT NULL DEFAULT -1,
	error       TEXT,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_region_id ON events(region_id);
CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRegion(ctx context.Context, r model.Region) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO regions (id, latitude, longitude, radius_m, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   latitude = EXCLUDED.latitude,
		   longitude = EXCLUDED.longitude,
		   radius_m = EXCLUDED.radius_m,
		   updated_at = EXCLUDED.updated_at`,
		r.ID, r.Center.Latitude, r.Center.Longitude, r.Radius, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save region %s", r.ID)
	}
	return nil
}

func (s *PostgresStore) ListRegions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, latitude, longitude, radius_m FROM regions ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list regions")
	}
	defer rows.Close()

	var regions []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Center.Latitude, &r.Center.Longitude, &r.Radius); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region")
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate regions")
	}
	return regions, nil
}

func (s *PostgresStore) DeleteRegion(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM regions WHERE id = $1`, id)
	return eris.Wrapf(err, "postgres: delete region %s", id)
}

func (s *PostgresStore) DeleteAllRegions(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM regions`)
	return eris.Wrap(err, "postgres: delete all regions")
}

func (s *PostgresStore) InsertEvent(ctx context.Context, ev model.Event) error {
	var errText sql.NullString
	if ev.Error != "" {
		errText = sql.NullString{String: ev.Error, Valid: true}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, type, region_id, latitude, longitude, radius_m, speed, course, error, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.ID, string(ev.Type), ev.Region.ID,
		ev.Region.Center.Latitude, ev.Region.Center.Longitude, ev.Region.Radius,
		ev.Speed, ev.Course, errText, ev.OccurredAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: insert event %s", ev.ID)
}

func (s *PostgresStore) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	query := `SELECT id, type, region_id, latitude, longitude, radius_m, speed, course, error, occurred_at
		FROM events WHERE 1=1`
	var args []any

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.RegionID != "" {
		args = append(args, filter.RegionID)
		query += fmt.Sprintf(` AND region_id = $%d`, len(args))
	}
	query += ` ORDER BY occurred_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list events")
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
		return nil, eris.Wrap(err, "postgres: iterate events")
	}
	return events, nil
}
