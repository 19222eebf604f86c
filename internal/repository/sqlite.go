package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/arrayops/telescopecm/internal/model"
	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// schema contains the DDL executed on every open. IF NOT EXISTS makes it safe
// to run against an existing database.
const schema = `
CREATE TABLE IF NOT EXISTS parts (
    pn                  TEXT PRIMARY KEY,
    part_type           TEXT NOT NULL,
    manufacturer_number TEXT NOT NULL DEFAULT '',
    start_gps           INTEGER NOT NULL,
    stop_gps            INTEGER
);

CREATE TABLE IF NOT EXISTS connections (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    up_part   TEXT NOT NULL,
    up_port   TEXT NOT NULL,
    down_part TEXT NOT NULL,
    down_port TEXT NOT NULL,
    start_gps INTEGER NOT NULL,
    stop_gps  INTEGER,
    UNIQUE(up_part, up_port, down_part, down_port, start_gps)
);

CREATE TABLE IF NOT EXISTS part_info (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    pn         TEXT NOT NULL,
    posted_gps INTEGER NOT NULL,
    comment    TEXT NOT NULL,
    reference  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS apriori_status (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    antenna   TEXT NOT NULL,
    status    TEXT NOT NULL,
    start_gps INTEGER NOT NULL,
    stop_gps  INTEGER,
    UNIQUE(antenna, start_gps)
);

CREATE TABLE IF NOT EXISTS stations (
    name        TEXT PRIMARY KEY,
    created_gps INTEGER NOT NULL,
    easting     REAL NOT NULL,
    northing    REAL NOT NULL,
    elevation   REAL NOT NULL
);
`

// SQLiteStore is a Writer backed by a local SQLite database in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath, enables WAL mode
// and a busy timeout, and creates the schema tables if they do not exist.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("repository: open database: %w", err)
	}

	// SQLite only supports a single writer; one pooled connection avoids
	// SQLITE_BUSY contention between connections that each need their own
	// PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: set busy timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) PartsActiveAt(ctx context.Context, at int64) ([]model.Part, error) {
	const q = `SELECT pn, part_type, manufacturer_number, start_gps, stop_gps
		FROM parts WHERE start_gps <= ? AND (stop_gps IS NULL OR stop_gps > ?) ORDER BY pn`
	return s.queryParts(ctx, q, at, at)
}

func (s *SQLiteStore) ConnectionsActiveAt(ctx context.Context, at int64) ([]model.Connection, error) {
	const q = `SELECT up_part, up_port, down_part, down_port, start_gps, stop_gps
		FROM connections WHERE start_gps <= ? AND (stop_gps IS NULL OR stop_gps > ?) ORDER BY id`
	return s.queryConnections(ctx, q, at, at)
}

func (s *SQLiteStore) InfoPostedBefore(ctx context.Context, at int64) ([]model.PartInfo, error) {
	const q = `SELECT pn, posted_gps, comment, reference
		FROM part_info WHERE posted_gps <= ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, at)
	if err != nil {
		return nil, fmt.Errorf("repository: query part info: %w", err)
	}
	defer rows.Close()

	var result []model.PartInfo
	for rows.Next() {
		var pi model.PartInfo
		if err := rows.Scan(&pi.PN, &pi.PostingTime, &pi.Comment, &pi.Reference); err != nil {
			return nil, fmt.Errorf("repository: scan part info: %w", err)
		}
		result = append(result, pi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: iterate part info: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) StationsCreatedBefore(ctx context.Context, at int64) ([]model.Station, error) {
	const q = `SELECT name, created_gps, easting, northing, elevation
		FROM stations WHERE created_gps <= ? ORDER BY name`
	rows, err := s.db.QueryContext(ctx, q, at)
	if err != nil {
		return nil, fmt.Errorf("repository: query stations: %w", err)
	}
	defer rows.Close()

	var result []model.Station
	for rows.Next() {
		var st model.Station
		if err := rows.Scan(&st.Name, &st.Created, &st.Easting, &st.Northing, &st.Elevation); err != nil {
			return nil, fmt.Errorf("repository: scan station: %w", err)
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: iterate stations: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) AprioriActiveAt(ctx context.Context, at int64) ([]model.AprioriStatus, error) {
	const q = `SELECT antenna, status, start_gps, stop_gps
		FROM apriori_status WHERE start_gps <= ? AND (stop_gps IS NULL OR stop_gps > ?) ORDER BY id`
	return s.queryApriori(ctx, q, at, at)
}

func (s *SQLiteStore) GetPart(ctx context.Context, pn string) (model.Part, bool, error) {
	const q = `SELECT pn, part_type, manufacturer_number, start_gps, stop_gps FROM parts WHERE pn = ?`
	var p model.Part
	var stop sql.NullInt64
	err := s.db.QueryRowContext(ctx, q, strings.ToUpper(pn)).Scan(&p.PN, &p.PartType, &p.ManufacturerNumber, &p.Start, &stop)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Part{}, false, nil
	}
	if err != nil {
		return model.Part{}, false, fmt.Errorf("repository: get part %q: %w", pn, err)
	}
	if stop.Valid {
		p.Stop = &stop.Int64
	}
	return p, true, nil
}

func (s *SQLiteStore) PutPart(ctx context.Context, p model.Part) error {
	const q = `
		INSERT INTO parts (pn, part_type, manufacturer_number, start_gps, stop_gps)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(pn) DO UPDATE SET
			part_type           = excluded.part_type,
			manufacturer_number = excluded.manufacturer_number,
			start_gps           = excluded.start_gps,
			stop_gps            = excluded.stop_gps`
	if _, err := s.db.ExecContext(ctx, q, p.PN, p.PartType, p.ManufacturerNumber, p.Start, nullableInt(p.Stop)); err != nil {
		return fmt.Errorf("repository: put part %q: %w", p.PN, err)
	}
	return nil
}

func (s *SQLiteStore) ConnectionsBetween(ctx context.Context, upstreamPart, upstreamPort, downstreamPart, downstreamPort string) ([]model.Connection, error) {
	const q = `SELECT up_part, up_port, down_part, down_port, start_gps, stop_gps
		FROM connections WHERE up_part = ? AND up_port = ? AND down_part = ? AND down_port = ? ORDER BY start_gps`
	return s.queryConnections(ctx, q,
		strings.ToUpper(upstreamPart), strings.ToLower(upstreamPort),
		strings.ToUpper(downstreamPart), strings.ToLower(downstreamPort))
}

func (s *SQLiteStore) PutConnection(ctx context.Context, c model.Connection) error {
	const q = `INSERT INTO connections (up_part, up_port, down_part, down_port, start_gps, stop_gps)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q,
		c.UpstreamPart, c.UpstreamOutputPort, c.DownstreamPart, c.DownstreamInputPort,
		c.Start, nullableInt(c.Stop)); err != nil {
		return fmt.Errorf("repository: put connection %s: %w", c, err)
	}
	return nil
}

func (s *SQLiteStore) SetConnectionStop(ctx context.Context, c model.Connection, stop *int64) error {
	const q = `UPDATE connections SET stop_gps = ?
		WHERE up_part = ? AND up_port = ? AND down_part = ? AND down_port = ? AND start_gps = ?`
	res, err := s.db.ExecContext(ctx, q, nullableInt(stop),
		c.UpstreamPart, c.UpstreamOutputPort, c.DownstreamPart, c.DownstreamInputPort, c.Start)
	if err != nil {
		return fmt.Errorf("repository: set connection stop %s: %w", c, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: set connection stop rows affected: %w", err)
	}
	if rows == 0 {
		return tcmerrors.NewNotFoundError("connection", c.Identity())
	}
	return nil
}

func (s *SQLiteStore) AppendInfo(ctx context.Context, info model.PartInfo) error {
	const q = `INSERT INTO part_info (pn, posted_gps, comment, reference) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, info.PN, info.PostingTime, info.Comment, info.Reference); err != nil {
		return fmt.Errorf("repository: append info for %q: %w", info.PN, err)
	}
	return nil
}

func (s *SQLiteStore) LatestApriori(ctx context.Context, antenna string) (model.AprioriStatus, bool, error) {
	const q = `SELECT antenna, status, start_gps, stop_gps FROM apriori_status
		WHERE antenna = ? ORDER BY start_gps DESC LIMIT 1`
	var a model.AprioriStatus
	var stop sql.NullInt64
	err := s.db.QueryRowContext(ctx, q, strings.ToUpper(antenna)).Scan(&a.Antenna, &a.Status, &a.Start, &stop)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AprioriStatus{}, false, nil
	}
	if err != nil {
		return model.AprioriStatus{}, false, fmt.Errorf("repository: latest apriori for %q: %w", antenna, err)
	}
	if stop.Valid {
		a.Stop = &stop.Int64
	}
	return a, true, nil
}

func (s *SQLiteStore) SetAprioriStop(ctx context.Context, antenna string, start, stop int64) error {
	const q = `UPDATE apriori_status SET stop_gps = ? WHERE antenna = ? AND start_gps = ?`
	res, err := s.db.ExecContext(ctx, q, stop, strings.ToUpper(antenna), start)
	if err != nil {
		return fmt.Errorf("repository: set apriori stop for %q: %w", antenna, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: set apriori stop rows affected: %w", err)
	}
	if rows == 0 {
		return tcmerrors.NewNotFoundError("apriori status", antenna)
	}
	return nil
}

func (s *SQLiteStore) PutApriori(ctx context.Context, a model.AprioriStatus) error {
	const q = `INSERT INTO apriori_status (antenna, status, start_gps, stop_gps) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, a.Antenna, a.Status, a.Start, nullableInt(a.Stop)); err != nil {
		return fmt.Errorf("repository: put apriori for %q: %w", a.Antenna, err)
	}
	return nil
}

func (s *SQLiteStore) PutStation(ctx context.Context, st model.Station) error {
	const q = `
		INSERT INTO stations (name, created_gps, easting, northing, elevation)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			created_gps = excluded.created_gps,
			easting     = excluded.easting,
			northing    = excluded.northing,
			elevation   = excluded.elevation`
	if _, err := s.db.ExecContext(ctx, q, st.Name, st.Created, st.Easting, st.Northing, st.Elevation); err != nil {
		return fmt.Errorf("repository: put station %q: %w", st.Name, err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryParts(ctx context.Context, query string, args ...any) ([]model.Part, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: query parts: %w", err)
	}
	defer rows.Close()

	var result []model.Part
	for rows.Next() {
		var p model.Part
		var stop sql.NullInt64
		if err := rows.Scan(&p.PN, &p.PartType, &p.ManufacturerNumber, &p.Start, &stop); err != nil {
			return nil, fmt.Errorf("repository: scan part: %w", err)
		}
		if stop.Valid {
			p.Stop = &stop.Int64
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: iterate parts: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) queryConnections(ctx context.Context, query string, args ...any) ([]model.Connection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: query connections: %w", err)
	}
	defer rows.Close()

	var result []model.Connection
	for rows.Next() {
		var c model.Connection
		var stop sql.NullInt64
		if err := rows.Scan(&c.UpstreamPart, &c.UpstreamOutputPort, &c.DownstreamPart, &c.DownstreamInputPort, &c.Start, &stop); err != nil {
			return nil, fmt.Errorf("repository: scan connection: %w", err)
		}
		if stop.Valid {
			c.Stop = &stop.Int64
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: iterate connections: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) queryApriori(ctx context.Context, query string, args ...any) ([]model.AprioriStatus, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: query apriori: %w", err)
	}
	defer rows.Close()

	var result []model.AprioriStatus
	for rows.Next() {
		var a model.AprioriStatus
		var stop sql.NullInt64
		if err := rows.Scan(&a.Antenna, &a.Status, &a.Start, &stop); err != nil {
			return nil, fmt.Errorf("repository: scan apriori: %w", err)
		}
		if stop.Valid {
			a.Stop = &stop.Int64
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: iterate apriori: %w", err)
	}
	return result, nil
}

// nullableInt converts an optional stop time to its SQL representation.
func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
