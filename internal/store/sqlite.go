package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-update/internal/weather"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id           TEXT PRIMARY KEY,
		location_key TEXT NOT NULL,
		captured_at  INTEGER NOT NULL,
		location     TEXT NOT NULL,
		data         BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_location ON snapshots(location_key, captured_at)`,
}

// SQLiteStore persists snapshots in their encoded form using the pure Go
// modernc.org/sqlite driver.
type SQLiteStore struct {
	db         *sql.DB
	maxHistory int
	logger     *slog.Logger
}

// NewSQLite opens (or creates) the database at path and applies the schema.
// If maxHistory is <= 0, only the latest snapshot per location is kept.
func NewSQLite(path string, maxHistory int, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sqlite-store")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not set WAL mode", "path", path, "error", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if maxHistory <= 0 {
		maxHistory = 1
	}
	return &SQLiteStore{db: db, maxHistory: maxHistory, logger: logger}, nil
}

// SaveSnapshot stores the snapshot and prunes the location's history.
func (s *SQLiteStore) SaveSnapshot(snapshot *weather.WeatherSnapshot) error {
	if snapshot == nil {
		return errors.New("snapshot is nil")
	}
	data, err := weather.MarshalSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	loc := snapshot.Location()
	locJSON, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}
	key := loc.Key()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO snapshots(id, location_key, captured_at, location, data) VALUES(?,?,?,?,?)`,
		uuid.NewString(), key, snapshot.CapturedAt().UnixNano(), string(locJSON), data,
	); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM snapshots WHERE location_key = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE location_key = ? ORDER BY captured_at DESC LIMIT ?
		)`,
		key, key, s.maxHistory,
	); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return tx.Commit()
}

// GetLatest returns the most recent snapshot for a location key. A row that no
// longer decodes is reported as a *weather.DecodeError so the caller can
// discard it and fetch again.
func (s *SQLiteStore) GetLatest(key string) (*weather.WeatherSnapshot, error) {
	var data []byte
	err := s.db.QueryRow(
		`SELECT data FROM snapshots WHERE location_key = ? ORDER BY captured_at DESC LIMIT 1`,
		key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	snapshot, err := weather.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("stored snapshot for %s: %w", key, err)
	}
	return snapshot, nil
}

// GetRange returns the snapshots for a location key captured between from and
// to (inclusive), oldest first. Rows that no longer decode are skipped and
// logged; the range fails only when nothing in it is readable.
func (s *SQLiteStore) GetRange(key string, from, to time.Time) ([]*weather.WeatherSnapshot, error) {
	rows, err := s.db.Query(
		`SELECT id, data FROM snapshots
		 WHERE location_key = ? AND captured_at BETWEEN ? AND ?
		 ORDER BY captured_at ASC`,
		key, unixNano(from), unixNano(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result  []*weather.WeatherSnapshot
		lastErr error
	)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		snapshot, err := weather.UnmarshalSnapshot(data)
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot", "id", id, "location", key, "error", err)
			lastErr = fmt.Errorf("stored snapshot for %s: %w", key, err)
			continue
		}
		result = append(result, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNotFound
	}
	return result, nil
}

// ListLocations returns the most recently stored location for every key.
func (s *SQLiteStore) ListLocations() ([]weather.Location, error) {
	rows, err := s.db.Query(`SELECT location_key, location FROM snapshots ORDER BY location_key, captured_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]weather.Location, 0)
	var lastKey string
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		if key == lastKey {
			continue
		}
		lastKey = key

		var loc weather.Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return nil, fmt.Errorf("stored location for %s: %w", key, err)
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortLocations(out)
	return out, nil
}

// unixNano clamps t to the range UnixNano can represent so open-ended
// queries such as the zero time still compare correctly.
func unixNano(t time.Time) int64 {
	switch {
	case t.Before(time.Unix(0, math.MinInt64)):
		return math.MinInt64
	case t.After(time.Unix(0, math.MaxInt64)):
		return math.MaxInt64
	}
	return t.UnixNano()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
