// Package store keeps fetched API payloads in a local DuckDB file so the
// dashboard can start without waiting on the network.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// FileName is the database file created inside the data directory.
const FileName = "snapshots.duckdb"

type DB struct {
	conn    *sql.DB
	dataDir string
	logger  *slog.Logger
}

// SnapshotInfo describes one stored payload.
type SnapshotInfo struct {
	Dataset   string    `json:"dataset"`
	Scope     string    `json:"scope"`
	FetchedAt time.Time `json:"fetchedAt"`
	Bytes     int       `json:"bytes"`
}

// NewDB opens (creating when needed) the snapshot database in dataDir.
func NewDB(dataDir string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, FileName)

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		logger.Error("Failed to open DuckDB database", "error", err, "db_path", dbPath)
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	d := &DB{conn: conn, dataDir: dataDir, logger: logger}
	if err := d.createTables(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) createTables() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			dataset VARCHAR NOT NULL,
			scope VARCHAR NOT NULL,
			payload VARCHAR NOT NULL,
			fetched_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (dataset, scope)
		)
	`)
	if err != nil {
		d.logger.Error("Failed to create snapshots table", "error", err)
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// SaveSnapshot stores payload for dataset and scope, replacing any older one.
func (d *DB) SaveSnapshot(dataset, scope string, payload []byte, at time.Time) error {
	query := `
		INSERT INTO snapshots (dataset, scope, payload, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (dataset, scope) DO UPDATE SET
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at,
			created_at = CURRENT_TIMESTAMP
	`

	_, err := d.conn.Exec(query, dataset, scope, string(payload), at.UTC())
	if err != nil {
		d.logger.Error("Failed to save snapshot", "error", err, "dataset", dataset, "scope", scope)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	d.logger.Info("Saved snapshot", "dataset", dataset, "scope", scope, "bytes", len(payload))
	return nil
}

// LoadSnapshot returns the payload stored for dataset and scope. A missing
// snapshot, or one older than maxAge, is reported as sql.ErrNoRows.
func (d *DB) LoadSnapshot(dataset, scope string, maxAge time.Duration) ([]byte, time.Time, error) {
	query := `
		SELECT payload, fetched_at
		FROM snapshots
		WHERE dataset = $1 AND scope = $2
	`

	var payload string
	var fetchedAt time.Time
	err := d.conn.QueryRow(query, dataset, scope).Scan(&payload, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, err
		}
		d.logger.Error("Failed to load snapshot", "error", err, "dataset", dataset, "scope", scope)
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if time.Since(fetchedAt) > maxAge {
		return nil, time.Time{}, fmt.Errorf("snapshot expired: %w", sql.ErrNoRows)
	}

	d.logger.Info("Loaded snapshot", "dataset", dataset, "scope", scope, "age_minutes", int(time.Since(fetchedAt).Minutes()))
	return []byte(payload), fetchedAt, nil
}

// ListSnapshots returns every stored snapshot, newest first.
func (d *DB) ListSnapshots() ([]SnapshotInfo, error) {
	rows, err := d.conn.Query(`
		SELECT dataset, scope, length(payload), fetched_at
		FROM snapshots
		ORDER BY fetched_at DESC, dataset, scope
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var s SnapshotInfo
		var size int64
		if err := rows.Scan(&s.Dataset, &s.Scope, &size, &s.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Bytes = int(size)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return out, nil
}

// ClearSnapshots deletes every snapshot and returns how many there were.
func (d *DB) ClearSnapshots() (int64, error) {
	res, err := d.conn.Exec(`DELETE FROM snapshots`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}
	n, _ := res.RowsAffected()
	d.logger.Info("Cleared snapshots", "count", n)
	return n, nil
}
