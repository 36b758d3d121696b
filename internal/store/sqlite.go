// Package store persists per-tick market history to SQLite and exports it to
// Parquet files for offline analysis.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"marketsim/internal/domain"
	"marketsim/internal/engine"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ engine.Sink = (*TickStore)(nil)

// TickRecord is one row of recorded tick history. The same struct doubles as
// the Parquet on-disk schema for exports.
type TickRecord struct {
	ID          int64   `parquet:"id" json:"id"`
	Timestamp   int64   `parquet:"timestamp,timestamp(millisecond)" json:"timestamp"` // Unix ms
	Price       float64 `parquet:"price" json:"price"`
	TotalAssets float64 `parquet:"total_assets" json:"totalAssets"`
	TotalCash   float64 `parquet:"total_cash" json:"totalCash"`
	AgentCount  int64   `parquet:"agent_count" json:"agentCount"`
}

// TickStore records one row per published snapshot in a SQLite database. It
// plugs into the engine as a snapshot sink.
type TickStore struct {
	db  *sql.DB
	log *slog.Logger

	now func() time.Time
}

// NewTickStore opens (or creates) a SQLite database at dbPath, runs the
// schema migration, and returns a ready-to-use TickStore.
func NewTickStore(dbPath string, logger *slog.Logger) (*TickStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dbPath, err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS ticks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp    INTEGER NOT NULL,
		price        REAL    NOT NULL,
		total_assets REAL    NOT NULL,
		total_cash   REAL    NOT NULL,
		agent_count  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ticks_timestamp ON ticks (timestamp);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite %s: %w", dbPath, err)
	}

	return &TickStore{db: db, log: logger, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *TickStore) Close() error {
	return s.db.Close()
}

// Publish records the snapshot as a tick row. Errors are logged, not
// returned: a broken recorder must never stall the engine.
func (s *TickStore) Publish(snap *domain.MarketSnapshot) {
	_, err := s.db.Exec(
		`INSERT INTO ticks (timestamp, price, total_assets, total_cash, agent_count)
		 VALUES (?, ?, ?, ?, ?)`,
		s.now().UnixMilli(),
		snap.Price,
		snap.Config.CurrentTotalAssets,
		snap.Config.CurrentTotalCash,
		int64(len(snap.Agents)),
	)
	if err != nil {
		s.log.Warn("failed to record tick", "error", err)
	}
}

// History returns the most recent tick rows, oldest first, up to limit.
// A non-positive limit returns the full history.
func (s *TickStore) History(ctx context.Context, limit int) ([]TickRecord, error) {
	query := `SELECT id, timestamp, price, total_assets, total_cash, agent_count
	          FROM ticks ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ticks: %w", err)
	}
	defer rows.Close()

	var records []TickRecord
	for rows.Next() {
		var r TickRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Price, &r.TotalAssets, &r.TotalCash, &r.AgentCount); err != nil {
			return nil, fmt.Errorf("scanning tick row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The query walks newest-first to apply the limit; flip back to
	// chronological order for callers.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
