package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"stock-watch/internal/market"
)

type Store struct {
	db *sql.DB
}

// QuoteSnapshot is one quote as the watchlist displayed it at TS.
type QuoteSnapshot struct {
	TS            int64   `json:"ts"`
	Code          string  `json:"code"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	PercentChange float64 `json:"percent_change"`
	Change        float64 `json:"change"`
	Volume        float64 `json:"volume"`
	Amount        float64 `json:"amount"`
	Raw           string  `json:"raw"`
	CreatedAt     string  `json:"created_at"`
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quote_snapshot (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			code TEXT,
			title TEXT,
			price REAL,
			percent_change REAL,
			change REAL,
			volume REAL,
			amount REAL,
			raw TEXT,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_snapshot_ts ON quote_snapshot(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_snapshot_code ON quote_snapshot(code);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Record stores one batch of quotes in a single transaction.
func (s *Store) Record(ctx context.Context, quotes []market.Quote, at time.Time) error {
	if s == nil || s.db == nil || len(quotes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quote_snapshot (ts, code, title, price, percent_change, change, volume, amount, raw, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	createdAt := time.Now().Format(time.RFC3339)
	for _, q := range quotes {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", q.Code, err)
		}
		if _, err := stmt.ExecContext(ctx, at.Unix(), q.Code, q.Title, q.Price, q.PercentChange, q.Change, q.Volume, q.Amount, string(raw), createdAt); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", q.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}

func (s *Store) QuerySnapshots(code string, limit int, offset int) ([]QuoteSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(
		`SELECT ts, code, title, price, percent_change, change, volume, amount, raw, created_at
		FROM quote_snapshot WHERE code = ?
		ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?`,
		code, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query quote snapshot: %w", err)
	}
	defer rows.Close()

	var out []QuoteSnapshot
	for rows.Next() {
		var qs QuoteSnapshot
		if err := rows.Scan(&qs.TS, &qs.Code, &qs.Title, &qs.Price, &qs.PercentChange, &qs.Change, &qs.Volume, &qs.Amount, &qs.Raw, &qs.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote snapshot: %w", err)
		}
		out = append(out, qs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows quote snapshot: %w", err)
	}
	return out, nil
}
