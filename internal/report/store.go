package report

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stock-trader-go/internal/performance"
)

// Run is everything persisted about one (ticker, strategy, capital) backtest.
type Run struct {
	Ticker   string
	Strategy string
	Capital  float64
	Stats    performance.Stats
	History  performance.History
	Trades   int
	Created  time.Time
}

// Store persists finished runs.
type Store interface {
	SaveRun(ctx context.Context, run Run) (int64, error)
	Close() error
}

// NoopStore is used when no database path is configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (NoopStore) SaveRun(context.Context, Run) (int64, error) { return 0, nil }
func (NoopStore) Close() error                                { return nil }

// SQLiteStore writes runs and their equity curves to SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			created           INTEGER NOT NULL,
			ticker            TEXT NOT NULL,
			strategy          TEXT NOT NULL,
			initial_capital   REAL,
			annualized_return REAL,
			sharpe_ratio      REAL,
			max_drawdown      REAL,
			final_value       REAL,
			trades            INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker)`,

		`CREATE TABLE IF NOT EXISTS equity_points (
			run_id    INTEGER NOT NULL REFERENCES runs(id),
			timestamp INTEGER NOT NULL,
			value     REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equity_run ON equity_points(run_id, timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveRun inserts the run row and its equity curve in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := run.Created
	if created.IsZero() {
		created = time.Now()
	}
	final := 0.0
	if n := len(run.History); n > 0 {
		final = run.History[n-1].Value
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs
		(created, ticker, strategy, initial_capital, annualized_return, sharpe_ratio, max_drawdown, final_value, trades)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		created.Unix(), run.Ticker, run.Strategy, run.Capital,
		run.Stats.AnnualizedReturn, run.Stats.SharpeRatio, run.Stats.MaxDrawdown,
		final, run.Trades,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO equity_points (run_id, timestamp, value) VALUES (?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, item := range run.History {
		if _, err := stmt.ExecContext(ctx, id, item.Time.Unix(), item.Value); err != nil {
			return 0, fmt.Errorf("insert equity point: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// EquityCurve reads back the stored curve for a run.
func (s *SQLiteStore) EquityCurve(ctx context.Context, runID int64) (performance.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, value FROM equity_points WHERE run_id = ? ORDER BY timestamp`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var h performance.History
	for rows.Next() {
		var (
			ts    int64
			value float64
		)
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, err
		}
		h = append(h, performance.HistoryItem{Time: time.Unix(ts, 0).UTC(), Value: value})
	}
	return h, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
