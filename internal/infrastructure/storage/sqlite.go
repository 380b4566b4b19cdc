package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/crypto_order_panel/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS calc_presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			symbol TEXT NOT NULL,
			entry_pct_chg REAL NOT NULL,
			loss_threshold REAL NOT NULL,
			profit_threshold REAL NOT NULL,
			order_type TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS order_tickets (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			order_type TEXT NOT NULL,
			qty REAL NOT NULL,
			reference_price REAL NOT NULL,
			entry_price REAL NOT NULL,
			stop_loss_price REAL NOT NULL,
			take_profit_price REAL NOT NULL,
			backend_order_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_order_tickets_symbol ON order_tickets(symbol);`,
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id TEXT PRIMARY KEY,
			engine TEXT NOT NULL,
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			initial_balance REAL NOT NULL,
			entry_pct_chg REAL NOT NULL,
			loss_threshold REAL NOT NULL,
			profit_threshold REAL NOT NULL,
			order_type TEXT NOT NULL,
			trades INTEGER NOT NULL,
			wins INTEGER NOT NULL,
			losses INTEGER NOT NULL,
			win_rate_pct REAL NOT NULL,
			final_balance REAL NOT NULL,
			profit_pct REAL NOT NULL,
			max_drawdown_pct REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	// Migration: engine knobs added after the first schema version.
	_, _ = s.db.Exec(`ALTER TABLE backtest_runs ADD COLUMN surge_pct REAL NOT NULL DEFAULT 0`)
	_, _ = s.db.Exec(`ALTER TABLE backtest_runs ADD COLUMN lookback_min INTEGER NOT NULL DEFAULT 0`)

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PresetRepository implementation

func (s *SQLiteStore) SavePreset(ctx context.Context, preset *domain.CalcPreset) error {
	query := `INSERT INTO calc_presets (id, name, symbol, entry_pct_chg, loss_threshold, profit_threshold, order_type, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		preset.ID, preset.Name, preset.Symbol, preset.EntryOffsetPct,
		preset.StopLossPct, preset.TakeProfitPct, string(preset.Direction), preset.CreatedAt)
	return err
}

func (s *SQLiteStore) ListPresets(ctx context.Context) ([]*domain.CalcPreset, error) {
	query := `SELECT id, name, symbol, entry_pct_chg, loss_threshold, profit_threshold, order_type, created_at FROM calc_presets ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*domain.CalcPreset
	for rows.Next() {
		var p domain.CalcPreset
		if err := rows.Scan(&p.ID, &p.Name, &p.Symbol, &p.EntryOffsetPct, &p.StopLossPct, &p.TakeProfitPct, &p.Direction, &p.CreatedAt); err != nil {
			return nil, err
		}
		presets = append(presets, &p)
	}
	return presets, rows.Err()
}

func (s *SQLiteStore) DeletePreset(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM calc_presets WHERE id = ?", id)
	return err
}

// TicketRepository implementation

func (s *SQLiteStore) SaveTicket(ctx context.Context, ticket *domain.OrderTicket) error {
	query := `INSERT INTO order_tickets (id, symbol, order_type, qty, reference_price, entry_price, stop_loss_price, take_profit_price, backend_order_id, status, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		ticket.ID, ticket.Symbol, string(ticket.Direction), ticket.Qty, ticket.ReferencePrice,
		ticket.EntryPrice, ticket.StopLossPrice, ticket.TakeProfitPrice,
		ticket.BackendOrderID, ticket.Status, ticket.CreatedAt)
	return err
}

func (s *SQLiteStore) GetTicket(ctx context.Context, id string) (*domain.OrderTicket, error) {
	query := `SELECT id, symbol, order_type, qty, reference_price, entry_price, stop_loss_price, take_profit_price, backend_order_id, status, created_at FROM order_tickets WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	var t domain.OrderTicket
	err := row.Scan(&t.ID, &t.Symbol, &t.Direction, &t.Qty, &t.ReferencePrice, &t.EntryPrice, &t.StopLossPrice, &t.TakeProfitPrice, &t.BackendOrderID, &t.Status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) ListTickets(ctx context.Context, limit int) ([]*domain.OrderTicket, error) {
	query := `SELECT id, symbol, order_type, qty, reference_price, entry_price, stop_loss_price, take_profit_price, backend_order_id, status, created_at FROM order_tickets ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*domain.OrderTicket
	for rows.Next() {
		var t domain.OrderTicket
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Direction, &t.Qty, &t.ReferencePrice, &t.EntryPrice, &t.StopLossPrice, &t.TakeProfitPrice, &t.BackendOrderID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

func (s *SQLiteStore) UpdateTicketStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE order_tickets SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BacktestRepository implementation

func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.BacktestRun) error {
	query := `INSERT INTO backtest_runs (id, engine, symbol, interval, start_time, end_time, initial_balance, entry_pct_chg, loss_threshold, profit_threshold, order_type, surge_pct, lookback_min, trades, wins, losses, win_rate_pct, final_balance, profit_pct, max_drawdown_pct, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Config.Engine, run.Config.Symbol, run.Config.Interval,
		run.Config.StartTime, run.Config.EndTime, run.Config.InitialBalance,
		run.Config.EntryOffsetPct, run.Config.StopLossPct, run.Config.TakeProfitPct,
		string(run.Config.Direction), run.Config.SurgePct, run.Config.LookbackMin,
		run.Result.Trades, run.Result.Wins, run.Result.Losses, run.Result.WinRatePct,
		run.Result.FinalBalance, run.Result.ProfitPct, run.Result.MaxDrawdown, run.CreatedAt)
	return err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*domain.BacktestRun, error) {
	query := `SELECT id, engine, symbol, interval, start_time, end_time, initial_balance, entry_pct_chg, loss_threshold, profit_threshold, order_type, surge_pct, lookback_min, trades, wins, losses, win_rate_pct, final_balance, profit_pct, max_drawdown_pct, created_at FROM backtest_runs ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.BacktestRun
	for rows.Next() {
		var r domain.BacktestRun
		if err := rows.Scan(&r.ID, &r.Config.Engine, &r.Config.Symbol, &r.Config.Interval,
			&r.Config.StartTime, &r.Config.EndTime, &r.Config.InitialBalance,
			&r.Config.EntryOffsetPct, &r.Config.StopLossPct, &r.Config.TakeProfitPct,
			&r.Config.Direction, &r.Config.SurgePct, &r.Config.LookbackMin,
			&r.Result.Trades, &r.Result.Wins, &r.Result.Losses, &r.Result.WinRatePct,
			&r.Result.FinalBalance, &r.Result.ProfitPct, &r.Result.MaxDrawdown, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
