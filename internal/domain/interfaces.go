package domain

import "context"

// Backend defines the request/response contract of the remote trading
// backend. Backtests, positions, execution and statistics all live on
// the other side of this interface; the panel never simulates them.
type Backend interface {
	// Market data
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
	GetTopGainers(ctx context.Context, limit int) ([]GainerRow, error)

	// Account and positions
	GetAccount(ctx context.Context) (*AccountBalance, error)
	GetPositions(ctx context.Context) ([]*Position, error)

	// Orders
	PlaceOrder(ctx context.Context, ticket *OrderTicket) (backendOrderID string, err error)
	CancelOrder(ctx context.Context, backendOrderID string) error

	// Bot control
	StartBot(ctx context.Context, strategy string) error
	StopBot(ctx context.Context) error
	GetBotStatus(ctx context.Context) (*BotStatus, error)

	// Backtests
	RunBacktest(ctx context.Context, cfg *BacktestConfig) (*BacktestResult, error)

	// Live ticker stream
	OnPriceUpdate(callback func(symbol string, price float64))
	OnDisconnect(callback func())
	Subscribe(symbols []string) error
}

// PresetRepository stores saved calculator configurations.
type PresetRepository interface {
	SavePreset(ctx context.Context, preset *CalcPreset) error
	ListPresets(ctx context.Context) ([]*CalcPreset, error)
	DeletePreset(ctx context.Context, id string) error
}

// TicketRepository stores submitted order tickets.
type TicketRepository interface {
	SaveTicket(ctx context.Context, ticket *OrderTicket) error
	GetTicket(ctx context.Context, id string) (*OrderTicket, error)
	ListTickets(ctx context.Context, limit int) ([]*OrderTicket, error)
	UpdateTicketStatus(ctx context.Context, id, status string) error
}

// BacktestRepository stores launched backtest runs and their stats.
type BacktestRepository interface {
	SaveRun(ctx context.Context, run *BacktestRun) error
	ListRuns(ctx context.Context, limit int) ([]*BacktestRun, error)
}
