package domain

import "time"

// Backtest engines exposed by the backend. The panel only selects one
// and forwards the config; the simulation itself runs server-side.
const (
	EngineStandard   = "standard"
	EngineSmartMoney = "smart-money"
	EngineBuySurge   = "buy-surge"
	EngineBacktrade4 = "backtrade4"
)

// KnownEngine reports whether the backend exposes the given engine.
func KnownEngine(engine string) bool {
	switch engine {
	case EngineStandard, EngineSmartMoney, EngineBuySurge, EngineBacktrade4:
		return true
	}
	return false
}

// BacktestConfig is the run configuration sent to the backend.
// Threshold fields share the calculator's percent conventions.
type BacktestConfig struct {
	Engine         string    `json:"engine"`
	Symbol         string    `json:"symbol"`
	Interval       string    `json:"interval"`
	StartTime      int64     `json:"start_time"`
	EndTime        int64     `json:"end_time"`
	InitialBalance float64   `json:"initial_balance"`
	EntryOffsetPct float64   `json:"entry_pct_chg"`
	StopLossPct    float64   `json:"loss_threshold"`
	TakeProfitPct  float64   `json:"profit_threshold"`
	Direction      Direction `json:"order_type"`

	// Engine-specific knobs, ignored by engines that do not use them.
	SurgePct    float64 `json:"surge_pct,omitempty"`    // buy-surge trigger
	LookbackMin int     `json:"lookback_min,omitempty"` // smart-money window
}

// BacktestResult carries the statistics the backend computed. The panel
// displays them as-is and never recomputes any of them.
type BacktestResult struct {
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRatePct   float64 `json:"win_rate_pct"`
	FinalBalance float64 `json:"final_balance"`
	ProfitPct    float64 `json:"profit_pct"`
	MaxDrawdown  float64 `json:"max_drawdown_pct"`
}

// BacktestRun is a locally persisted record of a launched run.
type BacktestRun struct {
	ID        string         `json:"id"`
	Config    BacktestConfig `json:"config"`
	Result    BacktestResult `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}
