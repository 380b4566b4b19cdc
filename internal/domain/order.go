package domain

import "time"

// Direction is the trade directionality. It governs the sign of every
// offset the calculator applies.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ParseDirection maps a wire value ("long"/"short") to a Direction.
// The bool is false for anything else.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionLong, DirectionShort:
		return Direction(s), true
	}
	return "", false
}

// LevelRequest is the input to the price-level calculator.
// Percent fields are percent-of-100 (1.9 means 1.9%).
type LevelRequest struct {
	ReferencePrice float64   `json:"price"`
	EntryOffsetPct float64   `json:"entry_pct_chg"`
	StopLossPct    float64   `json:"loss_threshold"`
	TakeProfitPct  float64   `json:"profit_threshold"`
	Direction      Direction `json:"order_type"`
}

// Levels holds the three derived price levels at full float64 precision,
// plus the deltas the dashboard displays next to them. Rounding to the
// instrument's tick happens at the presentation boundary only.
type Levels struct {
	EntryPrice      float64 `json:"entry_price"`
	StopLossPrice   float64 `json:"stop_loss_price"`
	TakeProfitPrice float64 `json:"take_profit_price"`

	// Display deltas derived from the levels above.
	EntryDeltaPct float64 `json:"entry_delta_pct"` // signed % move from reference to entry
	RiskPerUnit   float64 `json:"risk_per_unit"`   // |entry - stop loss|
	RewardPerUnit float64 `json:"reward_per_unit"` // |take profit - entry|
}

// OrderTicket is a live order submitted to the trading backend,
// recorded locally so the dashboard keeps its own history.
type OrderTicket struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Direction       Direction `json:"order_type"`
	Qty             float64   `json:"qty"`
	ReferencePrice  float64   `json:"reference_price"`
	EntryPrice      float64   `json:"entry_price"`
	StopLossPrice   float64   `json:"stop_loss_price"`
	TakeProfitPrice float64   `json:"take_profit_price"`
	BackendOrderID  string    `json:"backend_order_id"`
	Status          string    `json:"status"` // "submitted", "rejected", "cancelled"
	CreatedAt       time.Time `json:"created_at"`
}

// Position is an open position reported by the backend.
type Position struct {
	Symbol        string    `json:"symbol"`
	Direction     Direction `json:"order_type"`
	Size          float64   `json:"size"`
	EntryPrice    float64   `json:"entry_price"`
	MarkPrice     float64   `json:"mark_price"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	Leverage      int       `json:"leverage"`
}

// AccountBalance is the backend account snapshot shown in the header bar.
type AccountBalance struct {
	Currency  string  `json:"currency"`
	Total     float64 `json:"total"`
	Available float64 `json:"available"`
}

// CalcPreset is a saved calculator configuration.
type CalcPreset struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	EntryOffsetPct float64   `json:"entry_pct_chg"`
	StopLossPct    float64   `json:"loss_threshold"`
	TakeProfitPct  float64   `json:"profit_threshold"`
	Direction      Direction `json:"order_type"`
	CreatedAt      time.Time `json:"created_at"`
}
