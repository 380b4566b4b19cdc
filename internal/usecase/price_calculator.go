package usecase

import (
	"fmt"
	"math"

	"github.com/vitos/crypto_order_panel/internal/domain"
)

// PriceCalculator derives the entry, stop-loss and take-profit levels
// for an order from a reference price and percent offsets. It is pure:
// no state, no side effects, same inputs always give the same outputs.
//
// Sign conventions:
//
//	short: entry waits for a rise, stop above entry, target below.
//	long:  entry waits for a dip, stop below entry, target above.
type PriceCalculator struct{}

func NewPriceCalculator() *PriceCalculator {
	return &PriceCalculator{}
}

// ComputeLevels maps a LevelRequest to the three price levels.
// It returns domain.ErrInvalidInput for malformed requests and
// domain.ErrDegenerateResult when valid percents combine into a
// non-positive price. Outputs are full float64 precision; rounding
// belongs to the presentation layer.
func (c *PriceCalculator) ComputeLevels(req domain.LevelRequest) (domain.Levels, error) {
	if err := validateRequest(req); err != nil {
		return domain.Levels{}, err
	}

	o := req.EntryOffsetPct / 100
	sl := req.StopLossPct / 100
	tp := req.TakeProfitPct / 100

	var levels domain.Levels
	if req.Direction == domain.DirectionShort {
		levels.EntryPrice = req.ReferencePrice * (1 + o)
		levels.StopLossPrice = levels.EntryPrice * (1 + sl)
		levels.TakeProfitPrice = levels.EntryPrice * (1 - tp)
	} else {
		levels.EntryPrice = req.ReferencePrice * (1 - o)
		levels.StopLossPrice = levels.EntryPrice * (1 - sl)
		levels.TakeProfitPrice = levels.EntryPrice * (1 + tp)
	}

	// Percents above 100 are legal inputs but can push a level to or
	// below zero (take-profit on the short side, entry offset or stop
	// on the long side). Never clamp, fail loudly.
	if levels.EntryPrice <= 0 {
		return domain.Levels{}, fmt.Errorf("%w: entry offset %.4f%% drives entry price to %.8f", domain.ErrDegenerateResult, req.EntryOffsetPct, levels.EntryPrice)
	}
	if levels.StopLossPrice <= 0 {
		return domain.Levels{}, fmt.Errorf("%w: stop-loss %.4f%% drives stop price to %.8f", domain.ErrDegenerateResult, req.StopLossPct, levels.StopLossPrice)
	}
	if levels.TakeProfitPrice <= 0 {
		return domain.Levels{}, fmt.Errorf("%w: take-profit %.4f%% too large for %s, target price %.8f", domain.ErrDegenerateResult, req.TakeProfitPct, req.Direction, levels.TakeProfitPrice)
	}

	levels.EntryDeltaPct = (levels.EntryPrice - req.ReferencePrice) / req.ReferencePrice * 100
	levels.RiskPerUnit = math.Abs(levels.EntryPrice - levels.StopLossPrice)
	levels.RewardPerUnit = math.Abs(levels.TakeProfitPrice - levels.EntryPrice)

	return levels, nil
}

func validateRequest(req domain.LevelRequest) error {
	if !isFinite(req.ReferencePrice) || req.ReferencePrice <= 0 {
		return fmt.Errorf("%w: reference price must be finite and positive, got %v", domain.ErrInvalidInput, req.ReferencePrice)
	}
	if !isFinite(req.EntryOffsetPct) || req.EntryOffsetPct < 0 {
		return fmt.Errorf("%w: entry offset must be finite and non-negative, got %v", domain.ErrInvalidInput, req.EntryOffsetPct)
	}
	if !isFinite(req.StopLossPct) || req.StopLossPct < 0 {
		return fmt.Errorf("%w: stop-loss percent must be finite and non-negative, got %v", domain.ErrInvalidInput, req.StopLossPct)
	}
	if !isFinite(req.TakeProfitPct) || req.TakeProfitPct < 0 {
		return fmt.Errorf("%w: take-profit percent must be finite and non-negative, got %v", domain.ErrInvalidInput, req.TakeProfitPct)
	}
	if req.Direction != domain.DirectionLong && req.Direction != domain.DirectionShort {
		return fmt.Errorf("%w: unknown order type %q", domain.ErrInvalidInput, req.Direction)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// RoundPrice rounds a price to the instrument's display precision.
// Only web handlers and CLIs call this; the calculator itself stays at
// full precision so downstream arithmetic does not compound rounding.
func RoundPrice(price float64, precision int) float64 {
	pow := math.Pow(10, float64(precision))
	return math.Round(price*pow) / pow
}
