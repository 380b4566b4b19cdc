package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_order_panel/internal/domain"
	"go.uber.org/zap"
)

// nominalReferencePrice is used to sanity-check backtest thresholds
// through the calculator when no live price is available. The
// degenerate checks depend only on the percents, not on the magnitude.
const nominalReferencePrice = 100.0

// BacktestService launches runs on the backend's engines and records
// the returned statistics. It never simulates anything itself.
type BacktestService struct {
	calc    *PriceCalculator
	backend domain.Backend
	runs    domain.BacktestRepository
	market  *MarketService
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewBacktestService(calc *PriceCalculator, backend domain.Backend, runs domain.BacktestRepository, market *MarketService, logger *zap.Logger) *BacktestService {
	return &BacktestService{
		calc:    calc,
		backend: backend,
		runs:    runs,
		market:  market,
		logger:  logger,
		timeNow: time.Now,
	}
}

// Launch validates the config, runs it on the backend and persists the
// run record. Threshold fields go through the calculator first so an
// invalid or degenerate configuration is caught before the round trip.
func (s *BacktestService) Launch(ctx context.Context, cfg domain.BacktestConfig) (*domain.BacktestRun, error) {
	if !domain.KnownEngine(cfg.Engine) {
		return nil, fmt.Errorf("%w: unknown engine %q", domain.ErrInvalidInput, cfg.Engine)
	}
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}
	if cfg.InitialBalance <= 0 {
		return nil, fmt.Errorf("%w: initial balance must be positive, got %v", domain.ErrInvalidInput, cfg.InitialBalance)
	}
	if cfg.StartTime != 0 && cfg.EndTime != 0 && cfg.EndTime <= cfg.StartTime {
		return nil, fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidInput)
	}

	refPrice, err := s.market.LastPrice(ctx, cfg.Symbol)
	if err != nil || refPrice <= 0 {
		refPrice = nominalReferencePrice
	}
	if _, err := s.calc.ComputeLevels(domain.LevelRequest{
		ReferencePrice: refPrice,
		EntryOffsetPct: cfg.EntryOffsetPct,
		StopLossPct:    cfg.StopLossPct,
		TakeProfitPct:  cfg.TakeProfitPct,
		Direction:      cfg.Direction,
	}); err != nil {
		return nil, err
	}

	result, err := s.backend.RunBacktest(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("run backtest: %w", err)
	}

	now := s.timeNow()
	run := &domain.BacktestRun{
		ID:        fmt.Sprintf("%d", now.UnixNano()),
		Config:    cfg,
		Result:    *result,
		CreatedAt: now,
	}

	if err := s.runs.SaveRun(ctx, run); err != nil {
		s.logger.Error("Failed to persist backtest run", zap.String("id", run.ID), zap.Error(err))
	}

	s.logger.Info("Backtest finished",
		zap.String("engine", cfg.Engine),
		zap.String("symbol", cfg.Symbol),
		zap.Int("trades", result.Trades),
		zap.Float64("win_rate_pct", result.WinRatePct),
		zap.Float64("profit_pct", result.ProfitPct))

	return run, nil
}

func (s *BacktestService) History(ctx context.Context, limit int) ([]*domain.BacktestRun, error) {
	return s.runs.ListRuns(ctx, limit)
}
