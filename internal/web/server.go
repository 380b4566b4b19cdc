package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitos/crypto_order_panel/internal/domain"
	"github.com/vitos/crypto_order_panel/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router         *http.ServeMux
	server         *http.Server
	orders         *usecase.OrderService
	backtests      *usecase.BacktestService
	market         *usecase.MarketService
	backend        domain.Backend
	presets        domain.PresetRepository
	pricePrecision int
	logger         *zap.Logger
}

func NewServer(
	port int,
	orders *usecase.OrderService,
	backtests *usecase.BacktestService,
	market *usecase.MarketService,
	backend domain.Backend,
	presets domain.PresetRepository,
	pricePrecision int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:         http.NewServeMux(),
		orders:         orders,
		backtests:      backtests,
		market:         market,
		backend:        backend,
		presets:        presets,
		pricePrecision: pricePrecision,
		logger:         logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Dashboard
	s.router.HandleFunc("GET /", s.handleDashboard)

	// Price-level calculator
	s.router.HandleFunc("POST /api/calculate", s.handleCalculate)

	// Calculator presets
	s.router.HandleFunc("GET /api/presets", s.handleListPresets)
	s.router.HandleFunc("POST /api/presets", s.handleSavePreset)
	s.router.HandleFunc("DELETE /api/presets/{id}", s.handleDeletePreset)

	// Orders
	s.router.HandleFunc("POST /api/orders", s.handleSubmitOrder)
	s.router.HandleFunc("GET /api/orders", s.handleListOrders)
	s.router.HandleFunc("DELETE /api/orders/{id}", s.handleCancelOrder)

	// Account / positions
	s.router.HandleFunc("GET /api/account", s.handleAccount)
	s.router.HandleFunc("GET /api/positions", s.handlePositions)

	// Backtests
	s.router.HandleFunc("POST /api/backtests/{engine}", s.handleLaunchBacktest)
	s.router.HandleFunc("GET /api/backtests", s.handleBacktestHistory)

	// Bot control
	s.router.HandleFunc("POST /api/bot/start", s.handleBotStart)
	s.router.HandleFunc("POST /api/bot/stop", s.handleBotStop)
	s.router.HandleFunc("GET /api/bot/status", s.handleBotStatus)

	// Market data
	s.router.HandleFunc("GET /api/market/top-gainers", s.handleTopGainers)
	s.router.HandleFunc("GET /api/market/price", s.handleTickerPrice)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
