package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vitos/crypto_order_panel/internal/domain"
	"github.com/vitos/crypto_order_panel/internal/usecase"
	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors onto HTTP statuses: bad requests are
// 400, degenerate-but-wellformed requests are 422 so the UI can tell
// the operator why, missing rows are 404 and backend trouble is 502.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDegenerateResult):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// --- Calculator ---

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req domain.LevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	levels, err := s.orders.Preview(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.roundedLevels(levels))
}

// roundedLevels applies the instrument display precision. This is the
// presentation boundary; everything upstream stays at full precision.
func (s *Server) roundedLevels(levels domain.Levels) domain.Levels {
	levels.EntryPrice = usecase.RoundPrice(levels.EntryPrice, s.pricePrecision)
	levels.StopLossPrice = usecase.RoundPrice(levels.StopLossPrice, s.pricePrecision)
	levels.TakeProfitPrice = usecase.RoundPrice(levels.TakeProfitPrice, s.pricePrecision)
	levels.RiskPerUnit = usecase.RoundPrice(levels.RiskPerUnit, s.pricePrecision)
	levels.RewardPerUnit = usecase.RoundPrice(levels.RewardPerUnit, s.pricePrecision)
	return levels
}

// --- Presets ---

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.presets.ListPresets(r.Context())
	if err != nil {
		s.logger.Error("Failed to list presets", zap.Error(err))
		http.Error(w, "Failed to list presets", http.StatusInternalServerError)
		return
	}
	if presets == nil {
		presets = []*domain.CalcPreset{}
	}
	s.writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var preset domain.CalcPreset
	if err := json.NewDecoder(r.Body).Decode(&preset); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	if preset.Name == "" {
		s.writeError(w, fmt.Errorf("%w: preset name is required", domain.ErrInvalidInput))
		return
	}
	if _, ok := domain.ParseDirection(string(preset.Direction)); !ok {
		s.writeError(w, fmt.Errorf("%w: unknown order type %q", domain.ErrInvalidInput, preset.Direction))
		return
	}

	preset.ID = fmt.Sprintf("%d", time.Now().UnixNano())
	preset.CreatedAt = time.Now()

	if err := s.presets.SavePreset(r.Context(), &preset); err != nil {
		s.logger.Error("Failed to save preset", zap.Error(err))
		http.Error(w, "Failed to save preset", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusCreated, preset)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.presets.DeletePreset(r.Context(), id); err != nil {
		s.logger.Error("Failed to delete preset", zap.Error(err))
		http.Error(w, "Failed to delete preset", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Orders ---

type submitOrderRequest struct {
	Symbol string  `json:"symbol"`
	Qty    float64 `json:"qty"`
	domain.LevelRequest
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	ticket, err := s.orders.Submit(r.Context(), req.Symbol, req.Qty, req.LevelRequest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ticket)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	tickets, err := s.orders.ListTickets(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list tickets", zap.Error(err))
		http.Error(w, "Failed to list tickets", http.StatusInternalServerError)
		return
	}
	if tickets == nil {
		tickets = []*domain.OrderTicket{}
	}
	s.writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.orders.Cancel(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Account / positions ---

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	balance, err := s.backend.GetAccount(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.backend.GetPositions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if positions == nil {
		positions = []*domain.Position{}
	}
	s.writeJSON(w, http.StatusOK, positions)
}

// --- Backtests ---

func (s *Server) handleLaunchBacktest(w http.ResponseWriter, r *http.Request) {
	var cfg domain.BacktestConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	cfg.Engine = r.PathValue("engine")

	run, err := s.backtests.Launch(r.Context(), cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleBacktestHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.backtests.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list backtest runs", zap.Error(err))
		http.Error(w, "Failed to list backtest runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*domain.BacktestRun{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// --- Bot control ---

func (s *Server) handleBotStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strategy string `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	if err := s.backend.StartBot(r.Context(), req.Strategy); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleBotStop(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.StopBot(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.backend.GetBotStatus(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// --- Market data ---

func (s *Server) handleTopGainers(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := s.market.TopGainers(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rows == nil {
		rows = []domain.GainerRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleTickerPrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.writeError(w, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput))
		return
	}

	price, err := s.market.LastPrice(r.Context(), symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"symbol": symbol, "last_price": price})
}
