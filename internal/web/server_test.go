package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_order_panel/internal/domain"
	"github.com/vitos/crypto_order_panel/internal/usecase"
	"github.com/vitos/crypto_order_panel/internal/web"
	"go.uber.org/zap"
)

type fakeBackend struct {
	price   float64
	placed  []*domain.OrderTicket
	running bool
}

func (f *fakeBackend) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return f.price, nil
}

func (f *fakeBackend) GetTopGainers(ctx context.Context, limit int) ([]domain.GainerRow, error) {
	return []domain.GainerRow{{Rank: 1, Symbol: "BTCUSDT", LastPrice: f.price}}, nil
}

func (f *fakeBackend) GetAccount(ctx context.Context) (*domain.AccountBalance, error) {
	return &domain.AccountBalance{Currency: "USDT", Total: 5000, Available: 4200}, nil
}

func (f *fakeBackend) GetPositions(ctx context.Context) ([]*domain.Position, error) {
	return []*domain.Position{
		{Symbol: "BTCUSDT", Direction: domain.DirectionShort, Size: 0.25, EntryPrice: 10100, MarkPrice: 9900, UnrealizedPnL: 50, Leverage: 5},
	}, nil
}

func (f *fakeBackend) PlaceOrder(ctx context.Context, ticket *domain.OrderTicket) (string, error) {
	f.placed = append(f.placed, ticket)
	return fmt.Sprintf("BK-%d", len(f.placed)), nil
}

func (f *fakeBackend) CancelOrder(ctx context.Context, backendOrderID string) error { return nil }

func (f *fakeBackend) StartBot(ctx context.Context, strategy string) error {
	f.running = true
	return nil
}

func (f *fakeBackend) StopBot(ctx context.Context) error {
	f.running = false
	return nil
}

func (f *fakeBackend) GetBotStatus(ctx context.Context) (*domain.BotStatus, error) {
	return &domain.BotStatus{Running: f.running, Strategy: "default"}, nil
}

func (f *fakeBackend) RunBacktest(ctx context.Context, cfg *domain.BacktestConfig) (*domain.BacktestResult, error) {
	return &domain.BacktestResult{Trades: 5, WinRatePct: 60}, nil
}

func (f *fakeBackend) OnPriceUpdate(callback func(symbol string, price float64)) {}

func (f *fakeBackend) OnDisconnect(callback func()) {}

func (f *fakeBackend) Subscribe(symbols []string) error { return nil }

type fakePresets struct {
	presets []*domain.CalcPreset
}

func (f *fakePresets) SavePreset(ctx context.Context, p *domain.CalcPreset) error {
	f.presets = append(f.presets, p)
	return nil
}

func (f *fakePresets) ListPresets(ctx context.Context) ([]*domain.CalcPreset, error) {
	return f.presets, nil
}

func (f *fakePresets) DeletePreset(ctx context.Context, id string) error { return nil }

type fakeTickets struct {
	tickets []*domain.OrderTicket
}

func (f *fakeTickets) SaveTicket(ctx context.Context, t *domain.OrderTicket) error {
	f.tickets = append(f.tickets, t)
	return nil
}

func (f *fakeTickets) GetTicket(ctx context.Context, id string) (*domain.OrderTicket, error) {
	for _, t := range f.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTickets) ListTickets(ctx context.Context, limit int) ([]*domain.OrderTicket, error) {
	return f.tickets, nil
}

func (f *fakeTickets) UpdateTicketStatus(ctx context.Context, id, status string) error {
	t, err := f.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	t.Status = status
	return nil
}

type fakeRuns struct {
	runs []*domain.BacktestRun
}

func (f *fakeRuns) SaveRun(ctx context.Context, run *domain.BacktestRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRuns) ListRuns(ctx context.Context, limit int) ([]*domain.BacktestRun, error) {
	return f.runs, nil
}

func newTestServer(backend *fakeBackend) *web.Server {
	logger := zap.NewNop()
	calc := usecase.NewPriceCalculator()
	market := usecase.NewMarketService(backend)
	orders := usecase.NewOrderService(calc, backend, &fakeTickets{}, logger)
	backtests := usecase.NewBacktestService(calc, backend, &fakeRuns{}, market, logger)
	return web.NewServer(0, orders, backtests, market, backend, &fakePresets{}, 2, logger)
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCalculateEndpointShort(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	rec := postJSON(t, srv.Handler(), "/api/calculate", map[string]interface{}{
		"price":            10000,
		"entry_pct_chg":    1,
		"loss_threshold":   1.9,
		"profit_threshold": 4,
		"order_type":       "short",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		EntryPrice      float64 `json:"entry_price"`
		StopLossPrice   float64 `json:"stop_loss_price"`
		TakeProfitPrice float64 `json:"take_profit_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10100.0, resp.EntryPrice)
	assert.Equal(t, 10291.9, resp.StopLossPrice)
	assert.Equal(t, 9696.0, resp.TakeProfitPrice)
}

func TestCalculateEndpointLong(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	rec := postJSON(t, srv.Handler(), "/api/calculate", map[string]interface{}{
		"price":            10000,
		"entry_pct_chg":    1,
		"loss_threshold":   1.9,
		"profit_threshold": 4,
		"order_type":       "long",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 9900.0, resp["entry_price"])
	assert.Equal(t, 9711.9, resp["stop_loss_price"])
	assert.Equal(t, 10296.0, resp["take_profit_price"])
}

func TestCalculateEndpointErrors(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			"negative price is a bad request",
			map[string]interface{}{"price": -5, "entry_pct_chg": 1, "loss_threshold": 1, "profit_threshold": 1, "order_type": "long"},
			http.StatusBadRequest,
		},
		{
			"unknown order type is a bad request",
			map[string]interface{}{"price": 100, "entry_pct_chg": 1, "loss_threshold": 1, "profit_threshold": 1, "order_type": "sideways"},
			http.StatusBadRequest,
		},
		{
			"degenerate short target is unprocessable",
			map[string]interface{}{"price": 100, "entry_pct_chg": 0, "loss_threshold": 1, "profit_threshold": 150, "order_type": "short"},
			http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, srv.Handler(), "/api/calculate", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestSubmitOrderEndpoint(t *testing.T) {
	backend := &fakeBackend{price: 42000}
	srv := newTestServer(backend)

	rec := postJSON(t, srv.Handler(), "/api/orders", map[string]interface{}{
		"symbol":           "BTCUSDT",
		"qty":              0.25,
		"price":            10000,
		"entry_pct_chg":    1,
		"loss_threshold":   1.9,
		"profit_threshold": 4,
		"order_type":       "short",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ticket domain.OrderTicket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.Equal(t, "BK-1", ticket.BackendOrderID)
	assert.Equal(t, "submitted", ticket.Status)
	require.Len(t, backend.placed, 1)
}

func TestBacktestEndpoint(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	rec := postJSON(t, srv.Handler(), "/api/backtests/buy-surge", map[string]interface{}{
		"symbol":           "BTCUSDT",
		"interval":         "15m",
		"initial_balance":  1000,
		"entry_pct_chg":    1,
		"loss_threshold":   2,
		"profit_threshold": 4,
		"order_type":       "long",
		"surge_pct":        3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var run domain.BacktestRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, domain.EngineBuySurge, run.Config.Engine)
	assert.Equal(t, 5, run.Result.Trades)

	rec = postJSON(t, srv.Handler(), "/api/backtests/montecarlo", map[string]interface{}{
		"symbol":           "BTCUSDT",
		"initial_balance":  1000,
		"entry_pct_chg":    1,
		"loss_threshold":   2,
		"profit_threshold": 4,
		"order_type":       "long",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBotControlEndpoints(t *testing.T) {
	backend := &fakeBackend{price: 42000}
	srv := newTestServer(backend)

	rec := postJSON(t, srv.Handler(), "/api/bot/start", map[string]interface{}{"strategy": "default"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, backend.running)

	req := httptest.NewRequest("GET", "/api/bot/status", nil)
	recStatus := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recStatus, req)
	require.Equal(t, http.StatusOK, recStatus.Code)

	var status domain.BotStatus
	require.NoError(t, json.Unmarshal(recStatus.Body.Bytes(), &status))
	assert.True(t, status.Running)
}

func getJSON(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPresetsEndpoints(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	rec := postJSON(t, srv.Handler(), "/api/presets", map[string]interface{}{
		"name":             "btc scalp",
		"symbol":           "BTCUSDT",
		"entry_pct_chg":    1,
		"loss_threshold":   1.9,
		"profit_threshold": 4,
		"order_type":       "short",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.CalcPreset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.DirectionShort, created.Direction)

	rec = getJSON(t, srv.Handler(), "/api/presets")
	require.Equal(t, http.StatusOK, rec.Code)

	var presets []domain.CalcPreset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &presets))
	require.Len(t, presets, 1)
	assert.Equal(t, "btc scalp", presets[0].Name)
	assert.Equal(t, 1.9, presets[0].StopLossPct)

	req := httptest.NewRequest("DELETE", "/api/presets/"+created.ID, nil)
	recDel := httptest.NewRecorder()
	srv.Handler().ServeHTTP(recDel, req)
	assert.Equal(t, http.StatusNoContent, recDel.Code)
}

func TestPresetsEndpointValidation(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	// Missing name
	rec := postJSON(t, srv.Handler(), "/api/presets", map[string]interface{}{
		"symbol": "BTCUSDT", "order_type": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown order type
	rec = postJSON(t, srv.Handler(), "/api/presets", map[string]interface{}{
		"name": "x", "symbol": "BTCUSDT", "order_type": "sideways",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountEndpoint(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	rec := getJSON(t, srv.Handler(), "/api/account")
	require.Equal(t, http.StatusOK, rec.Code)

	var balance domain.AccountBalance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "USDT", balance.Currency)
	assert.Equal(t, 4200.0, balance.Available)
}

func TestPositionsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	rec := getJSON(t, srv.Handler(), "/api/positions")
	require.Equal(t, http.StatusOK, rec.Code)

	var positions []domain.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &positions))
	require.Len(t, positions, 1)
	assert.Equal(t, "BTCUSDT", positions[0].Symbol)
	assert.Equal(t, domain.DirectionShort, positions[0].Direction)
	assert.Equal(t, 0.25, positions[0].Size)
}

func TestTopGainersEndpoint(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 42000})

	rec := getJSON(t, srv.Handler(), "/api/market/top-gainers?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []domain.GainerRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "BTCUSDT", rows[0].Symbol)
	assert.Equal(t, 42000.0, rows[0].LastPrice)
}

func TestTickerPriceEndpoint(t *testing.T) {
	srv := newTestServer(&fakeBackend{price: 64250.5})

	req := httptest.NewRequest("GET", "/api/market/price?symbol=BTCUSDT", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 64250.5, resp["last_price"])

	// Missing symbol
	req = httptest.NewRequest("GET", "/api/market/price", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
