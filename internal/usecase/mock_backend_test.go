package usecase_test

import (
	"context"
	"fmt"

	"github.com/vitos/crypto_order_panel/internal/domain"
)

type MockBackend struct {
	Price           float64
	PriceErr        error
	Gainers         []domain.GainerRow
	Account         *domain.AccountBalance
	Positions       []*domain.Position
	PlaceErr        error
	Placed          []*domain.OrderTicket
	Cancelled       []string
	BotRunning      bool
	BacktestResult  *domain.BacktestResult
	BacktestErr     error
	LastBacktestCfg *domain.BacktestConfig
	Subscribed      []string
	callbacks       []func(symbol string, price float64)
	disconnectCbs   []func()
}

func (m *MockBackend) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}

func (m *MockBackend) GetTopGainers(ctx context.Context, limit int) ([]domain.GainerRow, error) {
	if limit < len(m.Gainers) {
		return m.Gainers[:limit], nil
	}
	return m.Gainers, nil
}

func (m *MockBackend) GetAccount(ctx context.Context) (*domain.AccountBalance, error) {
	if m.Account == nil {
		return &domain.AccountBalance{Currency: "USDT"}, nil
	}
	return m.Account, nil
}

func (m *MockBackend) GetPositions(ctx context.Context) ([]*domain.Position, error) {
	return m.Positions, nil
}

func (m *MockBackend) PlaceOrder(ctx context.Context, ticket *domain.OrderTicket) (string, error) {
	if m.PlaceErr != nil {
		return "", m.PlaceErr
	}
	m.Placed = append(m.Placed, ticket)
	return fmt.Sprintf("BK-%d", len(m.Placed)), nil
}

func (m *MockBackend) CancelOrder(ctx context.Context, backendOrderID string) error {
	m.Cancelled = append(m.Cancelled, backendOrderID)
	return nil
}

func (m *MockBackend) StartBot(ctx context.Context, strategy string) error {
	m.BotRunning = true
	return nil
}

func (m *MockBackend) StopBot(ctx context.Context) error {
	m.BotRunning = false
	return nil
}

func (m *MockBackend) GetBotStatus(ctx context.Context) (*domain.BotStatus, error) {
	return &domain.BotStatus{Running: m.BotRunning}, nil
}

func (m *MockBackend) RunBacktest(ctx context.Context, cfg *domain.BacktestConfig) (*domain.BacktestResult, error) {
	m.LastBacktestCfg = cfg
	if m.BacktestErr != nil {
		return nil, m.BacktestErr
	}
	if m.BacktestResult != nil {
		return m.BacktestResult, nil
	}
	return &domain.BacktestResult{}, nil
}

func (m *MockBackend) OnPriceUpdate(callback func(symbol string, price float64)) {
	m.callbacks = append(m.callbacks, callback)
}

func (m *MockBackend) OnDisconnect(callback func()) {
	m.disconnectCbs = append(m.disconnectCbs, callback)
}

func (m *MockBackend) Subscribe(symbols []string) error {
	m.Subscribed = append(m.Subscribed, symbols...)
	return nil
}

// PushPrice simulates a ticker stream update.
func (m *MockBackend) PushPrice(symbol string, price float64) {
	for _, cb := range m.callbacks {
		cb(symbol, price)
	}
}

// PushDisconnect simulates the ticker stream dropping.
func (m *MockBackend) PushDisconnect() {
	for _, cb := range m.disconnectCbs {
		cb()
	}
}

// In-memory repositories.

type memTickets struct {
	tickets map[string]*domain.OrderTicket
	order   []string
}

func newMemTickets() *memTickets {
	return &memTickets{tickets: make(map[string]*domain.OrderTicket)}
}

func (m *memTickets) SaveTicket(ctx context.Context, t *domain.OrderTicket) error {
	cp := *t
	m.tickets[t.ID] = &cp
	m.order = append(m.order, t.ID)
	return nil
}

func (m *memTickets) GetTicket(ctx context.Context, id string) (*domain.OrderTicket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTickets) ListTickets(ctx context.Context, limit int) ([]*domain.OrderTicket, error) {
	var out []*domain.OrderTicket
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.tickets[m.order[i]])
	}
	return out, nil
}

func (m *memTickets) UpdateTicketStatus(ctx context.Context, id, status string) error {
	t, ok := m.tickets[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

type memRuns struct {
	runs []*domain.BacktestRun
}

func (m *memRuns) SaveRun(ctx context.Context, run *domain.BacktestRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRuns) ListRuns(ctx context.Context, limit int) ([]*domain.BacktestRun, error) {
	if limit < len(m.runs) {
		return m.runs[len(m.runs)-limit:], nil
	}
	return m.runs, nil
}
