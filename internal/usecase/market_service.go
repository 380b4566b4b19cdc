package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/vitos/crypto_order_panel/internal/domain"
)

// gainersTTL bounds how often the top-gainers board hits the backend.
const gainersTTL = 10 * time.Second

type cachedGainers struct {
	rows   []domain.GainerRow
	expiry time.Time
}

// MarketService keeps the last known price per symbol, fed by the
// backend's ticker stream with a REST fallback for symbols the stream
// has not delivered yet. The dashboard reads reference prices for the
// calculator from here instead of polling the backend per keystroke.
type MarketService struct {
	backend    domain.Backend
	prices     map[string]float64
	updatedAt  map[string]time.Time
	gainers    cachedGainers
	subscribed map[string]bool
	mu         sync.Mutex
	timeNow    func() time.Time // For testing
}

func NewMarketService(backend domain.Backend) *MarketService {
	s := &MarketService{
		backend:    backend,
		prices:     make(map[string]float64),
		updatedAt:  make(map[string]time.Time),
		subscribed: make(map[string]bool),
		timeNow:    time.Now,
	}

	backend.OnPriceUpdate(s.handlePriceUpdate)
	backend.OnDisconnect(s.handleStreamLoss)

	return s
}

// handleStreamLoss voids the cache when the ticker stream drops. The
// backend forgets subscriptions on disconnect, so a kept cache would
// serve frozen prices while looking live. Dropping everything forces
// the next LastPrice through REST, which also re-subscribes.
func (s *MarketService) handleStreamLoss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = make(map[string]float64)
	s.updatedAt = make(map[string]time.Time)
	s.subscribed = make(map[string]bool)
}

func (s *MarketService) handlePriceUpdate(symbol string, price float64) {
	if price <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
	s.updatedAt[symbol] = s.timeNow()
}

// LastPrice returns the cached stream price for a symbol, falling back
// to a REST lookup (and subscribing the symbol for future pushes) on a
// cache miss.
func (s *MarketService) LastPrice(ctx context.Context, symbol string) (float64, error) {
	s.mu.Lock()
	price, ok := s.prices[symbol]
	s.mu.Unlock()
	if ok {
		return price, nil
	}

	price, err := s.backend.GetTickerPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.prices[symbol] = price
	s.updatedAt[symbol] = s.timeNow()
	needSub := !s.subscribed[symbol]
	if needSub {
		s.subscribed[symbol] = true
	}
	s.mu.Unlock()

	if needSub {
		// Best effort; the cached REST price still serves the caller.
		_ = s.backend.Subscribe([]string{symbol})
	}

	return price, nil
}

// PriceAge reports how stale the cached price for a symbol is.
// Zero time means the symbol was never seen.
func (s *MarketService) PriceAge(symbol string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.updatedAt[symbol]
	if !ok {
		return 0
	}
	return s.timeNow().Sub(at)
}

// TopGainers returns the backend's top-gainers board, cached for a
// short TTL so dashboard refreshes do not hammer the backend.
func (s *MarketService) TopGainers(ctx context.Context, limit int) ([]domain.GainerRow, error) {
	s.mu.Lock()
	if len(s.gainers.rows) >= limit && s.timeNow().Before(s.gainers.expiry) {
		rows := s.gainers.rows[:limit]
		s.mu.Unlock()
		return rows, nil
	}
	s.mu.Unlock()

	rows, err := s.backend.GetTopGainers(ctx, limit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.gainers = cachedGainers{rows: rows, expiry: s.timeNow().Add(gainersTTL)}
	// Seed the price cache from the board so selecting a row gives the
	// calculator a reference price without another round trip.
	for _, row := range rows {
		if row.LastPrice > 0 {
			s.prices[row.Symbol] = row.LastPrice
			s.updatedAt[row.Symbol] = s.timeNow()
		}
	}
	s.mu.Unlock()

	return rows, nil
}

// Track subscribes a set of symbols on the ticker stream, skipping ones
// already subscribed.
func (s *MarketService) Track(symbols []string) error {
	s.mu.Lock()
	var toSubscribe []string
	for _, sym := range symbols {
		if !s.subscribed[sym] {
			toSubscribe = append(toSubscribe, sym)
			s.subscribed[sym] = true
		}
	}
	s.mu.Unlock()

	if len(toSubscribe) == 0 {
		return nil
	}
	return s.backend.Subscribe(toSubscribe)
}
