package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_order_panel/internal/domain"
	"go.uber.org/zap"
)

// OrderService turns calculator output into live order tickets on the
// trading backend and keeps a local history of what was submitted.
type OrderService struct {
	calc    *PriceCalculator
	backend domain.Backend
	tickets domain.TicketRepository
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewOrderService(calc *PriceCalculator, backend domain.Backend, tickets domain.TicketRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		calc:    calc,
		backend: backend,
		tickets: tickets,
		logger:  logger,
		timeNow: time.Now,
	}
}

// Preview computes levels without touching the backend. The dashboard
// calls this on every form change.
func (s *OrderService) Preview(req domain.LevelRequest) (domain.Levels, error) {
	return s.calc.ComputeLevels(req)
}

// Submit computes the levels, places the order on the backend and
// persists the resulting ticket. Nothing is sent if the calculation
// fails, so a degenerate configuration can never reach the backend.
func (s *OrderService) Submit(ctx context.Context, symbol string, qty float64, req domain.LevelRequest) (*domain.OrderTicket, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: qty must be positive, got %v", domain.ErrInvalidInput, qty)
	}

	levels, err := s.calc.ComputeLevels(req)
	if err != nil {
		return nil, err
	}

	now := s.timeNow()
	ticket := &domain.OrderTicket{
		ID:              fmt.Sprintf("%d", now.UnixNano()),
		Symbol:          symbol,
		Direction:       req.Direction,
		Qty:             qty,
		ReferencePrice:  req.ReferencePrice,
		EntryPrice:      levels.EntryPrice,
		StopLossPrice:   levels.StopLossPrice,
		TakeProfitPrice: levels.TakeProfitPrice,
		Status:          "submitted",
		CreatedAt:       now,
	}

	backendID, err := s.backend.PlaceOrder(ctx, ticket)
	if err != nil {
		s.logger.Error("Order rejected by backend",
			zap.String("symbol", symbol),
			zap.String("order_type", string(req.Direction)),
			zap.Error(err))
		return nil, fmt.Errorf("place order: %w", err)
	}
	ticket.BackendOrderID = backendID

	if err := s.tickets.SaveTicket(ctx, ticket); err != nil {
		// The order is live even if local history failed.
		s.logger.Error("Failed to persist ticket", zap.String("id", ticket.ID), zap.Error(err))
	}

	s.logger.Info("Order submitted",
		zap.String("symbol", symbol),
		zap.String("order_type", string(req.Direction)),
		zap.Float64("entry", levels.EntryPrice),
		zap.Float64("stop_loss", levels.StopLossPrice),
		zap.Float64("take_profit", levels.TakeProfitPrice),
		zap.String("backend_order_id", backendID))

	return ticket, nil
}

// Cancel cancels a previously submitted ticket on the backend and
// marks the local record.
func (s *OrderService) Cancel(ctx context.Context, ticketID string) error {
	ticket, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status == "cancelled" {
		return nil
	}

	if err := s.backend.CancelOrder(ctx, ticket.BackendOrderID); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	if err := s.tickets.UpdateTicketStatus(ctx, ticketID, "cancelled"); err != nil {
		s.logger.Error("Failed to mark ticket cancelled", zap.String("id", ticketID), zap.Error(err))
	}
	return nil
}

func (s *OrderService) ListTickets(ctx context.Context, limit int) ([]*domain.OrderTicket, error) {
	return s.tickets.ListTickets(ctx, limit)
}
