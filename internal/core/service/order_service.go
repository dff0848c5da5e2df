package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type OrderService struct {
	deliveries port.DeliveryRepository
	logger     *zap.Logger
}

func NewOrderService(deliveries port.DeliveryRepository, logger *zap.Logger) *OrderService {
	return &OrderService{deliveries: deliveries, logger: logger}
}

// List returns the orders the session may see.
func (s *OrderService) List(ctx context.Context, session domain.Session) ([]domain.Delivery, error) {
	if !session.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	all, err := s.deliveries.ListDeliveries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return domain.VisibleTo(all, session), nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, session domain.Session, id string, status domain.OrderStatus) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.deliveries.UpdateDeliveryStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", id),
		zap.String("status", string(status)),
		zap.String("by", session.Username))
	return nil
}

// ConfirmReceived lets a customer mark their shipped order as delivered.
func (s *OrderService) ConfirmReceived(ctx context.Context, session domain.Session, id string) error {
	if !session.LoggedIn() {
		return ErrNotLoggedIn
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !order.CanConfirmReceived(session) {
		return ErrCannotConfirm
	}
	return s.deliveries.UpdateDeliveryStatus(ctx, id, domain.OrderStatusDelivered)
}

// Delete removes an order. Admins may delete any order, customers only their
// own.
func (s *OrderService) Delete(ctx context.Context, session domain.Session, id string) error {
	if !session.LoggedIn() {
		return ErrNotLoggedIn
	}
	if !session.IsAdmin() {
		order, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if order.Username != session.Username {
			return ErrForbidden
		}
	}
	if err := s.deliveries.DeleteDelivery(ctx, id); err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.String("order_id", id), zap.String("by", session.Username))
	return nil
}

func (s *OrderService) find(ctx context.Context, id string) (*domain.Delivery, error) {
	all, err := s.deliveries.ListDeliveries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, ErrOrderNotFound
}
