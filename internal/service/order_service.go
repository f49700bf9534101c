package service

import (
	"context"
	"errors"
	"fmt"

	"ministry-shop/internal/domain"
	"ministry-shop/internal/events"
	"ministry-shop/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidStatusTransition = errors.New("invalid status transition")

// orderTransitions enumerates the allowed fulfilment moves. Cancellation is
// only possible before the parcel ships.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:    {domain.OrderStatusDelivered},
}

var paymentTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentStatusPending: {domain.PaymentStatusPaid, domain.PaymentStatusFailed},
	domain.PaymentStatusPaid:    {domain.PaymentStatusRefunded},
}

// OrderService exposes order history for customers and fulfilment controls
// for the admin console.
type OrderService interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error)
	Summary(ctx context.Context) (*repository.SalesSummary, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	producer  *events.Producer
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, producer *events.Producer) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		producer:  producer,
	}
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) List(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error) {
	orders, total, err := s.orderRepo.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !contains(orderTransitions[order.Status], status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status

	s.producer.OrderStatusChanged(ctx, order.ID, string(status))

	return order, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !contains(paymentTransitions[order.PaymentStatus], status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.PaymentStatus, status)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	order.PaymentStatus = status

	return order, nil
}

func (s *orderService) Summary(ctx context.Context) (*repository.SalesSummary, error) {
	summary, err := s.orderRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales summary: %w", err)
	}
	return summary, nil
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
