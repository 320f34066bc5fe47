package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/repository"
)

// OrderService reads a customer's completed orders.
type OrderService struct {
	orderRepo    repository.OrderRepository
	itemRepo     repository.OrderItemRepository
	shippingRepo repository.ShippingRepository
}

func NewOrderService(orderRepo repository.OrderRepository, itemRepo repository.OrderItemRepository, shippingRepo repository.ShippingRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, itemRepo: itemRepo, shippingRepo: shippingRepo}
}

type Receipt struct {
	Order    *model.Order
	Delivery *model.ShippingAddress
}

func (s *OrderService) GetByID(ctx context.Context, id identity.Identity, orderID uuid.UUID) (*Receipt, error) {
	if err := requireCustomer(id); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.CustomerID != id.CustomerID || !order.Complete {
		return nil, ErrOrderNotFound
	}
	if order.Items, err = s.itemRepo.ListByOrder(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	delivery, err := s.shippingRepo.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return &Receipt{Order: order, Delivery: delivery}, nil
}

func (s *OrderService) ListCompleted(ctx context.Context, id identity.Identity) ([]model.Order, error) {
	if err := requireCustomer(id); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListCompletedByCustomer(ctx, id.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		if orders[i].Items, err = s.itemRepo.ListByOrder(ctx, orders[i].ID); err != nil {
			return nil, fmt.Errorf("get order items: %w", err)
		}
	}
	return orders, nil
}
