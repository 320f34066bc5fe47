package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/repository"
)

var (
	ErrMissingProduct = errors.New("missing product id")
	ErrInvalidAction  = errors.New("invalid action")
)

type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case "", ActionAdd:
		return ActionAdd, nil
	case ActionRemove:
		return ActionRemove, nil
	}
	return "", ErrInvalidAction
}

// CartView is either OpenCart or EmptyCart.
type CartView interface {
	ItemCount() int
	Total() int64
	isCartView()
}

// OpenCart is a customer's open order with its repaired items.
type OpenCart struct {
	Order *model.Order
}

func (c OpenCart) ItemCount() int { return c.Order.CartItemCount() }
func (c OpenCart) Total() int64   { return c.Order.CartTotal() }
func (OpenCart) isCartView()      {}

// EmptyCart is the read-only cart shown to anonymous and admin callers.
type EmptyCart struct{}

func (EmptyCart) ItemCount() int { return 0 }
func (EmptyCart) Total() int64   { return 0 }
func (EmptyCart) isCartView()    {}

type CartService struct {
	store    repository.TxStore
	products repository.ProductRepository
}

func NewCartService(store repository.TxStore, products repository.ProductRepository) *CartService {
	return &CartService{store: store, products: products}
}

func (s *CartService) GetCart(ctx context.Context, id identity.Identity) (CartView, error) {
	if !id.IsCustomer() {
		return EmptyCart{}, nil
	}
	order, err := s.openOrder(ctx, id.CustomerID)
	if err != nil {
		return nil, err
	}
	return OpenCart{Order: order}, nil
}

// openOrder returns the customer's open order with duplicates merged.
func (s *CartService) openOrder(ctx context.Context, customerID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.store.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		order, err = loadOpenOrder(ctx, repos, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func loadOpenOrder(ctx context.Context, repos repository.Repositories, customerID uuid.UUID) (*model.Order, error) {
	order, err := repos.Orders.GetOrCreateOpen(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get open order: %w", err)
	}
	order.Items, err = repairItems(ctx, repos.Items, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AddOrRemove changes the quantity of one product in the caller's open order
// by one. The open order lookup, the repair passes and the mutation commit
// together or not at all.
func (s *CartService) AddOrRemove(ctx context.Context, id identity.Identity, productID uuid.UUID, action Action) (*model.Order, error) {
	if err := requireCustomer(id); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, ErrMissingProduct
	}
	if action != ActionAdd && action != ActionRemove {
		return nil, ErrInvalidAction
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	var order *model.Order
	err = s.store.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		order, err = loadOpenOrder(ctx, repos, id.CustomerID)
		if err != nil {
			return err
		}
		if err := mutateItem(ctx, repos.Items, order, productID, action); err != nil {
			return err
		}
		order.Items, err = repairItems(ctx, repos.Items, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func mutateItem(ctx context.Context, items repository.OrderItemRepository, order *model.Order, productID uuid.UUID, action Action) error {
	var existing *model.OrderItem
	for i := range order.Items {
		if order.Items[i].ProductID == productID {
			existing = &order.Items[i]
			break
		}
	}

	switch action {
	case ActionAdd:
		if existing == nil {
			item := &model.OrderItem{OrderID: order.ID, ProductID: productID, Quantity: 1}
			if err := items.Create(ctx, item); err != nil {
				return fmt.Errorf("add item: %w", err)
			}
			return nil
		}
		if err := items.UpdateQuantity(ctx, existing.ID, existing.Quantity+1); err != nil {
			return fmt.Errorf("increment item: %w", err)
		}
	case ActionRemove:
		if existing == nil {
			return nil
		}
		if existing.Quantity-1 <= 0 {
			if err := items.Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("remove item: %w", err)
			}
			return nil
		}
		if err := items.UpdateQuantity(ctx, existing.ID, existing.Quantity-1); err != nil {
			return fmt.Errorf("decrement item: %w", err)
		}
	}
	return nil
}
