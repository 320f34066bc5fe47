package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/discount"
	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/notify"
	"github.com/flicky/homeclick-store/internal/repository"
	"github.com/flicky/homeclick-store/internal/session"
)

var (
	ErrEmptyCart     = errors.New("your cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// ConfirmationRequester must not block or fail the checkout.
type ConfirmationRequester interface {
	RequestOrderConfirmation(ctx context.Context, email string, sum notify.OrderSummary)
}

type CheckoutDeps struct {
	Store     repository.TxStore
	Orders    repository.OrderRepository
	Items     repository.OrderItemRepository
	Customers repository.CustomerRepository
	Sessions  session.Store
	Discounts *discount.Engine
	Notifier  ConfirmationRequester
	Validator *DeliveryValidator
	Log       *slog.Logger
	// SummaryReadOnce drops the checkout summary once the confirmation has been shown.
	SummaryReadOnce bool
}

type CheckoutService struct {
	CheckoutDeps
}

func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	if deps.Validator == nil {
		deps.Validator = NewDeliveryValidator()
	}
	return &CheckoutService{CheckoutDeps: deps}
}

type DiscountResult struct {
	Accepted       bool
	Code           string
	Subtotal       int64
	DiscountAmount int64
	Total          int64
}

// ApplyDiscount evaluates code against the current cart and stores the choice
// in the caller's session. A rejected code resets the stored discount.
func (s *CheckoutService) ApplyDiscount(ctx context.Context, id identity.Identity, code string) (*DiscountResult, error) {
	if err := requireCustomer(id); err != nil {
		return nil, err
	}
	var subtotal int64
	err := s.Store.InTx(ctx, func(repos repository.Repositories) error {
		order, err := loadOpenOrder(ctx, repos, id.CustomerID)
		if err != nil {
			return err
		}
		subtotal = order.CartTotal()
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := s.Discounts.Evaluate(code, subtotal)
	choice := session.Discount{}
	if res.Accepted {
		choice = session.Discount{Code: res.Code, Amount: res.Amount}
	}
	if err := s.Sessions.SetDiscount(ctx, id.SessionID, choice); err != nil {
		return nil, fmt.Errorf("store discount: %w", err)
	}
	return &DiscountResult{
		Accepted:       res.Accepted,
		Code:           res.Code,
		Subtotal:       subtotal,
		DiscountAmount: choice.Amount,
		Total:          subtotal - choice.Amount,
	}, nil
}

// CheckoutView is what the checkout page shows before delivery details are sent.
type CheckoutView struct {
	Cart           CartView
	Subtotal       int64
	DiscountCode   string
	DiscountAmount int64
	FinalTotal     int64
	Delivery       DeliveryForm
}

func (s *CheckoutService) BeginCheckout(ctx context.Context, id identity.Identity) (*CheckoutView, error) {
	if !id.IsCustomer() {
		return &CheckoutView{Cart: EmptyCart{}}, nil
	}

	var (
		order    *model.Order
		customer *model.Customer
	)
	err := s.Store.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		if order, err = loadOpenOrder(ctx, repos, id.CustomerID); err != nil {
			return err
		}
		customer, err = repos.Customers.GetByID(ctx, id.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.Sessions.GetDiscount(ctx, id.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load discount: %w", err)
	}
	subtotal := order.CartTotal()
	amount := discount.Clamp(stored.Amount, subtotal)
	if amount != stored.Amount {
		if err := s.Sessions.SetDiscount(ctx, id.SessionID, session.Discount{Code: stored.Code, Amount: amount}); err != nil {
			s.Log.Warn("store clamped discount", "session_id", id.SessionID, "error", err)
		}
	}

	view := &CheckoutView{
		Cart:           OpenCart{Order: order},
		Subtotal:       subtotal,
		DiscountCode:   stored.Code,
		DiscountAmount: amount,
		FinalTotal:     subtotal - amount,
	}
	if customer != nil {
		view.Delivery = DeliveryForm{Name: customer.Name, Address: customer.Address, Mobile: customer.Phone}
	}
	return view, nil
}

// CompleteCheckout turns the caller's open order into a completed one.
// Delivery validation failures return a *ValidationError and leave the order open.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, id identity.Identity, form DeliveryForm) (*session.Summary, error) {
	if err := requireCustomer(id); err != nil {
		return nil, err
	}

	stored, err := s.Sessions.GetDiscount(ctx, id.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load discount: %w", err)
	}

	var (
		summary  session.Summary
		order    *model.Order
		customer *model.Customer
	)
	err = s.Store.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		if order, err = loadOpenOrder(ctx, repos, id.CustomerID); err != nil {
			return err
		}
		if order.CartItemCount() == 0 {
			return ErrEmptyCart
		}

		delivery, err := s.Validator.Validate(form)
		if err != nil {
			return err
		}

		subtotal := order.CartTotal()
		amount := discount.Clamp(stored.Amount, subtotal)
		summary = session.Summary{
			OrderID:        order.ID,
			Subtotal:       subtotal,
			DiscountCode:   stored.Code,
			DiscountAmount: amount,
			FinalTotal:     subtotal - amount,
		}

		if customer, err = repos.Customers.GetByID(ctx, id.CustomerID); err != nil {
			return fmt.Errorf("get customer: %w", err)
		}
		addr := &model.ShippingAddress{
			OrderID:    order.ID,
			CustomerID: id.CustomerID,
			Name:       delivery.Name,
			Address:    delivery.Address,
			City:       delivery.City,
			State:      delivery.State,
			Mobile:     delivery.Mobile,
		}
		if err := repos.Shipping.Create(ctx, addr); err != nil {
			return fmt.Errorf("save delivery: %w", err)
		}
		if err := repos.Orders.MarkComplete(ctx, order.ID); err != nil {
			return fmt.Errorf("complete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := s.Log.With("order_id", order.ID, "customer_id", id.CustomerID, "session_id", id.SessionID)
	log.Info("order completed", "subtotal", summary.Subtotal, "discount", summary.DiscountAmount, "total", summary.FinalTotal)

	// The order is committed; losing session state only degrades the confirmation view.
	// A client that hangs up now must not cut these steps short.
	after := context.WithoutCancel(ctx)
	if err := s.Sessions.SaveSummary(after, id.SessionID, summary); err != nil {
		log.Warn("save checkout summary", "error", err)
	}
	if err := s.Sessions.ClearDiscount(after, id.SessionID); err != nil {
		log.Warn("clear discount", "error", err)
	}

	if customer != nil {
		s.Notifier.RequestOrderConfirmation(after, customer.Email, orderSummary(customer, order, summary))
	}
	return &summary, nil
}

func orderSummary(customer *model.Customer, order *model.Order, sum session.Summary) notify.OrderSummary {
	lines := make([]notify.Line, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, notify.Line{Name: item.Product.Name, Quantity: item.Quantity, UnitPrice: item.Product.Price})
	}
	return notify.OrderSummary{
		OrderID:        order.ID,
		CustomerName:   customer.Name,
		Lines:          lines,
		Subtotal:       sum.Subtotal,
		DiscountCode:   sum.DiscountCode,
		DiscountAmount: sum.DiscountAmount,
		FinalTotal:     sum.FinalTotal,
	}
}

type Confirmation struct {
	Order          *model.Order
	Subtotal       int64
	DiscountCode   string
	DiscountAmount int64
	FinalTotal     int64
	// FromSnapshot is false when the amounts were recomputed without a discount.
	FromSnapshot bool
}

// GetConfirmation shows the session's checkout summary for orderID, or falls
// back to the undiscounted order total when the summary is missing or stale.
func (s *CheckoutService) GetConfirmation(ctx context.Context, id identity.Identity, orderID uuid.UUID) (*Confirmation, error) {
	if err := requireCustomer(id); err != nil {
		return nil, err
	}
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.CustomerID != id.CustomerID {
		return nil, ErrOrderNotFound
	}
	if order.Items, err = s.Items.ListByOrder(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}

	sum, err := s.Sessions.LoadSummary(ctx, id.SessionID, s.SummaryReadOnce)
	if err != nil {
		s.Log.Warn("load checkout summary", "order_id", orderID, "error", err)
		sum = nil
	}
	if sum != nil && sum.OrderID == order.ID {
		return &Confirmation{
			Order:          order,
			Subtotal:       sum.Subtotal,
			DiscountCode:   sum.DiscountCode,
			DiscountAmount: sum.DiscountAmount,
			FinalTotal:     sum.FinalTotal,
			FromSnapshot:   true,
		}, nil
	}
	subtotal := order.CartTotal()
	return &Confirmation{Order: order, Subtotal: subtotal, FinalTotal: subtotal}, nil
}
