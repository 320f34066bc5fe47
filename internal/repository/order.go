package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/homeclick-store/internal/model"
)

var ErrOrderAlreadyComplete = errors.New("order already complete")

type OrderRepository interface {
	// GetOrCreateOpen returns the customer's incomplete order, creating it if
	// needed, and locks its row until the surrounding transaction ends.
	GetOrCreateOpen(ctx context.Context, customerID uuid.UUID) (*model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListCompletedByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	MarkComplete(ctx context.Context, id uuid.UUID) error
}

type pgOrderRepo struct{ db DBTX }

func NewOrderRepository(db DBTX) OrderRepository {
	return &pgOrderRepo{db: db}
}

func (r *pgOrderRepo) GetOrCreateOpen(ctx context.Context, customerID uuid.UUID) (*model.Order, error) {
	order, err := r.lockOpen(ctx, customerID)
	if err != nil || order != nil {
		return order, err
	}

	// orders_one_open_per_customer turns a concurrent create into a no-op here;
	// the second lookup then waits for and returns the winner's row.
	_, err = r.db.Exec(ctx,
		`INSERT INTO orders (id, customer_id, complete, created_at) VALUES ($1, $2, FALSE, NOW())
		 ON CONFLICT (customer_id) WHERE NOT complete DO NOTHING`,
		uuid.New(), customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("create open order: %w", err)
	}

	order, err = r.lockOpen(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("open order for customer %s vanished", customerID)
	}
	return order, nil
}

func (r *pgOrderRepo) lockOpen(ctx context.Context, customerID uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.db.QueryRow(ctx,
		`SELECT id, customer_id, complete, created_at, completed_at FROM orders
		 WHERE customer_id = $1 AND NOT complete FOR UPDATE`, customerID,
	).Scan(&order.ID, &order.CustomerID, &order.Complete, &order.CreatedAt, &order.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open order: %w", err)
	}
	return order, nil
}

// GetByID does not load items; see OrderItemRepository.ListByOrder.
func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.db.QueryRow(ctx,
		`SELECT id, customer_id, complete, created_at, completed_at FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.CustomerID, &order.Complete, &order.CreatedAt, &order.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (r *pgOrderRepo) ListCompletedByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, complete, created_at, completed_at FROM orders
		 WHERE customer_id = $1 AND complete ORDER BY completed_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o := model.Order{CustomerID: customerID}
		if err := rows.Scan(&o.ID, &o.Complete, &o.CreatedAt, &o.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *pgOrderRepo) MarkComplete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE orders SET complete = TRUE, completed_at = NOW() WHERE id = $1 AND NOT complete`, id,
	)
	if err != nil {
		return fmt.Errorf("complete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderAlreadyComplete
	}
	return nil
}
