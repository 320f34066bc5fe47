package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/model"
)

type OrderItemRepository interface {
	// ListByOrder returns items ordered by ID with their product attached.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	Create(ctx context.Context, item *model.OrderItem) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, ids ...int64) error
}

type pgOrderItemRepo struct{ db DBTX }

func NewOrderItemRepository(db DBTX) OrderItemRepository {
	return &pgOrderItemRepo{db: db}
}

func (r *pgOrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.created_at,
		        p.id, p.name, p.code, p.price, p.digital, p.image, p.created_at, p.updated_at
		 FROM order_items oi JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1 ORDER BY oi.id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		p := &item.Product
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&p.ID, &p.Name, &p.Code, &p.Price, &p.Digital, &p.Image, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgOrderItemRepo) Create(ctx context.Context, item *model.OrderItem) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, created_at)
		 VALUES ($1, $2, $3, NOW()) RETURNING id, created_at`,
		item.OrderID, item.ProductID, item.Quantity,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

func (r *pgOrderItemRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if _, err := r.db.Exec(ctx, `UPDATE order_items SET quantity = $2 WHERE id = $1`, id, quantity); err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	return nil
}

func (r *pgOrderItemRepo) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}
