package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/homeclick-store/internal/model"
)

type ShippingRepository interface {
	Create(ctx context.Context, addr *model.ShippingAddress) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.ShippingAddress, error)
}

type pgShippingRepo struct{ db DBTX }

func NewShippingRepository(db DBTX) ShippingRepository {
	return &pgShippingRepo{db: db}
}

func (r *pgShippingRepo) Create(ctx context.Context, a *model.ShippingAddress) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO shipping_addresses (order_id, customer_id, name, address, city, state, mobile, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id, created_at`,
		a.OrderID, a.CustomerID, a.Name, a.Address, a.City, a.State, a.Mobile,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create shipping address: %w", err)
	}
	return nil
}

func (r *pgShippingRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.ShippingAddress, error) {
	a := &model.ShippingAddress{}
	err := r.db.QueryRow(ctx,
		`SELECT id, order_id, customer_id, name, address, city, state, mobile, created_at
		 FROM shipping_addresses WHERE order_id = $1`, orderID,
	).Scan(&a.ID, &a.OrderID, &a.CustomerID, &a.Name, &a.Address, &a.City, &a.State, &a.Mobile, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipping address: %w", err)
	}
	return a, nil
}
