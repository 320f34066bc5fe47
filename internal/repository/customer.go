package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/homeclick-store/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Customer, error)
	UpdateContact(ctx context.Context, customer *model.Customer) error
}

type pgCustomerRepo struct{ db DBTX }

func NewCustomerRepository(db DBTX) CustomerRepository {
	return &pgCustomerRepo{db: db}
}

const customerColumns = `id, user_id, name, email, phone_number, address, created_at, updated_at`

func (r *pgCustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	c.ID = uuid.New()
	err := r.db.QueryRow(ctx,
		`INSERT INTO customers (id, user_id, name, email, phone_number, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING created_at, updated_at`,
		c.ID, c.UserID, c.Name, c.Email, c.Phone, c.Address,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *pgCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *pgCustomerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id = $1`, userID)
}

func (r *pgCustomerRepo) getOne(ctx context.Context, query string, arg uuid.UUID) (*model.Customer, error) {
	c := &model.Customer{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *pgCustomerRepo) UpdateContact(ctx context.Context, c *model.Customer) error {
	err := r.db.QueryRow(ctx,
		`UPDATE customers SET phone_number = $2, address = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		c.ID, c.Phone, c.Address,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}
