package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// DBTX is implemented by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Users     UserRepository
	Customers CustomerRepository
	Products  ProductRepository
	Orders    OrderRepository
	Items     OrderItemRepository
	Shipping  ShippingRepository
	Articles  ArticleRepository
}

func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Users:     NewUserRepository(db),
		Customers: NewCustomerRepository(db),
		Products:  NewProductRepository(db),
		Orders:    NewOrderRepository(db),
		Items:     NewOrderItemRepository(db),
		Shipping:  NewShippingRepository(db),
		Articles:  NewArticleRepository(db),
	}
}

// TxStore runs a unit of work atomically: every write made through repos is
// committed when fn returns nil and rolled back otherwise.
type TxStore interface {
	InTx(ctx context.Context, fn func(repos Repositories) error) error
}

type PGStore struct{ pool *pgxpool.Pool }

func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) InTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
