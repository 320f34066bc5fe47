package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/homeclick-store/internal/model"
)

func seedCustomer(t *testing.T, ctx context.Context, email string) *model.Customer {
	t.Helper()
	user := &model.User{Email: email, Password: "hashed"}
	require.NoError(t, NewUserRepository(testPool).Create(ctx, user))
	customer := &model.Customer{UserID: user.ID, Name: "Lan", Email: email}
	require.NoError(t, NewCustomerRepository(testPool).Create(ctx, customer))
	return customer
}

func seedProduct(t *testing.T, ctx context.Context, code string, price int64) *model.Product {
	t.Helper()
	p := &model.Product{Name: "Sofa " + code, Code: code, Price: price}
	require.NoError(t, NewProductRepository(testPool).Create(ctx, p))
	return p
}

func TestUserAndCustomerRepo(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()

	customer := seedCustomer(t, ctx, "lan@example.com")

	user, err := NewUserRepository(testPool).GetByEmail(ctx, "lan@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	found, err := NewCustomerRepository(testPool).GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, customer.ID, found.ID)

	found.Phone = "0900000000"
	found.Address = "12 Hang Bac"
	require.NoError(t, NewCustomerRepository(testPool).UpdateContact(ctx, found))

	again, err := NewCustomerRepository(testPool).GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "0900000000", again.Phone)

	missing, err := NewCustomerRepository(testPool).GetByUserID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepo_CRUDAndSearch(t *testing.T) {
	cleanupAll(t)
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	chair := seedProduct(t, ctx, "CH-01", 500_000)
	seedProduct(t, ctx, "TB-02", 900_000)

	found, err := repo.GetByID(ctx, chair.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), found.Price)

	products, total, err := repo.List(ctx, 10, 0, "ch-")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, chair.ID, products[0].ID)

	_, total, err = repo.List(ctx, 10, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	chair.Name = "Armchair"
	require.NoError(t, repo.Update(ctx, chair))
	found, _ = repo.GetByID(ctx, chair.ID)
	assert.Equal(t, "Armchair", found.Name)

	require.NoError(t, repo.Delete(ctx, chair.ID))
	assert.ErrorIs(t, repo.Delete(ctx, chair.ID), pgx.ErrNoRows)
}

func TestProductRepo_ConstraintViolations(t *testing.T) {
	cleanupAll(t)
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	chair := seedProduct(t, ctx, "CH-01", 500_000)
	table := seedProduct(t, ctx, "TB-02", 900_000)

	err := repo.Create(ctx, &model.Product{Name: "Other chair", Code: "CH-01", Price: 1})
	assert.ErrorIs(t, err, ErrDuplicate)

	table.Code = "CH-01"
	assert.ErrorIs(t, repo.Update(ctx, table), ErrDuplicate)

	customer := seedCustomer(t, ctx, "buyer@example.com")
	order, err := NewOrderRepository(testPool).GetOrCreateOpen(ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, NewOrderItemRepository(testPool).Create(ctx, &model.OrderItem{OrderID: order.ID, ProductID: chair.ID, Quantity: 1}))

	assert.ErrorIs(t, repo.Delete(ctx, chair.ID), ErrReferenced)
	still, err := repo.GetByID(ctx, chair.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	seedCustomer(t, ctx, "lan@example.com")

	err := NewUserRepository(testPool).Create(ctx, &model.User{Email: "lan@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestOrderRepo_SingleOpenOrderUnderConcurrency(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	customer := seedCustomer(t, ctx, "race@example.com")
	store := NewStore(testPool)

	const workers = 8
	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.InTx(ctx, func(repos Repositories) error {
				order, err := repos.Orders.GetOrCreateOpen(ctx, customer.ID)
				if err != nil {
					return err
				}
				ids[i] = order.ID
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var open int
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1 AND NOT complete`, customer.ID).Scan(&open))
	assert.Equal(t, 1, open)
}

func TestOrderRepo_CompleteThenNewOpenOrder(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	customer := seedCustomer(t, ctx, "done@example.com")
	orders := NewOrderRepository(testPool)

	first, err := orders.GetOrCreateOpen(ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, orders.MarkComplete(ctx, first.ID))
	assert.ErrorIs(t, orders.MarkComplete(ctx, first.ID), ErrOrderAlreadyComplete)

	second, err := orders.GetOrCreateOpen(ctx, customer.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	done, err := orders.ListCompletedByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, first.ID, done[0].ID)
	assert.NotNil(t, done[0].CompletedAt)
}

func TestOrderItemRepo_DuplicatesAllowedAndOrdered(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	customer := seedCustomer(t, ctx, "items@example.com")
	product := seedProduct(t, ctx, "BD-09", 250_000)
	order, err := NewOrderRepository(testPool).GetOrCreateOpen(ctx, customer.ID)
	require.NoError(t, err)

	items := NewOrderItemRepository(testPool)
	a := &model.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 1}
	b := &model.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, items.Create(ctx, a))
	require.NoError(t, items.Create(ctx, b))

	list, err := items.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Less(t, list[0].ID, list[1].ID)
	assert.Equal(t, "BD-09", list[0].Product.Code)

	require.NoError(t, items.UpdateQuantity(ctx, a.ID, 3))
	require.NoError(t, items.Delete(ctx, b.ID))

	list, err = items.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Quantity)
	assert.Equal(t, int64(750_000), list[0].LineTotal())
}

func TestStore_InTxRollsBack(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	customer := seedCustomer(t, ctx, "rollback@example.com")
	boom := errors.New("boom")

	err := NewStore(testPool).InTx(ctx, func(repos Repositories) error {
		if _, err := repos.Orders.GetOrCreateOpen(ctx, customer.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customer.ID).Scan(&n))
	assert.Zero(t, n)
}

func TestShippingRepo_OnePerOrder(t *testing.T) {
	cleanupAll(t)
	ctx := context.Background()
	customer := seedCustomer(t, ctx, "ship@example.com")
	order, err := NewOrderRepository(testPool).GetOrCreateOpen(ctx, customer.ID)
	require.NoError(t, err)

	repo := NewShippingRepository(testPool)
	addr := &model.ShippingAddress{
		OrderID: order.ID, CustomerID: customer.ID, Name: "Lan",
		Address: "1 Trang Tien", City: "Hanoi", State: "Hoan Kiem", Mobile: "0912345678",
	}
	require.NoError(t, repo.Create(ctx, addr))
	assert.NotZero(t, addr.ID)

	dup := *addr
	assert.Error(t, repo.Create(ctx, &dup))

	found, err := repo.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hanoi", found.City)
}

func TestArticleRepo(t *testing.T) {
	cleanupAll(t)
	repo := NewArticleRepository(testPool)
	ctx := context.Background()

	older := &model.Article{Name: "Choosing a sofa", Content: "Measure the room first.", DateUp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(ctx, older))
	latest := &model.Article{Name: "Oak care", Content: "Oil twice a year."}
	require.NoError(t, repo.Create(ctx, latest))
	assert.False(t, latest.DateUp.IsZero())
	assert.True(t, older.DateUp.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	articles, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, articles, 2)
	assert.Equal(t, latest.ID, articles[0].ID)
	assert.Equal(t, "Measure the room first.", articles[1].Content)

	page, total, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)
}
