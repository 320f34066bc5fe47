package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/notify"
	"github.com/flicky/homeclick-store/internal/repository"
	"github.com/flicky/homeclick-store/internal/session"
)

// memDB is an in-memory stand-in for Postgres. InTx serializes units of work
// and restores a snapshot when the work fails.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users     map[uuid.UUID]model.User
	customers map[uuid.UUID]model.Customer
	products  map[uuid.UUID]model.Product
	orders    map[uuid.UUID]model.Order
	items     map[int64]model.OrderItem
	shipping  map[uuid.UUID]model.ShippingAddress
	nextID    int64

	// failures makes the named operation return the given error.
	failures map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[uuid.UUID]model.User),
		customers: make(map[uuid.UUID]model.Customer),
		products:  make(map[uuid.UUID]model.Product),
		orders:    make(map[uuid.UUID]model.Order),
		items:     make(map[int64]model.OrderItem),
		shipping:  make(map[uuid.UUID]model.ShippingAddress),
		failures:  make(map[string]error),
	}
}

type memSnapshot struct {
	users     map[uuid.UUID]model.User
	customers map[uuid.UUID]model.Customer
	products  map[uuid.UUID]model.Product
	orders    map[uuid.UUID]model.Order
	items     map[int64]model.OrderItem
	shipping  map[uuid.UUID]model.ShippingAddress
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return memSnapshot{
		users:     copyMap(db.users),
		customers: copyMap(db.customers),
		products:  copyMap(db.products),
		orders:    copyMap(db.orders),
		items:     copyMap(db.items),
		shipping:  copyMap(db.shipping),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users, db.customers, db.products = s.users, s.customers, s.products
	db.orders, db.items, db.shipping = s.orders, s.items, s.shipping
}

func (db *memDB) fail(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

// failure must be called with mu held.
func (db *memDB) failure(op string) error {
	return db.failures[op]
}

func (db *memDB) InTx(_ context.Context, fn func(repos repository.Repositories) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	snap := db.snapshot()
	if err := fn(db.repos()); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *memDB) repos() repository.Repositories {
	return repository.Repositories{
		Users:     memUsers{db},
		Customers: memCustomers{db},
		Products:  memProducts{db},
		Orders:    memOrders{db},
		Items:     memItems{db},
		Shipping:  memShipping{db},
	}
}

// openOrders counts incomplete orders of one customer.
func (db *memDB) openOrders(customerID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	var n int
	for _, o := range db.orders {
		if o.CustomerID == customerID && !o.Complete {
			n++
		}
	}
	return n
}

// insertItem bypasses the cart service, as a racing writer would.
func (db *memDB) insertItem(orderID, productID uuid.UUID, qty int) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID++
	db.items[db.nextID] = model.OrderItem{ID: db.nextID, OrderID: orderID, ProductID: productID, Quantity: qty}
	return db.nextID
}

func (db *memDB) itemsOf(orderID uuid.UUID) []model.OrderItem {
	items, _ := memItems{db}.ListByOrder(context.Background(), orderID)
	return items
}

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

type memCustomers struct{ db *memDB }

func (r memCustomers) Create(_ context.Context, c *model.Customer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure("customers.create"); err != nil {
		return err
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.db.customers[c.ID] = *c
	return nil
}

func (r memCustomers) GetByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memCustomers) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.customers {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memCustomers) UpdateContact(_ context.Context, c *model.Customer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.customers[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Phone, stored.Address = c.Phone, c.Address
	stored.UpdatedAt = time.Now()
	r.db.customers[c.ID] = stored
	return nil
}

type memProducts struct{ db *memDB }

// codeTaken mirrors the unique index on products.code. Caller holds mu.
func (r memProducts) codeTaken(p *model.Product) bool {
	for id, other := range r.db.products {
		if id != p.ID && other.Code == p.Code {
			return true
		}
	}
	return false
}

func (r memProducts) Create(_ context.Context, p *model.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.codeTaken(p) {
		return repository.ErrDuplicate
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.db.products[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) List(_ context.Context, limit, offset int, search string) ([]model.Product, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	needle := strings.ToLower(search)
	var all []model.Product
	for _, p := range r.db.products {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.Code), needle) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r memProducts) Update(_ context.Context, p *model.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.codeTaken(p) {
		return repository.ErrDuplicate
	}
	p.UpdatedAt = time.Now()
	r.db.products[p.ID] = *p
	return nil
}

func (r memProducts) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, item := range r.db.items {
		if item.ProductID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.db.products, id)
	return nil
}

// memArticles keeps articles outside memDB; nothing writes them inside a unit of work.
type memArticles struct {
	mu       sync.Mutex
	articles []model.Article
	failList error
}

func (r *memArticles) Create(_ context.Context, a *model.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	if a.DateUp.IsZero() {
		a.DateUp = a.CreatedAt
	}
	r.articles = append(r.articles, *a)
	return nil
}

func (r *memArticles) List(_ context.Context, limit, offset int) ([]model.Article, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, 0, r.failList
	}
	all := append([]model.Article(nil), r.articles...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].DateUp.After(all[j].DateUp) })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

type memOrders struct{ db *memDB }

func (r memOrders) GetOrCreateOpen(_ context.Context, customerID uuid.UUID) (*model.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.CustomerID == customerID && !o.Complete {
			return &o, nil
		}
	}
	o := model.Order{ID: uuid.New(), CustomerID: customerID, CreatedAt: time.Now()}
	r.db.orders[o.ID] = o
	return &o, nil
}

func (r memOrders) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r memOrders) ListCompletedByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Order
	for _, o := range r.db.orders {
		if o.CustomerID == customerID && o.Complete {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(*out[j].CompletedAt) })
	return out, nil
}

func (r memOrders) MarkComplete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure("orders.complete"); err != nil {
		return err
	}
	o, ok := r.db.orders[id]
	if !ok || o.Complete {
		return repository.ErrOrderAlreadyComplete
	}
	now := time.Now()
	o.Complete, o.CompletedAt = true, &now
	r.db.orders[id] = o
	return nil
}

type memItems struct{ db *memDB }

func (r memItems) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.OrderItem
	for _, item := range r.db.items {
		if item.OrderID == orderID {
			item.Product = r.db.products[item.ProductID]
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memItems) Create(_ context.Context, item *model.OrderItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.nextID++
	item.ID = r.db.nextID
	item.CreatedAt = time.Now()
	stored := *item
	stored.Product = model.Product{}
	r.db.items[item.ID] = stored
	return nil
}

func (r memItems) UpdateQuantity(_ context.Context, id int64, quantity int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Quantity = quantity
	r.db.items[id] = item
	return nil
}

func (r memItems) Delete(_ context.Context, ids ...int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		delete(r.db.items, id)
	}
	return nil
}

type memShipping struct{ db *memDB }

func (r memShipping) Create(_ context.Context, a *model.ShippingAddress) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.failure("shipping.create"); err != nil {
		return err
	}
	r.db.nextID++
	a.ID = r.db.nextID
	a.CreatedAt = time.Now()
	r.db.shipping[a.OrderID] = *a
	return nil
}

func (r memShipping) GetByOrderID(_ context.Context, orderID uuid.UUID) (*model.ShippingAddress, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.shipping[orderID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// memSessions implements session.Store with plain maps.
type memSessions struct {
	mu        sync.Mutex
	discounts map[string]session.Discount
	summaries map[string]session.Summary
	failSave  error
}

func newMemSessions() *memSessions {
	return &memSessions{
		discounts: make(map[string]session.Discount),
		summaries: make(map[string]session.Summary),
	}
}

func (s *memSessions) GetDiscount(_ context.Context, sid string) (session.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discounts[sid], nil
}

func (s *memSessions) SetDiscount(_ context.Context, sid string, d session.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[sid] = d
	return nil
}

func (s *memSessions) ClearDiscount(ctx context.Context, sid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.discounts, sid)
	return nil
}

func (s *memSessions) SaveSummary(ctx context.Context, sid string, sum session.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.summaries[sid] = sum
	return nil
}

func (s *memSessions) LoadSummary(_ context.Context, sid string, consume bool) (*session.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[sid]
	if !ok {
		return nil, nil
	}
	if consume {
		delete(s.summaries, sid)
	}
	return &sum, nil
}

func (s *memSessions) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.discounts, sid)
	delete(s.summaries, sid)
	return nil
}

type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []notify.OrderSummary
	recipients    []string
	welcomes      []string
	ctxErrs       []error
}

func (n *recordingNotifier) RequestOrderConfirmation(ctx context.Context, email string, sum notify.OrderSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
	n.recipients = append(n.recipients, email)
	n.confirmations = append(n.confirmations, sum)
}

func (n *recordingNotifier) RequestWelcome(_ context.Context, email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (db *memDB) seedCustomer(name, email string) identity.Identity {
	userID := uuid.New()
	c := model.Customer{ID: uuid.New(), UserID: userID, Name: name, Email: email}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[userID] = model.User{ID: userID, Email: email}
	db.customers[c.ID] = c
	return identity.Identity{Kind: identity.Customer, UserID: userID, CustomerID: c.ID, SessionID: uuid.NewString()}
}

func (db *memDB) seedProduct(name string, price int64) uuid.UUID {
	p := model.Product{ID: uuid.New(), Name: name, Code: strings.ToUpper(name), Price: price}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.products[p.ID] = p
	return p.ID
}

var (
	anonymous = identity.Identity{Kind: identity.Anonymous}
	adminID   = identity.Identity{Kind: identity.Admin, UserID: uuid.New(), SessionID: "admin-session"}
)
