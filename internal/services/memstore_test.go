package service_test

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore keeps the whole catalog, carts and ledger in memory. WithinTx holds
// the store lock for the length of the transaction and restores a snapshot
// when fn fails, which is enough to model row locks and rollback.
type memStore struct {
	mu         sync.Mutex
	categories map[string]models.Category
	products   map[uuid.UUID]models.Product
	carts      map[uuid.UUID]models.Cart
	items      map[uuid.UUID]map[uuid.UUID]int
	orders     map[uuid.UUID]models.Order
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[string]models.Category),
		products:   make(map[uuid.UUID]models.Product),
		carts:      make(map[uuid.UUID]models.Cart),
		items:      make(map[uuid.UUID]map[uuid.UUID]int),
		orders:     make(map[uuid.UUID]models.Order),
	}
}

func (s *memStore) addProduct(name string, price string, stock int) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := models.Product{
		ID:        uuid.New(),
		Name:      name,
		Slug:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Available: true,
	}
	s.products[product.ID] = product

	return product
}

func (s *memStore) product(id uuid.UUID) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.products[id]
}

func (s *memStore) updateProduct(id uuid.UUID, update func(p *models.Product)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := s.products[id]
	update(&product)
	s.products[id] = product
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.orders)
}

type memSnapshot struct {
	products map[uuid.UUID]models.Product
	carts    map[uuid.UUID]models.Cart
	items    map[uuid.UUID]map[uuid.UUID]int
	orders   map[uuid.UUID]models.Order
}

func (s *memStore) snapshot() memSnapshot {
	items := make(map[uuid.UUID]map[uuid.UUID]int, len(s.items))
	for cartID, lines := range s.items {
		items[cartID] = maps.Clone(lines)
	}

	return memSnapshot{
		products: maps.Clone(s.products),
		carts:    maps.Clone(s.carts),
		items:    items,
		orders:   maps.Clone(s.orders),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.products = snap.products
	s.carts = snap.carts
	s.items = snap.items
	s.orders = snap.orders
}

// repos returns repositories that take the store lock per call.
func (s *memStore) repos() *memRepos {
	return &memRepos{store: s}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	txRepos := &memRepos{store: s, inTx: true}

	if err := fn(repository.TxRepositories{Products: txRepos, Carts: txRepos, Orders: txRepos}); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

type memRepos struct {
	store *memStore
	inTx  bool
}

func (r *memRepos) lock() func() {
	if r.inTx {
		return func() {}
	}

	r.store.mu.Lock()

	return r.store.mu.Unlock
}

func notFound(what string) error {
	return fmt.Errorf("failed to get %s: %w", what, sql.ErrNoRows)
}

func (r *memRepos) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	defer r.lock()()

	product, ok := r.store.products[id]
	if !ok {
		return nil, notFound("product")
	}

	return &product, nil
}

func (r *memRepos) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.GetProductByID(ctx, id)
}

func (r *memRepos) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	defer r.lock()()

	for _, product := range r.store.products {
		if product.Slug == slug {
			return &product, nil
		}
	}

	return nil, notFound("product")
}

func (r *memRepos) ListProducts(ctx context.Context, categoryID uuid.NullUUID, page, size int) ([]*models.Product, int, error) {
	defer r.lock()()

	var matched []*models.Product
	for _, product := range r.store.products {
		if !product.Available || (categoryID.Valid && product.CategoryID != categoryID) {
			continue
		}
		matched = append(matched, &product)
	}

	slices.SortFunc(matched, func(a, b *models.Product) int { return bytes.Compare(a.ID[:], b.ID[:]) })

	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))

	return matched[start:end], len(matched), nil
}

func (r *memRepos) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	defer r.lock()()

	category, ok := r.store.categories[slug]
	if !ok {
		return nil, notFound("category")
	}

	return &category, nil
}

func (r *memRepos) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	defer r.lock()()

	product, ok := r.store.products[id]
	if !ok || !product.Available || product.Stock < qty {
		return false, nil
	}

	product.Stock -= qty
	r.store.products[id] = product

	return true, nil
}

func (r *memRepos) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	defer r.lock()()

	cart, ok := r.store.carts[userID]
	if !ok {
		cart = models.Cart{ID: uuid.New(), UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		r.store.carts[userID] = cart
	}

	return &cart, nil
}

func (r *memRepos) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	defer r.lock()()

	cart, ok := r.store.carts[userID]
	if !ok {
		return nil, notFound("cart")
	}

	return &cart, nil
}

func (r *memRepos) LockCart(ctx context.Context, cartID uuid.UUID) error {
	defer r.lock()()

	for _, cart := range r.store.carts {
		if cart.ID == cartID {
			return nil
		}
	}

	return notFound("cart")
}

func (r *memRepos) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	defer r.lock()()

	items := make([]models.CartItem, 0, len(r.store.items[cartID]))
	for productID, qty := range r.store.items[cartID] {
		product := r.store.products[productID]
		items = append(items, models.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  qty,
			Product:   &product,
		})
	}

	slices.SortFunc(items, func(a, b models.CartItem) int { return bytes.Compare(a.ProductID[:], b.ProductID[:]) })

	return items, nil
}

func (r *memRepos) lines(cartID uuid.UUID) map[uuid.UUID]int {
	lines, ok := r.store.items[cartID]
	if !ok {
		lines = make(map[uuid.UUID]int)
		r.store.items[cartID] = lines
	}

	return lines
}

func (r *memRepos) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	defer r.lock()()

	lines := r.lines(cartID)
	if lines[productID]+qty > models.MaxLineQuantity {
		return repository.ErrQuantityLimit
	}
	lines[productID] += qty

	return nil
}

func (r *memRepos) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	defer r.lock()()

	if qty > models.MaxLineQuantity {
		return repository.ErrQuantityLimit
	}
	r.lines(cartID)[productID] = qty

	return nil
}

func (r *memRepos) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	defer r.lock()()

	lines := r.lines(cartID)
	if _, ok := lines[productID]; !ok {
		return false, nil
	}

	delete(lines, productID)

	return true, nil
}

func (r *memRepos) ClearItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	defer r.lock()()

	cleared := int64(len(r.store.items[cartID]))
	r.store.items[cartID] = make(map[uuid.UUID]int)

	return cleared, nil
}

func (r *memRepos) CreateOrder(ctx context.Context, order *models.Order) error {
	defer r.lock()()

	if order.IdempotencyKey != "" {
		for _, existing := range r.store.orders {
			if existing.UserID == order.UserID && existing.IdempotencyKey == order.IdempotencyKey {
				return repository.ErrDuplicateIdempotencyKey
			}
		}
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	stored := *order
	stored.Items = slices.Clone(order.Items)
	r.store.orders[order.ID] = stored

	return nil
}

func (r *memRepos) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	defer r.lock()()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, notFound("order")
	}

	order.Items = slices.Clone(order.Items)

	return &order, nil
}

func (r *memRepos) GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {
	defer r.lock()()

	for _, order := range r.store.orders {
		if order.UserID == userID && order.IdempotencyKey == key {
			order.Items = slices.Clone(order.Items)
			return &order, nil
		}
	}

	return nil, notFound("order")
}

func (r *memRepos) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {
	defer r.lock()()

	var owned []models.Order
	for _, order := range r.store.orders {
		if order.UserID == userID {
			owned = append(owned, order)
		}
	}

	slices.SortFunc(owned, func(a, b models.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })

	start := min((page-1)*size, len(owned))
	end := min(start+size, len(owned))

	return owned[start:end], len(owned), nil
}
