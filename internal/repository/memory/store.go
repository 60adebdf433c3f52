// Package memory provides an in-memory repository.Store with transactional
// semantics: writes inside Transaction are rolled back on error. It backs
// the service tests and local development without a MySQL instance.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

type state struct {
	products map[string]*domain.Product
	variants map[string]*domain.ProductVariant
	carts    map[string]*domain.Cart // keyed by userID
	orders   map[string]*domain.Order
	events   map[string][]domain.PaymentEvent // keyed by orderID
}

func newState() *state {
	return &state{
		products: make(map[string]*domain.Product),
		variants: make(map[string]*domain.ProductVariant),
		carts:    make(map[string]*domain.Cart),
		orders:   make(map[string]*domain.Order),
		events:   make(map[string][]domain.PaymentEvent),
	}
}

func (st *state) clone() *state {
	c := newState()
	for id, p := range st.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, v := range st.variants {
		c.variants[id] = cloneVariant(v)
	}
	for uid, cart := range st.carts {
		c.carts[uid] = cloneCart(cart)
	}
	for id, o := range st.orders {
		c.orders[id] = cloneOrder(o)
	}
	for id, evs := range st.events {
		c.events[id] = append([]domain.PaymentEvent(nil), evs...)
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	st   *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

// lock acquires the store mutex unless the store is already a transaction
// view, in which case the transaction holds the lock for its whole span.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Transaction serializes against all other store access and restores the
// pre-transaction state when fn fails, so no partial write survives.
func (s *Store) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &Store{st: s.st, inTx: true}
	if err := fn(tx); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) Orders() repository.OrderRepository             { return ordersRepo{s} }
func (s *Store) Carts() repository.CartRepository               { return cartsRepo{s} }
func (s *Store) Variants() repository.VariantRepository         { return variantsRepo{s} }
func (s *Store) PaymentEvents() repository.PaymentEventRepository { return eventsRepo{s} }

// SeedProduct is a test/dev helper to register a catalog product.
func (s *Store) SeedProduct(p *domain.Product) {
	defer s.lock()()
	cp := *p
	s.st.products[p.ID] = &cp
}

type ordersRepo struct{ s *Store }

func (r ordersRepo) Create(ctx context.Context, order *domain.Order) error {
	defer r.s.lock()()
	if _, ok := r.s.st.orders[order.ID]; ok {
		return errors.New("duplicate order id")
	}
	r.s.st.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r ordersRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.st.orders[id]
	if !ok {
		return nil, nil
	}
	out := cloneOrder(o)
	r.s.attachOrderVariants(out)
	return out, nil
}

func (r ordersRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	// The global mutex already serializes access.
	return r.FindByID(ctx, id)
}

func (r ordersRepo) FindByUser(ctx context.Context, userID string, page, limit int) ([]domain.Order, int64, error) {
	defer r.s.lock()()
	var matched []*domain.Order
	for _, o := range r.s.st.orders {
		if o.UserID == userID {
			matched = append(matched, o)
		}
	}
	return paginate(matched, page, limit)
}

func (r ordersRepo) FindAll(ctx context.Context, page, limit int, status domain.OrderStatus) ([]domain.Order, int64, error) {
	defer r.s.lock()()
	var matched []*domain.Order
	for _, o := range r.s.st.orders {
		if status == "" || o.Status == status {
			matched = append(matched, o)
		}
	}
	return paginate(matched, page, limit)
}

func (r ordersRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	defer r.s.lock()()
	o, ok := r.s.st.orders[id]
	if !ok {
		return nil
	}
	o.Status = status
	return nil
}

func (r ordersRepo) UpdatePayment(ctx context.Context, id string, update domain.PaymentUpdate) error {
	defer r.s.lock()()
	o, ok := r.s.st.orders[id]
	if !ok {
		return nil
	}
	o.PaymentStatus = update.PaymentStatus
	if update.PaymentID != nil {
		o.PaymentID = *update.PaymentID
	}
	if update.SnapToken != nil {
		o.SnapToken = *update.SnapToken
	}
	return nil
}

type cartsRepo struct{ s *Store }

func (r cartsRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	defer r.s.lock()()
	cart, ok := r.s.st.carts[userID]
	if !ok {
		cart = &domain.Cart{ID: "cart-" + userID, UserID: userID}
		r.s.st.carts[userID] = cart
	}
	out := cloneCart(cart)
	for i := range out.Items {
		if v, ok := r.s.st.variants[out.Items[i].VariantID]; ok {
			out.Items[i].Variant = cloneVariant(v)
		}
	}
	return out, nil
}

func (r cartsRepo) FindItem(ctx context.Context, cartID, itemID string) (*domain.CartItem, error) {
	defer r.s.lock()()
	for _, cart := range r.s.st.carts {
		if cart.ID != cartID {
			continue
		}
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				item := cart.Items[i]
				return &item, nil
			}
		}
	}
	return nil, nil
}

func (r cartsRepo) FindItemByVariant(ctx context.Context, cartID, variantID string) (*domain.CartItem, error) {
	defer r.s.lock()()
	for _, cart := range r.s.st.carts {
		if cart.ID != cartID {
			continue
		}
		for i := range cart.Items {
			if cart.Items[i].VariantID == variantID {
				item := cart.Items[i]
				return &item, nil
			}
		}
	}
	return nil, nil
}

func (r cartsRepo) SaveItem(ctx context.Context, item *domain.CartItem) error {
	defer r.s.lock()()
	for _, cart := range r.s.st.carts {
		if cart.ID != item.CartID {
			continue
		}
		saved := *item
		saved.Variant = nil
		for i := range cart.Items {
			if cart.Items[i].ID == item.ID {
				cart.Items[i] = saved
				return nil
			}
		}
		cart.Items = append(cart.Items, saved)
		return nil
	}
	return errors.New("cart not found")
}

func (r cartsRepo) DeleteItem(ctx context.Context, itemID string) error {
	defer r.s.lock()()
	for _, cart := range r.s.st.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (r cartsRepo) Clear(ctx context.Context, userID string) error {
	defer r.s.lock()()
	if cart, ok := r.s.st.carts[userID]; ok {
		cart.Items = nil
	}
	return nil
}

type variantsRepo struct{ s *Store }

func (r variantsRepo) FindByID(ctx context.Context, id string) (*domain.ProductVariant, error) {
	defer r.s.lock()()
	v, ok := r.s.st.variants[id]
	if !ok {
		return nil, nil
	}
	out := cloneVariant(v)
	if p, ok := r.s.st.products[v.ProductID]; ok {
		cp := *p
		out.Product = &cp
	}
	return out, nil
}

func (r variantsRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	defer r.s.lock()()
	v, ok := r.s.st.variants[id]
	if !ok {
		return false, nil
	}
	if v.Stock < qty {
		return false, nil
	}
	v.Stock -= qty
	return true, nil
}

func (r variantsRepo) Save(ctx context.Context, variant *domain.ProductVariant) error {
	defer r.s.lock()()
	r.s.st.variants[variant.ID] = cloneVariant(variant)
	return nil
}

type eventsRepo struct{ s *Store }

func (r eventsRepo) Append(ctx context.Context, event *domain.PaymentEvent) error {
	defer r.s.lock()()
	r.s.st.events[event.OrderID] = append(r.s.st.events[event.OrderID], *event)
	return nil
}

func (r eventsRepo) FindByOrder(ctx context.Context, orderID string) ([]domain.PaymentEvent, error) {
	defer r.s.lock()()
	return append([]domain.PaymentEvent(nil), r.s.st.events[orderID]...), nil
}

// attachOrderVariants fills in variant details on a cloned order, mirroring
// the preloads the GORM repository does. Caller must hold the lock.
func (s *Store) attachOrderVariants(o *domain.Order) {
	for i := range o.Items {
		v, ok := s.st.variants[o.Items[i].VariantID]
		if !ok {
			continue
		}
		cv := cloneVariant(v)
		if p, ok := s.st.products[v.ProductID]; ok {
			cp := *p
			cv.Product = &cp
		}
		o.Items[i].Variant = cv
	}
}

func paginate(matched []*domain.Order, page, limit int) ([]domain.Order, int64, error) {
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]domain.Order, 0, end-start)
	for _, o := range matched[start:end] {
		out = append(out, *cloneOrder(o))
	}
	return out, total, nil
}

func cloneVariant(v *domain.ProductVariant) *domain.ProductVariant {
	cv := *v
	cv.Product = nil
	return &cv
}

func cloneCart(c *domain.Cart) *domain.Cart {
	cc := *c
	cc.Items = append([]domain.CartItem(nil), c.Items...)
	return &cc
}

func cloneOrder(o *domain.Order) *domain.Order {
	co := *o
	co.Items = append([]domain.OrderItem(nil), o.Items...)
	for i := range co.Items {
		co.Items[i].Variant = nil
	}
	return &co
}
