package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVariant(t *testing.T, store *Store, id string, stock int) {
	t.Helper()
	require.NoError(t, store.Variants().Save(context.Background(), &domain.ProductVariant{
		ID:       id,
		SKU:      "SKU-" + id,
		Price:    100000,
		Stock:    stock,
		IsActive: true,
	}))
}

func TestStore_DecrementStock(t *testing.T) {
	store := NewStore()
	seedVariant(t, store, "var-1", 10)
	ctx := context.Background()

	ok, err := store.Variants().DecrementStock(ctx, "var-1", 4)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := store.Variants().FindByID(ctx, "var-1")
	require.NoError(t, err)
	assert.Equal(t, 6, v.Stock)

	// More than remaining stock leaves the row untouched.
	ok, err = store.Variants().DecrementStock(ctx, "var-1", 7)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _ = store.Variants().FindByID(ctx, "var-1")
	assert.Equal(t, 6, v.Stock)

	ok, err = store.Variants().DecrementStock(ctx, "missing", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DecrementStock_Concurrent(t *testing.T) {
	store := NewStore()
	seedVariant(t, store, "var-1", 100)
	ctx := context.Background()

	// 10 callers of 20 units each: only 5 can succeed.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Variants().DecrementStock(ctx, "var-1", 20)
			if err == nil && ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	v, _ := store.Variants().FindByID(ctx, "var-1")
	assert.Equal(t, 0, v.Stock)
}

func TestStore_TransactionRollback(t *testing.T) {
	store := NewStore()
	seedVariant(t, store, "var-1", 10)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx repository.Store) error {
		ok, err := tx.Variants().DecrementStock(ctx, "var-1", 5)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, tx.Orders().Create(ctx, &domain.Order{ID: "order-1", UserID: "user-1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	v, _ := store.Variants().FindByID(ctx, "var-1")
	assert.Equal(t, 10, v.Stock, "decrement must be rolled back")

	order, err := store.Orders().FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Nil(t, order, "order insert must be rolled back")
}

func TestStore_TransactionCommit(t *testing.T) {
	store := NewStore()
	seedVariant(t, store, "var-1", 10)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Variants().DecrementStock(ctx, "var-1", 5); err != nil {
			return err
		}
		return tx.Orders().Create(ctx, &domain.Order{ID: "order-1", UserID: "user-1"})
	})
	require.NoError(t, err)

	v, _ := store.Variants().FindByID(ctx, "var-1")
	assert.Equal(t, 5, v.Stock)

	order, _ := store.Orders().FindByID(ctx, "order-1")
	require.NotNil(t, order)
	assert.Equal(t, "user-1", order.UserID)
}

func TestStore_CartLifecycle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	cart, err := store.Carts().GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	again, err := store.Carts().GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	require.NoError(t, store.Carts().SaveItem(ctx, &domain.CartItem{
		ID:        "item-1",
		CartID:    cart.ID,
		VariantID: "var-1",
		Quantity:  2,
	}))

	item, err := store.Carts().FindItemByVariant(ctx, cart.ID, "var-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 2, item.Quantity)

	require.NoError(t, store.Carts().Clear(ctx, "user-1"))
	cleared, _ := store.Carts().GetOrCreate(ctx, "user-1")
	assert.Empty(t, cleared.Items)
	assert.Equal(t, cart.ID, cleared.ID, "clearing empties the cart without deleting it")
}

func TestStore_OrderPagination(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Orders().Create(ctx, &domain.Order{
			ID:     "order-" + id,
			UserID: "user-1",
			Status: domain.OrderPending,
		}))
	}
	require.NoError(t, store.Orders().Create(ctx, &domain.Order{
		ID:     "order-other",
		UserID: "user-2",
		Status: domain.OrderPaid,
	}))

	orders, total, err := store.Orders().FindByUser(ctx, "user-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, orders, 2)

	orders, total, err = store.Orders().FindAll(ctx, 1, 10, domain.OrderPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "order-other", orders[0].ID)
}

func TestStore_PaymentEvents(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.PaymentEvents().Append(ctx, &domain.PaymentEvent{
		ID:      "evt-1",
		OrderID: "order-1",
		Applied: true,
	}))
	require.NoError(t, store.PaymentEvents().Append(ctx, &domain.PaymentEvent{
		ID:      "evt-2",
		OrderID: "order-1",
		Applied: false,
	}))

	events, err := store.PaymentEvents().FindByOrder(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.False(t, events[1].Applied)
}
