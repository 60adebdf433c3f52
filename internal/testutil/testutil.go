// Package testutil seeds the in-memory store with catalog and order
// fixtures shared across service and handler tests.
package testutil

import (
	"context"
	"testing"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	UserID = "user-1"
	SKU    = "HGS-30ML"
	Price  = int64(299000)
	Stock  = 50
)

func SeedVariant(t *testing.T, store *memory.Store, id, sku string, price int64, stock int) *domain.ProductVariant {
	t.Helper()
	v := &domain.ProductVariant{
		ID:        id,
		ProductID: "prod-1",
		SKU:       sku,
		Price:     price,
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, store.Variants().Save(context.Background(), v))
	return v
}

func SeedCartItem(t *testing.T, store *memory.Store, userID, variantID string, qty int) {
	t.Helper()
	ctx := context.Background()
	cart, err := store.Carts().GetOrCreate(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, store.Carts().SaveItem(ctx, &domain.CartItem{
		ID:        uuid.NewString(),
		CartID:    cart.ID,
		VariantID: variantID,
		Quantity:  qty,
	}))
}

func SeedOrder(t *testing.T, store *memory.Store, id, userID string, status domain.OrderStatus, payment domain.PaymentStatus) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:            id,
		UserID:        userID,
		Subtotal:      Price,
		Total:         Price,
		Status:        status,
		PaymentStatus: payment,
		Items: []domain.OrderItem{
			{ID: uuid.NewString(), OrderID: id, VariantID: "var-1", Quantity: 1, Price: Price},
		},
	}
	require.NoError(t, store.Orders().Create(context.Background(), order))
	return order
}

func Address() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName:    "Ayu Lestari",
		Phone:       "+6281234567890",
		FullAddress: "Jl. Kemang Raya No. 10",
		City:        "Jakarta Selatan",
		Province:    "DKI Jakarta",
		PostalCode:  "12730",
	}
}
