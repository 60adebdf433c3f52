package repository

import (
	"context"

	"storefront-service/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	// FindByID returns (nil, nil) when no order exists.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// FindByIDForUpdate locks the order row for the duration of the
	// surrounding transaction.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID string, page, limit int) ([]domain.Order, int64, error)
	FindAll(ctx context.Context, page, limit int, status domain.OrderStatus) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdatePayment(ctx context.Context, id string, update domain.PaymentUpdate) error
}

type CartRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	// FindItem returns (nil, nil) when the item does not belong to the cart.
	FindItem(ctx context.Context, cartID, itemID string) (*domain.CartItem, error)
	FindItemByVariant(ctx context.Context, cartID, variantID string) (*domain.CartItem, error)
	SaveItem(ctx context.Context, item *domain.CartItem) error
	DeleteItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context, userID string) error
}

type VariantRepository interface {
	// FindByID returns (nil, nil) when the variant does not exist or is
	// soft-deleted.
	FindByID(ctx context.Context, id string) (*domain.ProductVariant, error)
	// DecrementStock atomically checks stock >= qty and subtracts qty in one
	// step. It reports false when current stock is insufficient, leaving the
	// row untouched. This is the sole primitive guarding against oversell.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
	Save(ctx context.Context, variant *domain.ProductVariant) error
}

type PaymentEventRepository interface {
	Append(ctx context.Context, event *domain.PaymentEvent) error
	FindByOrder(ctx context.Context, orderID string) ([]domain.PaymentEvent, error)
}

// Store groups the repositories over one storage backend. Transaction runs
// fn against a store bound to a single all-or-nothing transaction: any error
// from fn rolls every write back.
type Store interface {
	Orders() OrderRepository
	Carts() CartRepository
	Variants() VariantRepository
	PaymentEvents() PaymentEventRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}
