package services

import (
	"context"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCartService(store repository.Store, logger *zap.Logger) *CartService {
	return &CartService{store: store, logger: logger}
}

func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.store.Carts().GetOrCreate(ctx, userID)
}

// AddItem puts quantity units of a variant into the user's cart, merging
// with an existing line for the same variant. The stock check here is
// advisory; the authoritative check happens at placement time.
func (s *CartService) AddItem(ctx context.Context, userID, variantID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	variant, err := s.store.Variants().FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || !variant.IsActive {
		return nil, &VariantNotFoundError{VariantID: variantID}
	}
	if variant.Stock < quantity {
		return nil, &InsufficientStockError{SKU: variant.SKU}
	}

	cart, err := s.store.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Carts().FindItemByVariant(ctx, cart.ID, variantID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Quantity += quantity
		if err := s.store.Carts().SaveItem(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		item := &domain.CartItem{
			ID:        uuid.NewString(),
			CartID:    cart.ID,
			VariantID: variantID,
			Quantity:  quantity,
		}
		if err := s.store.Carts().SaveItem(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.store.Carts().GetOrCreate(ctx, userID)
}

// UpdateItem sets the quantity of a cart line; zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	cart, err := s.store.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.store.Carts().FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	if quantity <= 0 {
		if err := s.store.Carts().DeleteItem(ctx, itemID); err != nil {
			return nil, err
		}
	} else {
		item.Quantity = quantity
		if err := s.store.Carts().SaveItem(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.store.Carts().GetOrCreate(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	cart, err := s.store.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.store.Carts().FindItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	if err := s.store.Carts().DeleteItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.store.Carts().GetOrCreate(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Carts().Clear(ctx, userID)
}
