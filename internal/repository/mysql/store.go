package mysql

import (
	"context"

	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepo{db: s.db}
}

func (s *Store) Carts() repository.CartRepository {
	return &cartRepo{db: s.db}
}

func (s *Store) Variants() repository.VariantRepository {
	return &variantRepo{db: s.db}
}

func (s *Store) PaymentEvents() repository.PaymentEventRepository {
	return &paymentEventRepo{db: s.db}
}

func (s *Store) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
