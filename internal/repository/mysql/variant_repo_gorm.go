package mysql

import (
	"context"
	"errors"

	"storefront-service/internal/domain"

	"gorm.io/gorm"
)

type variantRepo struct {
	db *gorm.DB
}

func (r *variantRepo) FindByID(ctx context.Context, id string) (*domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&v, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// DecrementStock relies on a single conditional UPDATE so the stock check
// and the subtraction are indivisible with respect to concurrent checkouts
// of the same variant.
func (r *variantRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.ProductVariant{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *variantRepo) Save(ctx context.Context, variant *domain.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}
