package mysql

import (
	"context"

	"storefront-service/internal/domain"

	"gorm.io/gorm"
)

type paymentEventRepo struct {
	db *gorm.DB
}

func (r *paymentEventRepo) Append(ctx context.Context, event *domain.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *paymentEventRepo) FindByOrder(ctx context.Context, orderID string) ([]domain.PaymentEvent, error) {
	var events []domain.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
