package midtrans

import (
	"context"

	"storefront-service/internal/domain"
)

type GatewayInterface interface {
	CreateTransaction(ctx context.Context, order *domain.Order) (*ChargeToken, error)
}

var _ GatewayInterface = (*SnapClient)(nil)
