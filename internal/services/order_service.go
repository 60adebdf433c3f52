package services

import (
	"context"
	"time"

	"storefront-service/internal/domain"
	rabbit "storefront-service/internal/infra/rabbitmq"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService struct {
	store        repository.Store
	publisher    rabbit.PublisherInterface
	logger       *zap.Logger
	shippingCost int64
}

func NewOrderService(store repository.Store, pub rabbit.PublisherInterface, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:     store,
		publisher: pub,
		logger:    logger,
	}
}

// SetShippingCost sets the flat shipping rate added to every order.
func (s *OrderService) SetShippingCost(v int64) {
	s.shippingCost = v
}

// PlaceOrder converts the user's cart into an order. Stock checks, the
// conditional decrements, total computation and the order insert run in one
// transaction: a failure at any step leaves no decrement and no order
// behind. Two concurrent checkouts of the last unit resolve by first
// committer wins; the loser gets InsufficientStockError.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, addr domain.ShippingAddress, notes string) (*domain.Order, error) {
	var placed *domain.Order

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		cart, err := tx.Carts().GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		order := &domain.Order{
			ID:              uuid.NewString(),
			UserID:          userID,
			ShippingAddress: addr,
			Notes:           notes,
			Status:          domain.OrderPending,
			PaymentStatus:   domain.PaymentPending,
			CreatedAt:       time.Now(),
		}

		var subtotal int64
		for _, item := range cart.Items {
			// Re-read the variant row inside the transaction; the cart's
			// cached copy may be stale.
			variant, err := tx.Variants().FindByID(ctx, item.VariantID)
			if err != nil {
				return err
			}
			if variant == nil {
				return &VariantNotFoundError{VariantID: item.VariantID}
			}
			if variant.Stock < item.Quantity {
				return &InsufficientStockError{SKU: variant.SKU}
			}

			ok, err := tx.Variants().DecrementStock(ctx, variant.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// Lost the race between the check above and the decrement.
				return &InsufficientStockError{SKU: variant.SKU}
			}

			subtotal += variant.Price * int64(item.Quantity)
			order.Items = append(order.Items, domain.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				VariantID: variant.ID,
				Quantity:  item.Quantity,
				Price:     variant.Price,
			})
		}

		order.Subtotal = subtotal
		order.ShippingCost = s.shippingCost
		order.Total = subtotal + s.shippingCost

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Cart cleanup runs after commit: a miss here must never roll the order
	// back. A later read reconciles the leftover items.
	if err := s.store.Carts().Clear(ctx, userID); err != nil {
		s.logger.Warn("cart clear after placement failed",
			zap.String("user_id", userID),
			zap.String("order_id", placed.ID),
			zap.Error(err))
	}

	go s.publishOrderCreated(context.Background(), placed)

	return placed, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		s.logger.Error("failed to publish order.created",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

// GetOrder returns an order by id. A non-empty userID restricts the lookup
// to that user's orders.
func (s *OrderService) GetOrder(ctx context.Context, id, userID string) (*domain.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil || (userID != "" && order.UserID != userID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.store.Orders().FindByUser(ctx, userID, page, limit)
}

func (s *OrderService) ListAll(ctx context.Context, page, limit int, status domain.OrderStatus) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return s.store.Orders().FindAll(ctx, page, limit, status)
}

// UpdateStatus is the admin fulfillment-status change. It does not touch
// payment state; see PaymentService.OverridePaymentStatus for that.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.store.Orders().UpdateStatus(ctx, id, status)
}
