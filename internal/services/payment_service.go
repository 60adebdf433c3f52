package services

import (
	"context"
	"time"

	"storefront-service/internal/domain"
	mdt "storefront-service/internal/infra/midtrans"
	rabbit "storefront-service/internal/infra/rabbitmq"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService struct {
	store     repository.Store
	gateway   mdt.GatewayInterface
	publisher rabbit.PublisherInterface
	logger    *zap.Logger
}

func NewPaymentService(store repository.Store, gateway mdt.GatewayInterface, pub rabbit.PublisherInterface, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:     store,
		gateway:   gateway,
		publisher: pub,
		logger:    logger,
	}
}

type ChargeResult struct {
	Token       string `json:"snapToken"`
	RedirectURL string `json:"redirectUrl"`
}

// CreateSnapToken asks the gateway for a charge token for an existing order
// and stores it. The gateway call happens outside any storage transaction.
func (s *PaymentService) CreateSnapToken(ctx context.Context, orderID string) (*ChargeResult, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	token, err := s.gateway.CreateTransaction(ctx, order)
	if err != nil {
		return nil, err
	}

	snapToken := token.Token
	update := domain.PaymentUpdate{
		PaymentStatus: domain.PaymentPending,
		SnapToken:     &snapToken,
	}
	if err := s.store.Orders().UpdatePayment(ctx, orderID, update); err != nil {
		return nil, err
	}

	return &ChargeResult{Token: token.Token, RedirectURL: token.RedirectURL}, nil
}

// HandleNotification applies a gateway webhook notification to the order's
// payment state. Deliveries are at-least-once and unordered, so the update
// is idempotent and a terminal payment status is never regressed to PENDING
// by a late or replayed notification. Every delivery is appended to the
// payment event log, applied or not.
func (s *PaymentService) HandleNotification(ctx context.Context, n domain.PaymentNotification) error {
	mapped, orderStatus, known := mapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	if !known {
		s.logger.Warn("unknown transaction status, treating as pending",
			zap.String("order_id", n.OrderID),
			zap.String("transaction_status", n.TransactionStatus))
	}

	var applied bool
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, n.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		applied = mapped.IsTerminal() || !order.PaymentStatus.IsTerminal()

		event := &domain.PaymentEvent{
			ID:                uuid.NewString(),
			OrderID:           order.ID,
			TransactionID:     n.TransactionID,
			TransactionStatus: n.TransactionStatus,
			FraudStatus:       n.FraudStatus,
			MappedStatus:      mapped,
			Applied:           applied,
			CreatedAt:         time.Now(),
		}
		if err := tx.PaymentEvents().Append(ctx, event); err != nil {
			return err
		}
		if !applied {
			return nil
		}

		txID := n.TransactionID
		update := domain.PaymentUpdate{
			PaymentStatus: mapped,
			PaymentID:     &txID,
		}
		if err := tx.Orders().UpdatePayment(ctx, order.ID, update); err != nil {
			return err
		}
		if orderStatus != "" && order.Status != orderStatus {
			if err := tx.Orders().UpdateStatus(ctx, order.ID, orderStatus); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if applied {
		go s.publishPaymentUpdated(context.Background(), n.OrderID, mapped, n.TransactionID)
	}
	return nil
}

// OverridePaymentStatus is the explicit admin escape hatch. Unlike webhook
// reconciliation it may set any state, including regressing a terminal one.
func (s *PaymentService) OverridePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.store.Orders().UpdatePayment(ctx, orderID, domain.PaymentUpdate{PaymentStatus: status})
}

func (s *PaymentService) ListEvents(ctx context.Context, orderID string) ([]domain.PaymentEvent, error) {
	return s.store.PaymentEvents().FindByOrder(ctx, orderID)
}

func (s *PaymentService) publishPaymentUpdated(ctx context.Context, orderID string, status domain.PaymentStatus, transactionID string) {
	evt := domain.PaymentUpdatedEvent{
		OrderID:       orderID,
		PaymentStatus: status,
		TransactionID: transactionID,
	}
	if err := s.publisher.Publish(ctx, "payment.updated", evt); err != nil {
		s.logger.Error("failed to publish payment.updated",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}

// mapTransactionStatus translates the gateway vocabulary into internal
// payment and order statuses. The third return value is false for statuses
// outside the known vocabulary, which are treated as PENDING.
func mapTransactionStatus(status, fraud string) (domain.PaymentStatus, domain.OrderStatus, bool) {
	switch status {
	case "capture":
		if fraud == "accept" {
			return domain.PaymentPaid, "", true
		}
		return domain.PaymentFailed, "", true
	case "settlement":
		return domain.PaymentPaid, domain.OrderPaid, true
	case "cancel", "deny":
		return domain.PaymentFailed, "", true
	case "expire":
		return domain.PaymentExpired, "", true
	case "pending":
		return domain.PaymentPending, "", true
	default:
		return domain.PaymentPending, "", false
	}
}
