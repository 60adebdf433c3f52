package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/domain"
	mdt "storefront-service/internal/infra/midtrans"
	"storefront-service/internal/mocks"
	"storefront-service/internal/repository/memory"
	"storefront-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentService(store *memory.Store) (*PaymentService, *mocks.MockGateway, *mocks.MockPublisher) {
	gateway := new(mocks.MockGateway)
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, "payment.updated", mock.Anything).Return(nil).Maybe()
	return NewPaymentService(store, gateway, pub, zap.NewNop()), gateway, pub
}

func notification(orderID, status, fraud, txID string) domain.PaymentNotification {
	return domain.PaymentNotification{
		OrderID:           orderID,
		TransactionStatus: status,
		FraudStatus:       fraud,
		TransactionID:     txID,
	}
}

func TestMapTransactionStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		fraud       string
		wantPayment domain.PaymentStatus
		wantOrder   domain.OrderStatus
		wantKnown   bool
	}{
		{"capture accepted", "capture", "accept", domain.PaymentPaid, "", true},
		{"capture challenged", "capture", "challenge", domain.PaymentFailed, "", true},
		{"settlement", "settlement", "", domain.PaymentPaid, domain.OrderPaid, true},
		{"cancel", "cancel", "", domain.PaymentFailed, "", true},
		{"deny", "deny", "", domain.PaymentFailed, "", true},
		{"expire", "expire", "", domain.PaymentExpired, "", true},
		{"pending", "pending", "", domain.PaymentPending, "", true},
		{"unknown vocabulary", "refund", "", domain.PaymentPending, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, order, known := mapTransactionStatus(tt.status, tt.fraud)
			assert.Equal(t, tt.wantPayment, payment)
			assert.Equal(t, tt.wantOrder, order)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestPaymentService_HandleNotification_Settlement(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)
	service, _, _ := newPaymentService(store)

	n := notification("order-1", "settlement", "", "mid-tx-1")
	require.NoError(t, service.HandleNotification(context.Background(), n))

	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, domain.OrderPaid, order.Status)
	assert.Equal(t, "mid-tx-1", order.PaymentID)

	// Replaying the identical delivery leaves the order unchanged.
	require.NoError(t, service.HandleNotification(context.Background(), n))

	replayed, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, order.PaymentStatus, replayed.PaymentStatus)
	assert.Equal(t, order.Status, replayed.Status)
	assert.Equal(t, order.PaymentID, replayed.PaymentID)

	events, err := service.ListEvents(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, evt := range events {
		assert.True(t, evt.Applied)
		assert.Equal(t, "settlement", evt.TransactionStatus)
	}
}

// A late or replayed PENDING-equivalent delivery must not regress a
// terminal payment status.
func TestPaymentService_HandleNotification_TerminalityGuard(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)
	service, _, _ := newPaymentService(store)

	require.NoError(t, service.HandleNotification(context.Background(),
		notification("order-1", "settlement", "", "mid-tx-1")))

	require.NoError(t, service.HandleNotification(context.Background(),
		notification("order-1", "pending", "", "mid-tx-2")))

	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, "mid-tx-1", order.PaymentID, "skipped delivery must not overwrite the transaction id")

	events, _ := service.ListEvents(context.Background(), "order-1")
	require.Len(t, events, 2)
	assert.True(t, events[0].Applied)
	assert.False(t, events[1].Applied)
}

// Terminal states may still replace each other; only PENDING is barred from
// overwriting them.
func TestPaymentService_HandleNotification_TerminalOverTerminal(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)
	service, _, _ := newPaymentService(store)

	require.NoError(t, service.HandleNotification(context.Background(),
		notification("order-1", "expire", "", "mid-tx-1")))

	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.PaymentExpired, order.PaymentStatus)

	require.NoError(t, service.HandleNotification(context.Background(),
		notification("order-1", "settlement", "", "mid-tx-2")))

	order, _ = store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, "mid-tx-2", order.PaymentID)
}

func TestPaymentService_HandleNotification_UnknownStatus(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)
	service, _, _ := newPaymentService(store)

	require.NoError(t, service.HandleNotification(context.Background(),
		notification("order-1", "refund", "", "mid-tx-1")))

	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, domain.OrderPending, order.Status)

	events, _ := service.ListEvents(context.Background(), "order-1")
	require.Len(t, events, 1)
	assert.Equal(t, "refund", events[0].TransactionStatus)
	assert.Equal(t, domain.PaymentPending, events[0].MappedStatus)
}

func TestPaymentService_HandleNotification_OrderNotFound(t *testing.T) {
	store := memory.NewStore()
	service, _, _ := newPaymentService(store)

	err := service.HandleNotification(context.Background(),
		notification("missing", "settlement", "", "mid-tx-1"))
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaymentService_HandleNotification_CaptureFraud(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)
	service, _, _ := newPaymentService(store)

	require.NoError(t, service.HandleNotification(context.Background(),
		notification("order-1", "capture", "challenge", "mid-tx-1")))

	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.PaymentFailed, order.PaymentStatus)
	// Fulfillment status is untouched for capture notifications.
	assert.Equal(t, domain.OrderPending, order.Status)
}

func TestPaymentService_HandleNotification_PublishesWhenApplied(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)

	gateway := new(mocks.MockGateway)
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, "payment.updated", mock.Anything).Return(nil).Once()
	service := NewPaymentService(store, gateway, pub, zap.NewNop())

	require.NoError(t, service.HandleNotification(context.Background(),
		notification("order-1", "settlement", "", "mid-tx-1")))

	time.Sleep(100 * time.Millisecond)
	pub.AssertExpectations(t)
}

func TestPaymentService_OverridePaymentStatus(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPaid, domain.PaymentPaid)
	service, _, _ := newPaymentService(store)

	// The admin override may regress even a terminal state.
	require.NoError(t, service.OverridePaymentStatus(context.Background(), "order-1", domain.PaymentPending))

	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

	err := service.OverridePaymentStatus(context.Background(), "missing", domain.PaymentPaid)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestPaymentService_CreateSnapToken(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)
	service, gateway, _ := newPaymentService(store)

	gateway.On("CreateTransaction", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(&mdt.ChargeToken{Token: "snap-abc", RedirectURL: "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-abc"}, nil)

	result, err := service.CreateSnapToken(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "snap-abc", result.Token)
	assert.NotEmpty(t, result.RedirectURL)

	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Equal(t, "snap-abc", order.SnapToken)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

	gateway.AssertExpectations(t)
}

func TestPaymentService_CreateSnapToken_Errors(t *testing.T) {
	store := memory.NewStore()
	testutil.SeedOrder(t, store, "order-1", testutil.UserID, domain.OrderPending, domain.PaymentPending)
	service, gateway, _ := newPaymentService(store)

	_, err := service.CreateSnapToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway unavailable"))

	_, err = service.CreateSnapToken(context.Background(), "order-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway unavailable")

	// A failed charge leaves the order without a token.
	order, _ := store.Orders().FindByID(context.Background(), "order-1")
	assert.Empty(t, order.SnapToken)
}
