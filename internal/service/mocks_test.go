package service

import (
	"context"
	"time"

	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/stripe"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) CompleteOrder(ctx context.Context, sessionID, paymentIntentID string, pm models.PaymentMethod) (*models.Order, error) {
	args := m.Called(ctx, sessionID, paymentIntentID, pm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, params stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) EnqueueJob(ctx context.Context, sessionID, paymentIntentID string, nextAttemptAt time.Time) error {
	args := m.Called(ctx, sessionID, paymentIntentID, nextAttemptAt)
	return args.Error(0)
}

func (m *MockJobRepository) ClaimDueJobs(ctx context.Context, limit int) ([]models.ReconcileJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReconcileJob), args.Error(1)
}

func (m *MockJobRepository) MarkJobDone(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJobRepository) MarkJobDead(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJobRepository) RescheduleJob(ctx context.Context, id uint64, attempts int, nextAttemptAt time.Time) error {
	args := m.Called(ctx, id, attempts, nextAttemptAt)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(key, value []byte) {
	m.Called(key, value)
}
