package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/stripe"
)

// OrderRepository is interface for interacting with order records
type OrderRepository interface {
	// CreateOrder inserts new pending order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderBySessionID returns order by checkout session id
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	// CompleteOrder applies the idempotent pending -> completed transition
	CompleteOrder(ctx context.Context, sessionID, paymentIntentID string, pm models.PaymentMethod) (*models.Order, error)
}

// PaymentGateway is interface to the payment processor
type PaymentGateway interface {
	// CreateCheckoutSession opens a new payment session
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	// GetPaymentIntent retrieves a payment intent expanded with charges
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

// CheckoutService creates payment sessions and pending orders
type CheckoutService struct {
	repo       OrderRepository
	gateway    PaymentGateway
	successURL string
	cancelURL  string
}

// NewCheckoutService creates new CheckoutService instance
func NewCheckoutService(repo OrderRepository, gateway PaymentGateway, successURL, cancelURL string) *CheckoutService {
	return &CheckoutService{
		repo:       repo,
		gateway:    gateway,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateIntent opens a checkout session for the cart and persists the
// pending order keyed by the session id. The order is inserted only after
// the processor accepted the session, so a rejected session leaves no
// orphaned pending record.
func (cs *CheckoutService) CreateIntent(ctx context.Context, items []models.OrderItem, customerDetails json.RawMessage) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty product list", models.ErrValidation)
	}

	lineItems := make([]stripe.LineItem, 0, len(items))
	total := 0.0
	for _, item := range items {
		if item.Price <= 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: non-positive price or quantity for %q", models.ErrValidation, item.Name)
		}
		lineItems = append(lineItems, stripe.LineItem{
			Name:       item.Name,
			UnitAmount: int64(math.Round(item.Price * 100)),
			Quantity:   int64(item.Quantity),
		})
		total += item.Price * float64(item.Quantity)
	}

	session, err := cs.gateway.CreateCheckoutSession(ctx, stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		SuccessURL: cs.successURL,
		CancelURL:  cs.cancelURL,
	})
	if err != nil {
		return nil, err
	}

	order := models.Order{
		SessionID:       session.ID,
		Products:        items,
		TotalAmount:     total,
		CustomerDetails: customerDetails,
		Status:          models.OrderStatusPending,
	}

	return cs.repo.CreateOrder(ctx, &order)
}
