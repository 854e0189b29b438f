package repository

import (
	"context"
	"errors"

	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (session_id, products, total_amount, customer_details, status)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING id, session_id, products, total_amount, customer_details, status, payment_intent_id, payment_method, created_at
`
	selectOrderBySessionQuery = `
						SELECT id, session_id, products, total_amount, customer_details, status, payment_intent_id, payment_method, created_at
						FROM orders
						WHERE session_id = $1
`
	completeOrderQuery = `
						UPDATE orders
						SET status = 'completed', payment_intent_id = $2, payment_method = $3
						WHERE session_id = $1 AND status = 'pending'
						RETURNING id, session_id, products, total_amount, customer_details, status, payment_intent_id, payment_method, created_at
`
)

// OrderRepository implements order storage on postgres
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new pending order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := or.db.QueryRow(ctx, insertOrderQuery,
		order.SessionID, order.Products, order.TotalAmount, order.CustomerDetails, order.Status).
		Scan(&order.ID, &order.SessionID, &order.Products, &order.TotalAmount, &order.CustomerDetails,
			&order.Status, &order.PaymentIntentID, &order.PaymentMethod, &order.CreatedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderBySessionID returns order by checkout session id
func (or *OrderRepository) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderBySessionQuery, sessionID).
		Scan(&order.ID, &order.SessionID, &order.Products, &order.TotalAmount, &order.CustomerDetails,
			&order.Status, &order.PaymentIntentID, &order.PaymentMethod, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// CompleteOrder transitions the order to completed and stores payment
// detail. The update is conditional on status = 'pending': a duplicate
// completion finds zero matching rows and returns the already completed
// order unchanged, so repeated invocations are idempotent.
func (or *OrderRepository) CompleteOrder(ctx context.Context, sessionID, paymentIntentID string, pm models.PaymentMethod) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, completeOrderQuery, sessionID, paymentIntentID, pm).
		Scan(&order.ID, &order.SessionID, &order.Products, &order.TotalAmount, &order.CustomerDetails,
			&order.Status, &order.PaymentIntentID, &order.PaymentMethod, &order.CreatedAt)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// no pending row matched: either the order is already completed or it
	// never existed
	cur, err := or.GetOrderBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cur.Status != models.OrderStatusCompleted {
		return nil, models.ErrDataNotFound
	}

	return cur, nil
}
