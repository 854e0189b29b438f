package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/stripe"
)

type CheckoutService interface {
	// CreateIntent opens a payment session and persists the pending order
	CreateIntent(ctx context.Context, items []models.OrderItem, customerDetails json.RawMessage) (*models.Order, error)
}

// CheckoutHandler represents HTTP handler for checkout-related requests
type CheckoutHandler struct {
	svc CheckoutService
}

// NewCheckoutHandler creates new CheckoutHandler instance
func NewCheckoutHandler(svc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

type createIntentRequest struct {
	Products        []models.OrderItem `json:"products"`
	CustomerDetails json.RawMessage    `json:"customerDetails"`
}

type createIntentResponse struct {
	ID string `json:"id"`
}

// CreatePaymentIntent creates checkout session for the cart
// 200 — session created, body carries the session reference;
// 400 — malformed request or invalid product list;
// 502 — payment processor rejected the session request;
// 500 — internal error.
func (ch *CheckoutHandler) CreatePaymentIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createIntentRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := ch.svc.CreateIntent(r.Context(), req.Products, req.CustomerDetails)
		if err != nil {
			var apiErr *stripe.APIError
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.As(err, &apiErr):
				http.Error(w, "payment processor rejected the request", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(createIntentResponse{ID: order.SessionID}); err != nil {
			return
		}
	}
}
