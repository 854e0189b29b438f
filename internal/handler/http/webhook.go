package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/emajohn/checkout/internal/logger"
	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/stripe"
	"go.uber.org/zap"
)

// EventHandler reacts to one verified notification type. It must be
// quick: the webhook response only acknowledges delivery, the business
// effect runs later.
type EventHandler func(ctx context.Context, event stripe.Event) error

// WebhookHandler authenticates processor notifications and dispatches
// them by event type
type WebhookHandler struct {
	secret   string
	handlers map[string]EventHandler
}

// NewWebhookHandler creates new WebhookHandler instance
func NewWebhookHandler(secret string) *WebhookHandler {
	return &WebhookHandler{
		secret:   secret,
		handlers: make(map[string]EventHandler),
	}
}

// On registers handler for the event type
func (wh *WebhookHandler) On(eventType string, h EventHandler) {
	wh.handlers[eventType] = h
}

type webhookResponse struct {
	Received bool `json:"received"`
}

// maxPayloadBytes caps the notification body; real processor events are
// a few kilobytes
const maxPayloadBytes = 64 * 1024

// HandleNotification verifies and dispatches one notification
// 200 — signature valid, notification acknowledged (recognized or not);
// 400 — signature verification failed, payload is never processed;
// 500 — recognized event could not be queued, sender should redeliver.
func (wh *WebhookHandler) HandleNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// the signature covers the exact bytes received, read them raw
		r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		event, err := stripe.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), wh.secret)
		if err != nil {
			logger.Log.Warn("webhook verification failed", zap.Error(err))
			http.Error(w, "webhook error: "+err.Error(), http.StatusBadRequest)
			return
		}

		if h, ok := wh.handlers[event.Type]; ok {
			if err := h(r.Context(), event); err != nil {
				// a malformed payload is acked so the sender does not
				// redeliver it forever; anything else is retriable
				if !errors.Is(err, models.ErrValidation) {
					logger.Log.Error("webhook event not queued",
						zap.String("type", event.Type), zap.Error(err))
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				logger.Log.Warn("webhook event dropped",
					zap.String("type", event.Type), zap.Error(err))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(webhookResponse{Received: true}); err != nil {
			return
		}
	}
}
