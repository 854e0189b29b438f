package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(payload []byte, secret string) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func completedSessionPayload() []byte {
	return []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","payment_intent":"pi_test_1"}}}`)
}

func TestWebhookHandler_HandleNotification(t *testing.T) {
	tests := []struct {
		name           string
		payload        []byte
		sigHeader      func(payload []byte) string
		handlerErr     error
		wantStatusCode int
		wantDispatched bool
	}{
		{
			// 200 — authenticated and queued.
			name:           "valid_notification_return_200",
			payload:        completedSessionPayload(),
			sigHeader:      func(p []byte) string { return signPayload(p, testWebhookSecret) },
			wantStatusCode: http.StatusOK,
			wantDispatched: true,
		},
		{
			// 400 — signature from the wrong secret.
			name:           "invalid_signature_return_400",
			payload:        completedSessionPayload(),
			sigHeader:      func(p []byte) string { return signPayload(p, "whsec_wrong") },
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 400 — body tampered after signing.
			name:    "tampered_body_return_400",
			payload: completedSessionPayload(),
			sigHeader: func(p []byte) string {
				return signPayload([]byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_evil"}}}`), testWebhookSecret)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 400 — oversized body is rejected before verification.
			name:           "oversized_body_return_400",
			payload:        append(completedSessionPayload(), bytes.Repeat([]byte(" "), maxPayloadBytes)...),
			sigHeader:      func(p []byte) string { return signPayload(p, testWebhookSecret) },
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 200 — unrecognized type is acknowledged and dropped.
			name:           "unknown_event_type_return_200",
			payload:        []byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`),
			sigHeader:      func(p []byte) string { return signPayload(p, testWebhookSecret) },
			wantStatusCode: http.StatusOK,
		},
		{
			// 500 — recognized event could not be queued.
			name:           "enqueue_failure_return_500",
			payload:        completedSessionPayload(),
			sigHeader:      func(p []byte) string { return signPayload(p, testWebhookSecret) },
			handlerErr:     errors.New("insert failed"),
			wantStatusCode: http.StatusInternalServerError,
			wantDispatched: true,
		},
		{
			// 200 — malformed payload is acknowledged, not retried forever.
			name:           "invalid_payload_return_200",
			payload:        completedSessionPayload(),
			sigHeader:      func(p []byte) string { return signPayload(p, testWebhookSecret) },
			handlerErr:     models.ErrValidation,
			wantStatusCode: http.StatusOK,
			wantDispatched: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatched := false

			wh := NewWebhookHandler(testWebhookSecret)
			wh.On(stripe.EventCheckoutSessionCompleted, func(ctx context.Context, event stripe.Event) error {
				dispatched = true

				var session stripe.CheckoutSession
				require.NoError(t, event.UnmarshalObject(&session))
				assert.Equal(t, "cs_test_1", session.ID)
				assert.Equal(t, "pi_test_1", session.PaymentIntent)

				return tt.handlerErr
			})

			req, err := http.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(tt.payload)))
			require.NoError(t, err)
			req.Header.Set("Stripe-Signature", tt.sigHeader(tt.payload))

			w := httptest.NewRecorder()
			h := wh.HandleNotification()
			h(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			assert.Equal(t, tt.wantDispatched, dispatched)

			if tt.wantStatusCode == http.StatusOK {
				resBody, err := io.ReadAll(res.Body)
				require.NoError(t, err)

				var got webhookResponse
				require.NoError(t, json.Unmarshal(resBody, &got))
				assert.True(t, got.Received)
			}
		})
	}
}
