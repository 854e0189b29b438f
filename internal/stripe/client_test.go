package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		assert.Equal(t, "http://localhost/success", r.PostForm.Get("success_url"))
		assert.Equal(t, "Widget", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "1000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","payment_intent":"pi_test_1","status":"open"}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_key", srv.URL)

	session, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		LineItems:  []LineItem{{Name: "Widget", UnitAmount: 1000, Quantity: 2}},
		SuccessURL: "http://localhost/success",
		CancelURL:  "http://localhost/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "pi_test_1", session.PaymentIntent)
}

func TestClient_CreateCheckoutSession_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_key", srv.URL)

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		LineItems:  []LineItem{{Name: "Widget", UnitAmount: 1000, Quantity: 1}},
		SuccessURL: "http://localhost/success",
		CancelURL:  "http://localhost/cancel",
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Equal(t, "card_error", apiErr.Type)
	assert.Equal(t, "Your card was declined.", apiErr.Message)
}

func TestClient_GetPaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_test_1", r.URL.Path)
		assert.Equal(t, "charges", r.URL.Query().Get("expand[]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "pi_test_1",
			"status": "succeeded",
			"charges": {"data": [{
				"id": "ch_test_1",
				"payment_method_details": {
					"type": "card",
					"card": {"brand": "visa", "last4": "4242", "country": "US"}
				}
			}]}
		}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_key", srv.URL)

	intent, err := client.GetPaymentIntent(context.Background(), "pi_test_1")
	require.NoError(t, err)
	assert.Equal(t, "pi_test_1", intent.ID)
	require.Len(t, intent.Charges.Data, 1)

	details := intent.Charges.Data[0].PaymentMethodDetails
	assert.Equal(t, "card", details.Type)
	require.NotNil(t, details.Card)
	assert.Equal(t, "visa", details.Card.Brand)
	assert.Equal(t, "4242", details.Card.Last4)
	assert.Equal(t, "US", details.Card.Country)
}

func TestClient_GetPaymentIntent_NoCharges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_test_2","status":"succeeded","charges":{"data":[]}}`))
	}))
	defer srv.Close()

	client := NewClient("sk_test_key", srv.URL)

	intent, err := client.GetPaymentIntent(context.Background(), "pi_test_2")
	require.NoError(t, err)
	assert.Empty(t, intent.Charges.Data)
}
