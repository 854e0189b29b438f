package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is HTTP client for the Stripe API
type Client struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewClient creates new Client instance
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// APIError is an error response returned by Stripe
type APIError struct {
	StatusCode int
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: %s (type=%s status=%d)", e.Message, e.Type, e.StatusCode)
}

// LineItem is one priced line of a checkout session request.
// UnitAmount is in the minor currency unit (cents).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSessionParams are parameters for creating a checkout session
type CheckoutSessionParams struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a Stripe checkout session object
type CheckoutSession struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Status        string `json:"status"`
	URL           string `json:"url"`
}

// PaymentIntent is a Stripe payment intent expanded with charge data
type PaymentIntent struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Charges struct {
		Data []Charge `json:"data"`
	} `json:"charges"`
}

// Charge is a single charge of a payment intent
type Charge struct {
	ID                   string               `json:"id"`
	PaymentMethodDetails PaymentMethodDetails `json:"payment_method_details"`
}

// PaymentMethodDetails describes the instrument used for a charge
type PaymentMethodDetails struct {
	Type string       `json:"type"`
	Card *CardDetails `json:"card"`
}

// CardDetails are card fields of payment method details
type CardDetails struct {
	Brand   string `json:"brand"`
	Last4   string `json:"last4"`
	Country string `json:"country"`
}

// CreateCheckoutSession opens a new card payment session.
// The request carries an idempotency key so a network-level replay
// cannot open a second session.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	// POST /v1/checkout/sessions
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	for i, item := range params.LineItems {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
	}

	session := CheckoutSession{}
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// GetPaymentIntent retrieves a payment intent expanded with its charges
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	// GET /v1/payment_intents/{id}?expand[]=charges
	intent := PaymentIntent{}
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+id+"?expand[]=charges", nil, &intent); err != nil {
		return nil, err
	}

	return &intent, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return err
	}
	// JoinPath escapes the query part, keep it verbatim
	if i := strings.IndexByte(path, '?'); i >= 0 {
		u, err = url.JoinPath(c.baseURL, path[:i])
		if err != nil {
			return err
		}
		u += path[i:]
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := struct {
			Error APIError `json:"error"`
		}{}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "unexpected response"}
		}
		apiErr.Error.StatusCode = resp.StatusCode
		return &apiErr.Error
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
