package models

import (
	"encoding/json"
	"time"
)

//pending — checkout session is open, payment outcome unknown;
//completed — processor confirmed payment and instrument detail was reconciled.

// order status
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// OrderItem is one priced cart line
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PaymentMethod holds instrument detail reported by the processor.
// Fields may be individually empty when the processor did not supply them.
type PaymentMethod struct {
	Type    string `json:"type,omitempty"`
	Brand   string `json:"brand,omitempty"`
	Last4   string `json:"last4,omitempty"`
	Country string `json:"country,omitempty"`
}

// Order is the authoritative record of a checkout attempt.
// SessionID is assigned by the processor and is the natural key.
type Order struct {
	ID              uint64
	SessionID       string
	Products        []OrderItem
	TotalAmount     float64
	CustomerDetails json.RawMessage
	Status          string
	PaymentIntentID *string
	PaymentMethod   *PaymentMethod
	CreatedAt       time.Time
}
