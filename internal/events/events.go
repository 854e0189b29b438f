package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCompleted = "OrderCompleted"

	TopicOrderCompleted = "order.completed"
)

// Envelope wraps a domain event for downstream consumers
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// OrderCompletedPayload is emitted after a successful reconciliation
type OrderCompletedPayload struct {
	SessionID       string  `json:"session_id"`
	PaymentIntentID string  `json:"payment_intent_id"`
	TotalAmount     float64 `json:"total_amount"`
}

// NewEnvelope builds versioned envelope around payload
func NewEnvelope(eventType, producer string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		Payload:      raw,
	}, nil
}

// Marshal encodes the envelope for the wire
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps all events of one session in order
func PartitionKey(sessionID string) []byte { return []byte(sessionID) }
