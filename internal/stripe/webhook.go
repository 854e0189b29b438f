package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the maximum allowed age of a signed notification
const DefaultTolerance = 5 * time.Minute

var (
	ErrInvalidSignatureHeader = errors.New("webhook has invalid Stripe-Signature header")
	ErrNoValidSignature       = errors.New("webhook signature mismatch")
	ErrExpiredSignature       = errors.New("webhook timestamp outside of tolerance")
)

// Event is a signed Stripe notification
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// UnmarshalObject decodes the event's data object
func (e Event) UnmarshalObject(out any) error {
	return json.Unmarshal(e.Data.Object, out)
}

// event types handled by this service
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
)

// ConstructEvent verifies the Stripe-Signature header against the raw
// request payload and parses the event on success. The signed payload is
// "<t>.<raw body>" and must be verified over the exact bytes received,
// a re-serialized body would break the signature.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	event := Event{}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	valid := false
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			valid = true
			break
		}
	}
	if !valid {
		return event, ErrNoValidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return event, ErrInvalidSignatureHeader
	}
	if d := time.Since(time.Unix(ts, 0)); d > DefaultTolerance || d < -DefaultTolerance {
		return event, ErrExpiredSignature
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, err
	}

	return event, nil
}

// parseSignatureHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]".
// Unknown schemes are skipped, Stripe may send v0 signatures as well.
func parseSignatureHeader(header string) (string, [][]byte, error) {
	var timestamp string
	var signatures [][]byte

	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			timestamp = parts[1]
		case "v1":
			sig, err := hex.DecodeString(parts[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return "", nil, ErrInvalidSignatureHeader
	}

	return timestamp, signatures, nil
}
