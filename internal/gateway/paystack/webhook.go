// internal/gateway/paystack/webhook.go
package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"custodial-wallet/internal/gateway"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw request body.
const SignatureHeader = "x-paystack-signature"

// Webhooks verifies and decodes Paystack notifications. Paystack signs with
// the account's secret key.
type Webhooks struct {
	secret []byte
}

var _ gateway.Notifications = (*Webhooks)(nil)

// NewWebhooks creates a verifier for secret.
func NewWebhooks(secret string) *Webhooks {
	return &Webhooks{secret: []byte(secret)}
}

// Sign returns the signature Paystack would send for body.
func (w *Webhooks) Sign(body []byte) string {
	mac := hmac.New(sha512.New, w.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares signature with the expected one in constant time. An empty
// secret never verifies.
func (w *Webhooks) Verify(body []byte, signature string) bool {
	if len(w.secret) == 0 || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, w.secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

type eventBody struct {
	Event string `json:"event"`
	Data  struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// Parse decodes the fields settlement needs.
func (w *Webhooks) Parse(body []byte) (gateway.Event, error) {
	var e eventBody
	if err := json.Unmarshal(body, &e); err != nil {
		return gateway.Event{}, fmt.Errorf("failed to decode paystack event: %w", err)
	}
	return gateway.Event{
		Kind:      e.Event,
		Status:    e.Data.Status,
		Reference: e.Data.Reference,
		Amount:    e.Data.Amount,
	}, nil
}
