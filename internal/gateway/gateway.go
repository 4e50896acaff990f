// internal/gateway/gateway.go
package gateway

import "context"

// InitializeRequest starts an external payment. Amount is in the gateway's
// minor unit and is passed through unchanged.
type InitializeRequest struct {
	Email     string
	Amount    int64
	Reference string
}

// Authorization is what the payer needs to complete checkout.
type Authorization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Verification is the gateway's current view of a payment.
type Verification struct {
	Reference string
	Status    string
	Amount    int64
}

// Succeeded reports whether the gateway considers the payment settled.
func (v Verification) Succeeded() bool {
	return v.Status == StatusSuccess
}

// Client is the outbound side of the payment processor.
type Client interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error)
	// Verify is only used by reconciliation tooling; settlement is webhook-driven.
	Verify(ctx context.Context, reference string) (*Verification, error)
}

// Event kinds and payment statuses the ledger understands.
const (
	EventChargeSuccess = "charge.success"
	StatusSuccess      = "success"
)

// Event is a decoded inbound payment notification.
type Event struct {
	Kind      string
	Status    string
	Reference string
	Amount    int64
}

// IsSuccessfulCharge reports whether the event confirms a completed payment.
func (e Event) IsSuccessfulCharge() bool {
	return e.Kind == EventChargeSuccess && e.Status == StatusSuccess
}

// Notifications authenticates and decodes inbound webhook bodies.
type Notifications interface {
	// Verify checks signature against the raw body in constant time.
	Verify(body []byte, signature string) bool
	Parse(body []byte) (Event, error)
}
