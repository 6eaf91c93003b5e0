package provider

import (
	"context"
	"net/http"
	"time"
)

// PaymentGateway defines the interface for payment link providers (Pagar.me, Stripe)
type PaymentGateway interface {
	// CreatePaymentLink asks the gateway for a hosted checkout link
	CreatePaymentLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error)

	// ParseWebhook verifies and normalizes a provider webhook delivery
	ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error)

	// Name returns the provider name
	Name() string
}

// CreateLinkRequest represents a provider-agnostic payment link request
type CreateLinkRequest struct {
	OrderID          int64         `json:"order_id"`
	CustomerName     string        `json:"customer_name"`
	AmountMinor      int64         `json:"amount_minor"` // Amount in cents
	MaxInstallments  int           `json:"max_installments"`
	FreeInstallments int           `json:"free_installments"`
	ExpiresIn        time.Duration `json:"expires_in"`
}

// CreateLinkResponse is only valid when both fields are set
type CreateLinkResponse struct {
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
}

// Valid reports whether the gateway returned a usable link.
func (r *CreateLinkResponse) Valid() bool {
	return r != nil && r.ExternalID != "" && r.URL != ""
}

// WebhookEvent is a provider webhook delivery normalized to the internal vocabulary
type WebhookEvent struct {
	DeliveryID     string     `json:"delivery_id"`
	Provider       string     `json:"provider"`
	Type           string     `json:"type"`
	ExternalLinkID string     `json:"external_link_id"`
	Status         string     `json:"status"`
	AmountMinor    int64      `json:"amount_minor"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
	Payload        []byte     `json:"-"`

	// Ignore marks payment-typed events that never move a payment, such as
	// an abandoned checkout session on a link that stays open.
	Ignore bool `json:"ignore,omitempty"`
}

// Event type prefixes that concern payments. Anything else is acknowledged and ignored.
var paymentEventPrefixes = []string{"charge.", "order.", "checkout."}

// IsPaymentEvent reports whether the event type carries a payment status.
func (e *WebhookEvent) IsPaymentEvent() bool {
	for _, prefix := range paymentEventPrefixes {
		if len(e.Type) > len(prefix) && e.Type[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// ProviderType represents the type of payment provider
type ProviderType string

const (
	ProviderTypePagarMe ProviderType = "pagarme"
	ProviderTypeStripe  ProviderType = "stripe"
)

// Error codes for provider operations
const (
	ErrCodeNetwork          = "network_error"
	ErrCodeAuthentication   = "authentication_error"
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeInvalidResponse  = "invalid_response"
	ErrCodeInvalidSignature = "invalid_signature"
	ErrCodeInvalidPayload   = "invalid_payload"
)

// Error types for provider operations
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
