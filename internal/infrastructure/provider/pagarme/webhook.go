package pagarme

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Brunohvg/bibpay/internal/domain/provider"
)

// SignatureHeader carries "sha1=<hex hmac of the raw body>"
const SignatureHeader = "X-Hub-Signature"

type webhookData struct {
	PaymentLinkID string     `json:"payment_link_id"`
	Code          string     `json:"code"`
	IDOrCode      string     `json:"id_or_code"`
	Status        string     `json:"status"`
	PaidAmount    *int64     `json:"paid_amount"`
	Amount        *int64     `json:"amount"`
	PaidAt        *time.Time `json:"paid_at"`
}

type webhookPayload struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	CreatedAt *time.Time  `json:"created_at"`
	Data      webhookData `json:"data"`
}

// linkID prefers the explicit link reference over the charge code
func (d webhookData) linkID() string {
	for _, id := range []string{d.PaymentLinkID, d.Code, d.IDOrCode} {
		if id != "" {
			return id
		}
	}
	return ""
}

func (d webhookData) amountMinor() int64 {
	if d.PaidAmount != nil {
		return *d.PaidAmount
	}
	if d.Amount != nil {
		return *d.Amount
	}
	return 0
}

// ParseWebhook verifies the delivery signature when a secret is configured and
// normalizes the payload. Non-payment event types are returned without link data.
func (p *PagarMeProvider) ParseWebhook(payload []byte, header http.Header) (*provider.WebhookEvent, error) {
	if p.webhookSecret != "" {
		if !p.verifySignature(payload, header.Get(SignatureHeader)) {
			return nil, &provider.ProviderError{
				Code:    provider.ErrCodeInvalidSignature,
				Message: "webhook signature mismatch",
			}
		}
	}

	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidPayload,
			Message: "Failed to parse webhook payload",
			Details: err.Error(),
		}
	}

	event := &provider.WebhookEvent{
		DeliveryID: body.ID,
		Provider:   p.Name(),
		Type:       body.Type,
		Payload:    payload,
	}
	if event.DeliveryID == "" {
		event.DeliveryID = uuid.NewString()
	}
	if body.CreatedAt != nil {
		event.OccurredAt = *body.CreatedAt
	}

	if !event.IsPaymentEvent() {
		return event, nil
	}

	event.ExternalLinkID = body.Data.linkID()
	event.Status = body.Data.Status
	event.AmountMinor = body.Data.amountMinor()
	event.PaidAt = body.Data.PaidAt

	if event.ExternalLinkID == "" {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidPayload,
			Message: "webhook payload carries no payment link reference",
		}
	}

	return event, nil
}

func (p *PagarMeProvider) verifySignature(payload []byte, signature string) bool {
	hexSig, ok := strings.CutPrefix(signature, "sha1=")
	if !ok {
		return false
	}
	received, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha1.New, []byte(p.webhookSecret))
	mac.Write(payload)
	return hmac.Equal(received, mac.Sum(nil))
}

// Sign returns the X-Hub-Signature value for payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(payload)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}
