package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/provider"
)

// SignatureHeader is the header Stripe signs deliveries with
const SignatureHeader = "Stripe-Signature"

// StripeProvider implements the PaymentGateway interface on Stripe Payment Links
type StripeProvider struct {
	api           *client.API
	currency      string
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeProvider creates a new Stripe provider talking to the live API
func NewStripeProvider(secretKey, webhookSecret, currency string, timeout time.Duration, logger *zap.Logger) *StripeProvider {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	})
	return newStripeProvider(secretKey, webhookSecret, currency, backend, logger)
}

// NewStripeProviderWithURL points the API backend at url. Used against stripe-mock and in tests.
func NewStripeProviderWithURL(url, secretKey, webhookSecret, currency string, timeout time.Duration, logger *zap.Logger) *StripeProvider {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		URL:               stripe.String(url),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return newStripeProvider(secretKey, webhookSecret, currency, backend, logger)
}

func newStripeProvider(secretKey, webhookSecret, currency string, backend stripe.Backend, logger *zap.Logger) *StripeProvider {
	if currency == "" {
		currency = string(stripe.CurrencyBRL)
	}
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeProvider{
		api:           api,
		currency:      currency,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// Name returns the provider name
func (s *StripeProvider) Name() string {
	return string(provider.ProviderTypeStripe)
}

// CreatePaymentLink creates an inline price and a payment link selling it once
func (s *StripeProvider) CreatePaymentLink(ctx context.Context, req *provider.CreateLinkRequest) (*provider.CreateLinkResponse, error) {
	s.logger.Info("StripeProvider: Creating payment link",
		zap.Int64("order_id", req.OrderID),
		zap.Int64("amount", req.AmountMinor))

	priceParams := &stripe.PriceParams{
		Currency:   stripe.String(s.currency),
		UnitAmount: stripe.Int64(req.AmountMinor),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String("Pedido " + strconv.FormatInt(req.OrderID, 10) + " - " + req.CustomerName),
		},
	}
	priceParams.Context = ctx

	price, err := s.api.Prices.New(priceParams)
	if err != nil {
		s.logger.Error("StripeProvider: Failed to create price", zap.Error(err))
		return nil, toProviderError(err)
	}

	linkParams := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{{
			Price:    stripe.String(price.ID),
			Quantity: stripe.Int64(1),
		}},
		Restrictions: &stripe.PaymentLinkRestrictionsParams{
			CompletedSessions: &stripe.PaymentLinkRestrictionsCompletedSessionsParams{
				Limit: stripe.Int64(1),
			},
		},
	}
	linkParams.Context = ctx
	linkParams.AddMetadata("order_id", strconv.FormatInt(req.OrderID, 10))

	link, err := s.api.PaymentLinks.New(linkParams)
	if err != nil {
		s.logger.Error("StripeProvider: Failed to create payment link", zap.Error(err))
		return nil, toProviderError(err)
	}

	resp := &provider.CreateLinkResponse{ExternalID: link.ID, URL: link.URL}
	if !resp.Valid() {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidResponse,
			Message: "Stripe response is missing the link id or url",
		}
	}

	s.logger.Info("StripeProvider: Payment link created",
		zap.Int64("order_id", req.OrderID),
		zap.String("external_id", resp.ExternalID))

	return resp, nil
}

// checkout session events mapped to the gateway status vocabulary
var sessionStatuses = map[stripe.EventType]string{
	"checkout.session.async_payment_succeeded": "paid",
	"checkout.session.async_payment_failed":    "failed",
}

// Every visit to a payment link opens its own session. An expired session is
// an abandoned visit; the link keeps accepting payments.
const sessionExpired stripe.EventType = "checkout.session.expired"

// ParseWebhook verifies the Stripe-Signature header when a secret is configured
func (s *StripeProvider) ParseWebhook(payload []byte, header http.Header) (*provider.WebhookEvent, error) {
	var event stripe.Event
	if s.webhookSecret != "" {
		var err error
		event, err = webhook.ConstructEventWithOptions(payload, header.Get(SignatureHeader), s.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, &provider.ProviderError{
				Code:    provider.ErrCodeInvalidSignature,
				Message: "webhook signature mismatch",
				Details: err.Error(),
			}
		}
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidPayload,
			Message: "Failed to parse webhook payload",
			Details: err.Error(),
		}
	}

	result := &provider.WebhookEvent{
		DeliveryID: event.ID,
		Provider:   s.Name(),
		Type:       string(event.Type),
		Payload:    payload,
	}
	if event.Created > 0 {
		result.OccurredAt = time.Unix(event.Created, 0).UTC()
	}

	if !result.IsPaymentEvent() {
		return result, nil
	}
	if event.Data == nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidPayload,
			Message: "webhook payload carries no data object",
		}
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidPayload,
			Message: "Failed to parse checkout session",
			Details: err.Error(),
		}
	}
	if session.PaymentLink == nil || session.PaymentLink.ID == "" {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidPayload,
			Message: "checkout session was not created from a payment link",
		}
	}

	result.ExternalLinkID = session.PaymentLink.ID
	result.AmountMinor = session.AmountTotal
	if event.Type == sessionExpired {
		result.Ignore = true
		return result, nil
	}
	result.Status = sessionStatus(event.Type, session.PaymentStatus)
	if result.Status == "paid" {
		paidAt := result.OccurredAt
		result.PaidAt = &paidAt
	}

	return result, nil
}

// sessionStatus maps checkout events; unmapped types keep their raw name and
// fail status parsing downstream
func sessionStatus(eventType stripe.EventType, paymentStatus stripe.CheckoutSessionPaymentStatus) string {
	if eventType == "checkout.session.completed" {
		if paymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			return "paid"
		}
		return "processing"
	}
	if status, ok := sessionStatuses[eventType]; ok {
		return status
	}
	return string(eventType)
}

func toProviderError(err error) *provider.ProviderError {
	if stripeErr, ok := err.(*stripe.Error); ok {
		code := provider.ErrCodeInvalidRequest
		if stripeErr.HTTPStatusCode == http.StatusUnauthorized {
			code = provider.ErrCodeAuthentication
		}
		return &provider.ProviderError{
			Code:    code,
			Message: stripeErr.Msg,
			Details: string(stripeErr.Code),
		}
	}
	return &provider.ProviderError{
		Code:    provider.ErrCodeNetwork,
		Message: "Stripe API request failed",
		Details: err.Error(),
	}
}
