package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/config"
	"github.com/Brunohvg/bibpay/internal/domain/provider"
	pagarmeProvider "github.com/Brunohvg/bibpay/internal/infrastructure/provider/pagarme"
	stripeProvider "github.com/Brunohvg/bibpay/internal/infrastructure/provider/stripe"
)

// Factory creates payment gateways based on the provider type
type Factory struct {
	config *config.GatewayConfig
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.GatewayConfig, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetGateway returns a payment gateway based on the provider type
func (f *Factory) GetGateway(providerType provider.ProviderType) (provider.PaymentGateway, error) {
	switch providerType {
	case provider.ProviderTypePagarMe:
		return f.createPagarMeProvider()
	case provider.ProviderTypeStripe:
		return f.createStripeProvider()
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// GetGatewayFromString returns a payment gateway from a string type
func (f *Factory) GetGatewayFromString(providerStr string) (provider.PaymentGateway, error) {
	// Default to the configured provider if not specified
	if providerStr == "" {
		providerStr = f.config.Provider
	}

	return f.GetGateway(provider.ProviderType(providerStr))
}

// Default returns the configured gateway
func (f *Factory) Default() (provider.PaymentGateway, error) {
	return f.GetGatewayFromString("")
}

func (f *Factory) createPagarMeProvider() (provider.PaymentGateway, error) {
	if f.config.PagarMe.SecretKey == "" {
		return nil, fmt.Errorf("Pagar.me secret key not configured")
	}

	return pagarmeProvider.NewPagarMeProvider(
		f.config.PagarMe.BaseURL,
		f.config.PagarMe.SecretKey,
		f.config.PagarMe.WebhookSecret,
		f.config.Timeout,
		f.logger,
	), nil
}

func (f *Factory) createStripeProvider() (provider.PaymentGateway, error) {
	if f.config.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("Stripe secret key not configured")
	}

	return stripeProvider.NewStripeProvider(
		f.config.Stripe.SecretKey,
		f.config.Stripe.WebhookSecret,
		f.config.Stripe.Currency,
		f.config.Timeout,
		f.logger,
	), nil
}
