package config

import (
	"fmt"
	"time"
)

const (
	ProviderPagarMe = "pagarme"
	ProviderStripe  = "stripe"
)

type GatewayConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	// LinkExpiresIn is how long a generated link stays payable.
	LinkExpiresIn time.Duration `mapstructure:"link_expires_in"`
	PagarMe       PagarMeConfig `mapstructure:"pagarme"`
	Stripe        StripeConfig  `mapstructure:"stripe"`
}

type PagarMeConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
}

// Validate checks that the selected provider has credentials.
func (g *GatewayConfig) Validate() error {
	switch g.Provider {
	case ProviderPagarMe:
		if g.PagarMe.SecretKey == "" {
			return fmt.Errorf("gateway.pagarme.secret_key is required")
		}
	case ProviderStripe:
		if g.Stripe.SecretKey == "" {
			return fmt.Errorf("gateway.stripe.secret_key is required")
		}
	default:
		return fmt.Errorf("unsupported gateway provider %q", g.Provider)
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	return nil
}
