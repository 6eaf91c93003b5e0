package pagarme

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/provider"
)

const (
	DefaultBaseURL = "https://api.pagar.me/core/v5"

	interestRate  = 2
	itemName      = "Vendas Whatsapp"
	itemDesc      = "Pedido feito por cliente via WhatsApp"
	linkMinExpiry = 20 * time.Minute
)

// PagarMeProvider implements the PaymentGateway interface for Pagar.me core v5
type PagarMeProvider struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	client        *http.Client
	logger        *zap.Logger
}

// NewPagarMeProvider creates a new Pagar.me provider
func NewPagarMeProvider(baseURL, secretKey, webhookSecret string, timeout time.Duration, logger *zap.Logger) *PagarMeProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &PagarMeProvider{
		baseURL:       baseURL,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// Name returns the provider name
func (p *PagarMeProvider) Name() string {
	return string(provider.ProviderTypePagarMe)
}

type installmentsSetup struct {
	InterestType     string `json:"interest_type"`
	MaxInstallments  int    `json:"max_installments"`
	Amount           int64  `json:"amount"`
	InterestRate     int    `json:"interest_rate"`
	FreeInstallments int    `json:"free_installments"`
}

type creditCardSettings struct {
	InstallmentsSetup installmentsSetup `json:"installments_setup"`
	OperationType     string            `json:"operation_type"`
}

type paymentSettings struct {
	CreditCardSettings     creditCardSettings `json:"credit_card_settings"`
	AcceptedPaymentMethods []string           `json:"accepted_payment_methods"`
}

type cartItem struct {
	Amount          int64  `json:"amount"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DefaultQuantity int    `json:"default_quantity"`
}

type cartSettings struct {
	Items []cartItem `json:"items"`
}

type createLinkBody struct {
	IsBuilding      bool            `json:"is_building"`
	PaymentSettings paymentSettings `json:"payment_settings"`
	CartSettings    cartSettings    `json:"cart_settings"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	ExpiresIn       int             `json:"expires_in"`
	MaxPaidSessions int             `json:"max_paid_sessions"`
}

type createLinkResult struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
}

func newCreateLinkBody(req *provider.CreateLinkRequest) createLinkBody {
	maxInstallments := req.MaxInstallments
	if maxInstallments < 1 {
		maxInstallments = 1
	}
	expiresIn := req.ExpiresIn
	if expiresIn < linkMinExpiry {
		expiresIn = linkMinExpiry
	}

	return createLinkBody{
		PaymentSettings: paymentSettings{
			CreditCardSettings: creditCardSettings{
				InstallmentsSetup: installmentsSetup{
					InterestType:     "simple",
					MaxInstallments:  maxInstallments,
					Amount:           req.AmountMinor,
					InterestRate:     interestRate,
					FreeInstallments: req.FreeInstallments,
				},
				OperationType: "auth_and_capture",
			},
			AcceptedPaymentMethods: []string{"credit_card"},
		},
		CartSettings: cartSettings{
			Items: []cartItem{{
				Amount:          req.AmountMinor,
				Name:            itemName,
				Description:     itemDesc,
				DefaultQuantity: 1,
			}},
		},
		Name:            req.CustomerName,
		Type:            "order",
		ExpiresIn:       int(expiresIn / time.Minute),
		MaxPaidSessions: 1,
	}
}

// CreatePaymentLink creates a hosted checkout link
// POST /paymentlinks
func (p *PagarMeProvider) CreatePaymentLink(ctx context.Context, req *provider.CreateLinkRequest) (*provider.CreateLinkResponse, error) {
	p.logger.Info("PagarMeProvider: Creating payment link",
		zap.Int64("order_id", req.OrderID),
		zap.Int64("amount", req.AmountMinor),
		zap.Int("max_installments", req.MaxInstallments))

	jsonBody, err := json.Marshal(newCreateLinkBody(req))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidRequest,
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/paymentlinks", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidRequest,
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}

	auth := base64.StdEncoding.EncodeToString([]byte(p.secretKey + ":"))
	httpReq.Header.Set("Authorization", "Basic "+auth)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Error("PagarMeProvider: Payment link request failed", zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeNetwork,
			Message: "Pagar.me API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeNetwork,
			Message: "Failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		p.logger.Error("PagarMeProvider: Authentication rejected", zap.Int("status_code", resp.StatusCode))
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeAuthentication,
			Message: "Pagar.me rejected the credentials",
			Details: string(respBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &errResp)

		p.logger.Error("PagarMeProvider: Payment link creation failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		message := errResp.Message
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidRequest,
			Message: message,
			Details: string(respBody),
		}
	}

	var result createLinkResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidResponse,
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}

	link := &provider.CreateLinkResponse{ExternalID: result.ID, URL: result.URL}
	if link.URL == "" {
		link.URL = result.ShortURL
	}
	if !link.Valid() {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidResponse,
			Message: "Pagar.me response is missing the link id or url",
			Details: string(respBody),
		}
	}

	p.logger.Info("PagarMeProvider: Payment link created",
		zap.Int64("order_id", req.OrderID),
		zap.String("external_id", link.ExternalID))

	return link, nil
}
