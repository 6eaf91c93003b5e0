package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/dto"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/usecase"
	apperrors "github.com/Brunohvg/bibpay/pkg/errors"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhooks *usecase.WebhookService
	logger   *zap.Logger
}

func NewWebhookHandler(webhooks *usecase.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhooks: webhooks,
		logger:   logger,
	}
}

// RegisterRoutes mounts the webhook outside API versioning. /webhook uses the
// configured gateway, /webhook/:provider selects one explicitly.
func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhook", h.HandleWebhook)
	e.POST("/webhook/:provider", h.HandleWebhook)
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("Error reading webhook body", zap.Error(err))
		return apperrors.InvalidArgument("error reading request body", err)
	}

	providerName := c.Param("provider")
	status, err := h.webhooks.HandleDelivery(c.Request().Context(), providerName, body, c.Request().Header)
	if err != nil {
		appErr := toWebhookError(err)
		apperrors.LogError(h.logger, appErr, "Webhook delivery rejected",
			zap.String("provider", providerName))
		return appErr
	}

	return c.JSON(http.StatusOK, dto.WebhookResponse{Status: string(status)})
}

// toWebhookError answers 400 for deliveries the gateway should not retry as-is.
// An unknown link is the sender's problem here, not a missing resource.
func toWebhookError(err error) error {
	if errors.Is(err, domainerrors.ErrPaymentLinkNotFound) {
		return apperrors.InvalidArgument(err.Error(), err)
	}
	return toAppError(err)
}
