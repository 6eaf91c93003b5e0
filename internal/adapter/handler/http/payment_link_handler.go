package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/usecase"
)

type PaymentLinkHandler struct {
	links  *usecase.PaymentLinkService
	logger *zap.Logger
}

func NewPaymentLinkHandler(links *usecase.PaymentLinkService, logger *zap.Logger) *PaymentLinkHandler {
	return &PaymentLinkHandler{
		links:  links,
		logger: logger,
	}
}

func (h *PaymentLinkHandler) RegisterRoutes(g *echo.Group) {
	links := g.Group("/payment-links")
	links.GET("/active", h.ListActive)
	links.POST("/:id/cancel", h.Cancel)
}

func (h *PaymentLinkHandler) ListActive(c echo.Context) error {
	links, err := h.links.ListActive(c.Request().Context())
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, links)
}

// Cancel is idempotent for links that are already canceled
func (h *PaymentLinkHandler) Cancel(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	link, err := h.links.Cancel(c.Request().Context(), id)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, link)
}
