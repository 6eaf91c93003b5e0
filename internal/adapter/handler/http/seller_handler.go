package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/dto"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

type SellerHandler struct {
	sellers *usecase.SellerService
	logger  *zap.Logger
}

func NewSellerHandler(sellers *usecase.SellerService, logger *zap.Logger) *SellerHandler {
	return &SellerHandler{
		sellers: sellers,
		logger:  logger,
	}
}

func (h *SellerHandler) RegisterRoutes(g *echo.Group) {
	sellers := g.Group("/sellers")
	sellers.GET("", h.ListSellers)
	sellers.POST("", h.CreateSeller)
	sellers.GET("/:id", h.GetSeller)
	sellers.PUT("/:id", h.UpdateSeller)
	sellers.DELETE("/:id", h.DeleteSeller)
}

// ListSellers returns every seller, or only active ones with ?active=true
func (h *SellerHandler) ListSellers(c echo.Context) error {
	activeOnly := false
	if raw := c.QueryParam("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return invalidParam("active")
		}
		activeOnly = v
	}

	sellers, err := h.sellers.ListSellers(c.Request().Context(), activeOnly)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, sellers)
}

func (h *SellerHandler) CreateSeller(c echo.Context) error {
	var req dto.CreateSellerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	seller, err := h.sellers.CreateSeller(c.Request().Context(), usecase.SellerInput{
		Name:     &req.Name,
		Phone:    &req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusCreated, seller)
}

func (h *SellerHandler) GetSeller(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	seller, err := h.sellers.GetSeller(c.Request().Context(), id)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, seller)
}

func (h *SellerHandler) UpdateSeller(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateSellerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	seller, err := h.sellers.UpdateSeller(c.Request().Context(), id, usecase.SellerInput{
		Name:     req.Name,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, seller)
}

func (h *SellerHandler) DeleteSeller(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.sellers.DeleteSeller(c.Request().Context(), id); err != nil {
		return toAppError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
