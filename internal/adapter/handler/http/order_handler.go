package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/dto"
	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

const linkUnavailableMessage = "order saved, but the payment link could not be generated"

type OrderHandler struct {
	orders *usecase.OrderService
	links  *usecase.PaymentLinkService
	logger *zap.Logger
}

func NewOrderHandler(orders *usecase.OrderService, links *usecase.PaymentLinkService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		links:  links,
		logger: logger,
	}
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	orders := g.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.UpdateOrder)
	orders.DELETE("/:id", h.DeleteOrder)
	orders.PATCH("/:id/status", h.UpdateStatus)
	orders.GET("/:id/payment-links", h.ListPaymentLinks)
	orders.POST("/:id/payment-links", h.CreatePaymentLink)
}

// CreateOrder stores the order and returns it with its payment link. The order
// is created even when the gateway fails; link_error then explains the missing link.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req dto.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Installments == 0 {
		req.Installments = 1
	}

	order, link, err := h.orders.CreateOrder(c.Request().Context(), usecase.CreateOrderInput{
		Name:         req.Name,
		Value:        string(req.Value),
		ValueFreight: string(req.ValueFreight),
		Installments: req.Installments,
		SellerID:     req.SellerID,
	})
	if err != nil {
		return toAppError(err)
	}

	resp := dto.OrderResponse{Order: order, PaymentLink: link}
	if link == nil {
		resp.LinkError = linkUnavailableMessage
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	var query dto.OrderListQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return invalidParam("query")
	}

	filter := domainRepo.OrderFilter{
		SellerID: query.SellerID,
		PaginationParams: entity.PaginationParams{
			Page:  query.Page,
			Limit: query.Limit,
		},
	}
	if query.Status != "" {
		status, err := entity.ParseOrderStatus(query.Status)
		if err != nil {
			return toAppError(err)
		}
		filter.Status = status
	}

	start, err := parseDate(c, "date_start")
	if err != nil {
		return err
	}
	end, err := parseDate(c, "date_end")
	if err != nil {
		return err
	}
	filter.DateStart = start
	if end != nil {
		// date_end names the last day included
		next := end.AddDate(0, 0, 1)
		filter.DateEnd = &next
	}

	orders, meta, err := h.orders.ListOrders(c.Request().Context(), filter)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, dto.OrderListResponse{Orders: orders, Pagination: meta})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdateOrder(c.Request().Context(), id, usecase.UpdateOrderInput{
		Name:         req.Name,
		Value:        req.Value.Ptr(),
		ValueFreight: req.ValueFreight.Ptr(),
		Installments: req.Installments,
		SellerID:     req.SellerID,
	})
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.orders.DeleteOrder(c.Request().Context(), id); err != nil {
		return toAppError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus is the administrative status override
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orders.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListPaymentLinks(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	links, err := h.links.ListByOrder(c.Request().Context(), id)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, links)
}

// CreatePaymentLink retries link generation for a pending order without an active link
func (h *OrderHandler) CreatePaymentLink(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	link, err := h.links.CreateForOrder(c.Request().Context(), id)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusCreated, link)
}
