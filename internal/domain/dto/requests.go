package dto

import (
	"time"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/domain/model"
)

// CreateSellerRequest is the body of POST /api/v1/sellers
type CreateSellerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	IsActive *bool  `json:"is_active"`
}

// UpdateSellerRequest changes only the fields present in the body
type UpdateSellerRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	IsActive *bool   `json:"is_active"`
}

// CreateOrderRequest is the body of POST /api/v1/orders
type CreateOrderRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Value        Amount `json:"value" validate:"required"`
	ValueFreight Amount `json:"value_freight"`
	Installments int    `json:"installments" validate:"omitempty,min=1,max=12"`
	SellerID     int64  `json:"seller_id" validate:"required"`
}

// UpdateOrderRequest changes only the fields present in the body
type UpdateOrderRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Value        *Amount `json:"value"`
	ValueFreight *Amount `json:"value_freight"`
	Installments *int    `json:"installments" validate:"omitempty,min=1,max=12"`
	SellerID     *int64  `json:"seller_id"`
}

// UpdateOrderStatusRequest is the body of PATCH /api/v1/orders/:id/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderListQuery is bound from the query string of GET /api/v1/orders
type OrderListQuery struct {
	SellerID  int64  `query:"seller"`
	Status    string `query:"status"`
	DateStart string `query:"date_start"`
	DateEnd   string `query:"date_end"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

// OrderResponse is returned by order creation with the link produced for it
type OrderResponse struct {
	Order       *model.Order       `json:"order"`
	PaymentLink *model.PaymentLink `json:"payment_link"`
	// LinkError is set when the order was stored without a link
	LinkError string `json:"link_error,omitempty"`
}

// OrderListResponse is a page of orders
type OrderListResponse struct {
	Orders     []*model.Order        `json:"orders"`
	Pagination entity.PaginationMeta `json:"pagination"`
}

// PeriodQuery bounds the dashboard payment statistics
type PeriodQuery struct {
	Start string `query:"start"`
	End   string `query:"end"`
}

// WebhookResponse acknowledges a webhook delivery
type WebhookResponse struct {
	Status string `json:"status"`
}

// HealthResponse is served on /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
