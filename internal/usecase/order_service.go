package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

// CreateOrderInput carries raw amounts; Brazilian formatting is accepted
type CreateOrderInput struct {
	Name         string
	Value        string
	ValueFreight string
	Installments int
	SellerID     int64
}

// UpdateOrderInput changes only the non-nil fields
type UpdateOrderInput struct {
	Name         *string
	Value        *string
	ValueFreight *string
	Installments *int
	SellerID     *int64
}

// OrderService handles order business logic
type OrderService struct {
	orderRepo   domainRepo.OrderRepository
	sellerRepo  domainRepo.SellerRepository
	linkService *PaymentLinkService
	logger      *zap.Logger
}

// NewOrderService creates a new order service instance
func NewOrderService(
	orderRepo domainRepo.OrderRepository,
	sellerRepo domainRepo.SellerRepository,
	linkService *PaymentLinkService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		sellerRepo:  sellerRepo,
		linkService: linkService,
		logger:      logger,
	}
}

// CreateOrder stores a pending order and then requests its payment link.
// A link failure is logged and leaves the order without a link.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*model.Order, *model.PaymentLink, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, domainerrors.NewValidationError("name", "name is required")
	}
	if input.Installments < 1 {
		return nil, nil, domainerrors.NewValidationError("installments", "installments must be at least 1")
	}

	value, err := parseAmount("value", input.Value)
	if err != nil {
		return nil, nil, err
	}
	freight := decimal.Zero
	if strings.TrimSpace(input.ValueFreight) != "" {
		if freight, err = parseAmount("value_freight", input.ValueFreight); err != nil {
			return nil, nil, err
		}
	}

	seller, err := s.activeSeller(ctx, input.SellerID)
	if err != nil {
		return nil, nil, err
	}

	order := &model.Order{
		Name:         name,
		Status:       entity.OrderStatusPending,
		Installments: input.Installments,
		SellerID:     seller.ID,
	}
	order.SetAmounts(value, freight)

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, nil, err
	}
	order.Seller = seller

	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("seller_id", seller.ID),
		zap.String("total", order.Total.String()))

	link, err := s.linkService.createForOrder(ctx, order)
	if err != nil {
		s.logger.Warn("Order created without payment link",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return order, nil, nil
	}

	return order, link, nil
}

// UpdateOrder applies input. The total follows value and freight; existing
// payment links keep the amount they were created with.
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, input UpdateOrderInput) (*model.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.NewValidationError("name", "name is required")
		}
		order.Name = name
	}
	if input.Installments != nil {
		if *input.Installments < 1 {
			return nil, domainerrors.NewValidationError("installments", "installments must be at least 1")
		}
		order.Installments = *input.Installments
	}

	value, freight := order.Value, order.ValueFreight
	if input.Value != nil {
		if value, err = parseAmount("value", *input.Value); err != nil {
			return nil, err
		}
	}
	if input.ValueFreight != nil {
		if freight, err = parseAmount("value_freight", *input.ValueFreight); err != nil {
			return nil, err
		}
	}
	order.SetAmounts(value, freight)

	if input.SellerID != nil && *input.SellerID != order.SellerID {
		seller, err := s.activeSeller(ctx, *input.SellerID)
		if err != nil {
			return nil, err
		}
		order.SellerID = seller.ID
		order.Seller = seller
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order updated", zap.Int64("order_id", order.ID), zap.String("total", order.Total.String()))
	return order, nil
}

// SetStatus is the admin override of the order status
func (s *OrderService) SetStatus(ctx context.Context, id int64, raw string) (*model.Order, error) {
	status, err := entity.ParseOrderStatus(raw)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("Order status overridden", zap.Int64("order_id", id), zap.String("status", string(status)))
	return s.GetOrder(ctx, id)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.Int64("order_id", id))
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domainerrors.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns one page of orders matching filter
func (s *OrderService) ListOrders(ctx context.Context, filter domainRepo.OrderFilter) ([]*model.Order, entity.PaginationMeta, error) {
	filter.PaginationParams.Validate()

	if filter.DateStart != nil && filter.DateEnd != nil && filter.DateEnd.Before(*filter.DateStart) {
		return nil, entity.PaginationMeta{}, domainerrors.NewValidationError("date_end", "date_end must not be before date_start")
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, entity.PaginationMeta{}, err
	}
	return orders, entity.NewPaginationMeta(filter.Page, filter.Limit, total), nil
}

func (s *OrderService) activeSeller(ctx context.Context, sellerID int64) (*model.Seller, error) {
	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, domainerrors.NewValidationError("seller_id", domainerrors.ErrSellerNotFound.Error())
	}
	if !seller.IsActive {
		return nil, domainerrors.NewValidationError("seller_id", domainerrors.ErrSellerInactive.Error())
	}
	return seller, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := entity.ParseMoney(raw)
	if errors.Is(err, domainerrors.ErrInvalidAmount) {
		return decimal.Zero, domainerrors.NewValidationError(field, "must be a non-negative amount")
	}
	return amount, err
}
