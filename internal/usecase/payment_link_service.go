package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	"github.com/Brunohvg/bibpay/internal/domain/provider"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

// PaymentLinkService generates payment links through the gateway and manages their lifecycle
type PaymentLinkService struct {
	gateway   provider.PaymentGateway
	linkRepo  domainRepo.PaymentLinkRepository
	orderRepo domainRepo.OrderRepository
	notifier  Notifier
	timeout   time.Duration
	expiresIn time.Duration
	logger    *zap.Logger
}

// NewPaymentLinkService creates a new payment link service instance
func NewPaymentLinkService(
	gateway provider.PaymentGateway,
	linkRepo domainRepo.PaymentLinkRepository,
	orderRepo domainRepo.OrderRepository,
	notifier Notifier,
	timeout time.Duration,
	expiresIn time.Duration,
	logger *zap.Logger,
) *PaymentLinkService {
	return &PaymentLinkService{
		gateway:   gateway,
		linkRepo:  linkRepo,
		orderRepo: orderRepo,
		notifier:  notifier,
		timeout:   timeout,
		expiresIn: expiresIn,
		logger:    logger,
	}
}

// CreateForOrder asks the gateway for a link and persists it as active.
// Gateway failures, timeouts included, return ErrLinkNotProduced and persist nothing.
func (s *PaymentLinkService) CreateForOrder(ctx context.Context, orderID int64) (*model.PaymentLink, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domainerrors.ErrOrderNotFound
	}

	return s.createForOrder(ctx, order)
}

func (s *PaymentLinkService) createForOrder(ctx context.Context, order *model.Order) (*model.PaymentLink, error) {
	if order.Status != entity.OrderStatusPending {
		return nil, domainerrors.ErrOrderNotPending
	}

	active, err := s.linkRepo.HasActiveForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, domainerrors.ErrActiveLinkExists
	}

	resp, err := s.requestLink(ctx, order)
	if err != nil {
		s.logger.Warn("Payment link not produced",
			zap.Int64("order_id", order.ID),
			zap.String("provider", s.gateway.Name()),
			zap.Error(err))
		s.notify(ctx, NotificationLinkFailed, order, nil)
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrLinkNotProduced, err)
	}

	link := &model.PaymentLink{
		OrderID:    order.ID,
		ExternalID: resp.ExternalID,
		Provider:   s.gateway.Name(),
		URL:        resp.URL,
		Amount:     order.Total,
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("Payment link created",
		zap.Int64("order_id", order.ID),
		zap.Int64("link_id", link.ID),
		zap.String("external_id", link.ExternalID))

	s.notify(ctx, NotificationLinkCreated, order, link)
	return link, nil
}

func (s *PaymentLinkService) requestLink(ctx context.Context, order *model.Order) (*provider.CreateLinkResponse, error) {
	gatewayCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.gateway.CreatePaymentLink(gatewayCtx, &provider.CreateLinkRequest{
		OrderID:          order.ID,
		CustomerName:     order.Name,
		AmountMinor:      entity.ToMinorUnits(order.Total),
		MaxInstallments:  order.Installments,
		FreeInstallments: order.Installments,
		ExpiresIn:        s.expiresIn,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Valid() {
		return nil, errors.New("gateway response without link id or url")
	}
	return resp, nil
}

func (s *PaymentLinkService) notify(ctx context.Context, kind NotificationKind, order *model.Order, link *model.PaymentLink) {
	if order.Seller == nil {
		return
	}
	n := Notification{
		Kind:         kind,
		Phone:        order.Seller.Phone,
		OrderID:      order.ID,
		CustomerName: order.Name,
		Amount:       order.Total,
	}
	if link != nil {
		n.URL = link.URL
		n.Amount = link.Amount
	}
	s.notifier.Notify(ctx, n)
}

// Cancel closes a link. Canceling a canceled link is a no-op.
func (s *PaymentLinkService) Cancel(ctx context.Context, linkID int64) (*model.PaymentLink, error) {
	link, err := s.linkRepo.Cancel(ctx, linkID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment link canceled", zap.Int64("link_id", linkID), zap.Int64("order_id", link.OrderID))
	return link, nil
}

// ListByOrder returns the order's links, newest first
func (s *PaymentLinkService) ListByOrder(ctx context.Context, orderID int64) ([]*model.PaymentLink, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domainerrors.ErrOrderNotFound
	}
	return s.linkRepo.ListByOrder(ctx, orderID)
}

func (s *PaymentLinkService) ListActive(ctx context.Context) ([]*model.PaymentLink, error) {
	return s.linkRepo.ListActive(ctx)
}

// ExpireStale expires active links older than the gateway expiry
func (s *PaymentLinkService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	return s.linkRepo.ExpireStale(ctx, now.Add(-s.expiresIn))
}
