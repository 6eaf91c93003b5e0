// Package bootstrap wires configuration, repositories and usecases together
// for the server and the maintenance CLI.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/config"
	domainProvider "github.com/Brunohvg/bibpay/internal/domain/provider"
	"github.com/Brunohvg/bibpay/internal/infrastructure/database"
	"github.com/Brunohvg/bibpay/internal/infrastructure/messenger/evolution"
	"github.com/Brunohvg/bibpay/internal/infrastructure/provider"
	"github.com/Brunohvg/bibpay/internal/usecase"
	"github.com/Brunohvg/bibpay/pkg/messaging"
)

// UseCases is the container of every usecase of the service
type UseCases struct {
	Sellers       *usecase.SellerService
	Orders        *usecase.OrderService
	PaymentLinks  *usecase.PaymentLinkService
	Webhooks      *usecase.WebhookService
	Dashboard     *usecase.DashboardService
	Notifications *usecase.NotificationService
	Messenger     domainProvider.Messenger
	Gateways      *provider.Factory

	queue messaging.Queue
}

// NewUseCases builds the usecases. Close releases the notification queue.
func NewUseCases(cfg *config.Config, repos *database.Repositories, logger *zap.Logger) (*UseCases, error) {
	gateways := provider.NewFactory(&cfg.Gateway, logger)
	gateway, err := gateways.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to create payment gateway: %w", err)
	}

	queue, err := NewQueue(cfg.Notification)
	if err != nil {
		return nil, err
	}

	messenger := evolution.NewClient(cfg.Notification.Evolution, logger)
	notifications, err := usecase.NewNotificationService(cfg.Notification, queue, messenger, logger)
	if err != nil {
		_ = queue.Close()
		return nil, err
	}

	links := usecase.NewPaymentLinkService(
		gateway,
		repos.PaymentLink,
		repos.Order,
		notifications,
		cfg.Gateway.Timeout,
		cfg.Gateway.LinkExpiresIn,
		logger,
	)

	return &UseCases{
		Sellers:      usecase.NewSellerService(repos.Seller, logger),
		Orders:       usecase.NewOrderService(repos.Order, repos.Seller, links, logger),
		PaymentLinks: links,
		Webhooks: usecase.NewWebhookService(
			gateways,
			repos.PaymentLink,
			repos.Reconciliation,
			repos.WebhookEvent,
			repos.Seller,
			notifications,
			logger,
		),
		Dashboard:     usecase.NewDashboardService(repos.Dashboard, logger),
		Notifications: notifications,
		Messenger:     messenger,
		Gateways:      gateways,
		queue:         queue,
	}, nil
}

func (u *UseCases) Close() error {
	return u.queue.Close()
}

// NewQueue returns the notification queue selected by cfg.Queue
func NewQueue(cfg config.NotificationConfig) (messaging.Queue, error) {
	switch cfg.Queue {
	case config.QueueRedis:
		queue, err := messaging.NewRedisQueue(messaging.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create notification queue: %w", err)
		}
		return queue, nil
	case config.QueueMemory, "":
		return messaging.NewMemoryQueue(cfg.QueueSize), nil
	default:
		return nil, fmt.Errorf("unsupported notification queue %q", cfg.Queue)
	}
}
