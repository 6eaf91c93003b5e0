package usecase_test

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/infrastructure/database"
	"github.com/Brunohvg/bibpay/internal/testutil"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

type services struct {
	db       *gorm.DB
	repos    *database.Repositories
	gateway  *MockGateway
	notifier *recordingNotifier
	links    *usecase.PaymentLinkService
	orders   *usecase.OrderService
	sellers  *usecase.SellerService
	webhooks *usecase.WebhookService
}

func newServices(t *testing.T) *services {
	t.Helper()

	logger := zap.NewNop()
	db := testutil.NewTestDB(t)
	repos := database.NewRepositories(db, logger)
	gateway := new(MockGateway)
	notifier := &recordingNotifier{}

	links := usecase.NewPaymentLinkService(gateway, repos.PaymentLink, repos.Order, notifier, 200*time.Millisecond, 72*time.Hour, logger)

	return &services{
		db:       db,
		repos:    repos,
		gateway:  gateway,
		notifier: notifier,
		links:    links,
		orders:   usecase.NewOrderService(repos.Order, repos.Seller, links, logger),
		sellers:  usecase.NewSellerService(repos.Seller, logger),
		webhooks: usecase.NewWebhookService(staticResolver{gateway: gateway}, repos.PaymentLink, repos.Reconciliation, repos.WebhookEvent, repos.Seller, notifier, logger),
	}
}
