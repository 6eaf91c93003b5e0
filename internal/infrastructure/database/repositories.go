package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/adapter/repository"
	domainRepo "github.com/Brunohvg/bibpay/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Seller         domainRepo.SellerRepository
	Order          domainRepo.OrderRepository
	PaymentLink    domainRepo.PaymentLinkRepository
	Payment        domainRepo.PaymentRepository
	Reconciliation domainRepo.ReconciliationRepository
	WebhookEvent   domainRepo.WebhookEventRepository
	Dashboard      domainRepo.DashboardRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Seller:         repository.NewSellerRepository(db, logger),
		Order:          repository.NewOrderRepository(db, logger),
		PaymentLink:    repository.NewPaymentLinkRepository(db, logger),
		Payment:        repository.NewPaymentRepository(db, logger),
		Reconciliation: repository.NewReconciliationRepository(db, logger),
		WebhookEvent:   repository.NewWebhookEventRepository(db, logger),
		Dashboard:      repository.NewDashboardRepository(db, logger),
	}
}
