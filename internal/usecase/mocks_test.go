package usecase_test

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	"github.com/Brunohvg/bibpay/internal/domain/provider"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

// MockGateway is a mock implementation of PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentLink(ctx context.Context, req *provider.CreateLinkRequest) (*provider.CreateLinkResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CreateLinkResponse), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, header http.Header) (*provider.WebhookEvent, error) {
	args := m.Called(payload, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.WebhookEvent), args.Error(1)
}

func (m *MockGateway) Name() string {
	return "pagarme"
}

// MockMessenger is a mock implementation of Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendText(ctx context.Context, number, text string) error {
	args := m.Called(ctx, number, text)
	return args.Error(0)
}

func (m *MockMessenger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDashboardRepository is a mock implementation of DashboardRepository
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) PaymentTotals(ctx context.Context, start, end time.Time) ([]entity.StatusTotal, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]entity.StatusTotal), args.Error(1)
}

func (m *MockDashboardRepository) PaidTotal(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDashboardRepository) LinkCounts(ctx context.Context, start, end time.Time) (entity.LinkCounts, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(entity.LinkCounts), args.Error(1)
}

func (m *MockDashboardRepository) OpenValue(ctx context.Context, start time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, start)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDashboardRepository) ActiveSellers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDashboardRepository) SellerStats(ctx context.Context) ([]entity.SellerStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SellerStats), args.Error(1)
}

// recordingNotifier keeps every notification it is given
type recordingNotifier struct {
	mu    sync.Mutex
	items []usecase.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n usecase.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) kinds() []usecase.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]usecase.NotificationKind, 0, len(r.items))
	for _, n := range r.items {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

// staticResolver serves one gateway for every provider name
type staticResolver struct {
	gateway provider.PaymentGateway
}

func (s staticResolver) GetGatewayFromString(name string) (provider.PaymentGateway, error) {
	return s.gateway, nil
}
