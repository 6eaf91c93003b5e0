package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/config"
	"github.com/Brunohvg/bibpay/internal/infrastructure/database"
	httpServer "github.com/Brunohvg/bibpay/internal/infrastructure/http"
	"github.com/Brunohvg/bibpay/internal/infrastructure/provider"
	"github.com/Brunohvg/bibpay/internal/testutil"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

const testWebhookSecret = "whsec_test"

type notifications struct {
	mu    sync.Mutex
	items []usecase.Notification
}

func (n *notifications) Notify(ctx context.Context, item usecase.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
}

func (n *notifications) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

// fakePagarMe answers POST /paymentlinks with sequential link ids
type fakePagarMe struct {
	server  *httptest.Server
	created atomic.Int64
	failing atomic.Bool
}

func newFakePagarMe(t *testing.T) *fakePagarMe {
	f := &fakePagarMe{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		n := f.created.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":"pl_%d","url":"https://pay.example.com/pl_%d"}`, n, n)
	}))
	t.Cleanup(f.server.Close)
	return f
}

type testApp struct {
	db       *gorm.DB
	handler  http.Handler
	gateway  *fakePagarMe
	notified *notifications
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := zap.NewNop()
	db := testutil.NewTestDB(t)
	repos := database.NewRepositories(db, logger)
	gateway := newFakePagarMe(t)

	cfg := &config.Config{
		Service: config.ServiceConfig{Name: "bibpay", Version: "test"},
		Gateway: config.GatewayConfig{
			Provider:      config.ProviderPagarMe,
			Timeout:       2 * time.Second,
			LinkExpiresIn: 72 * time.Hour,
			PagarMe: config.PagarMeConfig{
				BaseURL:       gateway.server.URL,
				SecretKey:     "sk_test",
				WebhookSecret: testWebhookSecret,
			},
		},
	}

	factory := provider.NewFactory(&cfg.Gateway, logger)
	defaultGateway, err := factory.Default()
	require.NoError(t, err)

	notified := &notifications{}
	links := usecase.NewPaymentLinkService(defaultGateway, repos.PaymentLink, repos.Order, notified,
		cfg.Gateway.Timeout, cfg.Gateway.LinkExpiresIn, logger)

	server := httpServer.NewServer(cfg, logger, httpServer.Services{
		Sellers:      usecase.NewSellerService(repos.Seller, logger),
		Orders:       usecase.NewOrderService(repos.Order, repos.Seller, links, logger),
		PaymentLinks: links,
		Webhooks: usecase.NewWebhookService(factory, repos.PaymentLink, repos.Reconciliation,
			repos.WebhookEvent, repos.Seller, notified, logger),
		Dashboard: usecase.NewDashboardService(repos.Dashboard, logger),
	})

	return &testApp{db: db, handler: server.Handler(), gateway: gateway, notified: notified}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
