package usecase_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	"github.com/Brunohvg/bibpay/internal/domain/provider"
	"github.com/Brunohvg/bibpay/internal/infrastructure/provider/pagarme"
	"github.com/Brunohvg/bibpay/internal/testutil"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

const webhookSecret = "whsec"

type webhookFixture struct {
	*services
	service *usecase.WebhookService
	link    *model.PaymentLink
	order   *model.Order
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	s := newServices(t)
	gateway := pagarme.NewPagarMeProvider("", "sk", webhookSecret, time.Second, zap.NewNop())
	service := usecase.NewWebhookService(staticResolver{gateway: gateway}, s.repos.PaymentLink, s.repos.Reconciliation,
		s.repos.WebhookEvent, s.repos.Seller, s.notifier, zap.NewNop())

	seller := testutil.CreateSeller(t, s.db, "Loja")
	order := testutil.CreateOrder(t, s.db, seller.ID, "100", "10")
	link := testutil.CreateLink(t, s.db, order, "pl_hook")

	return &webhookFixture{services: s, service: service, link: link, order: order}
}

func (f *webhookFixture) deliver(t *testing.T, id, eventType, linkID, status string, cents int64) (usecase.DeliveryStatus, error) {
	t.Helper()

	payload := []byte(fmt.Sprintf(`{"id":%q,"type":%q,"created_at":"2025-12-30T10:00:00Z","data":{"code":%q,"status":%q,"paid_amount":%d}}`,
		id, eventType, linkID, status, cents))
	header := http.Header{}
	header.Set(pagarme.SignatureHeader, pagarme.Sign(webhookSecret, payload))
	return f.service.HandleDelivery(context.Background(), "pagarme", payload, header)
}

func (f *webhookFixture) state(t *testing.T) (*model.Payment, *model.PaymentLink, *model.Order) {
	t.Helper()
	ctx := context.Background()

	payment, err := f.repos.Payment.GetByLinkID(ctx, f.link.ID)
	require.NoError(t, err)
	link, err := f.repos.PaymentLink.GetByID(ctx, f.link.ID)
	require.NoError(t, err)
	order, err := f.repos.Order.GetByID(ctx, f.order.ID)
	require.NoError(t, err)
	return payment, link, order
}

func TestWebhookService_HandleDelivery(t *testing.T) {
	t.Run("paid event reconciles and notifies once", func(t *testing.T) {
		f := newWebhookFixture(t)

		status, err := f.deliver(t, "hook_1", "charge.paid", "pl_hook", "paid", 11000)
		require.NoError(t, err)
		assert.Equal(t, usecase.DeliveryProcessed, status)

		payment, link, order := f.state(t)
		require.NotNil(t, payment)
		assert.Equal(t, entity.PaymentStatusPaid, payment.Status)
		assert.True(t, decimal.RequireFromString("110").Equal(payment.Amount))
		assert.Equal(t, entity.LinkStatusUsed, link.Status)
		assert.Equal(t, entity.OrderStatusPaid, order.Status)
		assert.Equal(t, []usecase.NotificationKind{usecase.NotificationPaymentApproved}, f.notifier.kinds())

		event, err := f.repos.WebhookEvent.GetByDeliveryID(context.Background(), "hook_1")
		require.NoError(t, err)
		assert.Equal(t, model.WebhookStatusCompleted, event.ProcessingStatus)

		// Redelivery of the same event changes nothing and notifies nobody
		status, err = f.deliver(t, "hook_1", "charge.paid", "pl_hook", "paid", 11000)
		require.NoError(t, err)
		assert.Equal(t, usecase.DeliveryProcessed, status)
		assert.Len(t, f.notifier.kinds(), 1)
	})

	t.Run("same status under a new delivery id is idempotent", func(t *testing.T) {
		f := newWebhookFixture(t)

		_, err := f.deliver(t, "hook_1", "charge.paid", "pl_hook", "paid", 11000)
		require.NoError(t, err)
		_, err = f.deliver(t, "hook_2", "order.paid", "pl_hook", "paid", 11000)
		require.NoError(t, err)

		var count int64
		require.NoError(t, f.db.Model(&model.Payment{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
		assert.Len(t, f.notifier.kinds(), 1)
	})

	t.Run("failed event cancels link and order", func(t *testing.T) {
		f := newWebhookFixture(t)

		_, err := f.deliver(t, "hook_1", "charge.payment_failed", "pl_hook", "failed", 0)
		require.NoError(t, err)

		payment, link, order := f.state(t)
		assert.Equal(t, entity.PaymentStatusFailed, payment.Status)
		assert.Equal(t, entity.LinkStatusCanceled, link.Status)
		assert.Equal(t, entity.OrderStatusCanceled, order.Status)
		assert.Equal(t, []usecase.NotificationKind{usecase.NotificationPaymentRefused}, f.notifier.kinds())
	})

	t.Run("pending event leaves link and order alone", func(t *testing.T) {
		f := newWebhookFixture(t)

		_, err := f.deliver(t, "hook_1", "charge.pending", "pl_hook", "pending", 11000)
		require.NoError(t, err)

		payment, link, order := f.state(t)
		assert.Equal(t, entity.PaymentStatusPending, payment.Status)
		assert.Equal(t, entity.LinkStatusActive, link.Status)
		assert.Equal(t, entity.OrderStatusPending, order.Status)
		assert.Empty(t, f.notifier.kinds())
	})

	t.Run("non payment events are ignored", func(t *testing.T) {
		f := newWebhookFixture(t)

		status, err := f.deliver(t, "hook_1", "customer.created", "", "", 0)
		require.NoError(t, err)
		assert.Equal(t, usecase.DeliveryIgnored, status)

		payment, _, _ := f.state(t)
		assert.Nil(t, payment)

		event, err := f.repos.WebhookEvent.GetByDeliveryID(context.Background(), "hook_1")
		require.NoError(t, err)
		assert.Equal(t, model.WebhookStatusIgnored, event.ProcessingStatus)
	})

	t.Run("unknown link mutates nothing", func(t *testing.T) {
		f := newWebhookFixture(t)

		_, err := f.deliver(t, "hook_1", "charge.paid", "pl_other", "paid", 11000)
		assert.ErrorIs(t, err, domainerrors.ErrPaymentLinkNotFound)

		payment, link, order := f.state(t)
		assert.Nil(t, payment)
		assert.Equal(t, entity.LinkStatusActive, link.Status)
		assert.Equal(t, entity.OrderStatusPending, order.Status)

		event, err := f.repos.WebhookEvent.GetByDeliveryID(context.Background(), "hook_1")
		require.NoError(t, err)
		assert.Equal(t, model.WebhookStatusFailed, event.ProcessingStatus)
	})

	t.Run("unknown status mutates nothing", func(t *testing.T) {
		f := newWebhookFixture(t)

		_, err := f.deliver(t, "hook_1", "charge.weird", "pl_hook", "authorized_pending_capture", 11000)
		assert.ErrorIs(t, err, domainerrors.ErrUnknownPaymentStatus)

		payment, _, _ := f.state(t)
		assert.Nil(t, payment)
	})

	t.Run("invalid signature", func(t *testing.T) {
		f := newWebhookFixture(t)

		header := http.Header{}
		header.Set(pagarme.SignatureHeader, "sha1=00")
		_, err := f.service.HandleDelivery(context.Background(), "pagarme", []byte(`{"type":"charge.paid"}`), header)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
	})
}

func TestWebhookService_ProcessEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("missing occurrence time defaults to now", func(t *testing.T) {
		f := newWebhookFixture(t)

		payment, err := f.service.ProcessEvent(ctx, &provider.WebhookEvent{
			Type:           "charge.paid",
			ExternalLinkID: "pl_hook",
			Status:         "PAID",
			AmountMinor:    11000,
		})
		require.NoError(t, err)
		require.NotNil(t, payment.LastEventAt)
		assert.WithinDuration(t, time.Now(), *payment.LastEventAt, time.Minute)
		require.NotNil(t, payment.PaymentDate)
	})

	t.Run("late pending after paid is stale", func(t *testing.T) {
		f := newWebhookFixture(t)
		at := time.Date(2025, 12, 30, 10, 0, 0, 0, time.UTC)

		_, err := f.service.ProcessEvent(ctx, &provider.WebhookEvent{
			Type: "charge.paid", ExternalLinkID: "pl_hook", Status: "paid", AmountMinor: 11000, OccurredAt: at,
		})
		require.NoError(t, err)

		payment, err := f.service.ProcessEvent(ctx, &provider.WebhookEvent{
			Type: "charge.pending", ExternalLinkID: "pl_hook", Status: "pending", OccurredAt: at.Add(time.Minute),
		})
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentStatusPaid, payment.Status)
		assert.Len(t, f.notifier.kinds(), 1)
	})

	t.Run("refund after paid notifies refusal", func(t *testing.T) {
		f := newWebhookFixture(t)
		at := time.Date(2025, 12, 30, 10, 0, 0, 0, time.UTC)

		_, err := f.service.ProcessEvent(ctx, &provider.WebhookEvent{
			Type: "charge.paid", ExternalLinkID: "pl_hook", Status: "paid", AmountMinor: 11000, OccurredAt: at,
		})
		require.NoError(t, err)
		_, err = f.service.ProcessEvent(ctx, &provider.WebhookEvent{
			Type: "charge.refunded", ExternalLinkID: "pl_hook", Status: "refunded", OccurredAt: at.Add(time.Hour),
		})
		require.NoError(t, err)

		_, link, order := f.state(t)
		assert.Equal(t, entity.LinkStatusUsed, link.Status)
		assert.Equal(t, entity.OrderStatusCanceled, order.Status)
		assert.Equal(t, []usecase.NotificationKind{usecase.NotificationPaymentApproved, usecase.NotificationPaymentRefused}, f.notifier.kinds())
	})
}

func TestWebhookService_Replay(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)

	// Delivered before the link existed locally
	_, err := f.deliver(t, "hook_early", "charge.paid", "pl_late", "paid", 5000)
	require.ErrorIs(t, err, domainerrors.ErrPaymentLinkNotFound)

	report, err := f.service.Replay(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, usecase.ReplayReport{Attempted: 1, Failed: 1}, report)

	order := testutil.CreateOrder(t, f.db, f.order.SellerID, "50", "0")
	testutil.CreateLink(t, f.db, order, "pl_late")

	report, err = f.service.Replay(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, usecase.ReplayReport{Attempted: 1, Succeeded: 1}, report)

	event, err := f.repos.WebhookEvent.GetByDeliveryID(ctx, "hook_early")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookStatusCompleted, event.ProcessingStatus)

	stored, err := f.repos.Order.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, stored.Status)
}

func TestWebhookService_IgnoredPaymentEvent(t *testing.T) {
	s := newServices(t)
	gateway := new(MockGateway)
	service := usecase.NewWebhookService(staticResolver{gateway: gateway}, s.repos.PaymentLink, s.repos.Reconciliation,
		s.repos.WebhookEvent, s.repos.Seller, s.notifier, zap.NewNop())

	seller := testutil.CreateSeller(t, s.db, "Loja")
	order := testutil.CreateOrder(t, s.db, seller.ID, "100", "10")
	link := testutil.CreateLink(t, s.db, order, "plink_1")

	payload := []byte(`{"id":"evt_expired"}`)
	gateway.On("ParseWebhook", payload, http.Header(nil)).Return(&provider.WebhookEvent{
		DeliveryID:     "evt_expired",
		Provider:       "stripe",
		Type:           "checkout.session.expired",
		ExternalLinkID: "plink_1",
		AmountMinor:    11000,
		OccurredAt:     time.Date(2025, 12, 30, 10, 0, 0, 0, time.UTC),
		Payload:        payload,
		Ignore:         true,
	}, nil)

	status, err := service.HandleDelivery(context.Background(), "stripe", payload, nil)
	require.NoError(t, err)
	assert.Equal(t, usecase.DeliveryIgnored, status)

	payment, err := s.repos.Payment.GetByLinkID(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Nil(t, payment)

	gotLink, err := s.repos.PaymentLink.GetByID(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LinkStatusActive, gotLink.Status)
	assert.True(t, gotLink.IsActive)

	gotOrder, err := s.repos.Order.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, gotOrder.Status)
	assert.Empty(t, s.notifier.kinds())

	event, err := s.repos.WebhookEvent.GetByDeliveryID(context.Background(), "evt_expired")
	require.NoError(t, err)
	assert.Equal(t, model.WebhookStatusIgnored, event.ProcessingStatus)
	gateway.AssertExpectations(t)
}

func TestWebhookService_MalformedPayload(t *testing.T) {
	f := newWebhookFixture(t)

	payload := []byte(`{"id": "hook_1", "type": "charge.paid", "data": [`)
	header := http.Header{}
	header.Set(pagarme.SignatureHeader, pagarme.Sign(webhookSecret, payload))

	_, err := f.service.HandleDelivery(context.Background(), "pagarme", payload, header)

	var verr *domainerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payload", verr.Field)
	assert.Equal(t, "malformed webhook payload", verr.Message)
	assert.NotContains(t, err.Error(), "unexpected end of JSON input")

	payment, _, _ := f.state(t)
	assert.Nil(t, payment)
}
