package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Brunohvg/bibpay/internal/domain/entity"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/provider"
	"github.com/Brunohvg/bibpay/internal/testutil"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

func TestPaymentLinkService_CreateForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("persists an active link with the order total", func(t *testing.T) {
		s := newServices(t)
		seller := testutil.CreateSeller(t, s.db, "Loja")
		order := testutil.CreateOrder(t, s.db, seller.ID, "100.00", "10.50")
		require.NoError(t, s.db.Model(order).Update("installments", 3).Error)

		s.gateway.On("CreatePaymentLink", mock.Anything, mock.MatchedBy(func(req *provider.CreateLinkRequest) bool {
			return req.OrderID == order.ID && req.AmountMinor == 11050 &&
				req.MaxInstallments == 3 && req.FreeInstallments == 3 && req.ExpiresIn == 72*time.Hour
		})).Return(&provider.CreateLinkResponse{ExternalID: "pl_1", URL: "https://pay/pl_1"}, nil).Once()

		link, err := s.links.CreateForOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.LinkStatusActive, link.Status)
		assert.True(t, link.IsActive)
		assert.Equal(t, "pagarme", link.Provider)
		assert.True(t, decimal.RequireFromString("110.50").Equal(link.Amount))
		assert.Equal(t, []usecase.NotificationKind{usecase.NotificationLinkCreated}, s.notifier.kinds())
		s.gateway.AssertExpectations(t)
	})

	t.Run("gateway failure persists nothing", func(t *testing.T) {
		s := newServices(t)
		seller := testutil.CreateSeller(t, s.db, "Loja")
		order := testutil.CreateOrder(t, s.db, seller.ID, "50", "0")

		s.gateway.On("CreatePaymentLink", mock.Anything, mock.Anything).
			Return(nil, &provider.ProviderError{Code: provider.ErrCodeNetwork, Message: "down"}).Once()

		link, err := s.links.CreateForOrder(ctx, order.ID)
		assert.Nil(t, link)
		assert.ErrorIs(t, err, domainerrors.ErrLinkNotProduced)

		links, err := s.repos.PaymentLink.ListByOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, links)
		assert.Equal(t, []usecase.NotificationKind{usecase.NotificationLinkFailed}, s.notifier.kinds())
	})

	t.Run("response without url is a failure", func(t *testing.T) {
		s := newServices(t)
		seller := testutil.CreateSeller(t, s.db, "Loja")
		order := testutil.CreateOrder(t, s.db, seller.ID, "50", "0")

		s.gateway.On("CreatePaymentLink", mock.Anything, mock.Anything).
			Return(&provider.CreateLinkResponse{ExternalID: "pl_1"}, nil).Once()

		_, err := s.links.CreateForOrder(ctx, order.ID)
		assert.ErrorIs(t, err, domainerrors.ErrLinkNotProduced)
	})

	t.Run("gateway timeout is a failure", func(t *testing.T) {
		s := newServices(t)
		seller := testutil.CreateSeller(t, s.db, "Loja")
		order := testutil.CreateOrder(t, s.db, seller.ID, "50", "0")

		s.gateway.On("CreatePaymentLink", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(nil, context.DeadlineExceeded).Once()

		_, err := s.links.CreateForOrder(ctx, order.ID)
		assert.ErrorIs(t, err, domainerrors.ErrLinkNotProduced)
	})

	t.Run("existing active link short-circuits the gateway", func(t *testing.T) {
		s := newServices(t)
		seller := testutil.CreateSeller(t, s.db, "Loja")
		order := testutil.CreateOrder(t, s.db, seller.ID, "50", "0")
		testutil.CreateLink(t, s.db, order, "pl_existing")

		_, err := s.links.CreateForOrder(ctx, order.ID)
		assert.ErrorIs(t, err, domainerrors.ErrActiveLinkExists)
		s.gateway.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
	})

	t.Run("paid orders get no new link", func(t *testing.T) {
		s := newServices(t)
		seller := testutil.CreateSeller(t, s.db, "Loja")
		order := testutil.CreateOrder(t, s.db, seller.ID, "50", "0")
		require.NoError(t, s.repos.Order.UpdateStatus(ctx, order.ID, entity.OrderStatusPaid))

		_, err := s.links.CreateForOrder(ctx, order.ID)
		assert.ErrorIs(t, err, domainerrors.ErrOrderNotPending)
	})

	t.Run("unknown order", func(t *testing.T) {
		s := newServices(t)
		_, err := s.links.CreateForOrder(ctx, 404)
		assert.ErrorIs(t, err, domainerrors.ErrOrderNotFound)
	})
}

func TestPaymentLinkService_CancelAndExpire(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	seller := testutil.CreateSeller(t, s.db, "Loja")
	order := testutil.CreateOrder(t, s.db, seller.ID, "50", "0")
	link := testutil.CreateLink(t, s.db, order, "pl_1")

	canceled, err := s.links.Cancel(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LinkStatusCanceled, canceled.Status)

	_, err = s.links.Cancel(ctx, link.ID)
	require.NoError(t, err)

	_, err = s.links.Cancel(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrPaymentLinkNotFound)

	other := testutil.CreateOrder(t, s.db, seller.ID, "20", "0")
	stale := testutil.CreateLink(t, s.db, other, "pl_stale")
	require.NoError(t, s.db.Model(stale).Update("created_at", time.Now().Add(-100*time.Hour)).Error)

	expired, err := s.links.ExpireStale(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	active, err := s.links.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = s.links.ListByOrder(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrOrderNotFound)
}
