package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/testutil"
	"github.com/Brunohvg/bibpay/internal/usecase"
)

func TestSellerService(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	name, phone := " Bruna ", "(31) 98888-7777"
	seller, err := s.sellers.CreateSeller(ctx, usecase.SellerInput{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Bruna", seller.Name)
	assert.True(t, seller.IsActive)

	_, err = s.sellers.CreateSeller(ctx, usecase.SellerInput{Phone: &phone})
	var verr *domainerrors.ValidationError
	assert.ErrorAs(t, err, &verr)

	inactive := false
	updated, err := s.sellers.UpdateSeller(ctx, seller.ID, usecase.SellerInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	active, err := s.sellers.ListSellers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	testutil.CreateOrder(t, s.db, seller.ID, "10", "0")
	assert.ErrorIs(t, s.sellers.DeleteSeller(ctx, seller.ID), domainerrors.ErrSellerHasOrders)

	other := testutil.CreateSeller(t, s.db, "Sem pedidos")
	require.NoError(t, s.sellers.DeleteSeller(ctx, other.ID))
	assert.ErrorIs(t, s.sellers.DeleteSeller(ctx, other.ID), domainerrors.ErrSellerNotFound)
}
