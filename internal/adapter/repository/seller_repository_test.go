package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/adapter/repository"
	domainerrors "github.com/Brunohvg/bibpay/internal/domain/errors"
	"github.com/Brunohvg/bibpay/internal/domain/model"
	"github.com/Brunohvg/bibpay/internal/testutil"
)

func TestSellerRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewSellerRepository(db, zap.NewNop())

	active := &model.Seller{Name: "Bruna", Phone: "31988887777", IsActive: true}
	require.NoError(t, repo.Create(ctx, active))
	inactive := &model.Seller{Name: "Alice", Phone: "31911112222", IsActive: false}
	require.NoError(t, repo.Create(ctx, inactive))

	stored, err := repo.GetByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alice", all[0].Name)

	onlyActive, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)

	testutil.CreateOrder(t, db, active.ID, "10", "0")
	count, err := repo.CountOrders(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Delete(ctx, inactive.ID))
	gone, err := repo.GetByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.ErrorIs(t, repo.Delete(ctx, inactive.ID), domainerrors.ErrSellerNotFound)
}
