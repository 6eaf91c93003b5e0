package http_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brunohvg/bibpay/internal/testutil"
)

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "bibpay", body["service"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSellerHandler(t *testing.T) {
	t.Run("create, read, update", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(t, http.MethodPost, "/api/v1/sellers", map[string]interface{}{"name": " Ana ", "phone": "31999990000"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode(t, rec)
		assert.Equal(t, "Ana", created["name"])
		assert.Equal(t, true, created["is_active"])
		id := int64(created["id"].(float64))

		rec = app.do(t, http.MethodPut, fmt.Sprintf("/api/v1/sellers/%d", id), map[string]interface{}{"is_active": false})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, false, decode(t, rec)["is_active"])

		rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/sellers/%d", id), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Ana", decode(t, rec)["name"])

		rec = app.do(t, http.MethodGet, "/api/v1/sellers?active=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeList(t, rec))
	})

	t.Run("name is required", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(t, http.MethodPost, "/api/v1/sellers", map[string]interface{}{"phone": "31999990000"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "name")
	})

	t.Run("unknown seller", func(t *testing.T) {
		app := newTestApp(t)

		rec := app.do(t, http.MethodGet, "/api/v1/sellers/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(t, http.MethodGet, "/api/v1/sellers/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("seller with orders cannot be deleted", func(t *testing.T) {
		app := newTestApp(t)
		seller := testutil.CreateSeller(t, app.db, "Loja")
		testutil.CreateOrder(t, app.db, seller.ID, "10", "0")

		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/sellers/%d", seller.ID), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		empty := testutil.CreateSeller(t, app.db, "Vazia")
		rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/sellers/%d", empty.ID), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
