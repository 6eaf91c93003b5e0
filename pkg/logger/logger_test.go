package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/Brunohvg/bibpay/pkg/errors"
)

func TestNewZapLogger(t *testing.T) {
	l, err := NewZapLogger(Config{Level: "warn", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = NewZapLogger(Config{Level: "nonsense"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestWithEchoLoggerHidesInternalErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	WithEchoLogger(e, zap.New(core))

	e.GET("/boom", func(c echo.Context) error {
		return errors.New("pq: password authentication failed")
	})
	e.GET("/missing", func(c echo.Context) error {
		return apperrors.NotFound("order not found", nil)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Equal(t, 1, logs.FilterMessage("HTTP error").Len())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "order not found")
}

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info, 10*time.Millisecond, true)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.FilterMessage("gorm query failed").Len())

	l.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	assert.Equal(t, 1, logs.FilterMessage("gorm query failed").Len())

	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("gorm slow query").Len())

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 1, logs.FilterMessage("gorm query failed").Len())
}
