package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/usecase"
)

const defaultStatisticsWindow = 30 * 24 * time.Hour

type DashboardHandler struct {
	dashboard *usecase.DashboardService
	now       func() time.Time
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *usecase.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		now:       time.Now,
		logger:    logger,
	}
}

func (h *DashboardHandler) RegisterRoutes(g *echo.Group) {
	dashboard := g.Group("/dashboard")
	dashboard.GET("/summary", h.Summary)
	dashboard.GET("/payments", h.PaymentStatistics)
	dashboard.GET("/sellers", h.SellerStats)
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	summary, err := h.dashboard.Summary(c.Request().Context(), h.now().UTC())
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// PaymentStatistics covers ?start=YYYY-MM-DD through ?end=YYYY-MM-DD, both days
// included. Without bounds it covers the last 30 days.
func (h *DashboardHandler) PaymentStatistics(c echo.Context) error {
	now := h.now().UTC()
	end := now
	start := now.Add(-defaultStatisticsWindow)

	from, err := parseDate(c, "start")
	if err != nil {
		return err
	}
	to, err := parseDate(c, "end")
	if err != nil {
		return err
	}
	if from != nil {
		start = *from
	}
	if to != nil {
		end = to.AddDate(0, 0, 1)
	}

	stats, err := h.dashboard.PaymentStatistics(c.Request().Context(), start, end)
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) SellerStats(c echo.Context) error {
	stats, err := h.dashboard.SellerStats(c.Request().Context())
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
