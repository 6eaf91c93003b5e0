package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/Brunohvg/bibpay/internal/adapter/handler/http"
	"github.com/Brunohvg/bibpay/internal/config"
	"github.com/Brunohvg/bibpay/internal/domain/dto"
	"github.com/Brunohvg/bibpay/internal/usecase"
	"github.com/Brunohvg/bibpay/pkg/logger"
)

// Services are the usecases exposed over HTTP
type Services struct {
	Sellers      *usecase.SellerService
	Orders       *usecase.OrderService
	PaymentLinks *usecase.PaymentLinkService
	Webhooks     *usecase.WebhookService
	Dashboard    *usecase.DashboardService
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	services Services
}

func NewServer(cfg *config.Config, logger *zap.Logger, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()

	s := &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		services: services,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupMiddleware() {
	e := s.echo
	logger.WithEchoLogger(e, s.logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logger.NewEchoRequestLogger(s.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, dto.HealthResponse{
			Status:    "healthy",
			Service:   s.config.Service.Name,
			Version:   s.config.Service.Version,
			Timestamp: time.Now().UTC(),
		})
	})

	// Webhook route (outside API versioning)
	handlers.NewWebhookHandler(s.services.Webhooks, s.logger).RegisterRoutes(s.echo)

	v1 := s.echo.Group("/api/v1")
	handlers.NewSellerHandler(s.services.Sellers, s.logger).RegisterRoutes(v1)
	handlers.NewOrderHandler(s.services.Orders, s.services.PaymentLinks, s.logger).RegisterRoutes(v1)
	handlers.NewPaymentLinkHandler(s.services.PaymentLinks, s.logger).RegisterRoutes(v1)
	handlers.NewDashboardHandler(s.services.Dashboard, s.logger).RegisterRoutes(v1)
}
