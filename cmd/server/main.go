package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/bootstrap"
	"github.com/Brunohvg/bibpay/internal/config"
	"github.com/Brunohvg/bibpay/internal/infrastructure/database"
	grpcServer "github.com/Brunohvg/bibpay/internal/infrastructure/grpc"
	httpServer "github.com/Brunohvg/bibpay/internal/infrastructure/http"
	"github.com/Brunohvg/bibpay/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(
		zap.String("service", cfg.Service.Name),
		zap.String("environment", cfg.Service.Environment),
	)

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	useCases, err := bootstrap.NewUseCases(cfg, repos, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize usecases", zap.Error(err))
	}
	defer func() {
		if err := useCases.Close(); err != nil {
			zapLogger.Error("Failed to close notification queue", zap.Error(err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var workers sync.WaitGroup
	if cfg.Notification.Enabled {
		pingCtx, pingCancel := context.WithTimeout(ctx, cfg.Notification.Evolution.Timeout)
		if err := useCases.Messenger.Ping(pingCtx); err != nil {
			zapLogger.Warn("WhatsApp instance is not connected, notifications will be retried", zap.Error(err))
		}
		pingCancel()

		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := useCases.Notifications.Run(ctx); err != nil {
				zapLogger.Error("Notification workers stopped", zap.Error(err))
			}
		}()
	}

	// Initialize servers
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Services{
		Sellers:      useCases.Sellers,
		Orders:       useCases.Orders,
		PaymentLinks: useCases.PaymentLinks,
		Webhooks:     useCases.Webhooks,
		Dashboard:    useCases.Dashboard,
	})

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Port > 0 {
		grpcSrv = grpcServer.NewServer(cfg, zapLogger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
			}
		}()
	}

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	// Stop notification workers after the last request has been served
	cancel()
	workers.Wait()

	zapLogger.Info("Servers shut down successfully")
}
