package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/beer-stock/internal/adapter/handler"
	"github.com/rl1809/beer-stock/internal/adapter/storage"
	"github.com/rl1809/beer-stock/internal/config"
	"github.com/rl1809/beer-stock/internal/core/service"
	"github.com/rl1809/beer-stock/internal/platform/consul"
	"github.com/rl1809/beer-stock/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	shutdownOTel, err := observability.Setup(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up telemetry: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.ServiceName, cfg.OtelEndpoint != "")
	defer logger.Sync()

	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	logger.Info("store ready", zap.String("driver", cfg.StoreDriver))

	beerService := service.NewBeerService(repo, cfg.AdjustMaxAttempts)

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.TracingInterceptor()))
	handler.RegisterBeerServiceServer(grpcServer, handler.NewGRPCHandler(beerService, logger))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(beerService, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	var registry *consul.Client
	if cfg.ConsulHost != "" {
		registry, err = consul.NewClient(cfg.ConsulHost, cfg.ServiceName, cfg.HTTPAddr)
		if err != nil {
			logger.Fatal("failed to create consul client", zap.Error(err))
		}
		if err := registry.RegisterService(); err != nil {
			logger.Error("service registration failed", zap.Error(err))
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	if registry != nil {
		if err := registry.DeregisterService(); err != nil {
			logger.Error("service deregistration failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	if err := closeStore(); err != nil {
		logger.Error("failed to close store", zap.Error(err))
	}

	if err := shutdownOTel(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", zap.Error(err))
	}
	logger.Info("connections closed")
}
