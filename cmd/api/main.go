package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/visionworks/facegate/internal/api"
	"github.com/visionworks/facegate/internal/config"
	"github.com/visionworks/facegate/internal/enrollment"
	"github.com/visionworks/facegate/internal/face"
	"github.com/visionworks/facegate/internal/gateway"
	"github.com/visionworks/facegate/internal/imaging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Facegate API",
		slog.String("environment", cfg.Environment),
		slog.String("analyzer", cfg.AnalyzerType),
		slog.Int("port", cfg.Port),
	)

	// Analyzer capability
	ctx := context.Background()
	faceAnalyzer, err := face.NewAnalyzer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	// Enrollment store
	store, err := enrollment.NewStore(cfg.EnrollmentDir)
	if err != nil {
		return fmt.Errorf("failed to open enrollment store: %w", err)
	}

	// Classification gateway
	decoder := imaging.NewDecoder(cfg.SoftImageLimit, cfg.RecompressQuality)
	service := gateway.NewService(faceAnalyzer, store, decoder, logger, gateway.Options{
		TempDir:          cfg.TempDir,
		StrictDetection:  cfg.StrictDetection,
		DefaultThreshold: cfg.MatchThreshold,
	})

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{Gateway: service})
	router.Setup()

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
