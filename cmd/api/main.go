package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/getmentor/notion-notifier/config"
	"github.com/getmentor/notion-notifier/internal/formatter"
	"github.com/getmentor/notion-notifier/internal/handlers"
	"github.com/getmentor/notion-notifier/internal/identity"
	"github.com/getmentor/notion-notifier/internal/router"
	"github.com/getmentor/notion-notifier/internal/services"
	"github.com/getmentor/notion-notifier/pkg/httpclient"
	"github.com/getmentor/notion-notifier/pkg/logger"
	"github.com/getmentor/notion-notifier/pkg/metrics"
	"github.com/getmentor/notion-notifier/pkg/profiling"
	"github.com/getmentor/notion-notifier/pkg/telegram"
	"github.com/getmentor/notion-notifier/pkg/tracing"
)

func loadResolver(path string) (*identity.Resolver, error) {
	if path == "" {
		return identity.Default(), nil
	}
	return identity.LoadFile(path)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Notion notifier",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("message_style", cfg.Message.Style),
		zap.Bool("personal_chat", cfg.HasPersonalChat()),
		zap.Bool("webhook_secret", cfg.Webhook.Secret != ""),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.AlloyEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics()

	// Reviewer handle tables are fixed for the lifetime of the process
	resolver, err := loadResolver(cfg.Message.ReviewerHandlesFile)
	if err != nil {
		logger.Fatal("Failed to load reviewer handles", zap.Error(err))
	}
	byID, byName := resolver.Size()
	logger.Info("Reviewer handles loaded", zap.Int("by_id", byID), zap.Int("by_name", byName))

	messageFormatter, err := formatter.New(cfg.Message.Style, resolver)
	if err != nil {
		logger.Fatal("Failed to initialize message formatter", zap.Error(err))
	}

	httpClient := httpclient.NewStandardClient(time.Duration(cfg.Telegram.TimeoutSeconds) * time.Second)
	telegramClient := telegram.NewClient(httpClient, cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken)

	notificationService := services.NewNotificationService(messageFormatter, telegramClient, cfg)

	webhookHandler := handlers.NewWebhookHandler(notificationService)
	healthHandler := handlers.NewHealthHandler()

	gin.SetMode(cfg.Server.GinMode)
	engine := router.New(cfg, webhookHandler, healthHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
