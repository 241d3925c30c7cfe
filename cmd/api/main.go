package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apphttp "github.com/cashflow/geidea-payments/internal/adapter/primary/http"
	"github.com/cashflow/geidea-payments/internal/adapter/secondary/messaging"
	"github.com/cashflow/geidea-payments/internal/bootstrap"
	"github.com/cashflow/geidea-payments/internal/config"
	"github.com/cashflow/geidea-payments/internal/port/output"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize secondary adapters and the core service (implements input port)
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	// Queue mode hands webhooks to cmd/worker
	var queue output.WebhookQueue
	if cfg.WebhookMode == config.WebhookModeQueue {
		msgClient, err := messaging.NewRabbitMQClient(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "err", err)
			os.Exit(1)
		}
		defer msgClient.Close()
		queue = msgClient
	}

	// Initialize primary adapters: HTTP handlers (use input port)
	paymentHandler := apphttp.NewPaymentHandler(app.Service, apphttp.CheckoutURLs{
		Success: cfg.Gateway.SuccessURL,
		Cancel:  cfg.Gateway.CancelURL,
	}, logger)
	webhookHandler := apphttp.NewWebhookHandler(app.Service, queue, logger)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "err", v.Error)
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", slog.Group("http", attrs...))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	// Routes
	apphttp.RegisterRoutes(e, paymentHandler, webhookHandler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	go func() {
		logger.Info("starting API server", "addr", addr, "webhook_mode", cfg.WebhookMode)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
