package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cashflow/geidea-payments/internal/adapter/secondary/messaging"
	"github.com/cashflow/geidea-payments/internal/bootstrap"
	"github.com/cashflow/geidea-payments/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize secondary adapters and the core service
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	// Initialize secondary adapter: Messaging
	msgClient, err := messaging.NewRabbitMQClient(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "err", err)
		os.Exit(1)
	}
	defer msgClient.Close()

	// Start consuming messages
	err = msgClient.ConsumeWebhooks(ctx, func(ctx context.Context, payload []byte) error {
		_, err := app.Service.HandleWebhook(ctx, payload)
		return err
	})
	if err != nil {
		logger.Error("failed to start consuming messages", "err", err)
		os.Exit(1)
	}

	logger.Info("webhook worker started, press CTRL+C to exit")

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("shutting down worker")
}
