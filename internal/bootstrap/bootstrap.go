package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cashflow/geidea-payments/internal/adapter/secondary/cache"
	"github.com/cashflow/geidea-payments/internal/adapter/secondary/database"
	"github.com/cashflow/geidea-payments/internal/adapter/secondary/dynamo"
	"github.com/cashflow/geidea-payments/internal/adapter/secondary/geidea"
	"github.com/cashflow/geidea-payments/internal/config"
	"github.com/cashflow/geidea-payments/internal/constant/model/db"
	"github.com/cashflow/geidea-payments/internal/core/service"
	"github.com/cashflow/geidea-payments/internal/port/output"
)

// App holds the wired lifecycle manager and the resources to release on exit
type App struct {
	Service *service.PaymentLifecycleManager
	closers []func() error
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// New connects the configured store, optional cache and the gateway client
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{}

	var (
		store   output.PaymentStore
		journal output.WebhookJournal
		cached  output.PaymentCache
	)

	switch cfg.StoreDriver {
	case config.StoreDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.ClientConfig{
			Region:          cfg.Dynamo.Region,
			Endpoint:        cfg.Dynamo.Endpoint,
			AccessKeyID:     cfg.Dynamo.AccessKeyID,
			SecretAccessKey: cfg.Dynamo.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamodb client: %w", err)
		}
		store = dynamo.NewPaymentRepository(client, cfg.Dynamo.PaymentsTable)
		journal = dynamo.NewWebhookJournal(client, cfg.Dynamo.WebhooksTable)
		logger.Info("using dynamodb payment store", "table", cfg.Dynamo.PaymentsTable)
	default:
		dbConn, err := db.NewDB(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.closers = append(app.closers, dbConn.Close)
		store = database.NewGormPaymentRepository(dbConn.DB)
		journal = database.NewGormWebhookJournal(dbConn.DB)
		logger.Info("using postgres payment store")
	}

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, logger)
		if err != nil {
			// The cache only serves resolved payments; run without it
			logger.Warn("redis unavailable, payment cache disabled", "err", err)
		} else {
			app.closers = append(app.closers, redisCache.Close)
			cached = redisCache
		}
	}

	gateway := geidea.NewClient(geidea.Config{
		PublicKey:   cfg.Gateway.PublicKey,
		APIPassword: cfg.Gateway.APIPassword,
		APIBase:     cfg.Gateway.APIBase,
		CallbackURL: cfg.Gateway.CallbackURL,
		Timeout:     cfg.Gateway.Timeout,
	}, logger)

	app.Service = service.NewPaymentLifecycleManager(store, gateway, journal, cached, logger)
	return app, nil
}
