package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"budgetbook/internal/cache"
	"budgetbook/internal/cli"
	"budgetbook/internal/core"
	apphttp "budgetbook/internal/http"
	applog "budgetbook/internal/log"
	"budgetbook/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentApp)
	calc := cli.NewCalculator(logger, cfg)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	amqpClient := cli.InitAMQP(logger, cfg, false)

	summaries := cache.NewLRUCache[core.PeriodSummary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	caches := cache.NewManager()
	caches.Register(summaries)
	caches.StartCleanup(cfg.SummaryCacheTTL)

	budgets := services.NewBudgetService(repo, repo, calc, summaries)

	var publisher services.EventPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	records := services.NewRecordService(repo, publisher, calc, budgets)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Records:            records,
		Budgets:            budgets,
		Calculator:         calc,
		Ready:              repo,
		Logger:             logger,
		Registry:           registry,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Database close error", applog.FieldError, err)
		}
	})

	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"db_path", cfg.SQLiteDBPath,
			"amqp_enabled", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cli.Fatal(logger, "Server failed to start", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
