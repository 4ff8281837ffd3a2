package main

import (
	"context"
	"time"

	"budgetbook/internal/cli"
	applog "budgetbook/internal/log"
	"budgetbook/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentRollover)
	calc := cli.NewCalculator(logger, cfg)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	// Closed periods only reach the exporter through the broker.
	amqpClient := cli.InitAMQP(logger, cfg, true)

	// Summaries are computed once per closed period, so no cache.
	budgets := services.NewBudgetService(repo, repo, calc, nil)
	processor := services.NewRolloverProcessor(repo, budgets, amqpClient, calc)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", applog.FieldError, err)
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Database close error", applog.FieldError, err)
		}
	})

	logger.Info("Rollover processor configured",
		"interval", cfg.RolloverInterval,
		"db_path", cfg.SQLiteDBPath)

	run := func(now time.Time) {
		count, err := processor.ProcessRollovers(ctx, now)
		if err != nil {
			logger.Error("Rollover processing failed", applog.FieldError, err)
			return
		}
		logger.Info("Rollover processing complete",
			"periods_closed", count,
			"next_check", now.Add(cfg.RolloverInterval).Format(time.TimeOnly))
	}

	run(time.Now())

	ticker := time.NewTicker(cfg.RolloverInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-done
			return
		case now := <-ticker.C:
			run(now)
		}
	}
}
