package main

import (
	"context"
	"errors"
	"time"

	"budgetbook/internal/backend"
	"budgetbook/internal/cli"
	applog "budgetbook/internal/log"
	"budgetbook/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentWorker)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid exporter configuration", err)
	}

	factory := backend.NewFactory(logger.Logger)
	exporter, err := factory.CreateExporter(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to create summary exporter", err)
	}

	amqpClient := cli.InitAMQP(logger, cfg, true)
	exportWorker := worker.NewExportWorker(exporter.Exporter)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		exported, skipped := exportWorker.Stats()
		logger.Info("Export worker stopping", "exported", exported, "skipped", skipped)
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", applog.FieldError, err)
		}
		if exporter.Cleanup != nil {
			if err := exporter.Cleanup(); err != nil {
				logger.Warn("Exporter cleanup error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting budget worker",
		"exporter", backendCfg.Type.String(),
		"queue", cfg.AMQPQueue)

	if err := amqpClient.Consume(ctx, exportWorker.HandleEnvelope); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Message consumption failed", err)
	}

	cli.WaitForShutdown(ctx, done)
}
