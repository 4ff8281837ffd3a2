package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"budgetbook/internal/amqp"
	"budgetbook/internal/sheets"
)

// ExportWorker writes closed period summaries received from AMQP to the
// configured exporter.
type ExportWorker struct {
	exporter sheets.SummaryExporter

	exported atomic.Int64
	skipped  atomic.Int64
}

func NewExportWorker(exporter sheets.SummaryExporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// HandleEnvelope processes one message. Only period.closed messages are
// exported; record events are acknowledged and ignored.
func (w *ExportWorker) HandleEnvelope(ctx context.Context, env *amqp.Envelope) error {
	if env.Type != amqp.TypePeriodClosed {
		w.skipped.Add(1)
		slog.DebugContext(ctx, "Ignoring message",
			"message_id", env.ID,
			"type", env.Type)
		return nil
	}

	var msg amqp.PeriodClosedMessage
	if err := env.Decode(&msg); err != nil {
		return err
	}
	return w.HandlePeriodClosed(ctx, &msg)
}

// HandlePeriodClosed exports a single closed period summary.
func (w *ExportWorker) HandlePeriodClosed(ctx context.Context, msg *amqp.PeriodClosedMessage) error {
	slog.InfoContext(ctx, "Processing period closed message",
		"budget_id", msg.BudgetID,
		"title", msg.Title)

	ref, err := w.exporter.ExportSummary(ctx, msg.Summary())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export summary",
			"budget_id", msg.BudgetID,
			"start", msg.Start,
			"error", err)
		return fmt.Errorf("export summary: %w", err)
	}

	w.exported.Add(1)
	slog.InfoContext(ctx, "Successfully exported summary",
		"budget_id", msg.BudgetID,
		"budget_name", msg.BudgetName,
		"title", msg.Title,
		"ref", ref,
		"spent_cents", msg.SpentCents,
		"overspent", msg.Overspent)

	return nil
}

// Stats returns how many summaries were exported and how many messages were ignored.
func (w *ExportWorker) Stats() (exported, skipped int64) {
	return w.exported.Load(), w.skipped.Load()
}
