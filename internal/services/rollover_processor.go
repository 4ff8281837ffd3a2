package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/period"
)

// MaxCatchUpPeriods bounds how many closed periods one budget publishes per run.
const MaxCatchUpPeriods = 12

// RolloverProcessor publishes a summary for every budget period that ended.
type RolloverProcessor struct {
	store     BudgetStore
	budgets   *BudgetService
	publisher EventPublisher
	calc      *period.Calculator
}

func NewRolloverProcessor(store BudgetStore, budgets *BudgetService, publisher EventPublisher, calc *period.Calculator) *RolloverProcessor {
	return &RolloverProcessor{
		store:     store,
		budgets:   budgets,
		publisher: publisher,
		calc:      calc,
	}
}

// ProcessRollovers checks every budget against now and returns how many
// period.closed summaries were published.
func (p *RolloverProcessor) ProcessRollovers(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.budgets == nil || p.publisher == nil || p.calc == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	budgets, err := p.store.ListBudgets(ctx)
	if err != nil {
		return 0, fmt.Errorf("list budgets: %w", err)
	}

	slog.InfoContext(ctx, "Processing budget rollovers",
		"budgets", len(budgets),
		"now", now.Format(time.RFC3339))

	published := 0
	for _, b := range budgets {
		if err := ctx.Err(); err != nil {
			return published, err
		}
		n, err := p.rollBudget(ctx, b, now)
		published += n
		if err != nil {
			slog.ErrorContext(ctx, "Failed to roll budget",
				"budget_id", b.ID,
				"name", b.Name,
				"error", err)
		}
	}

	slog.InfoContext(ctx, "Budget rollover processing complete",
		"published", published,
		"total_checked", len(budgets))

	return published, nil
}

func (p *RolloverProcessor) rollBudget(ctx context.Context, b core.Budget, now time.Time) (int, error) {
	checker, err := GetRolloverChecker(b.Kind)
	if err != nil {
		return 0, err
	}
	if b.Kind == core.Custom {
		return 0, nil
	}

	// First observation: nothing has closed yet, start tracking from now.
	if b.LastRolledStart.IsZero() {
		current := p.calc.Start(now, b.Kind)
		if err := p.store.UpdateLastRolledStart(ctx, b.ID, current); err != nil {
			return 0, fmt.Errorf("record first period: %w", err)
		}
		slog.InfoContext(ctx, "Started tracking budget periods",
			"budget_id", b.ID,
			"start", current.Format(time.DateOnly))
		return 0, nil
	}

	if !checker.HasRolledOver(p.calc, b.LastRolledStart, now) {
		return 0, nil
	}

	closed := p.calc.Closed(b.LastRolledStart, now, b.Kind, MaxCatchUpPeriods)
	published := 0
	for _, start := range closed {
		summary, err := p.budgets.SummaryForRange(ctx, b, p.calc.Range(start, b.Kind))
		if err != nil {
			return published, p.advance(ctx, b, closed, published, err)
		}
		if err := p.publisher.PublishPeriodClosed(ctx, summary); err != nil {
			return published, p.advance(ctx, b, closed, published, fmt.Errorf("publish period closed: %w", err))
		}
		published++

		slog.InfoContext(ctx, "Published closed period",
			"budget_id", b.ID,
			"title", summary.Title,
			"spent_cents", summary.Spent.Cents,
			"limit_cents", summary.Limit.Cents,
			"overspent", summary.Overspent)
	}

	return published, p.advance(ctx, b, closed, published, nil)
}

// advance moves LastRolledStart past the published periods so the next run
// resumes at the first unpublished one. cause is returned unless the update fails.
func (p *RolloverProcessor) advance(ctx context.Context, b core.Budget, closed []time.Time, published int, cause error) error {
	if published == 0 {
		return cause
	}
	next := p.calc.Start(p.calc.Advance(closed[published-1], b.Kind, 1), b.Kind)
	if err := p.store.UpdateLastRolledStart(ctx, b.ID, next); err != nil {
		return fmt.Errorf("update last rolled start: %w", err)
	}
	return cause
}
