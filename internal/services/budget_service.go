package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	"budgetbook/internal/period"
)

// BudgetService manages budgets and computes their period summaries.
type BudgetService struct {
	store  BudgetStore
	totals TotalsReader
	calc   *period.Calculator
	cache  cache.Cache[core.PeriodSummary]

	// generation is bumped on every invalidation; summaries computed
	// across a bump are not cached.
	generation atomic.Uint64
}

// NewBudgetService wires the service. A nil summaries cache disables caching.
func NewBudgetService(store BudgetStore, totals TotalsReader, calc *period.Calculator, summaries cache.Cache[core.PeriodSummary]) *BudgetService {
	return &BudgetService{
		store:  store,
		totals: totals,
		calc:   calc,
		cache:  summaries,
	}
}

func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	return created, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	return s.store.GetBudget(ctx, id)
}

func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if s.cache != nil {
		s.cache.DeletePrefix(id.String() + ":")
	}
	return nil
}

// Summary returns the summary of the budget period offset periods away
// from the one containing date.
func (s *BudgetService) Summary(ctx context.Context, id uuid.UUID, date time.Time, offset int) (core.PeriodSummary, error) {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return s.SummaryForRange(ctx, b, s.RangeFor(b, s.calc.Advance(date, b.Kind, offset)))
}

// History returns count consecutive summaries ending with the period
// containing date, oldest first. Custom budgets have a single summary.
func (s *BudgetService) History(ctx context.Context, id uuid.UUID, date time.Time, count int) ([]core.PeriodSummary, error) {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	var ranges []core.DateRange
	if b.Kind == core.Custom {
		if count > 0 {
			ranges = []core.DateRange{s.RangeFor(b, date)}
		}
	} else {
		ranges = s.calc.History(date, b.Kind, count)
	}

	summaries := make([]core.PeriodSummary, 0, len(ranges))
	for _, r := range ranges {
		sum, err := s.SummaryForRange(ctx, b, r)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// RangeFor returns the period of b containing date. Custom budgets run from
// their anchor to the end of date's day, or collapse to the anchor when
// date comes first.
func (s *BudgetService) RangeFor(b core.Budget, date time.Time) core.DateRange {
	if b.Kind != core.Custom {
		return s.calc.Range(date, b.Kind)
	}
	end := s.calc.Range(date, core.Daily).End
	if end.Before(b.Anchor) {
		return core.DateRange{Start: b.Anchor, End: b.Anchor}
	}
	return core.DateRange{Start: b.Anchor, End: end}
}

// SummaryForRange totals the records of r for budget b.
func (s *BudgetService) SummaryForRange(ctx context.Context, b core.Budget, r core.DateRange) (core.PeriodSummary, error) {
	key := summaryKey(b.ID, r)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Summary cache hit", "budget_id", b.ID, "start", r.Start)
			return cached, nil
		}
	}

	gen := s.generation.Load()
	var t core.Totals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, err := s.totals.SumByType(gctx, r, core.Income, "")
		if err != nil {
			return fmt.Errorf("income total: %w", err)
		}
		t.Income = income
		return nil
	})
	g.Go(func() error {
		spent, err := s.totals.SumByType(gctx, r, core.Expense, b.Category)
		if err != nil {
			return fmt.Errorf("spent total: %w", err)
		}
		t.Spent = spent
		return nil
	})
	g.Go(func() error {
		sums, err := s.totals.CategorySums(gctx, r, b.Category)
		if err != nil {
			return fmt.Errorf("category sums: %w", err)
		}
		t.ByCategory = sums
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.PeriodSummary{}, fmt.Errorf("summary for budget %s: %w", b.ID, err)
	}

	summary := core.NewPeriodSummary(b, r, s.calc.Title(r.Start, b.Kind), t)

	if s.cache != nil && s.generation.Load() == gen {
		s.cache.Set(key, summary)
	}
	return summary, nil
}

// InvalidateSummaries drops every cached summary.
func (s *BudgetService) InvalidateSummaries() {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Clear()
	}
}

func summaryKey(id uuid.UUID, r core.DateRange) string {
	return fmt.Sprintf("%s:%d:%d", id, r.Start.Unix(), r.End.Unix())
}
