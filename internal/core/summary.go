package core

import "github.com/google/uuid"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// PeriodSummary is the state of a budget over one period.
type PeriodSummary struct {
	BudgetID   uuid.UUID
	BudgetName string
	Kind       PeriodKind
	Range      DateRange
	Title      string
	Income     Money
	Spent      Money
	Limit      Money
	Remaining  Money
	ByCategory []CategoryAmount
	Overspent  bool
}

// Totals holds the raw sums a summary is built from.
type Totals struct {
	Income     int64
	Spent      int64
	ByCategory []CategoryAmount
}

// NewPeriodSummary derives remaining and overspent from the budget limit.
func NewPeriodSummary(b Budget, r DateRange, title string, t Totals) PeriodSummary {
	remaining := b.Limit.Cents - t.Spent
	return PeriodSummary{
		BudgetID:   b.ID,
		BudgetName: b.Name,
		Kind:       b.Kind,
		Range:      r,
		Title:      title,
		Income:     Money{Cents: t.Income},
		Spent:      Money{Cents: t.Spent},
		Limit:      b.Limit,
		Remaining:  Money{Cents: remaining},
		ByCategory: t.ByCategory,
		Overspent:  remaining < 0,
	}
}
