package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
)

// RecordStore persists income and expense records.
type RecordStore interface {
	CreateRecord(ctx context.Context, r core.Record) (core.Record, error)
	GetRecord(ctx context.Context, id int64) (core.Record, error)
	SoftDeleteRecord(ctx context.Context, id int64) error
	ListRecords(ctx context.Context, r core.DateRange) ([]core.Record, error)
}

// TotalsReader aggregates record amounts over a range.
type TotalsReader interface {
	SumByType(ctx context.Context, r core.DateRange, t core.RecordType, category string) (int64, error)
	CategorySums(ctx context.Context, r core.DateRange, category string) ([]core.CategoryAmount, error)
}

type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, id uuid.UUID) error
	UpdateLastRolledStart(ctx context.Context, id uuid.UUID, start time.Time) error
}

// EventPublisher announces changes to other processes.
type EventPublisher interface {
	PublishRecordCreated(ctx context.Context, r core.Record) error
	PublishRecordDeleted(ctx context.Context, id int64) error
	PublishPeriodClosed(ctx context.Context, s core.PeriodSummary) error
}

// SummaryInvalidator drops cached summaries after records change.
type SummaryInvalidator interface {
	InvalidateSummaries()
}
