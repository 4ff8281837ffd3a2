package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
)

func summary(id uuid.UUID, start time.Time, spent int64) core.PeriodSummary {
	return core.PeriodSummary{
		BudgetID: id,
		Kind:     core.Monthly,
		Range:    core.DateRange{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Second)},
		Spent:    core.Money{Cents: spent},
	}
}

func TestStoreExportSummary(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := uuid.New()
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	ref, err := s.ExportSummary(ctx, summary(id, jan, 100))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}
	ref, err = s.ExportSummary(ctx, summary(id, feb, 200))
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}

	// Redelivery of January replaces the first row.
	ref, err = s.ExportSummary(ctx, summary(id, jan, 150))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected re-export: ref=%q err=%v", ref, err)
	}

	got := s.Summaries()
	if len(got) != 2 {
		t.Fatalf("Summaries() len = %d, want 2", len(got))
	}
	if got[0].Spent.Cents != 150 || got[1].Spent.Cents != 200 {
		t.Errorf("unexpected summaries: %+v", got)
	}
}

func TestStoreRejectsZeroPeriod(t *testing.T) {
	if _, err := New().ExportSummary(context.Background(), core.PeriodSummary{}); err == nil {
		t.Fatal("expected error for summary without period")
	}
}
