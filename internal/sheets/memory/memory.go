package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetbook/internal/core"
	ports "budgetbook/internal/sheets"
)

var _ ports.SummaryExporter = (*Store)(nil)

// Store keeps exported summaries in memory. Exporting the same budget
// period twice replaces the earlier row.
type Store struct {
	mu    sync.Mutex
	items []core.PeriodSummary
	index map[string]int
}

func New() *Store {
	return &Store{index: make(map[string]int)}
}

func (s *Store) ExportSummary(_ context.Context, sum core.PeriodSummary) (string, error) {
	if sum.Range.Start.IsZero() {
		return "", fmt.Errorf("summary without period start")
	}
	key := fmt.Sprintf("%s:%d", sum.BudgetID, sum.Range.Start.Unix())

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[key]; ok {
		s.items[i] = sum
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	s.items = append(s.items, sum)
	s.index[key] = len(s.items) - 1
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Summaries returns a copy of everything exported so far, in export order.
func (s *Store) Summaries() []core.PeriodSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PeriodSummary(nil), s.items...)
}
