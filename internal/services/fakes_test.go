package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
)

// memStore is an in-memory RecordStore, TotalsReader and BudgetStore.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]core.Record
	budgets map[uuid.UUID]core.Budget
	sumErr  error
	calls   int
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[int64]core.Record),
		budgets: make(map[uuid.UUID]core.Budget),
	}
}

func (m *memStore) CreateRecord(_ context.Context, r core.Record) (core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	m.records[r.ID] = r
	return r, nil
}

func (m *memStore) GetRecord(_ context.Context, id int64) (core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return core.Record{}, core.ErrNotFound
	}
	return r, nil
}

func (m *memStore) SoftDeleteRecord(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) ListRecords(_ context.Context, rng core.DateRange) ([]core.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Record
	for _, r := range m.records {
		if rng.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memStore) SumByType(_ context.Context, rng core.DateRange, t core.RecordType, category string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.sumErr != nil {
		return 0, m.sumErr
	}
	var total int64
	for _, r := range m.records {
		if r.Type == t && rng.Contains(r.Date) && (category == "" || r.Category == category) {
			total += r.Amount.Cents
		}
	}
	return total, nil
}

func (m *memStore) CategorySums(_ context.Context, rng core.DateRange, category string) ([]core.CategoryAmount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byName := map[string]int64{}
	for _, r := range m.records {
		if r.Type == core.Expense && rng.Contains(r.Date) && (category == "" || r.Category == category) {
			byName[r.Category] += r.Amount.Cents
		}
	}
	var out []core.CategoryAmount
	for name, cents := range byName {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount.Cents > out[j].Amount.Cents })
	return out, nil
}

func (m *memStore) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.budgets[b.ID] = b
	return b, nil
}

func (m *memStore) GetBudget(_ context.Context, id uuid.UUID) (core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (m *memStore) ListBudgets(_ context.Context) ([]core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Budget
	for _, b := range m.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) DeleteBudget(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.budgets[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.budgets, id)
	return nil
}

func (m *memStore) UpdateLastRolledStart(_ context.Context, id uuid.UUID, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok {
		return core.ErrNotFound
	}
	b.LastRolledStart = start
	m.budgets[id] = b
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	created []int64
	deleted []int64
	closed  []core.PeriodSummary
	failAt  int // fail the nth period.closed publish (1-based), 0 never
	err     error
}

func (f *fakePublisher) PublishRecordCreated(_ context.Context, r core.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, r.ID)
	return nil
}

func (f *fakePublisher) PublishRecordDeleted(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePublisher) PublishPeriodClosed(_ context.Context, s core.PeriodSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.closed)+1 == f.failAt {
		return errors.New("broker unavailable")
	}
	f.closed = append(f.closed, s)
	return nil
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) InvalidateSummaries() { c.n++ }

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
