package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
	"budgetbook/internal/period"
)

func newProcessor(store *memStore, pub *fakePublisher) *RolloverProcessor {
	calc := period.NewCalculator(period.DefaultCalendar())
	budgets := NewBudgetService(store, store, calc, nil)
	return NewRolloverProcessor(store, budgets, pub, calc)
}

func mustBudget(t *testing.T, store *memStore, b core.Budget) core.Budget {
	t.Helper()
	created, err := store.CreateBudget(context.Background(), b)
	require.NoError(t, err)
	return created
}

func TestRolloverProcessor_FirstObservationOnlyTracks(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	p := newProcessor(store, pub)
	b := mustBudget(t, store, core.Budget{Name: "Food", Kind: core.Monthly, Limit: core.Money{Cents: 1000}})

	n, err := p.ProcessRollovers(context.Background(), utcDay(2024, time.May, 10))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.closed)

	got, _ := store.GetBudget(context.Background(), b.ID)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), got.LastRolledStart)
}

func TestRolloverProcessor_PublishesClosedPeriods(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	p := newProcessor(store, pub)
	b := mustBudget(t, store, core.Budget{
		Name:            "Food",
		Kind:            core.Monthly,
		Limit:           core.Money{Cents: 1000},
		LastRolledStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	seedRecords(t, store,
		expense(utcDay(2024, time.February, 10), 1500, "Food"),
		expense(utcDay(2024, time.March, 10), 500, "Food"),
	)

	n, err := p.ProcessRollovers(context.Background(), utcDay(2024, time.April, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.closed, 2)
	assert.Equal(t, "February 2024", pub.closed[0].Title)
	assert.True(t, pub.closed[0].Overspent)
	assert.Equal(t, "March 2024", pub.closed[1].Title)
	assert.Equal(t, int64(500), pub.closed[1].Remaining.Cents)

	got, _ := store.GetBudget(context.Background(), b.ID)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), got.LastRolledStart)

	n, err = p.ProcessRollovers(context.Background(), utcDay(2024, time.April, 20))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRolloverProcessor_CatchUpIsCapped(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	p := newProcessor(store, pub)
	b := mustBudget(t, store, core.Budget{
		Name:            "Daily",
		Kind:            core.Daily,
		Limit:           core.Money{Cents: 100},
		LastRolledStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})

	n, err := p.ProcessRollovers(context.Background(), utcDay(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, MaxCatchUpPeriods, n)

	got, _ := store.GetBudget(context.Background(), b.ID)
	assert.Equal(t, time.Date(2024, time.January, 13, 0, 0, 0, 0, time.UTC), got.LastRolledStart)
}

func TestRolloverProcessor_PublishFailureKeepsProgress(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{failAt: 2}
	p := newProcessor(store, pub)
	b := mustBudget(t, store, core.Budget{
		Name:            "Weekly",
		Kind:            core.Weekly,
		Limit:           core.Money{Cents: 100},
		LastRolledStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})

	n, err := p.ProcessRollovers(context.Background(), utcDay(2024, time.January, 24))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := store.GetBudget(context.Background(), b.ID)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), got.LastRolledStart)
}

func TestRolloverProcessor_SkipsCustomAndBiWeeklyCadence(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	p := newProcessor(store, pub)
	mustBudget(t, store, core.Budget{
		Name:   "Trip",
		Kind:   core.Custom,
		Limit:  core.Money{Cents: 100},
		Anchor: utcDay(2024, time.January, 1),
	})
	bi := mustBudget(t, store, core.Budget{
		Name:            "Bi",
		Kind:            core.BiWeekly,
		Limit:           core.Money{Cents: 100},
		LastRolledStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})

	n, err := p.ProcessRollovers(context.Background(), utcDay(2024, time.January, 10))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = p.ProcessRollovers(context.Background(), utcDay(2024, time.January, 16))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Jan 1 – Jan 14, 2024", pub.closed[0].Title)

	got, _ := store.GetBudget(context.Background(), bi.ID)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), got.LastRolledStart)
}

func TestRolloverProcessor_NotInitialized(t *testing.T) {
	p := &RolloverProcessor{}
	_, err := p.ProcessRollovers(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestRolloverProcessor_CancelledContext(t *testing.T) {
	store := newMemStore()
	p := newProcessor(store, &fakePublisher{})
	mustBudget(t, store, core.Budget{ID: uuid.New(), Name: "A", Kind: core.Daily, Limit: core.Money{Cents: 1}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.ProcessRollovers(ctx, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}
