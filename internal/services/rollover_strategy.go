// Package services provides business logic and orchestration services.
//
// This file holds the rollover strategies: one checker per period kind
// deciding whether the period a budget last rolled has ended.
package services

import (
	"fmt"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/period"
)

// RolloverChecker decides whether a budget period has ended.
type RolloverChecker interface {
	// HasRolledOver reports whether now lies past the period that began at lastStart.
	HasRolledOver(calc *period.Calculator, lastStart, now time.Time) bool
}

// CalendarChecker rolls over when now falls into a later calendar period of Kind.
type CalendarChecker struct {
	Kind core.PeriodKind
}

func (c CalendarChecker) HasRolledOver(calc *period.Calculator, lastStart, now time.Time) bool {
	if lastStart.IsZero() {
		return false
	}
	return calc.Start(now, c.Kind).After(lastStart)
}

// BiWeeklyChecker rolls over every 14 days counted from lastStart.
type BiWeeklyChecker struct{}

func (BiWeeklyChecker) HasRolledOver(calc *period.Calculator, lastStart, now time.Time) bool {
	if lastStart.IsZero() {
		return false
	}
	next := calc.Start(calc.Advance(lastStart, core.BiWeekly, 1), core.BiWeekly)
	return !next.After(calc.Start(now, core.BiWeekly))
}

// NeverChecker is used for custom budgets, which have no cadence.
type NeverChecker struct{}

func (NeverChecker) HasRolledOver(*period.Calculator, time.Time, time.Time) bool {
	return false
}

var rolloverStrategies = map[core.PeriodKind]RolloverChecker{
	core.Daily:     CalendarChecker{Kind: core.Daily},
	core.Weekly:    CalendarChecker{Kind: core.Weekly},
	core.BiWeekly:  BiWeeklyChecker{},
	core.Monthly:   CalendarChecker{Kind: core.Monthly},
	core.Quarterly: CalendarChecker{Kind: core.Quarterly},
	core.Yearly:    CalendarChecker{Kind: core.Yearly},
	core.Custom:    NeverChecker{},
}

// GetRolloverChecker returns the checker registered for kind.
func GetRolloverChecker(kind core.PeriodKind) (RolloverChecker, error) {
	checker, ok := rolloverStrategies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no rollover checker for %q", core.ErrInvalidKind, kind)
	}
	return checker, nil
}

// RegisterRolloverChecker replaces or adds the checker for kind.
// It is not safe to call while a RolloverProcessor is running.
func RegisterRolloverChecker(kind core.PeriodKind, checker RolloverChecker) {
	rolloverStrategies[kind] = checker
}
