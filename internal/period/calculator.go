// Package period computes the calendar spans budgets are grouped by.
//
// Every operation is pure: the same instant, kind and Calendar always give
// the same answer. Nothing here returns an error: Custom and unknown kinds
// leave the input date untouched.
package period

import (
	"fmt"
	"strconv"
	"time"

	"budgetbook/internal/core"
)

// Calculator answers period questions in a fixed Calendar.
type Calculator struct {
	cal Calendar
}

func NewCalculator(cal Calendar) *Calculator {
	return &Calculator{cal: cal}
}

// Calendar returns the context the calculator works in.
func (c *Calculator) Calendar() Calendar {
	return c.cal
}

// Start returns the first instant of the period of kind containing date.
func (c *Calculator) Start(date time.Time, kind core.PeriodKind) time.Time {
	if date.IsZero() {
		return date
	}
	loc := c.cal.location()
	t := date.In(loc)
	y, m, d := t.Date()

	switch kind {
	case core.Daily:
		return startOfDay(y, m, d, loc)
	case core.Weekly, core.BiWeekly:
		back := (int(t.Weekday()) - int(c.cal.FirstWeekday) + 7) % 7
		return startOfDay(y, m, d-back, loc)
	case core.Monthly:
		return startOfDay(y, m, 1, loc)
	case core.Quarterly:
		first := time.Month((int(m)-1)/3*3 + 1)
		return startOfDay(y, first, 1, loc)
	case core.Yearly:
		return startOfDay(y, time.January, 1, loc)
	case core.Custom:
		return date
	default:
		return date
	}
}

// Range returns the inclusive span of the period containing date.
func (c *Calculator) Range(date time.Time, kind core.PeriodKind) core.DateRange {
	if date.IsZero() {
		return core.DateRange{Start: date, End: date}
	}
	start := c.Start(date, kind)

	switch kind {
	case core.Daily:
		return core.DateRange{Start: start, End: c.endAfterDays(start, 1)}
	case core.Weekly:
		return core.DateRange{Start: start, End: c.endAfterDays(start, 7)}
	case core.BiWeekly:
		return core.DateRange{Start: start, End: c.endAfterDays(start, 14)}
	case core.Monthly:
		return core.DateRange{Start: start, End: c.endAfterMonths(start, 1)}
	case core.Quarterly:
		return core.DateRange{Start: start, End: c.endAfterMonths(start, 3)}
	case core.Yearly:
		return core.DateRange{Start: start, End: c.endAfterMonths(start, 12)}
	case core.Custom:
		return core.DateRange{Start: date, End: date}
	default:
		return core.DateRange{Start: date, End: date}
	}
}

// Advance moves date by delta whole periods; negative deltas go back.
// Month based kinds clamp the day to the end of the target month.
func (c *Calculator) Advance(date time.Time, kind core.PeriodKind, delta int) time.Time {
	if date.IsZero() || delta == 0 {
		return date
	}

	switch kind {
	case core.Daily:
		return c.addDays(date, delta)
	case core.Weekly:
		return c.addDays(date, 7*delta)
	case core.BiWeekly:
		return c.addDays(date, 14*delta)
	case core.Monthly:
		return c.addMonths(date, delta)
	case core.Quarterly:
		return c.addMonths(date, 3*delta)
	case core.Yearly:
		return c.addMonths(date, 12*delta)
	case core.Custom:
		return date
	default:
		return date
	}
}

// Title is the display label of the period containing date.
func (c *Calculator) Title(date time.Time, kind core.PeriodKind) string {
	if date.IsZero() {
		return ""
	}

	switch kind {
	case core.Daily:
		return c.cal.format(c.Start(date, kind), "Jan 2, 2006")
	case core.Weekly, core.BiWeekly:
		r := c.Range(date, kind)
		return c.cal.format(r.Start, "Jan 2") + " – " + c.cal.format(r.End, "Jan 2, 2006")
	case core.Monthly:
		return c.cal.format(c.Start(date, kind), "January 2006")
	case core.Quarterly:
		start := c.Start(date, kind)
		return fmt.Sprintf("Q%d %d", Quarter(start.Month()), start.Year())
	case core.Yearly:
		return strconv.Itoa(c.Start(date, kind).Year())
	case core.Custom:
		return ""
	default:
		return ""
	}
}

// Next returns the period right after r.
func (c *Calculator) Next(r core.DateRange, kind core.PeriodKind) core.DateRange {
	if kind == core.Custom || !kind.IsValid() {
		return r
	}
	return c.Range(c.Advance(r.Start, kind, 1), kind)
}

// Previous returns the period right before r.
func (c *Calculator) Previous(r core.DateRange, kind core.PeriodKind) core.DateRange {
	if kind == core.Custom || !kind.IsValid() {
		return r
	}
	return c.Range(c.Advance(r.Start, kind, -1), kind)
}

// History returns the count periods ending with the one containing date,
// oldest first.
func (c *Calculator) History(date time.Time, kind core.PeriodKind, count int) []core.DateRange {
	if count <= 0 {
		return nil
	}
	if kind == core.Custom || !kind.IsValid() || date.IsZero() {
		return []core.DateRange{c.Range(date, kind)}
	}

	current := c.Start(date, kind)
	ranges := make([]core.DateRange, 0, count)
	for i := count - 1; i >= 0; i-- {
		ranges = append(ranges, c.Range(c.Advance(current, kind, -i), kind))
	}
	return ranges
}

// Closed returns the starts of the periods that fully elapsed between the
// period beginning at lastStart and now, oldest first, at most limit.
// The cadence is anchored on lastStart, so biWeekly keeps a stable 14 day step.
func (c *Calculator) Closed(lastStart, now time.Time, kind core.PeriodKind, limit int) []time.Time {
	if kind == core.Custom || !kind.IsValid() || lastStart.IsZero() || limit <= 0 {
		return nil
	}

	current := c.Start(now, kind)
	var closed []time.Time
	for s := lastStart; len(closed) < limit; {
		next := c.Start(c.Advance(s, kind, 1), kind)
		if next.After(current) {
			break
		}
		closed = append(closed, s)
		s = next
	}
	return closed
}

// Quarter returns 1-4 for the quarter m belongs to.
func Quarter(m time.Month) int {
	return (int(m)-1)/3 + 1
}

func (c *Calculator) endAfterDays(start time.Time, days int) time.Time {
	y, m, d := start.Date()
	return startOfDay(y, m, d+days, start.Location()).Add(-time.Second)
}

func (c *Calculator) endAfterMonths(start time.Time, months int) time.Time {
	y, m, _ := start.Date()
	ly, lm, ld := time.Date(y, m+time.Month(months), 0, 0, 0, 0, 0, time.UTC).Date()
	return time.Date(ly, lm, ld, 23, 59, 59, 0, start.Location())
}

func (c *Calculator) addDays(date time.Time, days int) time.Time {
	t := date.In(c.cal.location())
	y, m, d := t.Date()
	return time.Date(y, m, d+days, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func (c *Calculator) addMonths(date time.Time, months int) time.Time {
	t := date.In(c.cal.location())
	y, m, d := t.Date()
	ty, tm, _ := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC).Date()
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// startOfDay returns the first instant of the given day in loc. Where a
// DST jump skips midnight, time.Date lands on the previous day, so step
// forward until the day matches.
func startOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for i := 0; i < 24; i++ {
		ty, tm, td := t.Date()
		if ty == y && tm == m && td == d {
			break
		}
		t = t.Add(time.Hour)
	}
	return t
}
