package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Daily     PeriodKind = "daily"
	Weekly    PeriodKind = "weekly"
	BiWeekly  PeriodKind = "biWeekly"
	Monthly   PeriodKind = "monthly"
	Quarterly PeriodKind = "quarterly"
	Yearly    PeriodKind = "yearly"
	Custom    PeriodKind = "custom"
)

const (
	Income  RecordType = "income"
	Expense RecordType = "expense"
)

type (
	// PeriodKind selects how a date is grouped into a budget period.
	PeriodKind string

	RecordType string

	// DateRange is an inclusive span of time. Start never comes after End.
	DateRange struct {
		Start time.Time
		End   time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is a single income or expense entry on a given day.
	Record struct {
		ID          int64
		Type        RecordType
		Date        time.Time
		Description string
		Amount      Money
		Category    string
		CreatedAt   time.Time
	}

	// Budget groups records into periods of Kind and compares spending against Limit.
	Budget struct {
		ID       uuid.UUID
		Name     string
		Kind     PeriodKind
		Limit    Money
		Category string // empty means every expense category counts
		// Anchor is the fixed instant a custom budget refers to.
		Anchor          time.Time
		LastRolledStart time.Time
		CreatedAt       time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidKind      = errors.New("invalid period kind")
	ErrInvalidType      = errors.New("invalid record type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrTooLong          = errors.New("value too long")
	ErrMissingAnchor    = errors.New("custom budget needs an anchor date")
	ErrNotFound         = errors.New("not found")
)

var validationErrors = []error{
	ErrInvalidAmount, ErrEmptyDescription, ErrEmptyCategory, ErrEmptyName,
	ErrInvalidKind, ErrInvalidType, ErrInvalidDate, ErrTooLong, ErrMissingAnchor,
}

// IsValidation reports whether err comes from rejecting user input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// PeriodKinds returns every supported kind in declaration order.
func PeriodKinds() []PeriodKind {
	return []PeriodKind{Daily, Weekly, BiWeekly, Monthly, Quarterly, Yearly, Custom}
}

// ParsePeriodKind converts a user supplied name into a PeriodKind.
// Matching is case-insensitive; "biweekly" and "bi-weekly" map to BiWeekly.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "biweekly", "bi-weekly":
		return BiWeekly, nil
	case "monthly":
		return Monthly, nil
	case "quarterly":
		return Quarterly, nil
	case "yearly":
		return Yearly, nil
	case "custom":
		return Custom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k PeriodKind) IsValid() bool {
	switch k {
	case Daily, Weekly, BiWeekly, Monthly, Quarterly, Yearly, Custom:
		return true
	default:
		return false
	}
}

func (k PeriodKind) String() string {
	return string(k)
}

func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns how many calendar days the range touches in Start's location.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	loc := r.Start.Location()
	sy, sm, sd := r.Start.Date()
	ey, em, ed := r.End.In(loc).Date()
	// Noon avoids DST shifts changing the day count.
	first := time.Date(sy, sm, sd, 12, 0, 0, 0, time.UTC)
	last := time.Date(ey, em, ed, 12, 0, 0, 0, time.UTC)
	return int(last.Sub(first).Hours()/24) + 1
}

func (r DateRange) String() string {
	return "[" + r.Start.Format(time.RFC3339) + ", " + r.End.Format(time.RFC3339) + "]"
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Record) Validate() error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	switch r.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return fmt.Errorf("%w: description max 200 characters", ErrTooLong)
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 100 {
		return fmt.Errorf("%w: name max 100 characters", ErrTooLong)
	}
	if !b.Kind.IsValid() {
		return ErrInvalidKind
	}
	if err := b.Limit.Validate(); err != nil {
		return err
	}
	if b.Kind == Custom && b.Anchor.IsZero() {
		return ErrMissingAnchor
	}
	return nil
}
