// Package http provides the JSON API server and its handlers.
//
// This file implements parsing and validation of query parameters and
// JSON request bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"budgetbook/internal/core"
)

const (
	dateLayout   = "2006-01-02"
	maxBodyBytes = 64 << 10
	maxOffset    = 1200
	maxHistory   = 120
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateRecordRequest is the body of POST /api/records.
type CreateRecordRequest struct {
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required,max=20"`
	Category    string `json:"category" validate:"required,max=100"`
}

// CreateBudgetRequest is the body of POST /api/budgets.
type CreateBudgetRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Kind     string `json:"kind" validate:"required"`
	Limit    string `json:"limit" validate:"required,max=20"`
	Category string `json:"category" validate:"max=100"`
	Anchor   string `json:"anchor" validate:"omitempty,datetime=2006-01-02"`
}

// DecodeJSON reads a size-limited JSON body into v and validates its tags.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badInput{fmt.Errorf("invalid JSON body: %w", err)}
	}
	return validate.Struct(v)
}

// ParseDate parses a YYYY-MM-DD day in loc. An empty string yields now.
func ParseDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.In(loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, badInput{fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)}
	}
	return t, nil
}

// ParseKind reads the kind query parameter, falling back to def.
func ParseKind(query url.Values, def core.PeriodKind) (core.PeriodKind, error) {
	v := strings.TrimSpace(query.Get("kind"))
	if v == "" {
		return def, nil
	}
	kind, err := core.ParsePeriodKind(v)
	if err != nil {
		return "", badInput{err}
	}
	return kind, nil
}

// ParseIntParam reads an integer query parameter bounded by [lo, hi].
func ParseIntParam(query url.Values, key string, def, lo, hi int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badInput{fmt.Errorf("invalid %s '%s': must be a number", key, v)}
	}
	if n < lo || n > hi {
		return 0, badInput{fmt.Errorf("invalid %s %d: must be between %d and %d", key, n, lo, hi)}
	}
	return n, nil
}

func budgetIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, badInput{errors.New("invalid budget id")}
	}
	return id, nil
}

func recordIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badInput{errors.New("invalid record id")}
	}
	return id, nil
}

// ToRecord converts the request into a domain record dated in loc.
func (req CreateRecordRequest) ToRecord(loc *time.Location) (core.Record, error) {
	recordType, err := core.ParseRecordType(req.Type)
	if err != nil {
		return core.Record{}, err
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, loc)
	if err != nil {
		return core.Record{}, core.ErrInvalidDate
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		Type:        recordType,
		Date:        date,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(req.Category),
	}, nil
}

// ToBudget converts the request into a domain budget. Custom budgets are
// anchored at the start of the anchor day in loc.
func (req CreateBudgetRequest) ToBudget(loc *time.Location) (core.Budget, error) {
	kind, err := core.ParsePeriodKind(req.Kind)
	if err != nil {
		return core.Budget{}, err
	}
	cents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{
		Name:     sanitizeInput(req.Name),
		Kind:     kind,
		Limit:    core.Money{Cents: cents},
		Category: sanitizeInput(req.Category),
	}
	if req.Anchor != "" {
		anchor, err := time.ParseInLocation(dateLayout, req.Anchor, loc)
		if err != nil {
			return core.Budget{}, core.ErrInvalidDate
		}
		b.Anchor = anchor
	}
	return b, nil
}

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
