package http

import (
	"time"

	"budgetbook/internal/core"
)

type periodResponse struct {
	Kind  core.PeriodKind `json:"kind"`
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Title string          `json:"title"`
	Days  int             `json:"days"`
}

type recordResponse struct {
	ID          int64           `json:"id"`
	Type        core.RecordType `json:"type"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	AmountCents int64           `json:"amount_cents"`
	Amount      string          `json:"amount"`
	Category    string          `json:"category"`
}

type recordListResponse struct {
	Period  periodResponse   `json:"period"`
	Records []recordResponse `json:"records"`
}

type budgetResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Kind            core.PeriodKind `json:"kind"`
	LimitCents      int64           `json:"limit_cents"`
	Limit           string          `json:"limit"`
	Category        string          `json:"category,omitempty"`
	Anchor          *time.Time      `json:"anchor,omitempty"`
	LastRolledStart *time.Time      `json:"last_rolled_start,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type categoryResponse struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

type summaryResponse struct {
	BudgetID       string             `json:"budget_id"`
	BudgetName     string             `json:"budget_name"`
	Period         periodResponse     `json:"period"`
	IncomeCents    int64              `json:"income_cents"`
	SpentCents     int64              `json:"spent_cents"`
	LimitCents     int64              `json:"limit_cents"`
	RemainingCents int64              `json:"remaining_cents"`
	Remaining      string             `json:"remaining"`
	Overspent      bool               `json:"overspent"`
	ByCategory     []categoryResponse `json:"by_category"`
}

func newPeriodResponse(kind core.PeriodKind, r core.DateRange, title string) periodResponse {
	return periodResponse{
		Kind:  kind,
		Start: r.Start,
		End:   r.End,
		Title: title,
		Days:  r.Days(),
	}
}

func newRecordResponse(r core.Record, loc *time.Location) recordResponse {
	return recordResponse{
		ID:          r.ID,
		Type:        r.Type,
		Date:        r.Date.In(loc).Format(dateLayout),
		Description: r.Description,
		AmountCents: r.Amount.Cents,
		Amount:      r.Amount.String(),
		Category:    r.Category,
	}
}

func newBudgetResponse(b core.Budget, loc *time.Location) budgetResponse {
	resp := budgetResponse{
		ID:         b.ID.String(),
		Name:       b.Name,
		Kind:       b.Kind,
		LimitCents: b.Limit.Cents,
		Limit:      b.Limit.String(),
		Category:   b.Category,
		CreatedAt:  b.CreatedAt.In(loc),
	}
	if !b.Anchor.IsZero() {
		anchor := b.Anchor.In(loc)
		resp.Anchor = &anchor
	}
	if !b.LastRolledStart.IsZero() {
		last := b.LastRolledStart.In(loc)
		resp.LastRolledStart = &last
	}
	return resp
}

func newSummaryResponse(s core.PeriodSummary, loc *time.Location) summaryResponse {
	r := core.DateRange{Start: s.Range.Start.In(loc), End: s.Range.End.In(loc)}
	resp := summaryResponse{
		BudgetID:       s.BudgetID.String(),
		BudgetName:     s.BudgetName,
		Period:         newPeriodResponse(s.Kind, r, s.Title),
		IncomeCents:    s.Income.Cents,
		SpentCents:     s.Spent.Cents,
		LimitCents:     s.Limit.Cents,
		RemainingCents: s.Remaining.Cents,
		Remaining:      s.Remaining.String(),
		Overspent:      s.Overspent,
		ByCategory:     make([]categoryResponse, 0, len(s.ByCategory)),
	}
	for _, c := range s.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryResponse{Name: c.Name, AmountCents: c.Amount.Cents})
	}
	return resp
}
