package http

import (
	"net/http"
	"time"

	"budgetbook/internal/core"
	applog "budgetbook/internal/log"
)

const defaultHistoryCount = 6

func (s *Server) location() *time.Location {
	if loc := s.calc.Calendar().Location; loc != nil {
		return loc
	}
	return time.UTC
}

// handlePeriod describes the period of kind that is offset periods away
// from the one containing date.
func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	date, err := ParseDate(query.Get("date"), s.location(), s.now())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	kind, err := ParseKind(query, core.Monthly)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	offset, err := ParseIntParam(query, "offset", 0, -maxOffset, maxOffset)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}

	target := s.calc.Advance(date, kind, offset)
	rng := s.calc.Range(target, kind)
	NewJSONResponse().
		Body(newPeriodResponse(kind, rng, s.calc.Title(rng.Start, kind))).
		Write(w)
}

func (s *Server) handlePeriodHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	date, err := ParseDate(query.Get("date"), s.location(), s.now())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	kind, err := ParseKind(query, core.Monthly)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	count, err := ParseIntParam(query, "count", defaultHistoryCount, 1, maxHistory)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	ranges := s.calc.History(date, kind, count)
	out := make([]periodResponse, 0, len(ranges))
	for _, rng := range ranges {
		out = append(out, newPeriodResponse(kind, rng, s.calc.Title(rng.Start, kind)))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req CreateBudgetRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	b, err := req.ToBudget(s.location())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	created, err := s.budgets.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Budget created",
		applog.NewFields().WithBudget(created.ID.String(), string(created.Kind)).ToSlice()...)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/budgets/"+created.ID.String()).
		Body(newBudgetResponse(created, s.location())).
		Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.ListBudgets(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, newBudgetResponse(b, s.location()))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := budgetIDParam(r)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	b, err := s.budgets.GetBudget(r.Context(), id)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Body(newBudgetResponse(b, s.location())).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := budgetIDParam(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.budgets.DeleteBudget(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	id, err := budgetIDParam(r)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	query := r.URL.Query()
	date, err := ParseDate(query.Get("date"), s.location(), s.now())
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	offset, err := ParseIntParam(query, "offset", 0, -maxOffset, maxOffset)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}

	sum, err := s.budgets.Summary(r.Context(), id, date, offset)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(newSummaryResponse(sum, s.location())).Write(w)
}

func (s *Server) handleBudgetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := budgetIDParam(r)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	query := r.URL.Query()
	date, err := ParseDate(query.Get("date"), s.location(), s.now())
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	count, err := ParseIntParam(query, "count", defaultHistoryCount, 1, maxHistory)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}

	sums, err := s.budgets.History(r.Context(), id, date, count)
	if err != nil {
		writeError(w, r, applog.OpSummary, err)
		return
	}
	out := make([]summaryResponse, 0, len(sums))
	for _, sum := range sums {
		out = append(out, newSummaryResponse(sum, s.location()))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := DecodeJSON(r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	rec, err := req.ToRecord(s.location())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	created, err := s.records.CreateRecord(r.Context(), rec)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context()).WithComponent(applog.ComponentRecord)).
		LogRecordCreated(r.Context(), created.ID, string(created.Type), created.Amount.Cents, created.Category)
	NewJSONResponse().
		Status(http.StatusCreated).
		Body(newRecordResponse(created, s.location())).
		Write(w)
}

// handleListRecords lists the records of one period, monthly by default.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	date, err := ParseDate(query.Get("date"), s.location(), s.now())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	kind, err := ParseKind(query, core.Monthly)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	offset, err := ParseIntParam(query, "offset", 0, -maxOffset, maxOffset)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	rng, records, err := s.records.ListForPeriod(r.Context(), date, kind, offset)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	resp := recordListResponse{
		Period:  newPeriodResponse(kind, rng, s.calc.Title(rng.Start, kind)),
		Records: make([]recordResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, newRecordResponse(rec, s.location()))
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordIDParam(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.records.DeleteRecord(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
