package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetbook/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/budgets/1").
		Body(map[string]int{"id": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/api/budgets/1" {
		t.Errorf("Location = %q", got)
	}
	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["id"] != 1 {
		t.Errorf("Body = %q (err %v)", w.Body.String(), err)
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body("ignored").Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(make(chan int)).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad input", badInput{errors.New("invalid date")}, http.StatusBadRequest},
		{"not found", fmt.Errorf("get budget: %w", core.ErrNotFound), http.StatusNotFound},
		{"domain validation", fmt.Errorf("save: %w", core.ErrEmptyCategory), http.StatusUnprocessableEntity},
		{"empty record", core.Record{}.Validate(), http.StatusUnprocessableEntity},
		{"unexpected", errors.New("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFor(tt.err).Write(w)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("error body = %q", w.Body.String())
			}
		})
	}
}

func TestErrorForHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorFor(errors.New("sqlite: secret path /var/db")).Write(w)

	var body ErrorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error != "internal error" {
		t.Errorf("Error = %q, want generic message", body.Error)
	}
}
