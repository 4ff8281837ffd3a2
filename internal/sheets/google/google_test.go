package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Options{SpreadsheetID: "test-id"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:   "test-id",
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestCredentials_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(dir, "adc.json")
	if err := os.WriteFile(envFile, []byte(`{"from":"adc"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", envFile)

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"inline wins", Options{CredentialsJSON: `{"from":"inline"}`, CredentialsFile: file}, `{"from":"inline"}`},
		{"file", Options{CredentialsFile: file}, `{"from":"file"}`},
		{"application default", Options{}, `{"from":"adc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := credentials(tt.opts)
			if err != nil {
				t.Fatalf("credentials() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("credentials() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExportSummary_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetBase: defaultSheetName}
	_, err := c.ExportSummary(context.Background(), core.PeriodSummary{
		Range: core.DateRange{Start: time.Now(), End: time.Now()},
	})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

func TestSummaryRow(t *testing.T) {
	id := uuid.MustParse("6f1c1c64-4c53-4a4e-9d47-3a4a1b2c3d4e")
	s := core.PeriodSummary{
		BudgetID:   id,
		BudgetName: "Groceries",
		Kind:       core.Monthly,
		Range: core.DateRange{
			Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		Title:     "February 2024",
		Income:    core.Money{Cents: 250000},
		Spent:     core.Money{Cents: 41050},
		Limit:     core.Money{Cents: 40000},
		Remaining: core.Money{Cents: -1050},
		Overspent: true,
		ByCategory: []core.CategoryAmount{
			{Name: "Food", Amount: core.Money{Cents: 40000}},
			{Name: "Drinks", Amount: core.Money{Cents: 1050}},
		},
	}

	row := summaryRow(s)
	if len(row) != 12 {
		t.Fatalf("row has %d columns, want 12", len(row))
	}
	checks := map[int]any{
		0:  id.String(),
		1:  "Groceries",
		2:  "monthly",
		3:  "February 2024",
		4:  "2024-02-01",
		5:  "2024-02-29",
		7:  410.5,
		9:  -10.5,
		10: "true",
		11: "Food: 400.00; Drinks: 10.50",
	}
	for i, want := range checks {
		if row[i] != want {
			t.Errorf("column %d = %v, want %v", i, row[i], want)
		}
	}
}

func TestSummaryRow_CustomTitleFallback(t *testing.T) {
	s := core.PeriodSummary{
		Kind: core.Custom,
		Range: core.DateRange{
			Start: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 6, 20, 23, 59, 59, 0, time.UTC),
		},
	}
	if got := summaryRow(s)[3]; got != "2024-06-10 – 2024-06-20" {
		t.Errorf("title = %v", got)
	}
	if got := summaryRow(s)[11]; got != "" {
		t.Errorf("empty breakdown = %q", got)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		baseName string
		year     int
		expected string
	}{
		{"Budgets", 2025, "2025 Budgets"},
		{"", 2023, ""},
		{"Period Summaries", 2022, "2022 Period Summaries"},
		{"2025 Already Prefixed", 2024, "2025 Already Prefixed"},
	}

	for _, tt := range tests {
		got := yearPrefixedName(tt.baseName, tt.year)
		if got != tt.expected {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q",
				tt.baseName, tt.year, got, tt.expected)
		}
	}
}
