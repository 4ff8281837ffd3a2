package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"budgetbook/internal/core"
	ports "budgetbook/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Budgets"

var _ ports.SummaryExporter = (*Client)(nil)

// Options configures the Sheets exporter.
type Options struct {
	SpreadsheetID string
	// SheetName is the base tab name; the period year is prefixed automatically.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = defaultSheetName
	}

	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     base,
	}, nil
}

// credentials resolves inline JSON first, then the file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func credentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func newSheetsService(ctx context.Context, creds []byte) (*gsheet.Service, error) {
	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(creds),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportSummary appends one row per summary to the "<year> <base>" tab.
func (c *Client) ExportSummary(ctx context.Context, s core.PeriodSummary) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if s.Range.Start.IsZero() {
		return "", errors.New("summary without period start")
	}

	sheet := yearPrefixedName(c.sheetBase, s.Range.Start.Year())
	rng := fmt.Sprintf("%s!A:L", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{summaryRow(s)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append summary to %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Summary exported to Google Sheets",
		"budget_id", s.BudgetID,
		"title", s.Title,
		"range", ref)

	return ref, nil
}

// summaryRow lays out the columns A:L of an exported summary.
func summaryRow(s core.PeriodSummary) []any {
	title := s.Title
	if title == "" {
		title = s.Range.Start.Format(time.DateOnly) + " – " + s.Range.End.Format(time.DateOnly)
	}
	return []any{
		s.BudgetID.String(),
		s.BudgetName,
		string(s.Kind),
		title,
		s.Range.Start.Format(time.DateOnly),
		s.Range.End.Format(time.DateOnly),
		s.Income.Euros(),
		s.Spent.Euros(),
		s.Limit.Euros(),
		s.Remaining.Euros(),
		strconv.FormatBool(s.Overspent),
		categoryBreakdown(s.ByCategory),
	}
}

func categoryBreakdown(cats []core.CategoryAmount) string {
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, c.Name+": "+c.Amount.String())
	}
	return strings.Join(parts, "; ")
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
