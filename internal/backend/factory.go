package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbook/internal/core"
	gsheet "budgetbook/internal/sheets/google"
	"budgetbook/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new exporter factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateExporter implements Factory.CreateExporter
func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (*ExporterResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsExporter:
		return f.createSheetsExporter(ctx, config)
	case MemoryExporter:
		f.logger.Info("Initialized memory exporter")
		return &ExporterResult{Exporter: memory.New()}, nil
	case NoneExporter:
		f.logger.Info("Summary export disabled")
		return &ExporterResult{Exporter: discard{}}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsExporter(ctx context.Context, config Config) (*ExporterResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets exporter",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &ExporterResult{Exporter: cli}, nil
}

type discard struct{}

func (discard) ExportSummary(context.Context, core.PeriodSummary) (string, error) {
	return "", nil
}
