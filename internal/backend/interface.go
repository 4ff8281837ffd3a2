package backend

import (
	"context"

	"budgetbook/internal/sheets"
)

// CleanupFunc releases resources held by an exporter.
type CleanupFunc func() error

// ExporterResult contains the exporter instance and optional cleanup function
type ExporterResult struct {
	Exporter sheets.SummaryExporter
	Cleanup  CleanupFunc
}

// Factory creates summary exporters based on configuration
type Factory interface {
	CreateExporter(ctx context.Context, config Config) (*ExporterResult, error)
}

// Config holds configuration for exporter creation
type Config struct {
	Type ExporterType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// ExporterType names where closed period summaries are written.
type ExporterType string

const (
	MemoryExporter ExporterType = "memory"
	SheetsExporter ExporterType = "sheets"
	NoneExporter   ExporterType = "none"
)

// String implements fmt.Stringer
func (et ExporterType) String() string {
	return string(et)
}

// IsValid returns true if the exporter type is valid
func (et ExporterType) IsValid() bool {
	switch et {
	case MemoryExporter, SheetsExporter, NoneExporter:
		return true
	default:
		return false
	}
}
