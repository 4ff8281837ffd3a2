package sheets

import (
	"context"

	"budgetbook/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryExporter writes a closed period summary to an external report.
	SummaryExporter interface {
		// ExportSummary stores s and returns a reference to where it landed.
		ExportSummary(ctx context.Context, s core.PeriodSummary) (ref string, err error)
	}
)
