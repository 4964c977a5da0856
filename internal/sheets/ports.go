package sheets

import (
	"context"

	"peka/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryWriter mirrors stored monthly summaries to an external spreadsheet.
	SummaryWriter interface {
		AppendSummary(ctx context.Context, s core.MonthlySummary) error
	}
)
