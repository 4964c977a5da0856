package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"peka/internal/core"
	"peka/internal/log"
)

// MigrationReport is the outcome of a historical migration.
type MigrationReport struct {
	Ingest *IngestReport
	// Summaries is ordered by monthsAgo, most recent month first.
	Summaries []core.MonthlySummary
}

// Migrator backfills a fresh database: it ingests the last Months months of
// history and then summarizes every complete month in it.
type Migrator struct {
	ingester   *Ingester
	summarizer *Summarizer
	months     int
}

func NewMigrator(ingester *Ingester, summarizer *Summarizer, months int) *Migrator {
	return &Migrator{
		ingester:   ingester,
		summarizer: summarizer,
		months:     months,
	}
}

// MigrateHistoricalData ingests [first day of the month `months` back, today] and
// then builds the summaries for months 1..months-1 concurrently. It stops at the
// first error; summaries already inserted stay.
func (m *Migrator) MigrateHistoricalData(ctx context.Context) (*MigrationReport, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentMigrate)

	if m.months < 1 {
		return nil, fmt.Errorf("migrate historical data: months must be at least 1, got %d", m.months)
	}

	ref := m.summarizer.cfg.reference()
	start, _ := core.MonthWindow(ref, m.months)
	today := core.DayOf(ref)

	ingest, err := m.ingester.Ingest(ctx, IngestParams{StartDay: start.String(), EndDay: today.String()})
	if err != nil {
		return nil, err
	}

	summaries := make([]core.MonthlySummary, m.months-1)
	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i < m.months; i++ {
		g.Go(func() error {
			s, err := m.summarizer.BuildMonthlySummary(gctx, i)
			if err != nil {
				return fmt.Errorf("summarize %d months ago: %w", i, err)
			}
			summaries[i-1] = *s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Historical data migrated",
		log.FieldStartDay, ingest.StartDay.String(),
		log.FieldEndDay, ingest.EndDay.String(),
		log.FieldCount, len(summaries))

	return &MigrationReport{Ingest: ingest, Summaries: summaries}, nil
}
