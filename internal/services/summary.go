package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peka/internal/core"
	"peka/internal/log"
	"peka/internal/sheets"
)

// SummaryConfig fixes how summaries are labelled and which "now" they are computed
// against.
type SummaryConfig struct {
	Locale   core.Locale
	Location *time.Location
	Now      Clock
}

// reference returns the run's current time in the configured timezone.
func (c SummaryConfig) reference() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// window returns the month monthsAgo months back together with its label.
func (c SummaryConfig) window(monthsAgo int) (from, to core.Day, label string) {
	from, to = core.MonthWindow(c.reference(), monthsAgo)
	return from, to, core.MonthLabel(from, c.Locale)
}

func validateMonthsAgo(monthsAgo int) error {
	if monthsAgo < 0 {
		var verr core.ValidationErrors
		verr.Add("months_ago", errors.New("must not be negative"))
		return verr.Err()
	}
	return nil
}

type Summarizer struct {
	provider Provider
	store    SummaryStore
	exporter sheets.SummaryWriter
	cfg      SummaryConfig
}

// NewSummarizer creates the summary actions. exporter may be nil to skip the
// spreadsheet mirror.
func NewSummarizer(provider Provider, store SummaryStore, exporter sheets.SummaryWriter, cfg SummaryConfig) *Summarizer {
	return &Summarizer{
		provider: provider,
		store:    store,
		exporter: exporter,
		cfg:      cfg,
	}
}

// BuildMonthlySummary stores the spending total of the calendar month monthsAgo
// months back, keyed by its label. Summarizing a month twice fails in storage.
func (s *Summarizer) BuildMonthlySummary(ctx context.Context, monthsAgo int) (*core.MonthlySummary, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentSummary)

	if err := validateMonthsAgo(monthsAgo); err != nil {
		return nil, err
	}

	from, to, label := s.cfg.window(monthsAgo)
	sum, err := s.store.SumPrices(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := core.MonthlySummary{
		ID:        label,
		From:      from,
		To:        to,
		Sum:       sum,
		CreatedAt: s.cfg.reference(),
	}
	if err := s.store.InsertMonthlySummary(ctx, summary); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Monthly summary inserted",
		log.NewFields().
			WithOperation(log.OpInsert).
			WithDayRange(from.String(), to.String()).
			WithSummary(label, sum).
			ToSlice()...)

	// The stored row is the record; a failed mirror only warns.
	if s.exporter != nil {
		if err := s.exporter.AppendSummary(ctx, summary); err != nil {
			logger.WarnContext(ctx, "Failed to export monthly summary",
				log.FieldOperation, log.OpExport,
				log.FieldMonth, label,
				log.FieldError, err)
		}
	}

	return &summary, nil
}

// RefreshOngoingMonthSummary replaces the current-month snapshot: fetch the card
// balance, purge every previous snapshot, sum the current month and insert one
// record. A rejected login returns *core.AuthError before anything is deleted.
func (s *Summarizer) RefreshOngoingMonthSummary(ctx context.Context) (*core.OngoingMonthSummary, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentSummary)

	token, err := authenticate(ctx, s.provider)
	if err != nil {
		return nil, err
	}

	balance, err := s.provider.GetAccountBalance(ctx, token)
	if err != nil {
		return nil, err
	}

	removed, err := s.store.ClearOngoingMonthSummaries(ctx)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "Cleared ongoing month summaries", log.FieldOperation, log.OpClear, log.FieldCount, removed)

	from, to, label := s.cfg.window(0)
	sum, err := s.store.SumPrices(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := core.OngoingMonthSummary{
		MonthlySummary: core.MonthlySummary{
			ID:        label,
			From:      from,
			To:        to,
			Sum:       sum,
			CreatedAt: s.cfg.reference(),
		},
		Balance: &balance,
	}
	if err := s.store.InsertOngoingMonthSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("refresh ongoing month summary: %w", err)
	}

	logger.InfoContext(ctx, "Ongoing month summary inserted",
		log.FieldMonth, label,
		log.FieldSum, sum,
		log.FieldBalance, balance)

	return &summary, nil
}
