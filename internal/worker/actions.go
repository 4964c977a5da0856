package worker

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownAction is returned by ParseAction for names no action answers to.
var ErrUnknownAction = errors.New("unknown action")

// Action is one job the binary can run. The set is closed: every variant is declared
// in this file and handled by every Visitor.
type Action interface {
	Name() string
	accept(ctx context.Context, v Visitor) error
}

// Visitor handles each action variant. Adding a variant adds a method here, so a
// dispatcher that misses it does not compile.
type Visitor interface {
	VisitPing(ctx context.Context, a Ping) error
	VisitDailyIngest(ctx context.Context, a DailyIngest) error
	VisitIngestRange(ctx context.Context, a IngestRange) error
	VisitMonthlySummary(ctx context.Context, a MonthlySummary) error
	VisitOngoingMonthSummary(ctx context.Context, a OngoingMonthSummary) error
	VisitHistoricalMigration(ctx context.Context, a HistoricalMigration) error
	VisitSendSummary(ctx context.Context, a SendSummary) error
	VisitListSummaries(ctx context.Context, a ListSummaries) error
}

type (
	// Ping only proves the invocation path works.
	Ping struct{}

	// DailyIngest ingests the single day LagDays before today.
	DailyIngest struct {
		LagDays int
	}

	// IngestRange ingests an explicit inclusive day range.
	IngestRange struct {
		StartDay string
		EndDay   string
	}

	// MonthlySummary stores the total of the month MonthsAgo months back.
	MonthlySummary struct {
		MonthsAgo int
	}

	// OngoingMonthSummary refreshes the current-month snapshot with the card balance.
	OngoingMonthSummary struct{}

	// HistoricalMigration backfills journeys and monthly summaries.
	HistoricalMigration struct{}

	// SendSummary publishes the summary email of the month MonthsAgo months back.
	SendSummary struct {
		MonthsAgo int
	}

	// ListSummaries prints the stored summaries.
	ListSummaries struct{}
)

func (Ping) Name() string                { return "ping" }
func (DailyIngest) Name() string         { return "daily-ingest" }
func (IngestRange) Name() string         { return "ingest" }
func (MonthlySummary) Name() string      { return "monthly-summary" }
func (OngoingMonthSummary) Name() string { return "ongoing-summary" }
func (HistoricalMigration) Name() string { return "historical-migration" }
func (SendSummary) Name() string         { return "send-summary" }
func (ListSummaries) Name() string       { return "list-summaries" }

func (a Ping) accept(ctx context.Context, v Visitor) error                { return v.VisitPing(ctx, a) }
func (a DailyIngest) accept(ctx context.Context, v Visitor) error         { return v.VisitDailyIngest(ctx, a) }
func (a IngestRange) accept(ctx context.Context, v Visitor) error         { return v.VisitIngestRange(ctx, a) }
func (a MonthlySummary) accept(ctx context.Context, v Visitor) error      { return v.VisitMonthlySummary(ctx, a) }
func (a OngoingMonthSummary) accept(ctx context.Context, v Visitor) error { return v.VisitOngoingMonthSummary(ctx, a) }
func (a HistoricalMigration) accept(ctx context.Context, v Visitor) error { return v.VisitHistoricalMigration(ctx, a) }
func (a SendSummary) accept(ctx context.Context, v Visitor) error         { return v.VisitSendSummary(ctx, a) }
func (a ListSummaries) accept(ctx context.Context, v Visitor) error       { return v.VisitListSummaries(ctx, a) }

// ActionArgs carries the optional arguments of the actions that take any.
type ActionArgs struct {
	StartDay  string
	EndDay    string
	MonthsAgo int
	LagDays   int
}

// ActionNames lists every accepted action name.
func ActionNames() []string {
	return []string{
		Ping{}.Name(),
		DailyIngest{}.Name(),
		IngestRange{}.Name(),
		MonthlySummary{}.Name(),
		OngoingMonthSummary{}.Name(),
		HistoricalMigration{}.Name(),
		SendSummary{}.Name(),
		ListSummaries{}.Name(),
	}
}

// ParseAction maps an action name to its variant.
func ParseAction(name string, args ActionArgs) (Action, error) {
	switch name {
	case "ping":
		return Ping{}, nil
	case "daily-ingest":
		return DailyIngest{LagDays: args.LagDays}, nil
	case "ingest":
		return IngestRange{StartDay: args.StartDay, EndDay: args.EndDay}, nil
	case "monthly-summary":
		return MonthlySummary{MonthsAgo: args.MonthsAgo}, nil
	case "ongoing-summary":
		return OngoingMonthSummary{}, nil
	case "historical-migration":
		return HistoricalMigration{}, nil
	case "send-summary":
		return SendSummary{MonthsAgo: args.MonthsAgo}, nil
	case "list-summaries":
		return ListSummaries{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}
