package services

import (
	"context"
	"time"

	"peka/internal/core"
	"peka/internal/log"
	"peka/internal/peka"
)

// IngestParams is the requested inclusive day range, as received from the caller.
type IngestParams struct {
	StartDay string
	EndDay   string
}

// Validate parses both days and checks their order, reporting every problem.
func (p IngestParams) Validate() (dayRange, error) {
	var verr core.ValidationErrors

	start, err := core.ToDay(p.StartDay)
	if err != nil {
		verr.Add("start_day", err)
	}
	end, err := core.ToDay(p.EndDay)
	if err != nil {
		verr.Add("end_day", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		verr.Add("end_day", core.ErrInvalidRange)
	}

	if err := verr.Err(); err != nil {
		return dayRange{}, err
	}
	return dayRange{start: start, end: end}, nil
}

// IngestReport describes a finished ingestion.
type IngestReport struct {
	// StartDay and EndDay are the range actually covered. StartDay moves forward
	// when the provider's history ends before the requested start.
	StartDay     core.Day
	EndDay       core.Day
	Inserted     int
	PagesFetched int
	TotalPages   int
	// Partial is set when the history did not reach the requested start day.
	Partial bool
}

type Ingester struct {
	provider Provider
	store    JourneyStore
}

func NewIngester(provider Provider, store JourneyStore) *Ingester {
	return &Ingester{provider: provider, store: store}
}

// Ingest copies the confirmed rides of [StartDay, EndDay] from the provider into
// storage. Invalid input returns *core.ValidationErrors and a rejected login returns
// *core.AuthError, both before anything is fetched or written. Journeys are inserted
// in one bulk write after the walk, so a failed fetch writes nothing.
func (i *Ingester) Ingest(ctx context.Context, params IngestParams) (*IngestReport, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentIngest)
	started := time.Now()

	r, err := params.Validate()
	if err != nil {
		return nil, err
	}

	token, err := authenticate(ctx, i.provider)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, n int) (*peka.TransitPage, error) {
		logger.DebugContext(ctx, "Fetching history page", log.FieldOperation, log.OpFetchPage, log.FieldPage, n)
		return i.provider.GetTransitsPage(ctx, n, token)
	}
	walk, err := walkPages(ctx, fetch, r)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{
		StartDay:     r.start,
		EndDay:       r.end,
		Inserted:     len(walk.journeys),
		PagesFetched: walk.pagesFetched,
		TotalPages:   walk.totalPages,
	}

	if walk.state == walkExhausted && !walk.oldestDay.IsZero() && r.start.Before(walk.oldestDay) {
		report.Partial = true
		report.StartDay = walk.oldestDay
		logger.WarnContext(ctx, "Reached the end of available history early, not all data may be available for the given range",
			"earliest_ride_day", walk.oldestDay.String(),
			log.FieldStartDay, r.start.String())
	}

	logger.InfoContext(ctx, "Day range (both sides included)",
		log.FieldStartDay, report.StartDay.String(),
		log.FieldEndDay, report.EndDay.String(),
		log.FieldPage, walk.pagesFetched,
		log.FieldTotalPages, walk.totalPages,
		"walk", walk.state.String())

	if err := i.store.InsertJourneys(ctx, walk.journeys); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Journeys inserted",
		log.FieldOperation, log.OpInsert,
		log.FieldCount, report.Inserted,
		log.FieldDurationMs, time.Since(started).Milliseconds())

	return report, nil
}
