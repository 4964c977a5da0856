package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"peka/internal/backend"
	"peka/internal/core"
	"peka/internal/log"
	"peka/internal/report"
	"peka/internal/services"
	"peka/internal/storage"
)

// Options configures the actions independently of where they run.
type Options struct {
	Backend         backend.Config
	Locale          core.Locale
	Location        *time.Location
	Now             services.Clock
	MigrationMonths int
	NotifyTo        string
	NotifyFrom      string
	// Output receives the tables printed by list-summaries. Defaults to stdout.
	Output io.Writer
}

// Invocation is one run of one action.
type Invocation struct {
	Action       Action
	ExecutionID  string
	RawEvent     string
	RunningLocal bool
}

// Dispatcher runs actions against a runtime opened for each invocation.
type Dispatcher struct {
	factory backend.Factory
	opts    Options
	logger  *log.Logger
}

func NewDispatcher(factory backend.Factory, logger *log.Logger, opts Options) *Dispatcher {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Dispatcher{
		factory: factory,
		opts:    opts,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// DispatchName parses name and dispatches it. An unknown name is logged and is not an
// error, so a misrouted trigger does not fail the process.
func (d *Dispatcher) DispatchName(ctx context.Context, name string, args ActionArgs, inv Invocation) error {
	action, err := ParseAction(name, args)
	if errors.Is(err, ErrUnknownAction) {
		d.logger.ErrorContext(ctx, "Unknown action",
			log.FieldAction, name,
			log.FieldExecutionID, inv.ExecutionID,
			"known_actions", ActionNames())
		return nil
	}
	if err != nil {
		return err
	}
	inv.Action = action
	return d.Dispatch(ctx, inv)
}

// Dispatch runs inv.Action. Invalid input and rejected logins are logged and end the
// run without an error; every other failure is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) error {
	if inv.Action == nil {
		d.logger.ErrorContext(ctx, "Unknown action", log.FieldExecutionID, inv.ExecutionID)
		return nil
	}

	logger := d.logger.WithFields(log.NewFields().
		WithExecution(inv.ExecutionID, inv.Action.Name()).
		WithRunningLocal(inv.RunningLocal))
	ctx = log.WithContext(ctx, logger)
	ctx = log.WithExecutionID(ctx, inv.ExecutionID)

	logger.InfoContext(ctx, "Starting execution", "raw_event", inv.RawEvent)
	started := time.Now()

	rt, err := d.factory.Open(ctx, d.backendConfig(inv.Action))
	if err != nil {
		return fmt.Errorf("open runtime: %w", err)
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.WarnContext(ctx, "Failed to release runtime", log.FieldOperation, log.OpShutdown, log.FieldError, cerr)
		}
	}()

	err = inv.Action.accept(ctx, &execution{d: d, rt: rt})
	elapsed := time.Since(started).Milliseconds()

	var verr *core.ValidationErrors
	var aerr *core.AuthError
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Execution finished", log.FieldDurationMs, elapsed)
		return nil
	case errors.As(err, &verr):
		logger.ErrorContext(ctx, "Invalid input, nothing done", log.FieldOperation, log.OpValidate, log.FieldError, err)
		return nil
	case errors.As(err, &aerr):
		logger.ErrorContext(ctx, "Login rejected, nothing done", log.FieldOperation, log.OpAuthenticate, log.FieldError, err)
		return nil
	default:
		logger.ErrorContext(ctx, "Execution failed", log.FieldError, err, log.FieldDurationMs, elapsed)
		return fmt.Errorf("%s: %w", inv.Action.Name(), err)
	}
}

// backendConfig leaves out the integrations an action does not use, so a ping never
// dials the broker.
func (d *Dispatcher) backendConfig(action Action) backend.Config {
	cfg := d.opts.Backend
	switch action.(type) {
	case SendSummary:
		return cfg.WithoutExport()
	case MonthlySummary, HistoricalMigration:
		return cfg.WithoutNotifications()
	default:
		return cfg.WithoutNotifications().WithoutExport()
	}
}

func (d *Dispatcher) summaryConfig() services.SummaryConfig {
	return services.SummaryConfig{
		Locale:   d.opts.Locale,
		Location: d.opts.Location,
		Now:      d.opts.Now,
	}
}

// execution is the Visitor of a single invocation.
type execution struct {
	d  *Dispatcher
	rt *backend.Runtime
}

func (e *execution) summarizer() *services.Summarizer {
	return services.NewSummarizer(e.rt.Provider, e.rt.Store, e.rt.Exporter, e.d.summaryConfig())
}

func (e *execution) VisitPing(ctx context.Context, _ Ping) error {
	log.FromContext(ctx).InfoContext(ctx, "PONG")
	return nil
}

func (e *execution) VisitDailyIngest(ctx context.Context, a DailyIngest) error {
	if a.LagDays < 0 {
		var verr core.ValidationErrors
		verr.Add("lag_days", errors.New("must not be negative"))
		return verr.Err()
	}
	day := core.DayOf(e.d.opts.Now().In(e.d.opts.Location)).AddDays(-a.LagDays)
	return e.VisitIngestRange(ctx, IngestRange{StartDay: day.String(), EndDay: day.String()})
}

func (e *execution) VisitIngestRange(ctx context.Context, a IngestRange) error {
	report, err := services.NewIngester(e.rt.Provider, e.rt.Store).Ingest(ctx, services.IngestParams{
		StartDay: a.StartDay,
		EndDay:   a.EndDay,
	})
	if err != nil {
		return err
	}

	stored, err := e.rt.Store.CountJourneys(ctx, report.StartDay, report.EndDay)
	if err != nil {
		return err
	}
	log.FromContext(ctx).InfoContext(ctx, "Journeys stored in range",
		log.FieldStartDay, report.StartDay.String(),
		log.FieldEndDay, report.EndDay.String(),
		log.FieldCount, stored)
	return nil
}

func (e *execution) VisitMonthlySummary(ctx context.Context, a MonthlySummary) error {
	_, err := e.summarizer().BuildMonthlySummary(ctx, a.MonthsAgo)
	return err
}

func (e *execution) VisitOngoingMonthSummary(ctx context.Context, _ OngoingMonthSummary) error {
	_, err := e.summarizer().RefreshOngoingMonthSummary(ctx)
	return err
}

func (e *execution) VisitHistoricalMigration(ctx context.Context, _ HistoricalMigration) error {
	ingester := services.NewIngester(e.rt.Provider, e.rt.Store)
	_, err := services.NewMigrator(ingester, e.summarizer(), e.d.opts.MigrationMonths).MigrateHistoricalData(ctx)
	return err
}

func (e *execution) VisitSendSummary(ctx context.Context, a SendSummary) error {
	notifier := services.NewNotifier(e.rt.Store, e.rt.Publisher, e.d.opts.NotifyTo, e.d.opts.NotifyFrom, e.d.summaryConfig())
	_, err := notifier.SendMonthlySummary(ctx, a.MonthsAgo)
	return err
}

func (e *execution) VisitListSummaries(ctx context.Context, _ ListSummaries) error {
	monthly, err := e.rt.Store.ListMonthlySummaries(ctx)
	if err != nil {
		return err
	}
	ongoing, err := e.rt.Store.GetOngoingMonthSummary(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		ongoing = nil
	} else if err != nil {
		return err
	}
	report.PrintSummaries(e.d.opts.Output, monthly, ongoing)
	return nil
}
