package main

import (
	"fmt"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/google/uuid"

	"peka/internal/backend"
	"peka/internal/cli"
	"peka/internal/worker"
)

type Params struct {
	Action      string `descr:"Action to run" positional:"true"`
	ExecutionID string `descr:"Identifier of this run, generated when empty" optional:"true"`
	StartDay    string `descr:"First day to ingest (YYYY-MM-DD), for the ingest action" optional:"true"`
	EndDay      string `descr:"Last day to ingest (YYYY-MM-DD), for the ingest action" optional:"true"`
	MonthsAgo   int    `descr:"How many months back the summarized month lies" default:"1"`
	RawEvent    string `descr:"Raw trigger payload, logged as received" optional:"true"`
	Local       bool   `descr:"Mark the run as started from a developer machine" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("peka").
		WithShort("Track PEKA transit card spending").
		WithLong("Scrapes confirmed rides from the PEKA Poznań portal into SQLite and builds monthly spending summaries.\n\nActions: " + strings.Join(worker.ActionNames(), ", ")).
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(params *Params) error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	executionID := params.ExecutionID
	if executionID == "" {
		executionID = uuid.NewString()
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	dispatcher := worker.NewDispatcher(backend.NewFactory(logger), logger, worker.Options{
		Backend:         backendCfg,
		Locale:          cfg.Locale(),
		Location:        cfg.Location(),
		MigrationMonths: cfg.MigrationMonths,
		NotifyTo:        cfg.NotifyEmailTo,
		NotifyFrom:      cfg.NotifyEmailFrom,
	})

	return dispatcher.DispatchName(ctx, params.Action, worker.ActionArgs{
		StartDay:  params.StartDay,
		EndDay:    params.EndDay,
		MonthsAgo: params.MonthsAgo,
		LagDays:   cfg.IngestLagDays,
	}, worker.Invocation{
		ExecutionID:  executionID,
		RawEvent:     params.RawEvent,
		RunningLocal: params.Local,
	})
}
