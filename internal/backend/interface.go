package backend

import (
	"context"
	"errors"

	"peka/internal/core"
	"peka/internal/services"
	"peka/internal/sheets"
)

// Store is everything the actions need from storage.
type Store interface {
	services.JourneyStore
	services.SummaryStore
	CountJourneys(ctx context.Context, from, to core.Day) (int64, error)
	ListMonthlySummaries(ctx context.Context) ([]core.MonthlySummary, error)
	GetOngoingMonthSummary(ctx context.Context) (*core.OngoingMonthSummary, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Runtime holds the collaborators of one invocation. Publisher and Exporter are nil
// when their integrations are not configured.
type Runtime struct {
	Store     Store
	Provider  services.Provider
	Publisher services.SummaryPublisher
	Exporter  sheets.SummaryWriter

	cleanups []CleanupFunc
}

// AddCleanup registers fn to run on Close. Cleanups run in reverse order.
func (r *Runtime) AddCleanup(fn CleanupFunc) {
	r.cleanups = append(r.cleanups, fn)
}

// Close releases every resource of the runtime, even when some releases fail.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		if err := r.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.cleanups = nil
	return errors.Join(errs...)
}

// Factory acquires a Runtime per invocation.
type Factory interface {
	Open(ctx context.Context, config Config) (*Runtime, error)
}
