package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peka/internal/backend"
	"peka/internal/core"
	"peka/internal/log"
	"peka/internal/peka"
	"peka/internal/services"
	"peka/internal/storage"
)

type fakeProvider struct {
	authCode  int
	pages     [][]peka.TransitItem
	pageErr   error
	balance   float64
	authCalls int
}

func (p *fakeProvider) Authenticate(ctx context.Context) (peka.AuthResult, error) {
	p.authCalls++
	return peka.AuthResult{Code: p.authCode, Token: "tok"}, nil
}

func (p *fakeProvider) GetTransitsPage(ctx context.Context, n int, token string) (*peka.TransitPage, error) {
	if p.pageErr != nil {
		return nil, p.pageErr
	}
	if n >= len(p.pages) {
		return nil, errors.New("page out of range")
	}
	return &peka.TransitPage{
		Content:    p.pages[n],
		TotalPages: len(p.pages),
		Number:     n,
		Last:       n == len(p.pages)-1,
	}, nil
}

func (p *fakeProvider) GetAccountBalance(ctx context.Context, token string) (float64, error) {
	return p.balance, nil
}

// fakeFactory hands out runtimes over one shared repository and records every open.
type fakeFactory struct {
	store    *storage.SQLiteRepository
	provider *fakeProvider
	openErr  error

	opened []backend.Config
	closed int
}

func (f *fakeFactory) Open(ctx context.Context, cfg backend.Config) (*backend.Runtime, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened = append(f.opened, cfg)
	rt := &backend.Runtime{Store: f.store, Provider: f.provider}
	rt.AddCleanup(func() error { f.closed++; return nil })
	return rt, nil
}

func ride(id, date string, price float64) peka.TransitItem {
	return peka.TransitItem{
		TransactionID:     id,
		TransactionDate:   date,
		TransactionType:   core.TransactionTypeRide,
		TransactionStatus: core.TransactionConfirmed,
		Price:             price,
	}
}

type harness struct {
	factory    *fakeFactory
	dispatcher *Dispatcher
	logs       *bytes.Buffer
	out        *bytes.Buffer
}

func newHarness(t *testing.T, provider *fakeProvider, now time.Time) *harness {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "peka.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	out := &bytes.Buffer{}
	factory := &fakeFactory{store: repo, provider: provider}
	logger := log.New(log.Config{Output: logs, Level: slog.LevelDebug})

	return &harness{
		factory: factory,
		dispatcher: NewDispatcher(factory, logger, Options{
			Backend:         backend.Config{SQLiteDBPath: "unused.db"},
			Locale:          core.LocalePL,
			Location:        warsaw,
			Now:             func() time.Time { return now },
			MigrationMonths: 3,
			NotifyTo:        "rider@example.com",
			Output:          out,
		}),
		logs: logs,
		out:  out,
	}
}

func (h *harness) dispatch(t *testing.T, action Action) error {
	t.Helper()
	return h.dispatcher.Dispatch(context.Background(), Invocation{Action: action, ExecutionID: "exec-1"})
}

func TestDispatch_Ping(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, time.Now())

	require.NoError(t, h.dispatch(t, Ping{}))

	assert.Contains(t, h.logs.String(), "Starting execution")
	assert.Contains(t, h.logs.String(), "PONG")
	assert.Contains(t, h.logs.String(), "execution_id=exec-1")
	assert.Len(t, h.factory.opened, 1)
	assert.Equal(t, 1, h.factory.closed)
}

func TestDispatchName_UnknownActionIsNotAnError(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, time.Now())

	err := h.dispatcher.DispatchName(context.Background(), "PEKA_EVERYWEEK", ActionArgs{}, Invocation{ExecutionID: "exec-1"})

	require.NoError(t, err)
	assert.Contains(t, h.logs.String(), "Unknown action")
	assert.Empty(t, h.factory.opened)
}

func TestDispatch_DailyIngestUsesLaggedDay(t *testing.T) {
	provider := &fakeProvider{pages: [][]peka.TransitItem{{
		ride("t4", "2023-10-14T08:00:00", 9),
		ride("t3", "2023-10-13T18:00:00", 4),
		ride("t2", "2023-10-13T07:00:00", 3),
		ride("t1", "2023-10-12T07:00:00", 5),
	}}}
	h := newHarness(t, provider, time.Date(2023, 10, 15, 0, 30, 0, 0, time.UTC))

	require.NoError(t, h.dispatch(t, DailyIngest{LagDays: 2}))

	ctx := context.Background()
	sum, err := h.factory.store.SumPrices(ctx, "2023-10-01", "2023-10-31")
	require.NoError(t, err)
	assert.Equal(t, 7.0, sum)
	assert.Contains(t, h.logs.String(), "Journeys stored in range")
	assert.Contains(t, h.logs.String(), "start_day=2023-10-13 end_day=2023-10-13 count=2")
}

func TestDispatch_InvalidRangeIsCleanAbort(t *testing.T) {
	provider := &fakeProvider{}
	h := newHarness(t, provider, time.Now())

	err := h.dispatch(t, IngestRange{StartDay: "2023-10-20", EndDay: "2023-10-01"})

	require.NoError(t, err)
	assert.Contains(t, h.logs.String(), "Invalid input")
	assert.Zero(t, provider.authCalls)
	assert.Equal(t, 1, h.factory.closed)
}

func TestDispatch_RejectedLoginIsCleanAbort(t *testing.T) {
	provider := &fakeProvider{authCode: 3}
	h := newHarness(t, provider, time.Now())

	err := h.dispatch(t, IngestRange{StartDay: "2023-10-01", EndDay: "2023-10-31"})

	require.NoError(t, err)
	assert.Contains(t, h.logs.String(), "Login rejected")
	assert.Contains(t, h.logs.String(), "captcha")
}

func TestDispatch_ProviderFailureIsReturned(t *testing.T) {
	provider := &fakeProvider{pageErr: errors.New("connection reset")}
	h := newHarness(t, provider, time.Now())

	err := h.dispatch(t, IngestRange{StartDay: "2023-10-01", EndDay: "2023-10-31"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest")
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, h.factory.closed)
}

func TestDispatch_OpenFailure(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, time.Now())
	h.factory.openErr = errors.New("disk full")

	err := h.dispatch(t, Ping{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open runtime")
}

func TestDispatch_MonthlySummaryThenList(t *testing.T) {
	h := newHarness(t, &fakeProvider{balance: 10.3}, time.Date(2023, 11, 5, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, h.factory.store.InsertJourneys(ctx, []core.Journey{
		{ID: "a", TransactionDate: "2023-10-02", Price: 6.25},
		{ID: "b", TransactionDate: "2023-10-30", Price: 6.25},
		{ID: "c", TransactionDate: "2023-11-01", Price: 4},
	}))

	require.NoError(t, h.dispatch(t, MonthlySummary{MonthsAgo: 1}))
	require.NoError(t, h.dispatch(t, OngoingMonthSummary{}))
	require.NoError(t, h.dispatch(t, ListSummaries{}))

	out := h.out.String()
	assert.Contains(t, out, "Październik 2023")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "Listopad 2023")
	assert.Contains(t, out, "10.30")
}

func TestDispatch_ListSummariesEmpty(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, time.Now())

	require.NoError(t, h.dispatch(t, ListSummaries{}))
	assert.Contains(t, h.out.String(), "Month")
}

func TestDispatch_SendSummaryWithoutBroker(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, time.Now())

	err := h.dispatch(t, SendSummary{MonthsAgo: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotificationsDisabled))
}

func TestDispatcher_BackendConfigPerAction(t *testing.T) {
	d := NewDispatcher(&fakeFactory{}, log.Discard(), Options{Backend: backend.Config{
		SQLiteDBPath:        "x.db",
		AMQPURL:             "amqp://localhost/",
		GoogleSpreadsheetID: "sheet",
	}})

	tests := []struct {
		action     Action
		wantNotify bool
		wantExport bool
	}{
		{Ping{}, false, false},
		{DailyIngest{}, false, false},
		{OngoingMonthSummary{}, false, false},
		{ListSummaries{}, false, false},
		{MonthlySummary{}, false, true},
		{HistoricalMigration{}, false, true},
		{SendSummary{}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.action.Name(), func(t *testing.T) {
			cfg := d.backendConfig(tt.action)
			assert.Equal(t, tt.wantNotify, cfg.NotificationsEnabled())
			assert.Equal(t, tt.wantExport, cfg.ExportEnabled())
			assert.Equal(t, "x.db", cfg.SQLiteDBPath)
		})
	}
}
