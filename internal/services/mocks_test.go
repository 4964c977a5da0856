package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"peka/internal/amqp"
	"peka/internal/core"
	"peka/internal/peka"
)

type mockProvider struct {
	AuthenticateFunc      func(ctx context.Context) (peka.AuthResult, error)
	GetTransitsPageFunc   func(ctx context.Context, pageNumber int, token string) (*peka.TransitPage, error)
	GetAccountBalanceFunc func(ctx context.Context, token string) (float64, error)

	authCalls      int
	pagesRequested []int
	balanceCalls   int
}

func (m *mockProvider) Authenticate(ctx context.Context) (peka.AuthResult, error) {
	m.authCalls++
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx)
	}
	return peka.AuthResult{Code: 0, Token: "tok"}, nil
}

func (m *mockProvider) GetTransitsPage(ctx context.Context, pageNumber int, token string) (*peka.TransitPage, error) {
	m.pagesRequested = append(m.pagesRequested, pageNumber)
	if m.GetTransitsPageFunc != nil {
		return m.GetTransitsPageFunc(ctx, pageNumber, token)
	}
	return nil, errors.New("GetTransitsPage not configured")
}

func (m *mockProvider) GetAccountBalance(ctx context.Context, token string) (float64, error) {
	m.balanceCalls++
	if m.GetAccountBalanceFunc != nil {
		return m.GetAccountBalanceFunc(ctx, token)
	}
	return 0, nil
}

// pagedProvider serves the given pages, newest first, with a successful login.
func pagedProvider(pages ...[]peka.TransitItem) *mockProvider {
	return &mockProvider{
		GetTransitsPageFunc: func(ctx context.Context, n int, token string) (*peka.TransitPage, error) {
			if token != "tok" {
				return nil, errors.New("bad token")
			}
			if n >= len(pages) {
				return nil, errors.New("page out of range")
			}
			return &peka.TransitPage{
				Content:    pages[n],
				TotalPages: len(pages),
				Number:     n,
				Last:       n == len(pages)-1,
			}, nil
		},
	}
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

const (
	transactionTypeTopUp = "Doładowanie punktów"
	transactionCancelled = "Anulowana"
)

func topUp(id, date string, price float64) peka.TransitItem {
	return peka.TransitItem{
		TransactionID:     id,
		TransactionDate:   date,
		TransactionType:   transactionTypeTopUp,
		TransactionStatus: core.TransactionConfirmed,
		Price:             price,
	}
}

// mockStore records every call in order. It is safe for concurrent use.
type mockStore struct {
	InsertJourneysFunc             func(ctx context.Context, journeys []core.Journey) error
	SumPricesFunc                  func(ctx context.Context, from, to core.Day) (float64, error)
	InsertMonthlySummaryFunc       func(ctx context.Context, s core.MonthlySummary) error
	ClearOngoingMonthSummariesFunc func(ctx context.Context) (int64, error)
	InsertOngoingFunc              func(ctx context.Context, s core.OngoingMonthSummary) error

	mu       sync.Mutex
	calls    []string
	journeys [][]core.Journey
	monthly  []core.MonthlySummary
	ongoing  []core.OngoingMonthSummary
	sums     [][2]core.Day
}

func (m *mockStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockStore) callCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *mockStore) InsertJourneys(ctx context.Context, journeys []core.Journey) error {
	m.record("InsertJourneys")
	m.mu.Lock()
	m.journeys = append(m.journeys, journeys)
	m.mu.Unlock()
	if m.InsertJourneysFunc != nil {
		return m.InsertJourneysFunc(ctx, journeys)
	}
	return nil
}

func (m *mockStore) SumPrices(ctx context.Context, from, to core.Day) (float64, error) {
	m.record("SumPrices")
	m.mu.Lock()
	m.sums = append(m.sums, [2]core.Day{from, to})
	m.mu.Unlock()
	if m.SumPricesFunc != nil {
		return m.SumPricesFunc(ctx, from, to)
	}
	return 0, nil
}

func (m *mockStore) InsertMonthlySummary(ctx context.Context, s core.MonthlySummary) error {
	m.record("InsertMonthlySummary")
	if m.InsertMonthlySummaryFunc != nil {
		if err := m.InsertMonthlySummaryFunc(ctx, s); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.monthly = append(m.monthly, s)
	m.mu.Unlock()
	return nil
}

func (m *mockStore) ClearOngoingMonthSummaries(ctx context.Context) (int64, error) {
	m.record("ClearOngoingMonthSummaries")
	if m.ClearOngoingMonthSummariesFunc != nil {
		return m.ClearOngoingMonthSummariesFunc(ctx)
	}
	return 1, nil
}

func (m *mockStore) InsertOngoingMonthSummary(ctx context.Context, s core.OngoingMonthSummary) error {
	m.record("InsertOngoingMonthSummary")
	if m.InsertOngoingFunc != nil {
		if err := m.InsertOngoingFunc(ctx, s); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.ongoing = append(m.ongoing, s)
	m.mu.Unlock()
	return nil
}

type mockExporter struct {
	AppendSummaryFunc func(ctx context.Context, s core.MonthlySummary) error
	exported          []core.MonthlySummary
}

func (m *mockExporter) AppendSummary(ctx context.Context, s core.MonthlySummary) error {
	m.exported = append(m.exported, s)
	if m.AppendSummaryFunc != nil {
		return m.AppendSummaryFunc(ctx, s)
	}
	return nil
}

type mockPublisher struct {
	PublishSummaryFunc func(ctx context.Context, msg *amqp.SummaryMessage) error
	published          []*amqp.SummaryMessage
}

func (m *mockPublisher) PublishSummary(ctx context.Context, msg *amqp.SummaryMessage) error {
	m.published = append(m.published, msg)
	if m.PublishSummaryFunc != nil {
		return m.PublishSummaryFunc(ctx, msg)
	}
	return nil
}

// fixedConfig pins "now" so month windows are deterministic.
func fixedConfig(now time.Time, locale core.Locale) SummaryConfig {
	return SummaryConfig{
		Locale:   locale,
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}
}
