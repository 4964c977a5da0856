package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"peka/internal/core"
	"peka/internal/peka"
)

func TestMigrator_MigrateHistoricalData(t *testing.T) {
	var ingestedRange dayRange
	provider := &mockProvider{
		GetTransitsPageFunc: func(ctx context.Context, n int, token string) (*peka.TransitPage, error) {
			return &peka.TransitPage{
				Content: []peka.TransitItem{
					ride("A", "2023-11-10T10:00:00", 1),
					ride("B", "2022-11-01T10:00:00", 2),
					ride("C", "2022-10-31T10:00:00", 3),
				},
				TotalPages: 1,
			}, nil
		},
	}
	store := &mockStore{
		SumPricesFunc: func(ctx context.Context, from, to core.Day) (float64, error) { return 1, nil },
	}
	cfg := fixedConfig(midNovember, core.LocalePL)
	ingester := NewIngester(provider, store)
	m := NewMigrator(ingester, NewSummarizer(provider, store, nil, cfg), 12)

	report, err := m.MigrateHistoricalData(context.Background())
	if err != nil {
		t.Fatalf("MigrateHistoricalData() error = %v", err)
	}

	ingestedRange = dayRange{start: report.Ingest.StartDay, end: report.Ingest.EndDay}
	if ingestedRange.start != "2022-11-01" || ingestedRange.end != "2023-11-15" {
		t.Errorf("ingested %s..%s, want 2022-11-01..2023-11-15", ingestedRange.start, ingestedRange.end)
	}
	if got := journeyIDs(store.journeys[0]); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("ingested journeys %v, want [A B]", got)
	}

	if len(report.Summaries) != 11 {
		t.Fatalf("built %d summaries, want 11", len(report.Summaries))
	}
	if report.Summaries[0].ID != "Październik 2023" || report.Summaries[10].ID != "Grudzień 2022" {
		t.Errorf("summaries run from %q to %q", report.Summaries[0].ID, report.Summaries[10].ID)
	}

	labels := make([]string, 0, len(store.monthly))
	for _, s := range store.monthly {
		labels = append(labels, s.ID)
	}
	sort.Strings(labels)
	for i := 1; i < len(labels); i++ {
		if labels[i] == labels[i-1] {
			t.Errorf("month %q summarized twice", labels[i])
		}
	}
	if len(labels) != 11 {
		t.Errorf("stored %d summaries, want 11", len(labels))
	}
}

func TestMigrator_IngestFailureSkipsSummaries(t *testing.T) {
	provider := &mockProvider{
		AuthenticateFunc: func(ctx context.Context) (peka.AuthResult, error) {
			return peka.AuthResult{Code: 2}, nil
		},
	}
	store := &mockStore{}
	cfg := fixedConfig(midNovember, core.LocalePL)
	m := NewMigrator(NewIngester(provider, store), NewSummarizer(provider, store, nil, cfg), 12)

	_, err := m.MigrateHistoricalData(context.Background())
	var authErr *core.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want *core.AuthError", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("storage calls made: %v", store.calls)
	}
}

func TestMigrator_SummaryFailure(t *testing.T) {
	provider := &mockProvider{
		GetTransitsPageFunc: func(ctx context.Context, n int, token string) (*peka.TransitPage, error) {
			return &peka.TransitPage{TotalPages: 0}, nil
		},
	}
	boom := errors.New("database is locked")
	store := &mockStore{
		InsertMonthlySummaryFunc: func(ctx context.Context, s core.MonthlySummary) error {
			if s.ID == "Maj 2023" {
				return boom
			}
			return nil
		},
	}
	cfg := fixedConfig(time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC), core.LocalePL)
	m := NewMigrator(NewIngester(provider, store), NewSummarizer(provider, store, nil, cfg), 12)

	_, err := m.MigrateHistoricalData(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}

func TestMigrator_RejectsZeroMonths(t *testing.T) {
	store := &mockStore{}
	cfg := fixedConfig(midNovember, core.LocalePL)
	m := NewMigrator(NewIngester(&mockProvider{}, store), NewSummarizer(&mockProvider{}, store, nil, cfg), 0)

	if _, err := m.MigrateHistoricalData(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
