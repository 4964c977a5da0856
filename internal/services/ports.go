package services

import (
	"context"
	"time"

	"peka/internal/amqp"
	"peka/internal/core"
	"peka/internal/peka"
)

// Ports the actions depend on. Production wiring uses peka.Client,
// storage.SQLiteRepository and amqp.Client.
type (
	Provider interface {
		Authenticate(ctx context.Context) (peka.AuthResult, error)
		GetTransitsPage(ctx context.Context, pageNumber int, token string) (*peka.TransitPage, error)
		GetAccountBalance(ctx context.Context, token string) (float64, error)
	}

	JourneyStore interface {
		InsertJourneys(ctx context.Context, journeys []core.Journey) error
	}

	// PriceSummer aggregates stored journey prices over an inclusive day range.
	PriceSummer interface {
		SumPrices(ctx context.Context, from, to core.Day) (float64, error)
	}

	SummaryStore interface {
		PriceSummer
		InsertMonthlySummary(ctx context.Context, s core.MonthlySummary) error
		ClearOngoingMonthSummaries(ctx context.Context) (int64, error)
		InsertOngoingMonthSummary(ctx context.Context, s core.OngoingMonthSummary) error
	}

	SummaryPublisher interface {
		PublishSummary(ctx context.Context, msg *amqp.SummaryMessage) error
	}
)

// Clock supplies the reference time of a run.
type Clock func() time.Time

// authenticate logs in and turns a rejected login into *core.AuthError.
func authenticate(ctx context.Context, provider Provider) (string, error) {
	auth, err := provider.Authenticate(ctx)
	if err != nil {
		return "", err
	}
	if !auth.OK() {
		return "", &core.AuthError{Code: auth.Code, Remediation: peka.LoginRemediation}
	}
	return auth.Token, nil
}
