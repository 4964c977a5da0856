package core

import (
	"time"
)

// Provider vocabulary for the transaction kinds and states the tracker cares about.
const (
	TransactionTypeRide  = "Przejazd"
	TransactionConfirmed = "Potwierdzona"
	CardStatusActive     = "ACTIVE_CARD"
)

type (
	// Journey is one confirmed ride, keyed by the provider's transaction id.
	Journey struct {
		ID              string
		TransactionDate Day
		Price           float64
		CreatedAt       time.Time
	}

	// MonthlySummary is the spending total of one calendar month, keyed by its label.
	MonthlySummary struct {
		ID        string // month label, e.g. "Październik 2023"
		From      Day
		To        Day
		Sum       float64
		CreatedAt time.Time
	}

	// OngoingMonthSummary is the single current-month snapshot. Balance is nil when
	// it was not fetched.
	OngoingMonthSummary struct {
		MonthlySummary
		Balance *float64
	}
)

// IsRide reports whether a provider transaction of the given type and status is a
// persisted journey.
func IsRide(transactionType, status string) bool {
	return transactionType == TransactionTypeRide && status == TransactionConfirmed
}
