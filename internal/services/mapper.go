package services

import (
	"fmt"

	"peka/internal/core"
	"peka/internal/peka"
)

// toJourney maps a provider transaction to the stored journey shape. The creation
// timestamp is assigned by storage.
func toJourney(item peka.TransitItem) (core.Journey, error) {
	day, err := core.ToDay(item.TransactionDate)
	if err != nil {
		return core.Journey{}, fmt.Errorf("map transaction %s: %w", item.TransactionID, err)
	}
	return core.Journey{
		ID:              item.TransactionID,
		TransactionDate: day,
		Price:           item.Price,
	}, nil
}
