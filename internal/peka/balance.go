package peka

import (
	"context"
	"fmt"
	"net/http"

	"peka/internal/core"
)

// Card is one transit card registered on the account.
type Card struct {
	Status        string `json:"status"`
	StatusDescr   string `json:"statusDescr"`
	Number        string `json:"number"`
	Category      string `json:"category"`
	CategoryDescr string `json:"categoryDescr"`
	TPurse        Purse  `json:"tpurse"`
}

// Purse is the stored-value balance of a card.
type Purse struct {
	Balance       float64 `json:"balance"`
	PointsBalance float64 `json:"pointsBalance"`
	UpdateDate    string  `json:"updateDate,omitempty"`
}

type cardsResponse struct {
	Code int    `json:"code"`
	Data []Card `json:"data"`
}

// GetAccountBalance returns the summed purse balance of every active card on the
// account. Restricted cards count as zero.
func (c *Client) GetAccountBalance(ctx context.Context, token string) (float64, error) {
	var resp cardsResponse
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    cardsPath,
		referer: accountReferer,
		token:   token,
		extra:   map[string]string{"Pragma": "no-cache", "Cache-Control": "no-cache"},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("fetch account balance: %w", err)
	}

	balances := make([]float64, 0, len(resp.Data))
	for _, card := range resp.Data {
		if card.Status == core.CardStatusActive {
			balances = append(balances, card.TPurse.Balance)
		}
	}
	return core.SumPrices(balances...), nil
}
