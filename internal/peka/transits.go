package peka

import (
	"context"
	"fmt"
	"net/http"
)

// PageSize is the number of transactions requested per history page.
const PageSize = 100

// TransitItem is one transaction of the history, as the provider returns it.
type TransitItem struct {
	Ordinal           int      `json:"ordinal"`
	TransactionID     string   `json:"transactionId"`
	TransactionDate   string   `json:"transactionDate"`
	TransactionPlace  string   `json:"transactionPlace"`
	TransactionType   string   `json:"transactionType"`
	TransactionStatus string   `json:"transactionStatus"`
	Price             float64  `json:"price"`
	TransferredToCard *bool    `json:"transferredToCard,omitempty"`
	Journey           *Journey `json:"journey,omitempty"`
}

// Journey holds the ride details attached to ride transactions.
type Journey struct {
	Day             string     `json:"day"`
	Time            string     `json:"time"`
	StopsNumber     int        `json:"stopsNumber"`
	PassengerNormal *Passenger `json:"passengerNormal,omitempty"`
	FellowNormal    *Passenger `json:"fellowNormal,omitempty"`
}

type Passenger struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// TransitPage is one page of the history. Items are newest first.
type TransitPage struct {
	Content       []TransitItem `json:"content"`
	TotalPages    int           `json:"totalPages"`
	TotalElements int           `json:"totalElements"`
	Number        int           `json:"number"`
	First         bool          `json:"first"`
	Last          bool          `json:"last"`
	Empty         bool          `json:"empty"`
}

type transitsRequest struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

type transitsResponse struct {
	Code int          `json:"code"`
	Data *TransitPage `json:"data"`
}

// GetTransitsPage fetches the zero-based page pageNumber of the transaction history.
func (c *Client) GetTransitsPage(ctx context.Context, pageNumber int, token string) (*TransitPage, error) {
	var resp transitsResponse
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    transitsPath,
		referer: historyReferer,
		token:   token,
		body:    transitsRequest{PageNumber: pageNumber, PageSize: PageSize},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch transits page %d: %w", pageNumber, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("fetch transits page %d: response has no data (code %d)", pageNumber, resp.Code)
	}
	return resp.Data, nil
}
