package amqp

import (
	"encoding/json"
	"time"
)

// SummaryMessage is a ready-to-send email about one month's spending. A mailer
// consuming the queue delivers it as is.
type SummaryMessage struct {
	ExecutionID string    `json:"execution_id"`
	Month       string    `json:"month"`
	Sum         float64   `json:"sum"`
	Subject     string    `json:"subject"`
	HTML        string    `json:"html"`
	To          string    `json:"to"`
	From        string    `json:"from,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewSummaryMessage stamps a summary email with the current time.
func NewSummaryMessage(executionID, month string, sum float64, subject, html, to, from string) *SummaryMessage {
	return &SummaryMessage{
		ExecutionID: executionID,
		Month:       month,
		Sum:         sum,
		Subject:     subject,
		HTML:        html,
		To:          to,
		From:        from,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SummaryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
