package models

import "time"

// Invoice is a billing invoice owned by a client. DueDate is nil for
// invoices without a payment deadline.
type Invoice struct {
	ID        int64      `json:"id"`
	ClientID  int64      `json:"clientId"`
	Number    string     `json:"number"`
	Amount    float64    `json:"amount"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
