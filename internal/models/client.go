package models

import "time"

// Client is a billing customer addressable over WhatsApp.
type Client struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DisplayName returns the name used for the {{name}} token, falling back
// to the phone number for clients without one.
func (c *Client) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.PhoneNumber
}
