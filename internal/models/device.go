package models

import "time"

// Device is a registered WhatsApp gateway session.
type Device struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Session   string    `json:"session"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageTemplate is reusable message text with placeholder tokens.
type MessageTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
