package types

import (
	"strings"
	"time"
)

// SessionStatus represents the current state of a gateway session
type SessionStatus string

const (
	SessionStatusStarting SessionStatus = "STARTING"
	SessionStatusScanQR   SessionStatus = "SCAN_QR_CODE"
	SessionStatusWorking  SessionStatus = "WORKING"
	SessionStatusStopped  SessionStatus = "STOPPED"
	SessionStatusFailed   SessionStatus = "FAILED"
)

// Session represents a WhatsApp gateway session
type Session struct {
	Name      string        `json:"name"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Error     string        `json:"error,omitempty"`
}

// ClientConfig configures the gateway HTTP client
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	SessionName string
	Timeout     time.Duration
	RetryCount  int
}

// SendTextRequest is the payload for text message sends
type SendTextRequest struct {
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
	Session string `json:"session"`
}

// SendMessageResponse represents the response from send message operations
type SendMessageResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse represents error responses from the gateway
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ChatIDFromPhone converts a phone number into a WhatsApp chat ID.
// Group flag selects the group domain suffix.
func ChatIDFromPhone(phone string, group bool) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if strings.Contains(cleaned, "@") {
		return cleaned
	}
	if group {
		return cleaned + "@g.us"
	}
	return cleaned + "@c.us"
}
