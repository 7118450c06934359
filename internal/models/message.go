package models

import "time"

type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

// MessageRecord is one delivery attempt produced by a schedule run.
// Records are append-only; the dispatcher never updates or deletes them.
type MessageRecord struct {
	ID         int64          `json:"id"`
	ScheduleID int64          `json:"scheduleId"`
	DeviceID   int64          `json:"deviceId"`
	ClientID   int64          `json:"clientId"`
	TemplateID *int64         `json:"templateId,omitempty"`
	Text       string         `json:"text"`
	Status     DeliveryStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
}
