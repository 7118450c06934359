package models

import "time"

// Frequency is how often a schedule fires.
type Frequency string

const (
	FrequencyEveryMinute Frequency = "every_minute"
	FrequencyDaily       Frequency = "daily"
	FrequencyWeekly      Frequency = "weekly"
	FrequencyMonthly     Frequency = "monthly"
	FrequencyYearly      Frequency = "yearly"
)

// NextRun returns the next firing time after now. Unrecognized values
// advance by one day.
func (f Frequency) NextRun(now time.Time) time.Time {
	switch f {
	case FrequencyEveryMinute:
		return now.Add(time.Minute)
	case FrequencyDaily:
		return now.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return now.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return now.AddDate(0, 1, 0)
	case FrequencyYearly:
		return now.AddDate(1, 0, 0)
	default:
		return now.AddDate(0, 0, 1)
	}
}

// IsKnown reports whether f is one of the supported frequencies.
func (f Frequency) IsKnown() bool {
	switch f {
	case FrequencyEveryMinute, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Schedule is a recurring WhatsApp reminder job. Recipients, Device and
// Template are prefetched by the store before the schedule is handed to
// the dispatcher.
type Schedule struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Body       string    `json:"body,omitempty"`
	TemplateID *int64    `json:"templateId,omitempty"`
	DeviceID   int64     `json:"deviceId"`
	Frequency  Frequency `json:"frequency"`
	NextRun    time.Time `json:"nextRun"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Recipients []Client         `json:"recipients,omitempty"`
	Device     *Device          `json:"device,omitempty"`
	Template   *MessageTemplate `json:"template,omitempty"`
}

// BaseText returns the text the renderer starts from: the schedule's own
// body when set, otherwise the template body, otherwise empty.
func (s *Schedule) BaseText() string {
	if s.Body != "" {
		return s.Body
	}
	if s.Template != nil {
		return s.Template.Body
	}
	return ""
}
