package service

import (
	"context"
	"fmt"
	"time"

	"invoicewa/internal/metrics"
	"invoicewa/internal/models"
	"invoicewa/internal/privacy"
	"invoicewa/internal/tracing"
	"invoicewa/pkg/whatsapp/types"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Store is the persistence surface the dispatcher needs.
type Store interface {
	GetDueSchedules(ctx context.Context, now time.Time) ([]models.Schedule, error)
	GetSchedule(ctx context.Context, id int64) (*models.Schedule, error)
	GetLatestInvoiceByClient(ctx context.Context, clientID int64) (*models.Invoice, error)
	SaveMessage(ctx context.Context, record *models.MessageRecord) error
	UpdateScheduleNextRun(ctx context.Context, id int64, nextRun time.Time) error
	CleanupOldMessages(ctx context.Context, retentionDays int) error
}

// RecipientResult reports the outcome of one recipient within a dispatch
// run. Sent=false with a nil Err means the gateway answered with a status
// other than "sent"; Status then carries what was recorded.
type RecipientResult struct {
	ClientID int64
	Name     string
	Text     string
	Sent     bool
	Status   models.DeliveryStatus
	Err      error
}

type Dispatcher struct {
	store     Store
	messenger types.WAClient
	logger    *logrus.Logger
	now       func() time.Time
}

func NewDispatcher(store Store, messenger types.WAClient, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// Dispatch sends the schedule's message to every recipient and advances the
// schedule's next run. A failure for one recipient never blocks the others,
// and the next run is advanced regardless of send outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, schedule *models.Schedule) ([]RecipientResult, error) {
	ctx, span := tracing.StartSpan(ctx, "dispatch_schedule")
	defer span.End()
	tracing.AddSpanAttributes(ctx,
		attribute.Int64("schedule.id", schedule.ID),
		attribute.String("schedule.frequency", string(schedule.Frequency)),
	)

	now := d.now()
	baseText := schedule.BaseText()
	session := d.sessionFor(schedule)

	log := d.logger.WithFields(logrus.Fields{
		"scheduleID": schedule.ID,
		"recipients": len(schedule.Recipients),
	})
	log.Info("Dispatching schedule")

	results := make([]RecipientResult, 0, len(schedule.Recipients))
	for i := range schedule.Recipients {
		result := d.sendToRecipient(ctx, schedule, &schedule.Recipients[i], baseText, session)
		switch {
		case result.Err != nil:
			log.WithError(result.Err).WithField("clientID", result.ClientID).Warn("Recipient send failed")
			metrics.IncrementCounter("dispatch_recipient_failures", map[string]string{"schedule": fmt.Sprintf("%d", schedule.ID)})
		case !result.Sent:
			log.WithFields(logrus.Fields{"clientID": result.ClientID, "status": result.Status}).Warn("Recipient delivery not confirmed")
			metrics.IncrementCounter("dispatch_recipient_failures", map[string]string{"schedule": fmt.Sprintf("%d", schedule.ID)})
		default:
			metrics.IncrementCounter("dispatch_messages_sent", nil)
		}
		results = append(results, result)
	}

	nextRun := schedule.Frequency.NextRun(now)
	if err := d.store.UpdateScheduleNextRun(ctx, schedule.ID, nextRun); err != nil {
		tracing.RecordError(ctx, err)
		return results, fmt.Errorf("failed to advance schedule %d: %w", schedule.ID, err)
	}

	log.WithField("nextRun", nextRun.Format(time.RFC3339)).Info("Schedule dispatched")
	return results, nil
}

func (d *Dispatcher) sendToRecipient(ctx context.Context, schedule *models.Schedule, client *models.Client, baseText, session string) RecipientResult {
	result := RecipientResult{ClientID: client.ID, Name: client.DisplayName(), Status: models.DeliveryStatusFailed}

	invoice, err := d.store.GetLatestInvoiceByClient(ctx, client.ID)
	if err != nil {
		result.Err = fmt.Errorf("invoice lookup failed: %w", err)
		return result
	}

	text := RenderMessage(baseText, client, invoice)
	result.Text = text

	chatID := types.ChatIDFromPhone(client.PhoneNumber, false)
	d.logger.WithFields(logrus.Fields{
		"scheduleID": schedule.ID,
		"chatID":     privacy.MaskChatID(chatID),
	}).Debug("Sending reminder")

	// A thrown send leaves no record; records reflect gateway responses only.
	resp, err := d.messenger.SendTextWithSession(ctx, chatID, text, session)
	if err != nil {
		result.Err = fmt.Errorf("send failed: %w", err)
		return result
	}

	status := models.DeliveryStatusFailed
	if resp != nil && resp.Status != "" {
		status = models.DeliveryStatus(resp.Status)
	}
	result.Status = status
	result.Sent = status == models.DeliveryStatusSent

	d.record(ctx, schedule, client, text, status)
	return result
}

// record persists the outcome; persistence errors are logged, not propagated,
// so a database hiccup cannot mask a delivered message.
func (d *Dispatcher) record(ctx context.Context, schedule *models.Schedule, client *models.Client, text string, status models.DeliveryStatus) {
	rec := &models.MessageRecord{
		ScheduleID: schedule.ID,
		DeviceID:   schedule.DeviceID,
		ClientID:   client.ID,
		TemplateID: schedule.TemplateID,
		Text:       text,
		Status:     status,
	}
	if err := d.store.SaveMessage(ctx, rec); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"scheduleID": schedule.ID,
			"clientID":   client.ID,
		}).Error("Failed to save message record")
	}
}

func (d *Dispatcher) sessionFor(schedule *models.Schedule) string {
	if schedule.Device != nil && schedule.Device.Session != "" {
		return schedule.Device.Session
	}
	return d.messenger.GetSessionName()
}
