package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"invoicewa/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDispatcher(store *mockStore, client *mockWAClient, now time.Time) *Dispatcher {
	d := NewDispatcher(store, client, testLogger())
	d.now = func() time.Time { return now }
	return d
}

func billingSchedule(frequency models.Frequency, recipients ...models.Client) *models.Schedule {
	return &models.Schedule{
		ID:         1,
		Name:       "billing",
		Body:       "Hi {{name}}, pay {{amount}} by {{due_date}}",
		DeviceID:   1,
		Frequency:  frequency,
		Device:     &models.Device{ID: 1, Name: "billing", Session: "billing"},
		Recipients: recipients,
	}
}

func TestDispatchRendersAndSends(t *testing.T) {
	now := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	due := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	store := newMockStore()
	store.invoices[7] = &models.Invoice{ID: 3, ClientID: 7, Amount: 150000, DueDate: &due}
	wa := newMockWAClient()

	schedule := billingSchedule(models.FrequencyMonthly,
		models.Client{ID: 7, Name: "Budi", PhoneNumber: "6281234567890"},
	)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Sent)
	assert.Equal(t, "Hi Budi, pay 150.000 by 15 Januari 2025", results[0].Text)

	require.Len(t, wa.sentChatIDs, 1)
	assert.Equal(t, "6281234567890@c.us", wa.sentChatIDs[0])
	assert.Equal(t, "billing", wa.sessions[0])

	require.Len(t, store.saved, 1)
	assert.Equal(t, models.DeliveryStatusSent, store.saved[0].Status)
	assert.Equal(t, int64(7), store.saved[0].ClientID)
}

func TestDispatchZeroRecipientsStillAdvances(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	store := newMockStore()
	wa := newMockWAClient()

	schedule := billingSchedule(models.FrequencyMonthly)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, wa.sentChatIDs)

	next, ok := store.nextRuns[schedule.ID]
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC), next)
}

func TestDispatchFailureIsolation(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	store := newMockStore()
	wa := newMockWAClient()
	wa.failChatIDs = map[string]error{
		"6281110000001@c.us": errors.New("gateway timeout"),
	}

	schedule := billingSchedule(models.FrequencyWeekly,
		models.Client{ID: 1, Name: "Andi", PhoneNumber: "6281110000001"},
		models.Client{ID: 2, Name: "Sari", PhoneNumber: "6281110000002"},
	)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Sent)
	assert.Error(t, results[0].Err)
	assert.True(t, results[1].Sent)

	// The second recipient still went out, and the schedule still advanced.
	require.Len(t, wa.sentChatIDs, 1)
	assert.Equal(t, "6281110000002@c.us", wa.sentChatIDs[0])
	assert.Equal(t, time.Date(2025, 1, 8, 8, 0, 0, 0, time.UTC), store.nextRuns[schedule.ID])

	// Only responses produce records; a thrown send leaves none.
	require.Len(t, store.saved, 1)
	assert.Equal(t, int64(2), store.saved[0].ClientID)
	assert.Equal(t, models.DeliveryStatusSent, store.saved[0].Status)
}

func TestDispatchUnknownFrequencyDefaultsToDaily(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	wa := newMockWAClient()

	schedule := billingSchedule(models.Frequency("fortnightly"))

	_, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), store.nextRuns[schedule.ID])
}

func TestDispatchInvoiceLookupError(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	store.invoiceErr = errors.New("database is locked")
	wa := newMockWAClient()

	schedule := billingSchedule(models.FrequencyDaily,
		models.Client{ID: 1, Name: "Budi", PhoneNumber: "6281234567890"},
	)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Sent)
	assert.Error(t, results[0].Err)
	assert.Empty(t, wa.sentChatIDs)
	assert.Empty(t, store.saved)
	assert.Contains(t, store.nextRuns, schedule.ID)
}

func TestDispatchResponseWithoutStatusRecordedFailed(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	wa := newMockWAClient()
	wa.omitStatus = true

	schedule := billingSchedule(models.FrequencyDaily,
		models.Client{ID: 1, Name: "Budi", PhoneNumber: "6281234567890"},
	)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Sent)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, models.DeliveryStatusFailed, results[0].Status)
	require.Len(t, store.saved, 1)
	assert.Equal(t, models.DeliveryStatusFailed, store.saved[0].Status)
}

func TestDispatchUnconfirmedStatusNotCountedSent(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	wa := newMockWAClient()
	wa.respStatus = "queued"

	schedule := billingSchedule(models.FrequencyDaily,
		models.Client{ID: 1, Name: "Budi", PhoneNumber: "6281234567890"},
	)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Sent)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, models.DeliveryStatus("queued"), results[0].Status)
	require.Len(t, store.saved, 1)
	assert.Equal(t, models.DeliveryStatus("queued"), store.saved[0].Status)
}

func TestDispatchNextRunUpdateFailure(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	store.nextRunErr = errors.New("schedule not found")
	wa := newMockWAClient()

	schedule := billingSchedule(models.FrequencyDaily,
		models.Client{ID: 1, Name: "Budi", PhoneNumber: "6281234567890"},
	)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	assert.Error(t, err)
	// Sends already happened and are reported even when advancing fails.
	require.Len(t, results, 1)
	assert.True(t, results[0].Sent)
}

func TestDispatchSaveErrorDoesNotBlock(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	store.saveErr = errors.New("disk full")
	wa := newMockWAClient()

	schedule := billingSchedule(models.FrequencyDaily,
		models.Client{ID: 1, Name: "Budi", PhoneNumber: "6281234567890"},
	)

	results, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Sent)
}

func TestDispatchFallsBackToClientSession(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMockStore()
	wa := newMockWAClient()

	schedule := billingSchedule(models.FrequencyDaily,
		models.Client{ID: 1, Name: "Budi", PhoneNumber: "6281234567890"},
	)
	schedule.Device = nil

	_, err := testDispatcher(store, wa, now).Dispatch(context.Background(), schedule)
	require.NoError(t, err)
	require.Len(t, wa.sessions, 1)
	assert.Equal(t, "default", wa.sessions[0])
}
