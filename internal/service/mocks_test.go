package service

import (
	"context"
	"fmt"
	"time"

	"invoicewa/internal/models"
	"invoicewa/pkg/whatsapp/types"
)

// Mock WhatsApp client
type mockWAClient struct {
	sessionName string
	sendErr     error
	failChatIDs map[string]error
	omitStatus  bool
	respStatus  string

	sentChatIDs []string
	sentTexts   []string
	sessions    []string
}

func newMockWAClient() *mockWAClient {
	return &mockWAClient{sessionName: "default"}
}

func (m *mockWAClient) SendText(ctx context.Context, chatID, text string) (*types.SendMessageResponse, error) {
	return m.SendTextWithSession(ctx, chatID, text, m.sessionName)
}

func (m *mockWAClient) SendTextWithSession(ctx context.Context, chatID, text, sessionName string) (*types.SendMessageResponse, error) {
	if err, ok := m.failChatIDs[chatID]; ok {
		return nil, err
	}
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sentChatIDs = append(m.sentChatIDs, chatID)
	m.sentTexts = append(m.sentTexts, text)
	m.sessions = append(m.sessions, sessionName)
	resp := &types.SendMessageResponse{MessageID: fmt.Sprintf("msg-%d", len(m.sentTexts))}
	switch {
	case m.omitStatus:
	case m.respStatus != "":
		resp.Status = m.respStatus
	default:
		resp.Status = "sent"
	}
	return resp, nil
}

func (m *mockWAClient) GetSessionStatus(ctx context.Context) (*types.Session, error) {
	return &types.Session{Name: m.sessionName, Status: types.SessionStatusWorking}, nil
}

func (m *mockWAClient) WaitForSessionReady(ctx context.Context, maxWaitTime time.Duration) error {
	return nil
}

func (m *mockWAClient) GetSessionName() string {
	return m.sessionName
}

// Mock store
type mockStore struct {
	invoices     map[int64]*models.Invoice
	invoiceErr   error
	saved        []*models.MessageRecord
	saveErr      error
	nextRuns     map[int64]time.Time
	nextRunErr   error
	dueSchedules []models.Schedule
	dueErr       error
	cleanupDays  []int
	cleanupErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		invoices: make(map[int64]*models.Invoice),
		nextRuns: make(map[int64]time.Time),
	}
}

func (m *mockStore) GetDueSchedules(ctx context.Context, now time.Time) ([]models.Schedule, error) {
	return m.dueSchedules, m.dueErr
}

func (m *mockStore) GetSchedule(ctx context.Context, id int64) (*models.Schedule, error) {
	for i := range m.dueSchedules {
		if m.dueSchedules[i].ID == id {
			return &m.dueSchedules[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetLatestInvoiceByClient(ctx context.Context, clientID int64) (*models.Invoice, error) {
	if m.invoiceErr != nil {
		return nil, m.invoiceErr
	}
	return m.invoices[clientID], nil
}

func (m *mockStore) SaveMessage(ctx context.Context, record *models.MessageRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	record.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, record)
	return nil
}

func (m *mockStore) UpdateScheduleNextRun(ctx context.Context, id int64, nextRun time.Time) error {
	if m.nextRunErr != nil {
		return m.nextRunErr
	}
	m.nextRuns[id] = nextRun
	return nil
}

func (m *mockStore) CleanupOldMessages(ctx context.Context, retentionDays int) error {
	if m.cleanupErr != nil {
		return m.cleanupErr
	}
	m.cleanupDays = append(m.cleanupDays, retentionDays)
	return nil
}
