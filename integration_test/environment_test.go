package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"invoicewa/internal/database"
	"invoicewa/internal/models"
	"invoicewa/internal/service"
	"invoicewa/pkg/whatsapp"
	"invoicewa/pkg/whatsapp/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// gatewayRecorder is an in-process WAHA stand-in that records sendText calls.
type gatewayRecorder struct {
	mu       sync.Mutex
	requests []types.SendTextRequest
	failNext bool
	status   types.SessionStatus
}

func (g *gatewayRecorder) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sendText", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()

		var req types.SendTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if g.failNext {
			g.failNext = false
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(types.SendMessageResponse{Error: "engine crashed"})
			return
		}

		g.requests = append(g.requests, req)
		json.NewEncoder(w).Encode(types.SendMessageResponse{MessageID: "msg-it", Status: "sent"})
	})
	mux.HandleFunc("/api/sessions/", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		status := g.status
		g.mu.Unlock()
		json.NewEncoder(w).Encode(types.Session{Name: "billing", Status: status})
	})
	return mux
}

func (g *gatewayRecorder) sent() []types.SendTextRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.SendTextRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// TestEnvironment wires a real SQLite store, a fake gateway, and the
// dispatcher together the way the daemon does.
type TestEnvironment struct {
	DB         *database.Database
	Gateway    *gatewayRecorder
	WAClient   types.WAClient
	Dispatcher *service.Dispatcher
	Scheduler  *service.Scheduler
	Logger     *logrus.Logger
}

func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "integration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gateway := &gatewayRecorder{status: types.SessionStatusWorking}
	server := httptest.NewServer(gateway.handler())
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	waClient := whatsapp.NewClient(types.ClientConfig{
		BaseURL:     server.URL,
		APIKey:      "integration-key",
		SessionName: "billing",
		Timeout:     2 * time.Second,
		RetryCount:  1,
	})

	dispatcher := service.NewDispatcher(db, waClient, logger)
	scheduler := service.NewScheduler(dispatcher, db, 1, 24, 90, logger)

	return &TestEnvironment{
		DB:         db,
		Gateway:    gateway,
		WAClient:   waClient,
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
		Logger:     logger,
	}
}

// SeedBilling creates a device, a client with one invoice, and a due
// schedule addressing that client.
func (env *TestEnvironment) SeedBilling(t *testing.T, body string, frequency models.Frequency, nextRun time.Time) (*models.Schedule, *models.Client) {
	t.Helper()
	ctx := context.Background()

	device := &models.Device{Name: "billing", Session: "billing"}
	require.NoError(t, env.DB.CreateDevice(ctx, device))

	client := &models.Client{Name: "Budi", PhoneNumber: "6281234567890"}
	require.NoError(t, env.DB.CreateClient(ctx, client))

	due := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	invoice := &models.Invoice{ClientID: client.ID, Number: "INV-001", Amount: 150000, DueDate: &due}
	require.NoError(t, env.DB.CreateInvoice(ctx, invoice))

	schedule := &models.Schedule{
		Name:      "monthly billing",
		Body:      body,
		DeviceID:  device.ID,
		Frequency: frequency,
		NextRun:   nextRun,
	}
	require.NoError(t, env.DB.CreateSchedule(ctx, schedule, []int64{client.ID}))

	loaded, err := env.DB.GetSchedule(ctx, schedule.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	return loaded, client
}
