package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"invoicewa/internal/constants"
	"invoicewa/internal/database"
	apperrors "invoicewa/internal/errors"
	"invoicewa/internal/features"
	"invoicewa/internal/metrics"
	"invoicewa/internal/middleware"
	"invoicewa/internal/models"
	"invoicewa/internal/privacy"
	"invoicewa/internal/service"
	"invoicewa/internal/validation"
	"invoicewa/internal/versioning"
	"invoicewa/pkg/whatsapp/types"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router     *mux.Router
	logger     *logrus.Logger
	cfg        *models.Config
	db         *database.Database
	dispatcher *service.Dispatcher
	waClient   types.WAClient
	server     *http.Server
}

func NewServer(cfg *models.Config, db *database.Database, dispatcher *service.Dispatcher, waClient types.WAClient, logger *logrus.Logger) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		logger:     logger,
		cfg:        cfg,
		db:         db,
		dispatcher: dispatcher,
		waClient:   waClient,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger))

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(versioning.Middleware(s.logger))

	api.HandleFunc("/schedules", s.handleListSchedules).Methods(http.MethodGet)
	api.HandleFunc("/schedules", s.handleCreateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/schedules/{id:[0-9]+}", s.handleGetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/schedules/{id:[0-9]+}", s.handleDeleteSchedule).Methods(http.MethodDelete)
	api.HandleFunc("/schedules/{id:[0-9]+}/send", s.handleSendSchedule).Methods(http.MethodPost)

	api.HandleFunc("/clients", s.handleListClients).Methods(http.MethodGet)
	api.HandleFunc("/clients", s.handleCreateClient).Methods(http.MethodPost)
	api.HandleFunc("/invoices", s.handleCreateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/devices", s.handleListDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.handleCreateDevice).Methods(http.MethodPost)
	api.HandleFunc("/templates", s.handleCreateTemplate).Methods(http.MethodPost)
	api.HandleFunc("/messages", s.handleListMessages).Methods(http.MethodGet)
	api.HandleFunc("/flags", s.handleListFlags).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	port := s.cfg.Server.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = strconv.Itoa(constants.DefaultServerPort)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      s.router,
		ReadTimeout:  constants.DefaultServerReadTimeoutSec * time.Second,
		WriteTimeout: constants.DefaultServerWriteTimeoutSec * time.Second,
		IdleTimeout:  constants.DefaultServerIdleTimeoutSec * time.Second,
	}

	s.logger.Infof("Starting server on port %s", port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	s.writeJSON(w, apperrors.HTTPStatusCode(err), apperrors.ToHTTPResponse(err))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	session, err := s.waClient.GetSessionStatus(r.Context())
	if err != nil {
		health["gateway"] = "unreachable"
	} else {
		health["gateway"] = string(session.Status)
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, metrics.GetRegistry().Snapshot())
}

type createScheduleRequest struct {
	Name         string  `json:"name"`
	Body         string  `json:"body"`
	TemplateID   *int64  `json:"templateId,omitempty"`
	DeviceID     int64   `json:"deviceId"`
	Frequency    string  `json:"frequency"`
	NextRun      string  `json:"nextRun"`
	RecipientIDs []int64 `json:"recipientIds"`
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Body == "" && req.TemplateID == nil {
		s.writeError(w, http.StatusBadRequest, "body or templateId is required")
		return
	}

	frequency := models.Frequency(req.Frequency)
	if !frequency.IsKnown() {
		s.logger.WithField("frequency", req.Frequency).Warn("Unknown frequency, runs will advance by one day")
	}

	nextRun := time.Now().UTC()
	if req.NextRun != "" {
		parsed, err := time.Parse(time.RFC3339, req.NextRun)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "nextRun must be RFC3339")
			return
		}
		nextRun = parsed
	}

	schedule := &models.Schedule{
		Name:       req.Name,
		Body:       req.Body,
		TemplateID: req.TemplateID,
		DeviceID:   req.DeviceID,
		Frequency:  frequency,
		NextRun:    nextRun,
	}
	if err := s.db.CreateSchedule(r.Context(), schedule, req.RecipientIDs); err != nil {
		s.logger.WithError(err).Error("Failed to create schedule")
		s.writeError(w, http.StatusInternalServerError, "failed to create schedule")
		return
	}

	s.writeJSON(w, http.StatusCreated, schedule)
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.db.ListSchedules(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list schedules")
		s.writeError(w, http.StatusInternalServerError, "failed to list schedules")
		return
	}
	s.writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, ok := s.scheduleFromRequest(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, ok := s.scheduleFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteSchedule(r.Context(), schedule.ID); err != nil {
		s.logger.WithError(err).Error("Failed to delete schedule")
		s.writeError(w, http.StatusInternalServerError, "failed to delete schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSendSchedule triggers an immediate dispatch, outside the polling loop.
func (s *Server) handleSendSchedule(w http.ResponseWriter, r *http.Request) {
	if !features.IsEnabled(features.FlagManualSend) {
		s.writeError(w, http.StatusServiceUnavailable, "manual send is disabled")
		return
	}

	schedule, ok := s.scheduleFromRequest(w, r)
	if !ok {
		return
	}

	results, err := s.dispatcher.Dispatch(r.Context(), schedule)
	if err != nil {
		s.logger.WithError(err).WithField("scheduleID", schedule.ID).Error("Manual dispatch failed")
		s.writeError(w, http.StatusInternalServerError, "dispatch failed")
		return
	}

	sent := 0
	failures := make([]map[string]interface{}, 0)
	for _, res := range results {
		if res.Sent {
			sent++
			continue
		}
		// The gateway can answer without error but not confirm delivery;
		// report the recorded status in that case.
		failure := map[string]interface{}{
			"clientId": res.ClientID,
			"status":   string(res.Status),
		}
		if res.Err != nil {
			failure["error"] = res.Err.Error()
		}
		failures = append(failures, failure)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scheduleId": schedule.ID,
		"recipients": len(results),
		"sent":       sent,
		"failures":   failures,
	})
}

func (s *Server) scheduleFromRequest(w http.ResponseWriter, r *http.Request) (*models.Schedule, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid schedule id")
		return nil, false
	}

	schedule, err := s.db.GetSchedule(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load schedule")
		s.writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return nil, false
	}
	if schedule == nil {
		s.writeAppError(w, apperrors.NewNotFoundError("schedule", mux.Vars(r)["id"]))
		return nil, false
	}
	return schedule, true
}

type createClientRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidatePhoneNumber(req.PhoneNumber); err != nil {
		s.writeAppError(w, apperrors.NewValidationError("phoneNumber", err.Error()))
		return
	}

	s.logger.WithField("phone", privacy.MaskPhoneNumber(req.PhoneNumber)).Debug("Creating client")

	client := &models.Client{Name: req.Name, PhoneNumber: req.PhoneNumber}
	if err := s.db.CreateClient(r.Context(), client); err != nil {
		s.logger.WithError(err).Error("Failed to create client")
		s.writeError(w, http.StatusInternalServerError, "failed to create client")
		return
	}
	s.writeJSON(w, http.StatusCreated, client)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.db.ListClients(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list clients")
		s.writeError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}
	s.writeJSON(w, http.StatusOK, clients)
}

type createInvoiceRequest struct {
	ClientID int64   `json:"clientId"`
	Number   string  `json:"number"`
	Amount   float64 `json:"amount"`
	DueDate  string  `json:"dueDate,omitempty"`
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientID == 0 {
		s.writeError(w, http.StatusBadRequest, "clientId is required")
		return
	}

	invoice := &models.Invoice{ClientID: req.ClientID, Number: req.Number, Amount: req.Amount}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD")
			return
		}
		invoice.DueDate = &due
	}

	if err := s.db.CreateInvoice(r.Context(), invoice); err != nil {
		s.logger.WithError(err).Error("Failed to create invoice")
		s.writeError(w, http.StatusInternalServerError, "failed to create invoice")
		return
	}
	s.writeJSON(w, http.StatusCreated, invoice)
}

type createDeviceRequest struct {
	Name    string `json:"name"`
	Session string `json:"session"`
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateSessionName(req.Session); err != nil {
		s.writeAppError(w, apperrors.NewValidationError("session", err.Error()))
		return
	}

	device := &models.Device{Name: req.Name, Session: req.Session}
	if err := s.db.CreateDevice(r.Context(), device); err != nil {
		s.logger.WithError(err).Error("Failed to create device")
		s.writeError(w, http.StatusInternalServerError, "failed to create device")
		return
	}
	s.writeJSON(w, http.StatusCreated, device)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.db.ListDevices(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list devices")
		s.writeError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}
	s.writeJSON(w, http.StatusOK, devices)
}

type createTemplateRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		s.writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	template := &models.MessageTemplate{Name: req.Name, Body: req.Body}
	if err := s.db.CreateTemplate(r.Context(), template); err != nil {
		s.logger.WithError(err).Error("Failed to create template")
		s.writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	s.writeJSON(w, http.StatusCreated, template)
}

func (s *Server) handleListFlags(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, features.GetGlobalManager().ListFlags())
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50)
	offset := parseQueryInt(r, "offset", 0)

	records, err := s.db.ListMessages(r.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list messages")
		s.writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func parseQueryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
