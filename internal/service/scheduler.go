package service

import (
	"context"
	"time"

	"invoicewa/internal/constants"
	"invoicewa/internal/features"
	"invoicewa/internal/metrics"

	"github.com/sirupsen/logrus"
)

// Scheduler polls for due schedules and hands them to the dispatcher. It also
// runs the message-record retention cleanup on a slower cadence.
type Scheduler struct {
	dispatcher      *Dispatcher
	store           Store
	pollInterval    time.Duration
	cleanupInterval time.Duration
	retentionDays   int
	logger          *logrus.Logger
	now             func() time.Time
	stopCh          chan struct{}
}

func NewScheduler(dispatcher *Dispatcher, store Store, pollIntervalSec, cleanupIntervalHours, retentionDays int, logger *logrus.Logger) *Scheduler {
	if pollIntervalSec <= 0 {
		pollIntervalSec = constants.DefaultPollIntervalSec
	}
	if cleanupIntervalHours <= 0 {
		cleanupIntervalHours = constants.DefaultCleanupIntervalHours
	}
	return &Scheduler{
		dispatcher:      dispatcher,
		store:           store,
		pollInterval:    time.Duration(pollIntervalSec) * time.Second,
		cleanupInterval: time.Duration(cleanupIntervalHours) * time.Hour,
		retentionDays:   retentionDays,
		logger:          logger,
		now:             time.Now,
		stopCh:          make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()
	cleanupTicker := time.NewTicker(s.cleanupInterval)
	defer cleanupTicker.Stop()

	s.logger.WithFields(logrus.Fields{
		"pollInterval":  s.pollInterval.String(),
		"retentionDays": s.retentionDays,
	}).Info("Starting dispatch scheduler")

	s.runCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Scheduler stop signal received, stopping")
			return
		case <-pollTicker.C:
			s.RunDue(ctx)
		case <-cleanupTicker.C:
			s.runCleanup(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// RunDue dispatches every schedule whose next run is at or before now. A
// failing schedule does not stop the others.
func (s *Scheduler) RunDue(ctx context.Context) {
	if !features.IsEnabled(features.FlagDispatch) {
		s.logger.Debug("Dispatch is disabled, skipping poll")
		return
	}

	start := s.now()
	schedules, err := s.store.GetDueSchedules(ctx, start)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch due schedules")
		return
	}
	if len(schedules) == 0 {
		return
	}

	s.logger.WithField("count", len(schedules)).Info("Dispatching due schedules")
	for i := range schedules {
		if _, err := s.dispatcher.Dispatch(ctx, &schedules[i]); err != nil {
			s.logger.WithError(err).WithField("scheduleID", schedules[i].ID).Error("Schedule dispatch failed")
		}
	}
	metrics.RecordTimer("scheduler_poll_duration", s.now().Sub(start), nil)
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	if s.retentionDays <= 0 || !features.IsEnabled(features.FlagRetentionCleanup) {
		return
	}
	s.logger.WithField("retentionDays", s.retentionDays).Info("Running message retention cleanup")
	if err := s.store.CleanupOldMessages(ctx, s.retentionDays); err != nil {
		s.logger.WithError(err).Error("Failed to cleanup old message records")
	}
}
