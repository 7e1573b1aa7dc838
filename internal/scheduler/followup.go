// Package scheduler runs the periodic follow-up sweep: diagnoses whose
// follow-up date has passed without review are dispatched to the
// notification collaborator.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/domain"
)

// FollowUpSource lists due diagnoses across all users.
type FollowUpSource interface {
	ListAllDueForFollowUp(ctx context.Context, now time.Time) ([]*domain.Diagnosis, error)
}

// FollowUpScheduler sweeps for due follow-ups on a cron schedule.
type FollowUpScheduler struct {
	cronEngine *cron.Cron
	source     FollowUpSource
	notifier   domain.Notifier
	logger     *logrus.Logger
	cronSpec   string
	now        func() time.Time
}

// NewFollowUpScheduler creates a scheduler with the given cron spec,
// e.g. "0 9 * * *" for a daily 09:00 sweep.
func NewFollowUpScheduler(source FollowUpSource, notifier domain.Notifier, logger *logrus.Logger, cronSpec string) *FollowUpScheduler {
	return &FollowUpScheduler{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		source:     source,
		notifier:   notifier,
		logger:     logger,
		cronSpec:   cronSpec,
		now:        time.Now,
	}
}

// Start registers the sweep job and starts the cron engine.
func (s *FollowUpScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Follow-up scheduler started")
	return nil
}

// Stop stops the cron engine and waits for a running sweep to finish.
func (s *FollowUpScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Follow-up scheduler stopped")
}

// Sweep dispatches one notification per due diagnosis. Notification
// failures are logged and skipped; the sweep itself never fails the
// engine's state.
func (s *FollowUpScheduler) Sweep(ctx context.Context) {
	now := s.now().UTC()

	due, err := s.source.ListAllDueForFollowUp(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Follow-up sweep failed to list due diagnoses")
		return
	}
	if len(due) == 0 {
		s.logger.Debug("Follow-up sweep found nothing due")
		return
	}

	notified := 0
	for _, d := range due {
		if err := s.notifier.NotifyFollowUpDue(ctx, d); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"diagnosis_id": d.ID,
				"user_id":      d.UserID,
			}).Warn("Failed to deliver follow-up notification")
			continue
		}
		notified++
	}

	s.logger.WithFields(logrus.Fields{
		"due":      len(due),
		"notified": notified,
	}).Info("Follow-up sweep completed")
}
