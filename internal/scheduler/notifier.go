package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/lunacycle-screening-server/internal/domain"
)

// ResilientNotifier wraps a notification collaborator with a circuit
// breaker so a failing downstream channel can't stall the sweep.
type ResilientNotifier struct {
	inner   domain.Notifier
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientNotifier wraps the given notifier.
func NewResilientNotifier(inner domain.Notifier, logger *logrus.Logger) *ResilientNotifier {
	settings := gobreaker.Settings{
		Name:        "follow-up-notifier",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Notifier circuit breaker state change")
		},
	}

	return &ResilientNotifier{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// NotifyFollowUpDue delivers through the circuit breaker.
func (n *ResilientNotifier) NotifyFollowUpDue(ctx context.Context, d *domain.Diagnosis) error {
	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.inner.NotifyFollowUpDue(ctx, d)
	})
	if err != nil {
		return fmt.Errorf("notify follow-up due: %w", err)
	}
	return nil
}

// LogNotifier is the default notification sink: it writes a structured
// log line per due diagnosis. Deployments replace it with a push or
// email channel.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyFollowUpDue logs the due diagnosis.
func (n *LogNotifier) NotifyFollowUpDue(_ context.Context, d *domain.Diagnosis) error {
	n.logger.WithFields(logrus.Fields{
		"diagnosis_id":   d.ID,
		"user_id":        d.UserID,
		"condition_id":   d.ConditionID,
		"severity":       d.Severity,
		"follow_up_date": d.FollowUpDate,
	}).Info("Diagnosis follow-up due")
	return nil
}
