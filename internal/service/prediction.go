package service

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/domain"
)

// PredictionEngine forecasts the next period and fertile window from the
// same history snapshot the phase engine reads.
type PredictionEngine struct {
	logger *logrus.Logger
	policy Policy
}

// NewPredictionEngine creates a prediction engine.
func NewPredictionEngine(logger *logrus.Logger, policy Policy) *PredictionEngine {
	return &PredictionEngine{logger: logger, policy: policy}
}

// Predict computes the next-cycle forecast. It returns
// InsufficientDataError only when the history is empty; a single record
// degrades to a low-confidence default-length estimate instead.
func (e *PredictionEngine) Predict(userID string, history []domain.CycleRecord, now time.Time) (*domain.CyclePrediction, error) {
	if len(history) == 0 {
		return nil, &domain.InsufficientDataError{Required: 1, Actual: 0}
	}

	history = sortedByStart(history)
	lengths := completedLengths(history, e.policy.MaxCyclesForAverage)

	avgLength := e.policy.DefaultCycleLength
	if len(lengths) > 0 {
		avgLength = mean(lengths)
	}

	lastStart := domain.TruncateDay(history[len(history)-1].StartDate)
	avgDays := int(math.Round(avgLength))

	nextPeriod := lastStart.AddDate(0, 0, avgDays)
	ovulation := lastStart.AddDate(0, 0, avgDays-e.policy.LutealPhaseLength)

	p := &domain.CyclePrediction{
		UserID:             userID,
		NextPeriodStart:    nextPeriod,
		OvulationEstimate:  ovulation,
		FertileWindowStart: ovulation.AddDate(0, 0, -e.policy.FertileWindowBefore),
		FertileWindowEnd:   ovulation.AddDate(0, 0, e.policy.FertileWindowAfter),
		Confidence:         e.confidence(lengths),
		BasedOnCycles:      len(lengths),
		ComputedAt:         now,
	}

	e.logger.WithFields(logrus.Fields{
		"user_id":           userID,
		"next_period_start": p.NextPeriodStart.Format("2006-01-02"),
		"confidence":        p.Confidence,
		"based_on_cycles":   p.BasedOnCycles,
	}).Debug("Computed cycle prediction")

	return p, nil
}

// confidence scores forecast reliability from cycle length variability:
// 1 minus the coefficient of variation, clamped to the policy bounds,
// and capped while the history is still short.
func (e *PredictionEngine) confidence(lengths []float64) float64 {
	conf := e.policy.MinConfidence
	if len(lengths) > 0 {
		m := mean(lengths)
		if m > 0 {
			conf = 1 - stddev(lengths)/m
		}
	}

	if conf < e.policy.MinConfidence {
		conf = e.policy.MinConfidence
	}
	if conf > e.policy.MaxConfidence {
		conf = e.policy.MaxConfidence
	}
	if len(lengths) < e.policy.MinCyclesForTrust && conf > e.policy.LowDataConfidence {
		conf = e.policy.LowDataConfidence
	}
	return conf
}
