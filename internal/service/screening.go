package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/domain"
)

// ScreeningService is the single entry point of the core. One screening
// run reads the user's snapshot, infers phase, predicts the next cycle,
// scores every cataloged condition, and applies lifecycle transitions.
// All computation happens before any write: a failed run leaves the
// diagnosis set untouched.
type ScreeningService struct {
	logger *logrus.Logger
	policy Policy

	history     domain.HistorySource
	diagnoses   domain.DiagnosisRepository
	predictions domain.PredictionRepository

	phase      *PhaseEngine
	prediction *PredictionEngine
	scoring    *RiskScoringEngine
	lifecycle  *LifecycleManager

	// Per-user execution locks. Dedup is check-then-act, so concurrent
	// runs for one user must be serialized.
	userLocks sync.Map // userID -> *sync.Mutex

	now func() time.Time
}

// NewScreeningService wires the screening pipeline.
func NewScreeningService(
	logger *logrus.Logger,
	catalog domain.ConditionCatalog,
	history domain.HistorySource,
	diagnoses domain.DiagnosisRepository,
	predictions domain.PredictionRepository,
	policy Policy,
) *ScreeningService {
	return &ScreeningService{
		logger:      logger,
		policy:      policy,
		history:     history,
		diagnoses:   diagnoses,
		predictions: predictions,
		phase:       NewPhaseEngine(logger, policy),
		prediction:  NewPredictionEngine(logger, policy),
		scoring:     NewRiskScoringEngine(logger, catalog, policy),
		lifecycle:   NewLifecycleManager(logger, catalog, diagnoses, policy),
		now:         time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *ScreeningService) WithClock(now func() time.Time) *ScreeningService {
	s.now = now
	return s
}

// PerformHealthScreening runs a full screening for one user and returns
// the complete result batch. Runs for the same user are serialized.
func (s *ScreeningService) PerformHealthScreening(ctx context.Context, userID string) (*domain.ScreeningResult, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now().UTC()
	log := s.logger.WithField("user_id", userID)
	log.Info("Starting health screening run")

	// Read the full snapshot up front.
	history, err := s.history.GetCycleHistory(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get cycle history", Err: err}
	}
	symptoms, err := s.history.GetSymptomLog(ctx, userID, s.policy.SymptomWindowStart(now))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get symptom log", Err: err}
	}
	riskFactors, err := s.history.GetRiskFactors(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get risk factors", Err: err}
	}
	existing, err := s.diagnoses.ListByUser(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get existing diagnoses", Err: err}
	}

	// Compute phase. Prediction degrades to nil on insufficient data
	// instead of failing the run.
	phaseInfo := s.phase.Infer(history, now)

	prediction, err := s.prediction.Predict(userID, history, now)
	if err != nil {
		var insufficient *domain.InsufficientDataError
		if !errors.As(err, &insufficient) {
			return nil, err
		}
		log.WithError(err).Warn("Skipping prediction: insufficient cycle history")
		prediction = nil
	}

	scores := s.scoring.Score(ScoringInput{
		Symptoms:     symptoms,
		RiskFactors:  riskFactors,
		CycleLengths: completedLengths(sortedByStart(history), s.policy.MaxCyclesForAverage),
		Now:          now,
	})

	created, err := s.lifecycle.BuildDiagnoses(userID, scores, existing, now)
	if err != nil {
		return nil, err
	}

	// Apply phase: persist the fully computed batch.
	for _, d := range created {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if err := s.diagnoses.Save(ctx, d); err != nil {
			return nil, &domain.PersistenceError{Op: "save diagnosis", Err: err}
		}
	}
	if prediction != nil {
		if err := s.predictions.SavePrediction(ctx, prediction); err != nil {
			return nil, &domain.PersistenceError{Op: "save prediction", Err: err}
		}
	}

	log.WithFields(logrus.Fields{
		"phase":          phaseInfo.Phase,
		"scores":         len(scores),
		"new_diagnoses":  len(created),
		"has_prediction": prediction != nil,
	}).Info("Health screening run completed")

	return &domain.ScreeningResult{
		UserID:     userID,
		Phase:      phaseInfo,
		Prediction: prediction,
		RiskScores: scores,
		Diagnoses:  created,
		RunAt:      now,
	}, nil
}

// MarkReviewed transitions a diagnosis to reviewed.
func (s *ScreeningService) MarkReviewed(ctx context.Context, diagnosisID string) (*domain.Diagnosis, error) {
	return s.lifecycle.MarkReviewed(ctx, diagnosisID, s.now().UTC())
}

// DeleteDiagnosis dismisses a diagnosis. Explicit caller operation.
func (s *ScreeningService) DeleteDiagnosis(ctx context.Context, diagnosisID string) (*domain.Diagnosis, error) {
	return s.lifecycle.Dismiss(ctx, diagnosisID)
}

// GetDiagnosesDueForFollowUp returns unreviewed diagnoses whose
// follow-up date has passed, ascending by follow-up date.
func (s *ScreeningService) GetDiagnosesDueForFollowUp(ctx context.Context, userID string) ([]*domain.Diagnosis, error) {
	return s.lifecycle.DueForFollowUp(ctx, userID, s.now().UTC())
}

// ListDiagnoses returns all of a user's diagnoses, newest first.
func (s *ScreeningService) ListDiagnoses(ctx context.Context, userID string) ([]*domain.Diagnosis, error) {
	return s.diagnoses.ListByUser(ctx, userID)
}

// LatestPrediction returns the most recently persisted prediction.
func (s *ScreeningService) LatestPrediction(ctx context.Context, userID string) (*domain.CyclePrediction, error) {
	return s.predictions.GetLatestPrediction(ctx, userID)
}

func (s *ScreeningService) lockFor(userID string) *sync.Mutex {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
