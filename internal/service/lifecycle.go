package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/domain"
)

// LifecycleManager converts qualifying risk scores into diagnosis
// records and drives their review/dismiss transitions. Diagnosis
// creation is compute-only here; the screening service persists the
// batch after the full run succeeds.
type LifecycleManager struct {
	logger  *logrus.Logger
	catalog domain.ConditionCatalog
	repo    domain.DiagnosisRepository
	policy  Policy
}

// NewLifecycleManager creates a lifecycle manager.
func NewLifecycleManager(logger *logrus.Logger, catalog domain.ConditionCatalog, repo domain.DiagnosisRepository, policy Policy) *LifecycleManager {
	return &LifecycleManager{logger: logger, catalog: catalog, repo: repo, policy: policy}
}

// BuildDiagnoses derives new diagnosis records from a screening run's
// scores. A score activates only when it reaches the threshold and no
// active or reviewed diagnosis for the same condition was created inside
// the dedup window. It returns ConcurrentModificationError if the
// existing set already violates the one-active-per-condition invariant.
func (m *LifecycleManager) BuildDiagnoses(userID string, scores []domain.RiskScore, existing []*domain.Diagnosis, now time.Time) ([]*domain.Diagnosis, error) {
	if err := m.checkInvariant(userID, existing); err != nil {
		return nil, err
	}

	dedupStart := m.policy.DedupWindowStart(now)
	blocked := make(map[string]bool)
	for _, d := range existing {
		if d.Status == domain.StatusDismissed {
			continue
		}
		if !d.CreatedAt.Before(dedupStart) {
			blocked[d.ConditionID] = true
		}
	}

	var created []*domain.Diagnosis
	for i := range scores {
		score := scores[i]
		if score.Score < m.policy.ActivationThreshold {
			continue
		}
		if blocked[score.ConditionID] {
			m.logger.WithFields(logrus.Fields{
				"user_id":      userID,
				"condition_id": score.ConditionID,
			}).Debug("Suppressing diagnosis inside dedup window")
			continue
		}

		d, err := m.newDiagnosis(userID, score, now)
		if err != nil {
			return nil, err
		}
		created = append(created, d)
		blocked[score.ConditionID] = true
	}

	return created, nil
}

// newDiagnosis materializes one diagnosis from a qualifying score.
func (m *LifecycleManager) newDiagnosis(userID string, score domain.RiskScore, now time.Time) (*domain.Diagnosis, error) {
	def, err := m.catalog.Get(score.ConditionID)
	if err != nil {
		return nil, fmt.Errorf("building diagnosis: %w", err)
	}

	severity := m.policy.SeverityFor(score.Score)
	if severity == domain.SeverityNone {
		return nil, fmt.Errorf("building diagnosis: score %.3f below activation threshold", score.Score)
	}

	d := &domain.Diagnosis{
		ID:          uuid.NewString(),
		UserID:      userID,
		ConditionID: score.ConditionID,
		Score:       score.Score,
		Severity:    severity,
		Status:      domain.StatusActive,

		Assessment:     def.AssessmentTemplate,
		Recommendation: def.RecommendationTemplate,

		RequiresProfessionalConsultation: severity.RequiresConsultation() || score.UrgentSymptomMatch,

		CreatedAt: now,
	}

	// Follow-up scheduling is derived, not a transition.
	if severity.AtLeast(domain.SeverityModerate) {
		followUp := now.AddDate(0, 0, m.policy.FollowUpDays)
		d.FollowUpDate = &followUp
	}

	return d, nil
}

// MarkReviewed transitions an active diagnosis to reviewed.
func (m *LifecycleManager) MarkReviewed(ctx context.Context, id string, now time.Time) (*domain.Diagnosis, error) {
	d, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.StatusActive {
		return nil, fmt.Errorf("diagnosis %s is %s, only active diagnoses can be reviewed: %w", id, d.Status, domain.ErrInvalidStatus)
	}

	d.Status = domain.StatusReviewed
	d.Reviewed = true
	d.ReviewedAt = &now

	if err := m.repo.Update(ctx, d); err != nil {
		return nil, &domain.PersistenceError{Op: "mark reviewed", Err: err}
	}

	m.logger.WithFields(logrus.Fields{
		"diagnosis_id": d.ID,
		"condition_id": d.ConditionID,
	}).Info("Diagnosis marked reviewed")

	return d, nil
}

// Dismiss transitions an active or reviewed diagnosis to dismissed. The
// record is retained; deletion is always an explicit caller operation.
func (m *LifecycleManager) Dismiss(ctx context.Context, id string) (*domain.Diagnosis, error) {
	d, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.StatusDismissed {
		return d, nil // already dismissed, idempotent
	}

	d.Status = domain.StatusDismissed

	if err := m.repo.Update(ctx, d); err != nil {
		return nil, &domain.PersistenceError{Op: "dismiss", Err: err}
	}

	m.logger.WithFields(logrus.Fields{
		"diagnosis_id": d.ID,
		"condition_id": d.ConditionID,
	}).Info("Diagnosis dismissed")

	return d, nil
}

// DueForFollowUp returns unreviewed diagnoses whose follow-up date has
// passed, ordered ascending by follow-up date.
func (m *LifecycleManager) DueForFollowUp(ctx context.Context, userID string, now time.Time) ([]*domain.Diagnosis, error) {
	return m.repo.ListDueForFollowUp(ctx, userID, now)
}

// checkInvariant detects a dedup race already materialized in storage:
// two non-dismissed diagnoses for the same condition.
func (m *LifecycleManager) checkInvariant(userID string, existing []*domain.Diagnosis) error {
	seen := make(map[string]bool)
	for _, d := range existing {
		if d.Status == domain.StatusDismissed {
			continue
		}
		if d.Status == domain.StatusActive && seen[d.ConditionID] {
			return &domain.ConcurrentModificationError{UserID: userID, ConditionID: d.ConditionID}
		}
		if d.Status == domain.StatusActive {
			seen[d.ConditionID] = true
		}
	}
	return nil
}
