package domain

import (
	"context"
	"time"
)

// HistorySource supplies a user's logged cycle and symptom history. The
// screening engine only ever reads through this interface; records are
// created by the external logging surface.
type HistorySource interface {
	// GetCycleHistory returns the user's cycle records ordered by start date.
	GetCycleHistory(ctx context.Context, userID string) ([]CycleRecord, error)
	// GetSymptomLog returns symptom entries logged on or after since.
	GetSymptomLog(ctx context.Context, userID string, since time.Time) ([]SymptomEntry, error)
	// GetRiskFactors returns the user's self-reported risk factors.
	GetRiskFactors(ctx context.Context, userID string) ([]RiskFactor, error)
}

// DiagnosisRepository persists diagnosis records and serves dedup reads.
type DiagnosisRepository interface {
	// Save persists a newly created diagnosis.
	Save(ctx context.Context, d *Diagnosis) error
	// Update persists a status/review mutation.
	Update(ctx context.Context, d *Diagnosis) error
	// GetByID returns a diagnosis or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Diagnosis, error)
	// ListByUser returns all diagnoses for a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Diagnosis, error)
	// ListDueForFollowUp returns unreviewed diagnoses with a follow-up
	// date at or before now, ordered ascending by follow-up date.
	ListDueForFollowUp(ctx context.Context, userID string, now time.Time) ([]*Diagnosis, error)
}

// PredictionRepository persists cycle predictions for the read endpoints.
type PredictionRepository interface {
	SavePrediction(ctx context.Context, p *CyclePrediction) error
	GetLatestPrediction(ctx context.Context, userID string) (*CyclePrediction, error)
}

// ConditionCatalog exposes the static condition registry.
type ConditionCatalog interface {
	// Get returns the definition for a condition ID, or ErrNotFound.
	Get(conditionID string) (*ConditionDefinition, error)
	// All returns every definition in deterministic (conditionID) order.
	All() []*ConditionDefinition
}

// Notifier delivers follow-up-due notifications to an external channel.
type Notifier interface {
	NotifyFollowUpDue(ctx context.Context, d *Diagnosis) error
}
