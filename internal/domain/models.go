package domain

import (
	"fmt"
	"time"
)

// CycleRecord is one logged menstrual cycle. Records are appended by the
// external logging interface; the screening engine only reads them.
// Histories are ordered by StartDate and non-overlapping.
type CycleRecord struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       *time.Time    `json:"end_date,omitempty"` // nil while the cycle is open
	FlowIntensity FlowIntensity `json:"flow_intensity"`
}

// FlowDuration returns the logged bleeding duration in days, or 0 when
// the cycle is still open.
func (c *CycleRecord) FlowDuration() int {
	if c.EndDate == nil {
		return 0
	}
	return DaysBetween(c.StartDate, *c.EndDate) + 1
}

// Validate ensures the cycle record is well formed before it enters the
// inference pipeline.
func (c *CycleRecord) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cycle record validation: ID is required")
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("cycle record validation: start date is required")
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("cycle record validation: end date precedes start date")
	}
	if c.FlowIntensity != "" && !c.FlowIntensity.IsValid() {
		return fmt.Errorf("cycle record validation: %w", ErrInvalidFlow)
	}
	return nil
}

// SymptomEntry is one logged symptom observation.
type SymptomEntry struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Date        time.Time   `json:"date"`
	SymptomType SymptomType `json:"symptom_type"`
	Severity    int         `json:"severity"` // 1..5
	Mood        string      `json:"mood,omitempty"`
}

// Validate checks a symptom entry against the fixed vocabulary and the
// severity range. Malformed entries are skipped by the scoring engine
// rather than failing the run.
func (s *SymptomEntry) Validate() error {
	if s.Date.IsZero() {
		return &InvalidSymptomDataError{Field: "date", Reason: "date is required"}
	}
	if !s.SymptomType.IsValid() {
		return &InvalidSymptomDataError{Field: "symptom_type", Reason: fmt.Sprintf("unknown symptom %q", s.SymptomType)}
	}
	if s.Severity < MinSymptomSeverity || s.Severity > MaxSymptomSeverity {
		return &InvalidSymptomDataError{Field: "severity", Reason: fmt.Sprintf("severity %d outside [%d,%d]", s.Severity, MinSymptomSeverity, MaxSymptomSeverity)}
	}
	return nil
}

// ConditionDefinition is a catalog entry: pure data, no behavior. Adding
// or tuning a condition never touches scoring logic.
type ConditionDefinition struct {
	ConditionID string `json:"condition_id"`
	DisplayName string `json:"display_name"`

	// SymptomWeights maps characteristic symptoms to their contribution
	// weight. UrgentSymptoms flags symptoms that force professional
	// consultation when matched, regardless of severity band.
	SymptomWeights map[SymptomType]float64 `json:"symptom_weights"`
	UrgentSymptoms map[SymptomType]bool    `json:"urgent_symptoms,omitempty"`

	RiskFactorWeights map[RiskFactor]float64 `json:"risk_factor_weights"`

	// IrregularityAssociated gates the irregularity bonus term.
	IrregularityAssociated bool `json:"irregularity_associated"`

	// ClinicalPriority breaks score ties; lower rank sorts first.
	ClinicalPriority int `json:"clinical_priority"`

	AssessmentTemplate     string `json:"assessment_template"`
	RecommendationTemplate string `json:"recommendation_template"`
}

// RiskScore is the computed match between recent symptoms and one
// cataloged condition. It is a pure value and is never persisted by the
// scoring engine itself.
type RiskScore struct {
	ConditionID        string        `json:"condition_id"`
	Score              float64       `json:"score"` // always in [0,1]
	SymptomMatchRatio  float64       `json:"symptom_match_ratio"`
	RiskFactorRatio    float64       `json:"risk_factor_ratio"`
	IrregularityBonus  float64       `json:"irregularity_bonus"`
	MatchedSymptoms    []SymptomType `json:"matched_symptoms"`
	MatchedRiskFactors []RiskFactor  `json:"matched_risk_factors"`
	UrgentSymptomMatch bool          `json:"urgent_symptom_match"`
	ComputedAt         time.Time     `json:"computed_at"`
}

// Diagnosis is a screening outcome promoted past the activation
// threshold. Created exclusively by the lifecycle manager; mutated only
// via explicit review/dismiss operations.
type Diagnosis struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	ConditionID string          `json:"condition_id"`
	Score       float64         `json:"score"` // risk score snapshot at creation
	Severity    SeverityBand    `json:"severity"`
	Status      DiagnosisStatus `json:"status"`

	Assessment     string `json:"assessment"`
	Recommendation string `json:"recommendation"`

	RequiresProfessionalConsultation bool `json:"requires_professional_consultation"`

	CreatedAt    time.Time  `json:"created_at"`
	Reviewed     bool       `json:"reviewed"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
}

// Validate ensures diagnosis invariants hold before persistence.
func (d *Diagnosis) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("diagnosis validation: ID is required")
	}
	if d.UserID == "" {
		return fmt.Errorf("diagnosis validation: user ID is required")
	}
	if d.ConditionID == "" {
		return fmt.Errorf("diagnosis validation: condition ID is required")
	}
	if d.Score < 0 || d.Score > 1 {
		return fmt.Errorf("diagnosis validation: score %f outside [0,1]", d.Score)
	}
	if !d.Severity.IsValid() || d.Severity == SeverityNone {
		return fmt.Errorf("diagnosis validation: %w", ErrInvalidSeverity)
	}
	if !d.Status.IsValid() {
		return fmt.Errorf("diagnosis validation: %w", ErrInvalidStatus)
	}
	return nil
}

// CyclePrediction is the forward-looking forecast for the next cycle.
type CyclePrediction struct {
	UserID             string    `json:"user_id"`
	NextPeriodStart    time.Time `json:"next_period_start"`
	OvulationEstimate  time.Time `json:"ovulation_estimate"`
	FertileWindowStart time.Time `json:"fertile_window_start"`
	FertileWindowEnd   time.Time `json:"fertile_window_end"`
	Confidence         float64   `json:"confidence"` // in [0,1]
	BasedOnCycles      int       `json:"based_on_cycles"`
	ComputedAt         time.Time `json:"computed_at"`
}

// PhaseInfo is the current-phase inference output.
type PhaseInfo struct {
	Phase         CyclePhase `json:"phase"`
	DayInCycle    int        `json:"day_in_cycle"` // 1-based
	CycleProgress float64    `json:"cycle_progress"`
	AvgLength     float64    `json:"avg_length"`
	PeriodLength  int        `json:"period_length"`
	Overdue       bool       `json:"overdue"`
}

// ScreeningResult is the complete output batch of one screening run.
type ScreeningResult struct {
	UserID     string           `json:"user_id"`
	Phase      *PhaseInfo       `json:"phase"`
	Prediction *CyclePrediction `json:"prediction,omitempty"`
	RiskScores []RiskScore      `json:"risk_scores"`
	Diagnoses  []*Diagnosis     `json:"diagnoses"`
	RunAt      time.Time        `json:"run_at"`
}
