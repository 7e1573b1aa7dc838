// Package service implements the screening pipeline: phase inference,
// cycle prediction, condition risk scoring, and the diagnosis lifecycle.
package service

import (
	"time"

	"github.com/lunacycle-screening-server/internal/domain"
)

// Policy holds the numeric screening constants. The values below are
// product policy, not clinical invariants; they are configurable and
// default to the reference behavior.
type Policy struct {
	// Phase inference
	DefaultCycleLength  float64 // days, used with fewer than 2 cycle records
	DefaultPeriodLength int     // days of menstrual flow
	MaxCyclesForAverage int     // completed lengths considered for the mean
	LutealPhaseLength   int     // days from ovulation back to next period

	// Prediction
	FertileWindowBefore int     // days before ovulation estimate
	FertileWindowAfter  int     // days after ovulation estimate
	MinConfidence       float64 // confidence floor
	MaxConfidence       float64 // confidence ceiling
	LowDataConfidence   float64 // cap with fewer than MinCyclesForTrust cycles
	MinCyclesForTrust   int

	// Scoring
	SymptomWindowDays  int
	SymptomWeight      float64
	RiskFactorWeight   float64
	IrregularityWeight float64
	// IrregularityCV is the coefficient of variation of cycle lengths at
	// which the irregularity signal saturates at 1.
	IrregularityCV float64

	// Lifecycle
	ActivationThreshold float64
	DedupWindowDays     int
	FollowUpDays        int

	// Severity cut-points, monotonic over score.
	LowCut      float64
	MildCut     float64
	ModerateCut float64
	HighCut     float64
	CriticalCut float64
}

// DefaultPolicy returns the shipped screening policy.
func DefaultPolicy() Policy {
	return Policy{
		DefaultCycleLength:  28,
		DefaultPeriodLength: 5,
		MaxCyclesForAverage: 6,
		LutealPhaseLength:   14,

		FertileWindowBefore: 5,
		FertileWindowAfter:  1,
		MinConfidence:       0.3,
		MaxConfidence:       0.99,
		LowDataConfidence:   0.5,
		MinCyclesForTrust:   3,

		SymptomWindowDays:  90,
		SymptomWeight:      0.7,
		RiskFactorWeight:   0.2,
		IrregularityWeight: 0.1,
		IrregularityCV:     0.2,

		ActivationThreshold: 0.40,
		DedupWindowDays:     30,
		FollowUpDays:        30,

		LowCut:      0.40,
		MildCut:     0.55,
		ModerateCut: 0.70,
		HighCut:     0.85,
		CriticalCut: 0.93,
	}
}

// SeverityFor maps a score to its severity band. Monotonic by
// construction: the cut-points are checked highest first.
func (p Policy) SeverityFor(score float64) domain.SeverityBand {
	switch {
	case score >= p.CriticalCut:
		return domain.SeverityCritical
	case score >= p.HighCut:
		return domain.SeverityHigh
	case score >= p.ModerateCut:
		return domain.SeverityModerate
	case score >= p.MildCut:
		return domain.SeverityMild
	case score >= p.LowCut:
		return domain.SeverityLow
	default:
		return domain.SeverityNone
	}
}

// SymptomWindowStart returns the start of the trailing symptom window.
func (p Policy) SymptomWindowStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.SymptomWindowDays)
}

// DedupWindowStart returns the start of the diagnosis dedup window.
func (p Policy) DedupWindowStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.DedupWindowDays)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
