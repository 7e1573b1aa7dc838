package service

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/domain"
)

// RiskScoringEngine scores every cataloged condition against the recent
// symptom window. It is a pure function of its inputs: no side effects,
// deterministic output order.
type RiskScoringEngine struct {
	logger  *logrus.Logger
	catalog domain.ConditionCatalog
	policy  Policy
}

// NewRiskScoringEngine creates a scoring engine bound to a catalog.
func NewRiskScoringEngine(logger *logrus.Logger, catalog domain.ConditionCatalog, policy Policy) *RiskScoringEngine {
	return &RiskScoringEngine{logger: logger, catalog: catalog, policy: policy}
}

// ScoringInput carries one scoring run's snapshot.
type ScoringInput struct {
	Symptoms    []domain.SymptomEntry
	RiskFactors []domain.RiskFactor
	// CycleLengths are the completed cycle lengths backing the
	// irregularity signal.
	CycleLengths []float64
	Now          time.Time
}

// Score computes a RiskScore per cataloged condition, ordered by score
// descending with ties broken by clinical priority then condition ID.
// An empty (or fully invalid) symptom window yields an empty list.
func (e *RiskScoringEngine) Score(in ScoringInput) []domain.RiskScore {
	present, skipped := e.collectSymptoms(in.Symptoms, in.Now)
	if skipped > 0 {
		e.logger.WithField("skipped_entries", skipped).Warn("Skipped malformed symptom entries")
	}
	if len(present) == 0 {
		return nil
	}

	factors := make(map[domain.RiskFactor]struct{}, len(in.RiskFactors))
	for _, f := range in.RiskFactors {
		factors[f] = struct{}{}
	}

	irregularity := e.irregularitySignal(in.CycleLengths)

	defs := e.catalog.All()
	scores := make([]domain.RiskScore, 0, len(defs))
	for _, def := range defs {
		scores = append(scores, e.scoreCondition(def, present, factors, irregularity, in.Now))
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		pi, pj := e.priorityOf(scores[i].ConditionID), e.priorityOf(scores[j].ConditionID)
		if pi != pj {
			return pi < pj
		}
		return scores[i].ConditionID < scores[j].ConditionID
	})

	return scores
}

// scoreCondition applies the weighted scoring formula for one condition.
func (e *RiskScoringEngine) scoreCondition(
	def *domain.ConditionDefinition,
	present map[domain.SymptomType]struct{},
	factors map[domain.RiskFactor]struct{},
	irregularity float64,
	now time.Time,
) domain.RiskScore {
	var matchedWeight, totalWeight float64
	var matched []domain.SymptomType
	urgent := false
	for sym, w := range def.SymptomWeights {
		totalWeight += w
		if _, ok := present[sym]; ok {
			matchedWeight += w
			matched = append(matched, sym)
			if def.UrgentSymptoms[sym] {
				urgent = true
			}
		}
	}
	symptomRatio := 0.0
	if totalWeight > 0 {
		symptomRatio = matchedWeight / totalWeight
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })

	var matchedRF, totalRF float64
	var matchedFactors []domain.RiskFactor
	for rf, w := range def.RiskFactorWeights {
		totalRF += w
		if _, ok := factors[rf]; ok {
			matchedRF += w
			matchedFactors = append(matchedFactors, rf)
		}
	}
	riskFactorRatio := 0.0
	if totalRF > 0 {
		riskFactorRatio = matchedRF / totalRF
	}
	sort.Slice(matchedFactors, func(i, j int) bool { return matchedFactors[i] < matchedFactors[j] })

	bonus := 0.0
	if def.IrregularityAssociated {
		bonus = irregularity
	}

	raw := e.policy.SymptomWeight*symptomRatio +
		e.policy.RiskFactorWeight*riskFactorRatio +
		e.policy.IrregularityWeight*bonus

	return domain.RiskScore{
		ConditionID:        def.ConditionID,
		Score:              clamp01(raw),
		SymptomMatchRatio:  symptomRatio,
		RiskFactorRatio:    riskFactorRatio,
		IrregularityBonus:  bonus,
		MatchedSymptoms:    matched,
		MatchedRiskFactors: matchedFactors,
		UrgentSymptomMatch: urgent,
		ComputedAt:         now,
	}
}

// collectSymptoms builds the set of symptom types present in the trailing
// window, skipping malformed entries.
func (e *RiskScoringEngine) collectSymptoms(entries []domain.SymptomEntry, now time.Time) (map[domain.SymptomType]struct{}, int) {
	windowStart := e.policy.SymptomWindowStart(now)
	present := make(map[domain.SymptomType]struct{})
	skipped := 0
	for i := range entries {
		entry := entries[i]
		if err := entry.Validate(); err != nil {
			e.logger.WithError(err).Debug("Skipping symptom entry")
			skipped++
			continue
		}
		if entry.Date.Before(windowStart) || entry.Date.After(now) {
			continue
		}
		present[entry.SymptomType] = struct{}{}
	}
	return present, skipped
}

// irregularitySignal converts cycle-length variance into a [0,1] signal.
// The coefficient of variation saturates at the policy's IrregularityCV.
func (e *RiskScoringEngine) irregularitySignal(lengths []float64) float64 {
	if len(lengths) < 2 {
		return 0
	}
	m := mean(lengths)
	if m <= 0 {
		return 0
	}
	return clamp01(stddev(lengths) / m / e.policy.IrregularityCV)
}

func (e *RiskScoringEngine) priorityOf(conditionID string) int {
	def, err := e.catalog.Get(conditionID)
	if err != nil {
		return int(^uint(0) >> 1) // unknown conditions sort last
	}
	return def.ClinicalPriority
}
