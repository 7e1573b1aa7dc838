// Package domain contains core business entities and types for menstrual
// cycle-phase inference, prediction, and heuristic health-risk screening.
//
// The screening output is a heuristic risk indicator only. It is not a
// diagnostic medical device and makes no claim of clinical validation.
package domain

import (
	"errors"
	"time"
)

// CyclePhase represents the inferred reproductive cycle phase.
type CyclePhase string

const (
	PhaseMenstrual  CyclePhase = "menstrual"
	PhaseFollicular CyclePhase = "follicular"
	PhaseOvulatory  CyclePhase = "ovulatory"
	PhaseLuteal     CyclePhase = "luteal"
	PhaseUnknown    CyclePhase = "unknown"
)

// IsValid validates the cycle phase value.
func (p CyclePhase) IsValid() bool {
	switch p {
	case PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal, PhaseUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the phase.
func (p CyclePhase) String() string {
	return string(p)
}

// SeverityBand is the discrete severity classification derived from a
// risk score via fixed cut-points. Banding is monotonic: a higher score
// never yields a lower band.
type SeverityBand string

const (
	SeverityNone     SeverityBand = "none"
	SeverityLow      SeverityBand = "low"
	SeverityMild     SeverityBand = "mild"
	SeverityModerate SeverityBand = "moderate"
	SeverityHigh     SeverityBand = "high"
	SeverityCritical SeverityBand = "critical"
)

// severityRank orders bands for comparisons. SeverityNone ranks lowest.
var severityRank = map[SeverityBand]int{
	SeverityNone:     0,
	SeverityLow:      1,
	SeverityMild:     2,
	SeverityModerate: 3,
	SeverityHigh:     4,
	SeverityCritical: 5,
}

// IsValid validates the severity band value.
func (s SeverityBand) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// String returns the string representation of the band.
func (s SeverityBand) String() string {
	return string(s)
}

// AtLeast reports whether the band is equal to or more severe than other.
func (s SeverityBand) AtLeast(other SeverityBand) bool {
	return severityRank[s] >= severityRank[other]
}

// RequiresConsultation reports whether the band alone mandates
// professional consultation.
func (s SeverityBand) RequiresConsultation() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// DiagnosisStatus is the lifecycle state of a diagnosis record.
type DiagnosisStatus string

const (
	StatusActive    DiagnosisStatus = "active"
	StatusReviewed  DiagnosisStatus = "reviewed"
	StatusDismissed DiagnosisStatus = "dismissed"
)

// IsValid validates the diagnosis status value.
func (ds DiagnosisStatus) IsValid() bool {
	switch ds {
	case StatusActive, StatusReviewed, StatusDismissed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (ds DiagnosisStatus) String() string {
	return string(ds)
}

// FlowIntensity is the logged menstrual flow intensity for a cycle.
type FlowIntensity string

const (
	FlowSpotting FlowIntensity = "spotting"
	FlowLight    FlowIntensity = "light"
	FlowMedium   FlowIntensity = "medium"
	FlowHeavy    FlowIntensity = "heavy"
)

// IsValid validates the flow intensity value.
func (f FlowIntensity) IsValid() bool {
	switch f {
	case FlowSpotting, FlowLight, FlowMedium, FlowHeavy:
		return true
	default:
		return false
	}
}

// SymptomType is the fixed symptom vocabulary shared by the logging
// interface and the condition catalog. Scoring only ever matches against
// this set; unknown symptom strings are rejected at the boundary.
type SymptomType string

const (
	SymptomCramps               SymptomType = "cramps"
	SymptomSevereCramps         SymptomType = "severe_cramps"
	SymptomPelvicPain           SymptomType = "pelvic_pain"
	SymptomChronicPelvicPain    SymptomType = "chronic_pelvic_pain"
	SymptomLowerBackPain        SymptomType = "lower_back_pain"
	SymptomHeadache             SymptomType = "headache"
	SymptomMigraine             SymptomType = "migraine"
	SymptomBloating             SymptomType = "bloating"
	SymptomNausea               SymptomType = "nausea"
	SymptomVomiting             SymptomType = "vomiting"
	SymptomDiarrhea             SymptomType = "diarrhea"
	SymptomConstipation         SymptomType = "constipation"
	SymptomFatigue              SymptomType = "fatigue"
	SymptomInsomnia             SymptomType = "insomnia"
	SymptomDizziness            SymptomType = "dizziness"
	SymptomBreastTenderness     SymptomType = "breast_tenderness"
	SymptomAcne                 SymptomType = "acne"
	SymptomOilySkin             SymptomType = "oily_skin"
	SymptomExcessHairGrowth     SymptomType = "excess_hair_growth"
	SymptomHairLoss             SymptomType = "hair_loss"
	SymptomWeightGain           SymptomType = "weight_gain"
	SymptomWeightLoss           SymptomType = "weight_loss"
	SymptomAppetiteChange       SymptomType = "appetite_change"
	SymptomFoodCravings         SymptomType = "food_cravings"
	SymptomMoodSwings           SymptomType = "mood_swings"
	SymptomIrritability         SymptomType = "irritability"
	SymptomAnxiety              SymptomType = "anxiety"
	SymptomDepressedMood        SymptomType = "depressed_mood"
	SymptomHeavyBleeding        SymptomType = "heavy_bleeding"
	SymptomProlongedBleeding    SymptomType = "prolonged_bleeding"
	SymptomSpottingBetween      SymptomType = "spotting_between_periods"
	SymptomIrregularPeriods     SymptomType = "irregular_periods"
	SymptomMissedPeriod         SymptomType = "missed_period"
	SymptomPainfulIntercourse   SymptomType = "painful_intercourse"
	SymptomPainfulUrination     SymptomType = "painful_urination"
	SymptomPainfulBowel         SymptomType = "painful_bowel_movements"
	SymptomAbnormalDischarge    SymptomType = "abnormal_discharge"
	SymptomFever                SymptomType = "fever"
	SymptomHotFlashes           SymptomType = "hot_flashes"
	SymptomNightSweats          SymptomType = "night_sweats"
	SymptomColdIntolerance      SymptomType = "cold_intolerance"
	SymptomMilkyNippleDischarge SymptomType = "milky_nipple_discharge"
	SymptomVisionChanges        SymptomType = "vision_changes"
)

// symptomVocabulary is the closed set of accepted symptom types.
var symptomVocabulary = map[SymptomType]struct{}{
	SymptomCramps: {}, SymptomSevereCramps: {}, SymptomPelvicPain: {},
	SymptomChronicPelvicPain: {}, SymptomLowerBackPain: {}, SymptomHeadache: {},
	SymptomMigraine: {}, SymptomBloating: {}, SymptomNausea: {},
	SymptomVomiting: {}, SymptomDiarrhea: {}, SymptomConstipation: {},
	SymptomFatigue: {}, SymptomInsomnia: {}, SymptomDizziness: {},
	SymptomBreastTenderness: {}, SymptomAcne: {}, SymptomOilySkin: {},
	SymptomExcessHairGrowth: {}, SymptomHairLoss: {}, SymptomWeightGain: {},
	SymptomWeightLoss: {}, SymptomAppetiteChange: {}, SymptomFoodCravings: {},
	SymptomMoodSwings: {}, SymptomIrritability: {}, SymptomAnxiety: {},
	SymptomDepressedMood: {}, SymptomHeavyBleeding: {}, SymptomProlongedBleeding: {},
	SymptomSpottingBetween: {}, SymptomIrregularPeriods: {}, SymptomMissedPeriod: {},
	SymptomPainfulIntercourse: {}, SymptomPainfulUrination: {}, SymptomPainfulBowel: {},
	SymptomAbnormalDischarge: {}, SymptomFever: {}, SymptomHotFlashes: {},
	SymptomNightSweats: {}, SymptomColdIntolerance: {}, SymptomMilkyNippleDischarge: {},
	SymptomVisionChanges: {},
}

// IsValid reports whether the symptom type belongs to the fixed vocabulary.
func (st SymptomType) IsValid() bool {
	_, ok := symptomVocabulary[st]
	return ok
}

// String returns the string representation of the symptom type.
func (st SymptomType) String() string {
	return string(st)
}

// RiskFactor is a self-reported risk-factor descriptor matched against
// the catalog's risk-factor weight maps.
type RiskFactor string

const (
	RiskFamilyHistoryPCOS          RiskFactor = "family_history_pcos"
	RiskFamilyHistoryEndometriosis RiskFactor = "family_history_endometriosis"
	RiskFamilyHistoryFibroids      RiskFactor = "family_history_fibroids"
	RiskFamilyHistoryThyroid       RiskFactor = "family_history_thyroid"
	RiskObesity                    RiskFactor = "obesity"
	RiskUnderweight                RiskFactor = "underweight"
	RiskInsulinResistance          RiskFactor = "insulin_resistance"
	RiskNulliparity                RiskFactor = "nulliparity"
	RiskEarlyMenarche              RiskFactor = "early_menarche"
	RiskSmoking                    RiskFactor = "smoking"
	RiskChronicStress              RiskFactor = "chronic_stress"
	RiskAgeOver35                  RiskFactor = "age_over_35"
	RiskAgeUnder25                 RiskFactor = "age_under_25"
	RiskIUDUse                     RiskFactor = "iud_use"
	RiskPriorPelvicInfection       RiskFactor = "prior_pelvic_infection"
	RiskAutoimmuneDisease          RiskFactor = "autoimmune_disease"
)

// Severity limits for logged symptom entries.
const (
	MinSymptomSeverity = 1
	MaxSymptomSeverity = 5
)

// Sentinel errors for domain-level validation.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPhase    = errors.New("invalid cycle phase")
	ErrInvalidSeverity = errors.New("invalid severity band")
	ErrInvalidStatus   = errors.New("invalid diagnosis status")
	ErrInvalidFlow     = errors.New("invalid flow intensity")
)

// DaysBetween returns the whole number of days from a to b, truncating
// both to midnight UTC first so intra-day timestamps do not skew cycle
// arithmetic.
func DaysBetween(a, b time.Time) int {
	a = TruncateDay(a)
	b = TruncateDay(b)
	return int(b.Sub(a).Hours() / 24)
}

// TruncateDay normalizes a timestamp to midnight UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
