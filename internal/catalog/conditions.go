package catalog

import (
	"github.com/lunacycle-screening-server/internal/domain"
)

// Condition IDs for the built-in catalog.
const (
	ConditionPCOS             = "pcos"
	ConditionEndometriosis    = "endometriosis"
	ConditionFibroids         = "uterine_fibroids"
	ConditionAdenomyosis      = "adenomyosis"
	ConditionPMDD             = "pmdd"
	ConditionThyroidRelated   = "thyroid_dysfunction"
	ConditionPOI              = "primary_ovarian_insufficiency"
	ConditionHyperprolactin   = "hyperprolactinemia"
	ConditionAnemiaHeavyBleed = "anemia_heavy_bleeding"
	ConditionPID              = "pelvic_inflammatory_disease"
	ConditionCervicalSignal   = "cervical_pathology_signal"
	ConditionDysmenorrhea     = "primary_dysmenorrhea"
)

// builtinConditions returns the shipped condition set. Clinical priority
// ranks urgency for tie-breaking: lower rank wins.
func builtinConditions() []*domain.ConditionDefinition {
	return []*domain.ConditionDefinition{
		{
			ConditionID: ConditionPCOS,
			DisplayName: "Polycystic Ovary Syndrome (PCOS)",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomIrregularPeriods: 1.0,
				domain.SymptomMissedPeriod:     0.9,
				domain.SymptomAcne:             0.6,
				domain.SymptomOilySkin:         0.4,
				domain.SymptomExcessHairGrowth: 0.9,
				domain.SymptomHairLoss:         0.5,
				domain.SymptomWeightGain:       0.6,
				domain.SymptomMoodSwings:       0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskFamilyHistoryPCOS: 1.0,
				domain.RiskObesity:           0.7,
				domain.RiskInsulinResistance: 0.9,
			},
			IrregularityAssociated: true,
			ClinicalPriority:       3,
			AssessmentTemplate:     "Your recent symptom pattern overlaps with common indicators of PCOS, particularly around cycle irregularity and androgen-related changes.",
			RecommendationTemplate: "Consider discussing hormonal and metabolic testing with a healthcare provider. Tracking cycle regularity over the next months will sharpen this signal.",
		},
		{
			ConditionID: ConditionEndometriosis,
			DisplayName: "Endometriosis",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomSevereCramps:       1.0,
				domain.SymptomChronicPelvicPain:  1.0,
				domain.SymptomPelvicPain:         0.7,
				domain.SymptomPainfulIntercourse: 0.8,
				domain.SymptomPainfulBowel:       0.7,
				domain.SymptomPainfulUrination:   0.5,
				domain.SymptomHeavyBleeding:      0.6,
				domain.SymptomSpottingBetween:    0.4,
				domain.SymptomFatigue:            0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskFamilyHistoryEndometriosis: 1.0,
				domain.RiskNulliparity:                0.5,
				domain.RiskEarlyMenarche:              0.5,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       2,
			AssessmentTemplate:     "Recurring severe pain symptoms in your log match patterns frequently reported with endometriosis.",
			RecommendationTemplate: "Persistent severe menstrual pain is worth a gynecological evaluation. Keep logging pain timing relative to your cycle.",
		},
		{
			ConditionID: ConditionFibroids,
			DisplayName: "Uterine Fibroids",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomHeavyBleeding:     1.0,
				domain.SymptomProlongedBleeding: 0.9,
				domain.SymptomPelvicPain:        0.6,
				domain.SymptomBloating:          0.4,
				domain.SymptomLowerBackPain:     0.5,
				domain.SymptomConstipation:      0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskFamilyHistoryFibroids: 1.0,
				domain.RiskObesity:               0.5,
				domain.RiskAgeOver35:             0.6,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       4,
			AssessmentTemplate:     "Heavy or prolonged bleeding entries in your log align with symptom patterns reported with uterine fibroids.",
			RecommendationTemplate: "If heavy bleeding persists across cycles, a pelvic ultrasound is the standard next step to discuss with a provider.",
		},
		{
			ConditionID: ConditionAdenomyosis,
			DisplayName: "Adenomyosis",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomSevereCramps:      0.9,
				domain.SymptomHeavyBleeding:     0.9,
				domain.SymptomProlongedBleeding: 0.7,
				domain.SymptomChronicPelvicPain: 0.7,
				domain.SymptomBloating:          0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskAgeOver35: 0.8,
				domain.RiskIUDUse:    0.3,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       5,
			AssessmentTemplate:     "The combination of heavy bleeding and severe cramping in your log is a pattern associated with adenomyosis.",
			RecommendationTemplate: "Discuss imaging options with a provider if painful heavy periods continue.",
		},
		{
			ConditionID: ConditionPMDD,
			DisplayName: "Premenstrual Dysphoric Disorder (PMDD)",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomDepressedMood:    1.0,
				domain.SymptomAnxiety:          0.9,
				domain.SymptomIrritability:     0.9,
				domain.SymptomMoodSwings:       0.8,
				domain.SymptomInsomnia:         0.5,
				domain.SymptomFatigue:          0.4,
				domain.SymptomAppetiteChange:   0.4,
				domain.SymptomBreastTenderness: 0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskChronicStress: 0.7,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       6,
			AssessmentTemplate:     "Recurring mood symptoms clustered before your period match the PMDD symptom profile.",
			RecommendationTemplate: "Log mood symptoms with cycle-day context for two cycles; that record is the basis for a clinical PMDD assessment.",
		},
		{
			ConditionID: ConditionThyroidRelated,
			DisplayName: "Thyroid-Related Cycle Dysfunction",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomIrregularPeriods: 0.8,
				domain.SymptomFatigue:          0.7,
				domain.SymptomWeightGain:       0.6,
				domain.SymptomWeightLoss:       0.6,
				domain.SymptomColdIntolerance:  0.8,
				domain.SymptomHairLoss:         0.5,
				domain.SymptomHeavyBleeding:    0.4,
				domain.SymptomInsomnia:         0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskFamilyHistoryThyroid: 1.0,
				domain.RiskAutoimmuneDisease:    0.8,
			},
			IrregularityAssociated: true,
			ClinicalPriority:       4,
			AssessmentTemplate:     "Cycle irregularity together with systemic symptoms in your log can indicate thyroid involvement.",
			RecommendationTemplate: "A TSH blood test is a simple first check to raise with a provider.",
		},
		{
			ConditionID: ConditionPOI,
			DisplayName: "Primary Ovarian Insufficiency",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomMissedPeriod:     1.0,
				domain.SymptomIrregularPeriods: 0.8,
				domain.SymptomHotFlashes:       0.9,
				domain.SymptomNightSweats:      0.8,
				domain.SymptomInsomnia:         0.4,
				domain.SymptomMoodSwings:       0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskAutoimmuneDisease: 0.7,
				domain.RiskSmoking:           0.5,
			},
			IrregularityAssociated: true,
			ClinicalPriority:       2,
			AssessmentTemplate:     "Missed periods together with vasomotor symptoms form a pattern that warrants hormonal evaluation.",
			RecommendationTemplate: "Discuss FSH and estradiol testing with a provider, especially if periods have been absent for several months.",
		},
		{
			ConditionID: ConditionHyperprolactin,
			DisplayName: "Hyperprolactinemia",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomMissedPeriod:         0.9,
				domain.SymptomIrregularPeriods:     0.7,
				domain.SymptomMilkyNippleDischarge: 1.0,
				domain.SymptomHeadache:             0.4,
				domain.SymptomVisionChanges:        0.8,
			},
			UrgentSymptoms: map[domain.SymptomType]bool{
				domain.SymptomVisionChanges: true,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskFamilyHistoryThyroid: 0.3,
			},
			IrregularityAssociated: true,
			ClinicalPriority:       3,
			AssessmentTemplate:     "Cycle disruption combined with discharge or vision symptoms matches a prolactin-related pattern.",
			RecommendationTemplate: "A prolactin blood test should be discussed with a provider; report any vision changes promptly.",
		},
		{
			ConditionID: ConditionAnemiaHeavyBleed,
			DisplayName: "Anemia from Heavy Menstrual Bleeding",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomHeavyBleeding:     1.0,
				domain.SymptomProlongedBleeding: 0.8,
				domain.SymptomFatigue:           0.8,
				domain.SymptomDizziness:         0.7,
				domain.SymptomHeadache:          0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskUnderweight: 0.4,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       3,
			AssessmentTemplate:     "Heavy bleeding logged alongside fatigue and dizziness suggests possible iron deficiency.",
			RecommendationTemplate: "A complete blood count and ferritin test are inexpensive checks worth requesting.",
		},
		{
			ConditionID: ConditionPID,
			DisplayName: "Pelvic Inflammatory Disease",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomPelvicPain:         0.9,
				domain.SymptomFever:              1.0,
				domain.SymptomAbnormalDischarge:  0.9,
				domain.SymptomPainfulUrination:   0.6,
				domain.SymptomPainfulIntercourse: 0.6,
				domain.SymptomSpottingBetween:    0.5,
			},
			UrgentSymptoms: map[domain.SymptomType]bool{
				domain.SymptomFever: true,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskPriorPelvicInfection: 1.0,
				domain.RiskIUDUse:               0.4,
				domain.RiskAgeUnder25:           0.4,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       1,
			AssessmentTemplate:     "Pelvic pain with fever or abnormal discharge is a pattern that needs timely medical attention.",
			RecommendationTemplate: "Seek medical evaluation soon; untreated pelvic infection can have lasting effects.",
		},
		{
			ConditionID: ConditionCervicalSignal,
			DisplayName: "Cervical Pathology Signal",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomSpottingBetween:    0.9,
				domain.SymptomPainfulIntercourse: 0.7,
				domain.SymptomAbnormalDischarge:  0.7,
				domain.SymptomProlongedBleeding:  0.4,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskSmoking: 0.6,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       1,
			AssessmentTemplate:     "Bleeding between periods and related symptoms should be checked even when mild.",
			RecommendationTemplate: "If routine cervical screening is not up to date, schedule it; mention intermenstrual bleeding to the provider.",
		},
		{
			ConditionID: ConditionDysmenorrhea,
			DisplayName: "Primary Dysmenorrhea",
			SymptomWeights: map[domain.SymptomType]float64{
				domain.SymptomCramps:        1.0,
				domain.SymptomLowerBackPain: 0.6,
				domain.SymptomNausea:        0.5,
				domain.SymptomHeadache:      0.4,
				domain.SymptomDiarrhea:      0.4,
				domain.SymptomFatigue:       0.3,
			},
			RiskFactorWeights: map[domain.RiskFactor]float64{
				domain.RiskEarlyMenarche: 0.5,
				domain.RiskSmoking:       0.4,
				domain.RiskAgeUnder25:    0.5,
			},
			IrregularityAssociated: false,
			ClinicalPriority:       8,
			AssessmentTemplate:     "Cramping around the start of your period without other red-flag symptoms matches primary dysmenorrhea.",
			RecommendationTemplate: "Heat, NSAIDs taken early, and regular exercise are standard first-line measures; escalate if pain interferes with daily life.",
		},
	}
}
