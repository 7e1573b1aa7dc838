package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCyclePhase_IsValid(t *testing.T) {
	valid := []CyclePhase{PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal, PhaseUnknown}
	for _, p := range valid {
		assert.True(t, p.IsValid(), "phase %s should be valid", p)
	}
	assert.False(t, CyclePhase("INVALID").IsValid())
	assert.False(t, CyclePhase("").IsValid())
}

func TestSeverityBand_Ordering(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityModerate.AtLeast(SeverityModerate))
	assert.False(t, SeverityMild.AtLeast(SeverityModerate))
	assert.False(t, SeverityNone.AtLeast(SeverityLow))
}

func TestSeverityBand_RequiresConsultation(t *testing.T) {
	assert.True(t, SeverityHigh.RequiresConsultation())
	assert.True(t, SeverityCritical.RequiresConsultation())
	assert.False(t, SeverityModerate.RequiresConsultation())
	assert.False(t, SeverityLow.RequiresConsultation())
}

func TestSymptomType_IsValid(t *testing.T) {
	assert.True(t, SymptomCramps.IsValid())
	assert.True(t, SymptomVisionChanges.IsValid())
	assert.False(t, SymptomType("made_up_symptom").IsValid())
}

func TestSymptomEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   SymptomEntry
		wantErr bool
	}{
		{
			name:  "valid entry",
			entry: SymptomEntry{Date: time.Now(), SymptomType: SymptomCramps, Severity: 3},
		},
		{
			name:    "unknown symptom",
			entry:   SymptomEntry{Date: time.Now(), SymptomType: "bogus", Severity: 3},
			wantErr: true,
		},
		{
			name:    "severity too low",
			entry:   SymptomEntry{Date: time.Now(), SymptomType: SymptomCramps, Severity: 0},
			wantErr: true,
		},
		{
			name:    "severity too high",
			entry:   SymptomEntry{Date: time.Now(), SymptomType: SymptomCramps, Severity: 6},
			wantErr: true,
		},
		{
			name:    "missing date",
			entry:   SymptomEntry{SymptomType: SymptomCramps, Severity: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				var invalid *InvalidSymptomDataError
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCycleRecord_Validate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	badEnd := start.AddDate(0, 0, -1)

	valid := CycleRecord{ID: "c1", StartDate: start, EndDate: &end, FlowIntensity: FlowMedium}
	assert.NoError(t, valid.Validate())

	inverted := CycleRecord{ID: "c2", StartDate: start, EndDate: &badEnd}
	assert.Error(t, inverted.Validate())

	noID := CycleRecord{StartDate: start}
	assert.Error(t, noID.Validate())
}

func TestCycleRecord_FlowDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	closed := CycleRecord{StartDate: start, EndDate: &end}
	assert.Equal(t, 5, closed.FlowDuration())

	open := CycleRecord{StartDate: start}
	assert.Equal(t, 0, open.FlowDuration())
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 1, 1, 23, 50, 0, 0, time.UTC)
	b := time.Date(2025, 1, 10, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, 9, DaysBetween(a, b))
	assert.Equal(t, -9, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestDiagnosis_Validate(t *testing.T) {
	d := Diagnosis{
		ID:          "d1",
		UserID:      "u1",
		ConditionID: "pcos",
		Score:       0.5,
		Severity:    SeverityLow,
		Status:      StatusActive,
		CreatedAt:   time.Now(),
	}
	assert.NoError(t, d.Validate())

	outOfRange := d
	outOfRange.Score = 1.2
	assert.Error(t, outOfRange.Validate())

	noBand := d
	noBand.Severity = SeverityNone
	assert.Error(t, noBand.Validate())
}
