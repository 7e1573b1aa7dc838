package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacycle-screening-server/internal/domain"
)

func TestPredictionEngine_EmptyHistory(t *testing.T) {
	engine := NewPredictionEngine(testLogger(), DefaultPolicy())

	p, err := engine.Predict("user-1", nil, day(2025, time.February, 10))

	require.Error(t, err)
	assert.Nil(t, p)
	var insufficient *domain.InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
}

func TestPredictionEngine_TwoCycles(t *testing.T) {
	// One completed 31-day length: next period exactly 31 days after the
	// last start, ovulation 14 days before that, fertile window -5/+1.
	history := []domain.CycleRecord{
		cycle("c1", day(2025, time.January, 1), 5),
		cycle("c2", day(2025, time.February, 1), 5),
	}
	engine := NewPredictionEngine(testLogger(), DefaultPolicy())

	p, err := engine.Predict("user-1", history, day(2025, time.February, 10))
	require.NoError(t, err)

	assert.Equal(t, day(2025, time.March, 4), p.NextPeriodStart)
	assert.Equal(t, day(2025, time.February, 18), p.OvulationEstimate)
	assert.Equal(t, day(2025, time.February, 13), p.FertileWindowStart)
	assert.Equal(t, day(2025, time.February, 19), p.FertileWindowEnd)
	assert.Equal(t, 1, p.BasedOnCycles)
}

func TestPredictionEngine_SingleRecordUsesDefaultLength(t *testing.T) {
	history := []domain.CycleRecord{cycle("c1", day(2025, time.March, 1), 5)}
	engine := NewPredictionEngine(testLogger(), DefaultPolicy())

	p, err := engine.Predict("user-1", history, day(2025, time.March, 10))
	require.NoError(t, err)

	assert.Equal(t, day(2025, time.March, 29), p.NextPeriodStart)
	assert.Equal(t, 0, p.BasedOnCycles)
}

func TestPredictionEngine_ConfidenceCappedWithShortHistory(t *testing.T) {
	// Two perfectly regular cycles would score 0.99, but fewer than three
	// completed lengths cap confidence at 0.5.
	history := []domain.CycleRecord{
		cycle("c1", day(2025, time.January, 1), 5),
		cycle("c2", day(2025, time.January, 29), 5),
		cycle("c3", day(2025, time.February, 26), 5),
	}
	engine := NewPredictionEngine(testLogger(), DefaultPolicy())

	p, err := engine.Predict("user-1", history, day(2025, time.March, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, p.BasedOnCycles)
	assert.Equal(t, 0.5, p.Confidence)
}

func TestPredictionEngine_ConfidenceRegularHistory(t *testing.T) {
	// Four identical 28-day lengths: zero variability hits the 0.99
	// confidence ceiling.
	start := day(2025, time.January, 1)
	history := []domain.CycleRecord{cycle("c0", start, 5)}
	for i := 1; i <= 4; i++ {
		history = append(history, cycle(string(rune('a'+i)), start.AddDate(0, 0, 28*i), 5))
	}
	engine := NewPredictionEngine(testLogger(), DefaultPolicy())

	p, err := engine.Predict("user-1", history, day(2025, time.May, 1))
	require.NoError(t, err)

	assert.Equal(t, 4, p.BasedOnCycles)
	assert.Equal(t, 0.99, p.Confidence)
}

func TestPredictionEngine_ConfidenceFloorOnErraticHistory(t *testing.T) {
	// Wildly varying lengths push 1-CV below the floor; confidence never
	// drops under 0.3.
	starts := []time.Time{
		day(2025, time.January, 1),
		day(2025, time.January, 11),
		day(2025, time.March, 12),
		day(2025, time.March, 20),
	}
	var history []domain.CycleRecord
	for i, s := range starts {
		history = append(history, cycle(string(rune('a'+i)), s, 5))
	}
	engine := NewPredictionEngine(testLogger(), DefaultPolicy())

	p, err := engine.Predict("user-1", history, day(2025, time.March, 25))
	require.NoError(t, err)

	assert.Equal(t, 0.3, p.Confidence)
}
