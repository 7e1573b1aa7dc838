package service

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/lunacycle-screening-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cycle(id string, start time.Time, flowDays int) domain.CycleRecord {
	rec := domain.CycleRecord{
		ID:            id,
		UserID:        "user-1",
		StartDate:     start,
		FlowIntensity: domain.FlowMedium,
	}
	if flowDays > 0 {
		end := start.AddDate(0, 0, flowDays-1)
		rec.EndDate = &end
	}
	return rec
}

func TestPhaseEngine_EmptyHistory(t *testing.T) {
	engine := NewPhaseEngine(testLogger(), DefaultPolicy())

	info := engine.Infer(nil, day(2025, time.February, 10))

	assert.Equal(t, domain.PhaseUnknown, info.Phase)
	assert.Equal(t, 28.0, info.AvgLength)
	assert.False(t, info.Overdue)
}

func TestPhaseEngine_TwoCycles(t *testing.T) {
	// Cycles starting Jan 1 and Feb 1 give a single completed length of
	// 31 days. On Feb 10 the user is on day 10, past the 5-day flow and
	// before the ovulatory window, so follicular.
	history := []domain.CycleRecord{
		cycle("c1", day(2025, time.January, 1), 5),
		cycle("c2", day(2025, time.February, 1), 5),
	}
	engine := NewPhaseEngine(testLogger(), DefaultPolicy())

	info := engine.Infer(history, day(2025, time.February, 10))

	assert.Equal(t, domain.PhaseFollicular, info.Phase)
	assert.Equal(t, 31.0, info.AvgLength)
	assert.Equal(t, 10, info.DayInCycle)
	assert.False(t, info.Overdue)
}

func TestPhaseEngine_Windows(t *testing.T) {
	// Single record, so the 28-day default applies: flow days 1-5
	// menstrual, ovulatory window centered on day offset 14 (12..16).
	start := day(2025, time.March, 1)
	history := []domain.CycleRecord{cycle("c1", start, 5)}
	engine := NewPhaseEngine(testLogger(), DefaultPolicy())

	tests := []struct {
		name    string
		offset  int
		phase   domain.CyclePhase
		overdue bool
	}{
		{name: "first flow day", offset: 0, phase: domain.PhaseMenstrual},
		{name: "last flow day", offset: 4, phase: domain.PhaseMenstrual},
		{name: "early follicular", offset: 5, phase: domain.PhaseFollicular},
		{name: "late follicular", offset: 11, phase: domain.PhaseFollicular},
		{name: "ovulatory window start", offset: 12, phase: domain.PhaseOvulatory},
		{name: "ovulation day", offset: 14, phase: domain.PhaseOvulatory},
		{name: "ovulatory window end", offset: 16, phase: domain.PhaseOvulatory},
		{name: "luteal", offset: 17, phase: domain.PhaseLuteal},
		{name: "cycle end", offset: 28, phase: domain.PhaseLuteal},
		{name: "overdue", offset: 29, phase: domain.PhaseUnknown, overdue: true},
		{name: "well overdue", offset: 40, phase: domain.PhaseUnknown, overdue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := engine.Infer(history, start.AddDate(0, 0, tt.offset))
			assert.Equal(t, tt.phase, info.Phase)
			assert.Equal(t, tt.overdue, info.Overdue)
			assert.Equal(t, tt.offset+1, info.DayInCycle)
		})
	}
}

func TestPhaseEngine_ReferenceBeforeLastStart(t *testing.T) {
	history := []domain.CycleRecord{cycle("c1", day(2025, time.March, 10), 5)}
	engine := NewPhaseEngine(testLogger(), DefaultPolicy())

	info := engine.Infer(history, day(2025, time.March, 1))

	assert.Equal(t, domain.PhaseUnknown, info.Phase)
	assert.False(t, info.Overdue)
}

func TestPhaseEngine_AverageUsesLastSixCycles(t *testing.T) {
	// Eight cycles: the two oldest lengths (40 days) must fall out of the
	// six-cycle averaging window, leaving a 28-day mean.
	start := day(2024, time.January, 1)
	history := []domain.CycleRecord{cycle("c0", start, 5)}
	current := start
	for i, length := range []int{40, 40, 28, 28, 28, 28, 28, 28} {
		current = current.AddDate(0, 0, length)
		history = append(history, cycle(string(rune('a'+i)), current, 5))
	}
	engine := NewPhaseEngine(testLogger(), DefaultPolicy())

	info := engine.Infer(history, current.AddDate(0, 0, 1))

	assert.Equal(t, 28.0, info.AvgLength)
}

func TestPhaseEngine_UnsortedHistory(t *testing.T) {
	history := []domain.CycleRecord{
		cycle("c2", day(2025, time.February, 1), 5),
		cycle("c1", day(2025, time.January, 1), 5),
	}
	engine := NewPhaseEngine(testLogger(), DefaultPolicy())

	info := engine.Infer(history, day(2025, time.February, 3))

	assert.Equal(t, domain.PhaseMenstrual, info.Phase)
	assert.Equal(t, 3, info.DayInCycle)
}

func TestPhaseEngine_OpenCycleFlowDefault(t *testing.T) {
	// No logged end dates anywhere: flow duration falls back to the
	// 5-day default.
	history := []domain.CycleRecord{
		cycle("c1", day(2025, time.January, 1), 0),
		cycle("c2", day(2025, time.January, 29), 0),
	}
	engine := NewPhaseEngine(testLogger(), DefaultPolicy())

	info := engine.Infer(history, day(2025, time.January, 31))

	assert.Equal(t, 5, info.PeriodLength)
	assert.Equal(t, domain.PhaseMenstrual, info.Phase)
}
