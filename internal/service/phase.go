package service

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lunacycle-screening-server/internal/domain"
)

// PhaseEngine derives the current cycle phase from logged history. It is
// pure computation over the snapshot it is handed.
type PhaseEngine struct {
	logger *logrus.Logger
	policy Policy
}

// NewPhaseEngine creates a phase inference engine.
func NewPhaseEngine(logger *logrus.Logger, policy Policy) *PhaseEngine {
	return &PhaseEngine{logger: logger, policy: policy}
}

// Infer computes the phase info at the reference date. With an empty
// history the phase is unknown; callers treat that as "nothing logged
// yet" rather than an error.
func (e *PhaseEngine) Infer(history []domain.CycleRecord, ref time.Time) *domain.PhaseInfo {
	if len(history) == 0 {
		return &domain.PhaseInfo{
			Phase:        domain.PhaseUnknown,
			AvgLength:    e.policy.DefaultCycleLength,
			PeriodLength: e.policy.DefaultPeriodLength,
		}
	}

	history = sortedByStart(history)
	lengths := completedLengths(history, e.policy.MaxCyclesForAverage)

	avgLength := e.policy.DefaultCycleLength
	if len(lengths) > 0 {
		avgLength = mean(lengths)
	}

	periodLength := e.averageFlowDuration(history)

	last := history[len(history)-1]
	offset := domain.DaysBetween(last.StartDate, ref)
	dayInCycle := offset + 1

	info := &domain.PhaseInfo{
		DayInCycle:    dayInCycle,
		CycleProgress: clamp01(float64(offset) / avgLength),
		AvgLength:     avgLength,
		PeriodLength:  periodLength,
	}

	// Day-offset windows within the cycle. The ovulatory window is
	// centered at avgLength minus the luteal phase, plus or minus 2 days.
	ovCenter := int(math.Round(avgLength)) - e.policy.LutealPhaseLength
	ovStart := ovCenter - 2
	ovEnd := ovCenter + 2
	cycleEnd := int(math.Round(avgLength))

	switch {
	case offset < 0:
		// Reference date precedes the last logged start; nothing sane to infer.
		info.Phase = domain.PhaseUnknown
	case offset > cycleEnd:
		// Period overdue. Report unknown with the overdue flag instead of
		// wrapping into a projected new cycle.
		info.Phase = domain.PhaseUnknown
		info.Overdue = true
	case offset < periodLength:
		info.Phase = domain.PhaseMenstrual
	case offset < ovStart:
		info.Phase = domain.PhaseFollicular
	case offset <= ovEnd:
		info.Phase = domain.PhaseOvulatory
	default:
		info.Phase = domain.PhaseLuteal
	}

	e.logger.WithFields(logrus.Fields{
		"phase":        info.Phase,
		"day_in_cycle": info.DayInCycle,
		"avg_length":   info.AvgLength,
		"overdue":      info.Overdue,
	}).Debug("Inferred cycle phase")

	return info
}

// averageFlowDuration returns the mean logged bleeding duration, or the
// policy default when no cycle has a logged end date.
func (e *PhaseEngine) averageFlowDuration(history []domain.CycleRecord) int {
	var total, n int
	for i := range history {
		if d := history[i].FlowDuration(); d > 0 {
			total += d
			n++
		}
	}
	if n == 0 {
		return e.policy.DefaultPeriodLength
	}
	return int(math.Round(float64(total) / float64(n)))
}

// completedLengths returns the most recent consecutive start-date deltas,
// up to limit. A delta requires a following cycle, so an open final
// cycle never contributes a length.
func completedLengths(history []domain.CycleRecord, limit int) []float64 {
	var lengths []float64
	for i := 1; i < len(history); i++ {
		d := domain.DaysBetween(history[i-1].StartDate, history[i].StartDate)
		if d > 0 {
			lengths = append(lengths, float64(d))
		}
	}
	if len(lengths) > limit {
		lengths = lengths[len(lengths)-limit:]
	}
	return lengths
}

func sortedByStart(history []domain.CycleRecord) []domain.CycleRecord {
	out := make([]domain.CycleRecord, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev is the population standard deviation.
func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sq float64
	for _, v := range vals {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(vals)))
}
