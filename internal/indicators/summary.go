package indicators

import (
	"cmp"
	"slices"

	"samparkdash/internal/classify"
)

// Targets for the headline cards.
const (
	AcceptanceTarget    = 70.0
	DailyUsageTarget    = 60.0
	ActiveSchoolsTarget = 50.0
)

// Summary is the key metrics overview of a leading indicator dataset.
// Aggregate rows are excluded; averages only count numeric cells.
type Summary struct {
	TotalDistricts           int     `json:"totalDistricts"`
	AverageTeacherAcceptance float64 `json:"averageTeacherAcceptance"`
	AverageDailyUsage        float64 `json:"averageDailyUsage"`
	TotalTeachersTrained     float64 `json:"totalTeachersTrained"`
	TotalSmartSchools        float64 `json:"totalSmartSchools"`
	ActiveSchoolsPercentage  float64 `json:"activeSchoolsPercentage"`
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) { m.sum += v; m.n++ }

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

// Summarize computes the headline numbers of items.
func Summarize(items []LeadingIndicator) Summary {
	var s Summary
	var acceptance, usage, active mean
	for _, it := range items {
		if classify.IsAggregate(it.Name) {
			continue
		}
		s.TotalDistricts++
		if n, ok := it.TeacherFeedback.Rating.Float(); ok {
			acceptance.add(n)
		}
		if n, ok := it.UsageMinutesPerDay.Float(); ok {
			usage.add(n)
		}
		if n, ok := it.STVUtilization.Float(); ok {
			active.add(n)
		}
		if n, ok := it.TrainedTeachers.Float(); ok {
			s.TotalTeachersTrained += n
		}
		if n, ok := it.SmartSchools.Float(); ok {
			s.TotalSmartSchools += n
		}
	}
	s.AverageTeacherAcceptance = acceptance.value()
	s.AverageDailyUsage = usage.value()
	s.ActiveSchoolsPercentage = active.value()
	return s
}

// AcceptanceOnTarget reports whether average acceptance meets its target.
func (s Summary) AcceptanceOnTarget() bool { return s.AverageTeacherAcceptance >= AcceptanceTarget }

// UsageDelta is the average daily usage minus its target, in minutes.
func (s Summary) UsageDelta() float64 { return s.AverageDailyUsage - DailyUsageTarget }

// ActiveOnTarget reports whether the active schools share meets its target.
func (s Summary) ActiveOnTarget() bool { return s.ActiveSchoolsPercentage >= ActiveSchoolsTarget }

// Top returns up to n non-aggregate rows with a numeric value under key,
// highest first.
func Top(t *Table, key string, n int) []Row {
	var out []Row
	for _, r := range t.AllRows() {
		if classify.IsAggregate(r.Name) {
			continue
		}
		if _, ok := r.Get(key).Float(); ok {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		x, _ := a.Get(key).Float()
		y, _ := b.Get(key).Float()
		return cmp.Compare(y, x)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
