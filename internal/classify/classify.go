// Package classify assigns performance tiers to metric cells, either against
// a fixed policy threshold or against the dataset's own aggregate row.
package classify

import (
	"strings"

	"samparkdash/internal/cell"
)

// Aggregate row labels. Rows carrying one of these names are benchmarks,
// never colored as good or bad and never navigable.
const (
	StateAverage    = "State Average/Total"
	DistrictAverage = "District Average/Total"
	BlockAverages   = "Block Averages"
)

var aggregateLabels = map[string]struct{}{
	StateAverage:    {},
	DistrictAverage: {},
	BlockAverages:   {},
}

// IsAggregate reports whether name is one of the aggregate row labels.
// The match is exact.
func IsAggregate(name string) bool {
	_, ok := aggregateLabels[name]
	return ok
}

// Tier is the classification outcome for one cell.
type Tier int

const (
	Unknown Tier = iota
	Good
	Warning
	AboveAverage
	BelowAverage
	AtAverage
	Benchmark
)

func (t Tier) String() string {
	switch t {
	case Good:
		return "good"
	case Warning:
		return "warning"
	case AboveAverage:
		return "above_average"
	case BelowAverage:
		return "below_average"
	case AtAverage:
		return "at_average"
	case Benchmark:
		return "benchmark"
	default:
		return "unknown"
	}
}

// Label is the human readable form used in exports and the guide.
func (t Tier) Label() string {
	switch t {
	case Good:
		return "Good"
	case Warning:
		return "Needs Attention"
	case AboveAverage:
		return "Above Average"
	case BelowAverage:
		return "Below Average"
	case AtAverage:
		return "At Average"
	case Benchmark:
		return "Benchmark"
	default:
		return "No Data"
	}
}

// Color is the ANSI 256 color code used by the terminal views.
func (t Tier) Color() string {
	switch t {
	case Good, AboveAverage:
		return "42"
	case Warning, AtAverage:
		return "214"
	case BelowAverage:
		return "196"
	case Benchmark:
		return "62"
	default:
		return "241"
	}
}

// MarshalText lets tiers appear by name in JSON payloads.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Comparator decides which side of a threshold is good.
type Comparator int

const (
	// AtLeast: value must meet or exceed the threshold.
	AtLeast Comparator = iota
	// AtMost: value must stay at or under the threshold (e.g. days since last sync).
	AtMost
)

func (c Comparator) String() string {
	if c == AtMost {
		return "<="
	}
	return ">="
}

// ParseComparator accepts ">=" and "<=". Anything else is AtLeast.
func ParseComparator(s string) Comparator {
	if strings.TrimSpace(s) == "<=" {
		return AtMost
	}
	return AtLeast
}

// Threshold classifies v against a fixed threshold. The boundary is
// inclusive in both directions. Non-numeric values are Unknown.
func Threshold(v cell.Value, threshold float64, cmp Comparator) Tier {
	n, ok := v.Float()
	if !ok {
		return Unknown
	}
	switch cmp {
	case AtMost:
		if n <= threshold {
			return Good
		}
	default:
		if n >= threshold {
			return Good
		}
	}
	return Warning
}

// PeerAverage classifies v relative to the dataset's aggregate value.
// Equality is exact.
func PeerAverage(v cell.Value, avg float64) Tier {
	n, ok := v.Float()
	if !ok {
		return Unknown
	}
	switch {
	case n > avg:
		return AboveAverage
	case n < avg:
		return BelowAverage
	default:
		return AtAverage
	}
}

// PeerAverageFrom returns the value of the first aggregate row in names.
// When there is none, or it is not numeric, the average is 0 and found is
// false; callers keep classifying against 0.
func PeerAverageFrom(names []string, values []cell.Value) (avg float64, found bool) {
	for i, name := range names {
		if i >= len(values) {
			break
		}
		if !IsAggregate(name) {
			continue
		}
		n, ok := values[i].Float()
		if !ok {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Mode selects how a Rule classifies.
type Mode int

const (
	None Mode = iota
	ThresholdMode
	PeerMode
)

// Rule is the per-column classification setting.
type Rule struct {
	Mode       Mode
	Threshold  float64
	Comparator Comparator
	Average    float64
}

// ThresholdRule builds a threshold-mode rule.
func ThresholdRule(threshold float64, cmp Comparator) Rule {
	return Rule{Mode: ThresholdMode, Threshold: threshold, Comparator: cmp}
}

// PeerRule builds a peer-average rule.
func PeerRule(avg float64) Rule {
	return Rule{Mode: PeerMode, Average: avg}
}

// Classify applies the rule to the cell of the row called name.
func (r Rule) Classify(name string, v cell.Value) Tier {
	if IsAggregate(name) {
		return Benchmark
	}
	switch r.Mode {
	case ThresholdMode:
		return Threshold(v, r.Threshold, r.Comparator)
	case PeerMode:
		return PeerAverage(v, r.Average)
	default:
		return Unknown
	}
}

// Benchmark returns the value the rule compares against and whether it has one.
func (r Rule) Benchmark() (float64, bool) {
	switch r.Mode {
	case ThresholdMode:
		return r.Threshold, true
	case PeerMode:
		return r.Average, true
	default:
		return 0, false
	}
}
