package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"samparkdash/internal/cell"
)

func TestThreshold(t *testing.T) {
	tests := map[string]struct {
		value     cell.Value
		threshold float64
		cmp       Comparator
		want      Tier
	}{
		"at least above":     {value: cell.Number(80), threshold: 70, cmp: AtLeast, want: Good},
		"at least boundary":  {value: cell.Number(70), threshold: 70, cmp: AtLeast, want: Good},
		"at least below":     {value: cell.Number(69.99), threshold: 70, cmp: AtLeast, want: Warning},
		"at most boundary":   {value: cell.Number(7), threshold: 7, cmp: AtMost, want: Good},
		"at most under":      {value: cell.Number(2), threshold: 7, cmp: AtMost, want: Good},
		"at most over":       {value: cell.Number(8), threshold: 7, cmp: AtMost, want: Warning},
		"empty":              {value: cell.Empty(), threshold: 7, cmp: AtLeast, want: Unknown},
		"text":               {value: cell.Text("n/a"), threshold: 7, cmp: AtLeast, want: Unknown},
		"numeric string":     {value: cell.Normalize("45"), threshold: 45, cmp: AtLeast, want: Good},
		"zero threshold":     {value: cell.Number(0), threshold: 0, cmp: AtLeast, want: Good},
		"negative at most":   {value: cell.Number(-1), threshold: 0, cmp: AtMost, want: Good},
		"parsed comparator":  {value: cell.Number(3), threshold: 2, cmp: ParseComparator("<="), want: Warning},
		"default comparator": {value: cell.Number(3), threshold: 2, cmp: ParseComparator("?"), want: Good},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Threshold(tc.value, tc.threshold, tc.cmp))
		})
	}
}

func TestPeerAverage(t *testing.T) {
	testCases := []struct {
		name  string
		value cell.Value
		avg   float64
		want  Tier
	}{
		{"above", cell.Number(72), 65, AboveAverage},
		{"below", cell.Number(60), 65, BelowAverage},
		{"equal", cell.Number(65), 65, AtAverage},
		{"empty", cell.Empty(), 65, Unknown},
		{"text", cell.Text("pending"), 65, Unknown},
		{"zero average", cell.Number(1), 0, AboveAverage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PeerAverage(tc.value, tc.avg))
		})
	}
}

func TestRuleClassifyAggregate(t *testing.T) {
	rules := []Rule{
		{},
		ThresholdRule(10, AtLeast),
		ThresholdRule(7, AtMost),
		PeerRule(50),
	}
	for _, name := range []string{StateAverage, DistrictAverage, BlockAverages} {
		for _, r := range rules {
			assert.Equal(t, Benchmark, r.Classify(name, cell.Number(1)), "%s mode %d", name, r.Mode)
			assert.Equal(t, Benchmark, r.Classify(name, cell.Empty()))
		}
	}

	// near-miss labels are ordinary rows
	assert.Equal(t, Warning, ThresholdRule(10, AtLeast).Classify("state average/total", cell.Number(1)))
	assert.Equal(t, Unknown, Rule{}.Classify("Durg", cell.Number(1)))
}

func TestPeerAverageFrom(t *testing.T) {
	names := []string{"Raipur", StateAverage, "Durg"}
	values := []cell.Value{cell.Number(72), cell.Number(65), cell.Number(60)}

	avg, ok := PeerAverageFrom(names, values)
	assert.True(t, ok)
	assert.Equal(t, 65.0, avg)

	avg, ok = PeerAverageFrom([]string{"Raipur", "Durg"}, values[:2])
	assert.False(t, ok)
	assert.Equal(t, 0.0, avg)

	avg, ok = PeerAverageFrom([]string{BlockAverages}, []cell.Value{cell.Empty()})
	assert.False(t, ok)
	assert.Equal(t, 0.0, avg)
}

func TestTierLabels(t *testing.T) {
	assert.Equal(t, "Needs Attention", Warning.Label())
	assert.Equal(t, "No Data", Unknown.Label())
	assert.Equal(t, "above_average", AboveAverage.String())

	b, err := Benchmark.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "benchmark", string(b))
}

func TestInBand(t *testing.T) {
	const benchmark, fraction = 60.0, 0.5

	tests := map[string]struct {
		value cell.Value
		band  Band
		want  bool
	}{
		"high at benchmark":     {cell.Number(60), BandHigh, true},
		"high below":            {cell.Number(59), BandHigh, false},
		"medium at floor":       {cell.Number(30), BandMedium, true},
		"medium at benchmark":   {cell.Number(60), BandMedium, false},
		"low under floor":       {cell.Number(29.9), BandLow, true},
		"low at floor":          {cell.Number(30), BandLow, false},
		"all empty":             {cell.Empty(), BandAll, true},
		"empty never in a band": {cell.Empty(), BandLow, false},
		"text never in a band":  {cell.Text("x"), BandHigh, false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, InBand(tc.value, benchmark, fraction, tc.band))
		})
	}
}

func TestBandsPartitionNumericValues(t *testing.T) {
	for _, n := range []float64{-5, 0, 10, 29.99, 30, 45, 59.9, 60, 61, 1000} {
		v := cell.Number(n)
		hits := 0
		for _, b := range []Band{BandHigh, BandMedium, BandLow} {
			if InBand(v, 60, 0.5, b) {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "value %v", n)
	}
}

func TestParseBand(t *testing.T) {
	assert.Equal(t, BandHigh, ParseBand(" HIGH "))
	assert.Equal(t, BandMedium, ParseBand("medium"))
	assert.Equal(t, BandLow, ParseBand("low"))
	assert.Equal(t, BandAll, ParseBand("whatever"))
	assert.Equal(t, BandAll, BandLow.Next())
	assert.Equal(t, "medium", BandMedium.String())
}
