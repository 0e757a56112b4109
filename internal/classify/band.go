package classify

import (
	"strings"

	"samparkdash/internal/cell"
)

// Band is the coarse performance filter offered next to the search box.
type Band int

const (
	BandAll Band = iota
	BandHigh
	BandMedium
	BandLow
)

var bandNames = []string{"all", "high", "medium", "low"}

func (b Band) String() string {
	if b < BandAll || int(b) >= len(bandNames) {
		return "all"
	}
	return bandNames[b]
}

// ParseBand maps "high", "medium" and "low"; everything else is BandAll.
func ParseBand(s string) Band {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return BandHigh
	case "medium":
		return BandMedium
	case "low":
		return BandLow
	default:
		return BandAll
	}
}

// Next cycles all -> high -> medium -> low -> all.
func (b Band) Next() Band {
	return Band((int(b) + 1) % len(bandNames))
}

// InBand reports whether v falls into band relative to benchmark. Medium
// starts at benchmark*lowFraction. Non-numeric values only match BandAll.
func InBand(v cell.Value, benchmark, lowFraction float64, band Band) bool {
	if band == BandAll {
		return true
	}
	n, ok := v.Float()
	if !ok {
		return false
	}
	floor := benchmark * lowFraction
	switch band {
	case BandHigh:
		return n >= benchmark
	case BandMedium:
		return n < benchmark && n >= floor
	case BandLow:
		return n < floor
	}
	return false
}
