package main

import (
	"fmt"
	"strings"

	"samparkdash/internal/classify"
	"samparkdash/internal/indicators"
)

const guideIntro = `# Performance Indicators Guide

The dashboard tracks how schools use Sampark smart classes (leading
indicators) and how children perform (lagging indicators). Every number is
coloured against a benchmark so that units needing attention stand out.
`

const guideLeading = `## Leading indicators

Leading indicators are coloured against the green criteria sent with each
dataset: at or above the criterion is good, below it needs attention.

| Indicator | What it measures |
|---|---|
| Teacher Acceptance | Average teacher rating of Sampark TV |
| Lessons Taught/Month | Lessons played per school |
| Active Schools %% | Share of smart schools using the device |
| Daily Usage (min) | Minutes of use per school per day, target %s |
| # Teachers Trained | Teachers trained so far, not coloured |
| # Smart Schools | Schools with a Sampark TV installed, not coloured |
`

const guideSchools = `## School leading indicators

| Indicator | What it measures | Benchmark |
|---|---|---|
| Last Sync Days | Days since the device last synced | At most the criterion |
| Lessons Taught/Month | Lessons played in the data month | At least the criterion |
| Daily Usage (min) | Minutes of use per day | At least the criterion |
| Teachers Trained | Trained teachers at the school | At least the criterion |
`

const guideObservation = `## Class observation and lagging indicators

Class observation compares how many children were assessed and how many are
at grade level against the state average. Lagging indicators show baseline
and endline competence per subject; use the subject filter to narrow them.
`

const guideFilters = `## Filters

- **Search** matches unit names, and DISE codes in school tables.
- **Band** keeps rows at or above the benchmark (high), between the benchmark
  and its lower fraction (medium), or below it (low). The aggregate row is
  filtered like any other.
- **Sort** cycles ascending, descending, off. Empty cells always sort last.
`

// guideMarkdown builds the Performance Indicators Guide.
func guideMarkdown() string {
	var b strings.Builder
	b.WriteString(guideIntro)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(guideLeading, formatTarget(indicators.DailyUsageTarget)))
	b.WriteString("\n")
	b.WriteString(guideSchools)
	b.WriteString("\n")
	b.WriteString(guideObservation)
	b.WriteString("\n")
	b.WriteString(guideFilters)
	b.WriteString("\n## Colours\n\n")
	for _, t := range []classify.Tier{
		classify.Good, classify.Warning,
		classify.AboveAverage, classify.AtAverage, classify.BelowAverage,
		classify.Benchmark, classify.Unknown,
	} {
		b.WriteString(fmt.Sprintf("- **%s**: %s\n", t.Label(), tierMeaning(t)))
	}
	return b.String()
}

func formatTarget(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func tierMeaning(t classify.Tier) string {
	switch t {
	case classify.Good:
		return "meets the target"
	case classify.Warning:
		return "misses the target"
	case classify.AboveAverage:
		return "better than the state average"
	case classify.AtAverage:
		return "equal to the state average"
	case classify.BelowAverage:
		return "worse than the state average"
	case classify.Benchmark:
		return "the aggregate row the others are compared with"
	default:
		return "no value reported"
	}
}

// renderGuide renders the guide for a terminal of the given width.
func renderGuide(width int) (string, error) {
	out, err := renderMarkdown(guideMarkdown(), width)
	if err != nil {
		return "", fmt.Errorf("failed to render guide: %w", err)
	}
	return out, nil
}
