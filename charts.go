package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"samparkdash/internal/classify"
	"samparkdash/internal/indicators"
)

// legendTiers are the tiers shown in the header legend, in display order.
var legendTiers = []classify.Tier{
	classify.Good,
	classify.Warning,
	classify.AboveAverage,
	classify.AtAverage,
	classify.BelowAverage,
	classify.Benchmark,
	classify.Unknown,
}

func tierStyle(t classify.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color()))
}

// BarChart creates a horizontal bar chart
func BarChart(label string, value, max float64, width int, color lipgloss.Color) string {
	if max == 0 {
		max = value
	}

	percentage := 0.0
	if max > 0 {
		percentage = value / max
	}
	filledWidth := clampWidth(int(float64(width)*percentage), width)

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	barStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return fmt.Sprintf("%s %s%s %.0f",
		label,
		barStyle.Render(filled),
		emptyStyle.Render(empty),
		value,
	)
}

func clampWidth(n, width int) int {
	if n < 0 {
		return 0
	}
	if n > width {
		return width
	}
	return n
}

// PercentageBar creates a percentage bar coloured against target: green at
// or above it, orange from half of it, red below.
func PercentageBar(label string, percentage, target float64, width int) string {
	percentage = math.Max(0, math.Min(100, percentage))

	filledWidth := clampWidth(int(float64(width)*percentage/100), width)
	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	var color lipgloss.Color
	switch {
	case percentage >= target:
		color = lipgloss.Color(classify.Good.Color())
	case percentage >= target/2:
		color = lipgloss.Color(classify.Warning.Color())
	default:
		color = lipgloss.Color(classify.BelowAverage.Color())
	}

	barStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	out := fmt.Sprintf("%s%s %.1f%%", barStyle.Render(filled), emptyStyle.Render(empty), percentage)
	if label != "" {
		out = label + " " + out
	}
	return out
}

// InfoBox frames one cell of the selected row, bordered in its tier colour.
// Cells without data get a muted border.
func InfoBox(title string, c indicators.Cell) string {
	color := lipgloss.Color(c.Tier.Color())
	value := c.Display
	if value == "" {
		value = "-"
		color = lipgloss.Color("240")
	}

	heading := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(title)
	body := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Render(value)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, heading, body))
}

// MetricCard creates a card showing a metric with a bar against its target.
// A negative target hides the bar.
func MetricCard(title, value, subtitle string, percentage, target float64) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62"))

	valueStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("226"))

	subtitleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(28)

	var bar string
	if target >= 0 {
		bar = "\n" + PercentageBar("", percentage, target, 16)
	}

	content := titleStyle.Render(title) + "\n" +
		valueStyle.Render(value) + "\n" +
		subtitleStyle.Render(subtitle) +
		bar

	return cardStyle.Render(content)
}

// SummaryCards renders the key metrics of the state view side by side
func SummaryCards(s indicators.Summary) string {
	usage := fmt.Sprintf("%+.1f min vs target", s.UsageDelta())
	return lipgloss.JoinHorizontal(lipgloss.Top,
		MetricCard("Districts", fmt.Sprintf("%d", s.TotalDistricts), "with reported data", 0, -1),
		MetricCard("Teacher Acceptance", fmt.Sprintf("%.1f%%", s.AverageTeacherAcceptance), onTarget(s.AcceptanceOnTarget(), indicators.AcceptanceTarget), s.AverageTeacherAcceptance, indicators.AcceptanceTarget),
		MetricCard("Daily Usage", fmt.Sprintf("%.1f min", s.AverageDailyUsage), usage, s.AverageDailyUsage/indicators.DailyUsageTarget*100, 100),
		MetricCard("Active Schools", fmt.Sprintf("%.1f%%", s.ActiveSchoolsPercentage), onTarget(s.ActiveOnTarget(), indicators.ActiveSchoolsTarget), s.ActiveSchoolsPercentage, indicators.ActiveSchoolsTarget),
		MetricCard("Teachers Trained", fmt.Sprintf("%.0f", s.TotalTeachersTrained), fmt.Sprintf("%.0f smart schools", s.TotalSmartSchools), 0, -1),
	)
}

func onTarget(ok bool, target float64) string {
	if ok {
		return fmt.Sprintf("on target (%.0f%%)", target)
	}
	return fmt.Sprintf("below target (%.0f%%)", target)
}

// TierLegend lists the colour of every tier
func TierLegend() string {
	parts := make([]string, len(legendTiers))
	for i, t := range legendTiers {
		parts[i] = tierStyle(t).Render("■") + " " + t.Label()
	}
	return strings.Join(parts, "  ")
}

// TierDistribution draws counts as one bar split by tier colour
func TierDistribution(counts map[classify.Tier]int, width int) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return "No data"
	}

	var tiers []classify.Tier
	for _, t := range legendTiers {
		if counts[t] > 0 {
			tiers = append(tiers, t)
		}
	}

	var bar strings.Builder
	remaining := width
	for i, t := range tiers {
		segWidth := int(math.Round(float64(counts[t]) / float64(total) * float64(width)))

		// Adjust last segment to fill exactly
		if i == len(tiers)-1 {
			segWidth = remaining
		}
		segWidth = clampWidth(segWidth, remaining)

		bar.WriteString(tierStyle(t).Render(strings.Repeat("█", segWidth)))
		remaining -= segWidth
	}

	return bar.String()
}

// TopPerformers charts the rows with the highest value under key
func TopPerformers(t *indicators.Table, key string, n, width int) string {
	rows := indicators.Top(t, key, n)
	if len(rows) == 0 {
		return "No data"
	}

	maxValue, _ := rows[0].Get(key).Float()
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r.Name))
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		v, _ := r.Get(key).Float()
		label := lipgloss.NewStyle().Width(labelWidth).Render(r.Name)
		lines[i] = BarChart(label, v, maxValue, width, lipgloss.Color(classify.Good.Color()))
	}
	return strings.Join(lines, "\n")
}
