package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"samparkdash/internal/classify"
	"samparkdash/internal/indicators"
	"samparkdash/internal/tableutil"
)

// Rows beyond this are left out of the prompt.
const maxSummaryRows = 200

// SummarizerService writes narrative summaries of indicator tables with Claude
type SummarizerService struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewSummarizerService creates a new summarizer
func NewSummarizerService(apiKey string) (*SummarizerService, error) {
	if apiKey == "" {
		if logger != nil {
			logger.Error("Summarizer initialization failed: missing API key")
		}
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &SummarizerService{
		client: &client,
		model:  anthropic.ModelClaudeHaiku4_5_20251001,
	}, nil
}

// Summarize asks Claude for a short narrative of the filtered rows of t
func (s *SummarizerService) Summarize(ctx context.Context, t *indicators.Table) (string, error) {
	if len(t.Rows()) == 0 {
		return "", fmt.Errorf("no rows to summarize")
	}

	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 2000,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildSummaryPrompt(t))),
		},
	}

	message, err := s.client.Messages.New(ctx, params)
	if err != nil {
		if logger != nil {
			logger.Error("Claude API call failed", "error", err, "table", t.Kind().String(), "title", t.Title())
		}
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	responseText := ""
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			responseText += textBlock.Text
		}
	}

	if responseText == "" {
		if logger != nil {
			logger.Error("No text content in Claude API response", "table", t.Kind().String(), "content_blocks", len(message.Content))
		}
		return "", fmt.Errorf("no text response from Claude")
	}

	if logger != nil {
		logger.Info("Table summarized", "table", t.Kind().String(), "title", t.Title(), "rows", len(t.Rows()))
	}
	return strings.TrimSpace(responseText), nil
}

// buildSummaryPrompt describes t as CSV plus the tier counts of every
// classified column.
func buildSummaryPrompt(t *indicators.Table) string {
	records := t.Records()
	truncated := false
	if len(records) > maxSummaryRows {
		records = records[:maxSummaryRows]
		truncated = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are reviewing the %q table of an education monitoring dashboard (%s level).\n", t.Title(), t.Level())
	if sub := t.Subtitle(); sub != "" {
		fmt.Fprintf(&b, "%s\n", sub)
	}
	if q := t.Search(); q != "" {
		fmt.Fprintf(&b, "Rows are filtered by the search %q.\n", q)
	}
	if t.SupportsBand() && t.Band() != classify.BandAll {
		fmt.Fprintf(&b, "Only the %s performance band is shown.\n", t.Band())
	}

	b.WriteString("\nColour counts per column:\n")
	counts := indicators.TierCounts(t)
	headers := t.Headers()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var parts []string
		for tier := classify.Unknown; tier <= classify.Benchmark; tier++ {
			if n := counts[k][tier]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", tier.Label(), n))
			}
		}
		fmt.Fprintf(&b, "- %s: %s\n", headers[k], strings.Join(parts, ", "))
	}

	b.WriteString("\nData (CSV):\n")
	b.WriteString(tableutil.CSV(records, headers))
	if truncated {
		fmt.Fprintf(&b, "\n(first %d of %d rows)", maxSummaryRows, len(t.Rows()))
	}

	b.WriteString(`

Write a summary of at most 150 words in markdown for a programme officer:
- which units meet their targets or beat the average
- which units need attention, by name
- anything unusual, such as missing data

Use only the numbers above. Rows named "State Average", "Total" or similar are benchmarks, not units.`)
	return b.String()
}

// summarizeTable is the callback used by the summarize command and the TUI
func summarizeTable(ctx context.Context, apiKey string, t *indicators.Table) (string, error) {
	s, err := NewSummarizerService(apiKey)
	if err != nil {
		return "", err
	}
	return s.Summarize(ctx, t)
}
